package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	config "github.com/drummonds/sermonkit/config"
	engine "github.com/drummonds/sermonkit/engine"
	"github.com/drummonds/sermonkit/engine/compositor"
	"github.com/drummonds/sermonkit/engine/paginator"
	"github.com/drummonds/sermonkit/engine/pdfrenderer"
	"github.com/drummonds/sermonkit/engine/transform"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	config.Logger = Logger
	engine.Logger = Logger
	compositor.Logger = Logger
}

// newCompositor builds the card renderer from the render settings
func newCompositor(serverConfig config.ServerConfig) *compositor.Compositor {
	images := compositor.New(serverConfig.AssetBaseURL)
	images.BrowserPath = serverConfig.ChromePath
	images.Headless = serverConfig.ChromeHeadless
	images.Args = serverConfig.ChromeArgs
	images.Timeout = serverConfig.RenderTimeout
	images.ImageWait = serverConfig.ImageWaitTimeout
	if serverConfig.RenderRate > 0 {
		images.Limiter = rate.NewLimiter(rate.Limit(serverConfig.RenderRate), max(serverConfig.RenderBurst, 1))
	}
	return images
}

// newServerHandler wires the renderers and clients into a handler on e
func newServerHandler(e *echo.Echo, serverConfig config.ServerConfig) *engine.ServerHandler {
	guides := paginator.New()
	guides.FontPath = serverConfig.PDFFontPath

	previews, err := pdfrenderer.NewRenderer(serverConfig.PreviewEngine)
	if err != nil {
		Logger.Warn("Study guide previews unavailable", "engine", serverConfig.PreviewEngine, "error", err)
		previews = nil
	}

	serverHandler := &engine.ServerHandler{
		Echo:         e,
		ServerConfig: serverConfig,
		Images:       newCompositor(serverConfig),
		Documents:    guides,
		Previews:     previews,
		Transforms:   transform.NewMock(),
		Sermons:      engine.NewSermonClient(serverConfig.SermonAPIURL, serverConfig.SermonAPITimeout),
	}
	serverHandler.RegisterRoutes()
	return serverHandler
}

// apiErrorHandler answers unknown /api/* routes with JSON and leaves the rest
// to echo
func apiErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// middleware that handles the error itself returns it again
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		if code == http.StatusNotFound && strings.HasPrefix(c.Request().URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, map[string]string{
				"error":   "Not Found",
				"message": "The requested API endpoint does not exist",
				"path":    c.Request().URL.Path,
			})
			return
		}

		// For other errors, use default handler
		e.DefaultHTTPErrorHandler(err, c)
	}
}

// requestLogger writes one structured line per request
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			Logger.Log(c.Request().Context(), level, "request",
				"method", v.Method, "uri", v.URI, "status", v.Status,
				"latency", v.Latency, "requestID", v.RequestID, "error", v.Error)
			return nil
		},
	})
}

// setupEcho creates the echo instance with middleware, static assets and the
// API routes
func setupEcho(serverConfig config.ServerConfig) (*echo.Echo, *engine.ServerHandler) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apiErrorHandler(e)

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))

	serverHandler := newServerHandler(e, serverConfig)

	// Card assets, fetched back by the headless browser through ASSET_BASE_URL
	if serverConfig.PublicPath != "" {
		e.Static("/", serverConfig.PublicPath)
	}
	return e, serverHandler
}

func main() {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	e, serverHandler := setupEcho(serverConfig)
	Logger.Info("Echo created")
	if serverHandler.Previews != nil {
		defer serverHandler.Previews.Close()
	}

	if err := serverHandler.StartupChecks(); err != nil { //Run all the sanity checks
		Logger.Error("Startup checks failed", "error", err)
		os.Exit(1)
	}
	Logger.Info("Startup checks complete")
	if schedules := serverHandler.InitializeSchedules(); schedules != nil {
		defer schedules.Stop()
	}

	if serverConfig.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}

	Logger.Info("Starting HTTP server")
	if err := startWithRetry(e, &serverConfig); err != nil {
		Logger.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

// startWithRetry starts the server, moving to the next port when the
// configured one is taken
func startWithRetry(e *echo.Echo, serverConfig *config.ServerConfig) error {
	maxRetries := 5
	startPort := serverConfig.ListenAddrPort
	var startErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt+1)

		startErr = e.Start(addr)
		if startErr == nil || startErr == http.ErrServerClosed {
			return nil
		}
		if !isAddressInUse(startErr) {
			return startErr
		}

		Logger.Warn("Port already in use, trying next port",
			"port", serverConfig.ListenAddrPort,
			"attempt", attempt+1,
			"max_attempts", maxRetries)

		portNum := 0
		fmt.Sscanf(serverConfig.ListenAddrPort, "%d", &portNum)
		portNum++
		serverConfig.ListenAddrPort = fmt.Sprintf("%d", portNum)
		// the browser fetches assets from this server, so a moved port
		// only matters when the base URL pointed at it
		Logger.Warn("Server moving to alternative port, check ASSET_BASE_URL",
			"requested_port", startPort,
			"next_port", serverConfig.ListenAddrPort)
	}
	return fmt.Errorf("no free port after %d attempts starting at %s: %w", maxRetries, startPort, startErr)
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "address already in use")
}
