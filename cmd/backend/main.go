package main

import (
	"flag"
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

// @title sermonkit Backend API
// @version 1.0
// @description Sermon portal render service - social media cards, study guide PDFs and sermon content helpers

// @contact.name API Support
// @contact.url https://github.com/drummonds/sermonkit

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name Render
// @tag.description Social image and study guide rendering

// @tag.name Sermons
// @tag.description Sermon lookup, summaries, translations, quotes and study guide text

// @tag.name Admin
// @tag.description Service health check

func main() {
	// Parse command-line flags
	port := flag.String("port", "8000", "Port to run backend server on")
	flag.Parse()

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("🔧  sermonkit Backend API Server")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("• API-only mode (card assets served elsewhere)")
	fmt.Println("• All endpoints under /api/*")
	fmt.Println("• CORS enabled for frontend access")
	fmt.Println(strings.Repeat("=", 50) + "\n")

	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	// Override port if specified via flag
	if *port != "8000" {
		serverConfig.ListenAddrPort = *port
	}

	e := newBackendEcho()

	images := compositor.New(serverConfig.AssetBaseURL)
	images.BrowserPath = serverConfig.ChromePath
	images.Headless = serverConfig.ChromeHeadless
	images.Args = serverConfig.ChromeArgs
	images.Timeout = serverConfig.RenderTimeout
	images.ImageWait = serverConfig.ImageWaitTimeout
	if serverConfig.RenderRate > 0 {
		images.Limiter = rate.NewLimiter(rate.Limit(serverConfig.RenderRate), max(serverConfig.RenderBurst, 1))
	}

	guides := paginator.New()
	guides.FontPath = serverConfig.PDFFontPath

	previews, err := pdfrenderer.NewRenderer(serverConfig.PreviewEngine)
	if err != nil {
		Logger.Warn("Study guide previews unavailable", "engine", serverConfig.PreviewEngine, "error", err)
		previews = nil
	} else {
		defer previews.Close()
	}

	serverHandler := engine.ServerHandler{
		Echo:         e,
		ServerConfig: serverConfig,
		Images:       images,
		Documents:    guides,
		Previews:     previews,
		Transforms:   transform.NewMock(),
		Sermons:      engine.NewSermonClient(serverConfig.SermonAPIURL, serverConfig.SermonAPITimeout),
	}
	Logger.Info("Initializing backend services...")
	if schedules := serverHandler.InitializeSchedules(); schedules != nil { //initialize all the cron jobs
		defer schedules.Stop()
	}
	if err := serverHandler.StartupChecks(); err != nil { //Run all the sanity checks
		Logger.Warn("Startup checks reported a problem", "error", err)
	}
	Logger.Info("Backend services initialized")

	Logger.Info("Setting up API routes...")
	serverHandler.RegisterRoutes()

	// Start server
	addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
	Logger.Info("Starting Backend API Server", "address", addr)
	fmt.Printf("\n✅  Backend API Server running on %s\n", addr)
	fmt.Printf("📡  API endpoints available at http://%s/api/\n", addr)
	fmt.Printf("🏥  Health check: http://%s/api/health\n\n", addr)

	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		Logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}

// newBackendEcho creates the API-only echo instance and its middleware
func newBackendEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Custom 404 handler for API endpoints
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// the request logger returns errors it has already handled
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		if code == http.StatusNotFound {
			// Return JSON for API endpoints
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

	e.Use(middleware.Recover())

	// CORS configuration - allow frontend from different origin
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"}, // In production, specify your frontend URL
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
		ExposeHeaders: []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))

	// Request logging
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}, id=${id}\n",
	}))
	return e
}
