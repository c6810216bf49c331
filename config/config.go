package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings
type ServerConfig struct {
	ListenAddrIP   string
	ListenAddrPort string
	PublicPath     string // directory served at / (holds the card assets)
	AssetBaseURL   string // origin the browser fetches card assets from
	RenderConfig
	SermonAPIConfig
	AssetCheckInterval int // minutes, 0 disables the scheduled probe
}

// RenderConfig stores all of the renderer settings
type RenderConfig struct {
	ChromePath         string
	ChromeHeadless     bool
	ChromeArgs         []string
	RenderTimeout      time.Duration
	ImageWaitTimeout   time.Duration
	RenderRate         float64 // browser launches per second, 0 disables throttling
	RenderBurst        int
	MaxImageDimension  int
	PDFFontPath        string
	PreviewEngine      string
	DefaultImageWidth  int
	DefaultImageHeight int
}

// SermonAPIConfig stores the location of the sermon data API
type SermonAPIConfig struct {
	SermonAPIURL     string
	SermonAPITimeout time.Duration
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatVal
}

// getEnvDuration accepts Go durations ("5s") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvList splits a comma separated environment variable
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	serverConfigLive := ServerConfig{}

	// Load .env file (silently ignore if doesn't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")

	logger := setupLogging()
	Logger = logger

	// Server configuration
	serverConfigLive.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	serverConfigLive.ListenAddrIP = getEnv("SERVER_ADDR", "")

	publicPath, err := filepath.Abs(filepath.ToSlash(getEnv("PUBLIC_PATH", "public")))
	if err != nil {
		logger.Error("Failed creating absolute path for public directory", "error", err)
	}
	serverConfigLive.PublicPath = publicPath

	// The old frontend exposed the asset origin as NEXT_PUBLIC_BASE_URL
	defaultAssetURL := getEnv("NEXT_PUBLIC_BASE_URL", "http://localhost:"+serverConfigLive.ListenAddrPort)
	serverConfigLive.AssetBaseURL = strings.TrimRight(getEnv("ASSET_BASE_URL", defaultAssetURL), "/")
	serverConfigLive.AssetCheckInterval = getEnvInt("ASSET_CHECK_INTERVAL", 10)

	serverConfigLive.RenderConfig = loadRenderConfig()
	serverConfigLive.SermonAPIConfig = SermonAPIConfig{
		SermonAPIURL:     strings.TrimRight(getEnv("SERMON_API_URL", "http://localhost:5000/api"), "/"),
		SermonAPITimeout: getEnvDuration("SERMON_API_TIMEOUT", 50*time.Second),
	}

	fmt.Println("\n========================================")
	fmt.Println("   sermonkit - Sermon Render Service")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	fmt.Printf("Card assets from: %s\n", serverConfigLive.AssetBaseURL)
	fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "sermonkit.log"))

	if err := ValidateBaseURL(serverConfigLive.AssetBaseURL); err != nil {
		logger.Warn("Asset base URL is not an absolute http(s) URL, card images will not load", "url", serverConfigLive.AssetBaseURL, "error", err)
	}
	logger.Info("Render configuration loaded",
		"chrome", serverConfigLive.ChromePath,
		"headless", serverConfigLive.ChromeHeadless,
		"previewEngine", serverConfigLive.PreviewEngine,
		"sermonAPI", serverConfigLive.SermonAPIURL)

	return serverConfigLive, logger
}

func loadRenderConfig() RenderConfig {
	return RenderConfig{
		ChromePath:         getEnv("CHROME_PATH", ""),
		ChromeHeadless:     getEnvBool("CHROME_HEADLESS", true),
		ChromeArgs:         getEnvList("CHROME_ARGS", []string{"--no-sandbox", "--disable-setuid-sandbox", "--disable-dev-shm-usage"}),
		RenderTimeout:      getEnvDuration("RENDER_TIMEOUT", 30*time.Second),
		ImageWaitTimeout:   getEnvDuration("IMAGE_WAIT_TIMEOUT", 5*time.Second),
		RenderRate:         getEnvFloat("RENDER_RATE", 2),
		RenderBurst:        getEnvInt("RENDER_BURST", 4),
		MaxImageDimension:  getEnvInt("MAX_IMAGE_DIMENSION", 4096),
		PDFFontPath:        getEnv("PDF_FONT_PATH", ""),
		PreviewEngine:      getEnv("PREVIEW_ENGINE", "pdfium"),
		DefaultImageWidth:  1200,
		DefaultImageHeight: 1200,
	}
}

// ValidateBaseURL checks that base is an absolute http(s) origin the browser
// can fetch assets from
func ValidateBaseURL(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	logLevel := getEnv("LOG_LEVEL", "debug")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelDebug
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	logOutput := getEnv("LOG_OUTPUT", "file")
	var logWriter io.Writer

	if logOutput == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "sermonkit.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}

// checkExecutables verifies that an executable exists at the given path
func checkExecutables(path string, logger *slog.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		logger.Error("Cannot find executable at location specified", "path", path)
		return err
	}
	if info.IsDir() {
		logger.Error("Executable path is a directory", "path", path)
		return fmt.Errorf("%s is a directory", path)
	}
	logger.Debug("Executable found", "path", path)
	return nil
}

// CheckChrome reports whether the configured browser binary exists. An empty
// path means chromedp searches the usual install locations itself.
func CheckChrome(renderConfig RenderConfig, logger *slog.Logger) error {
	if renderConfig.ChromePath == "" {
		logger.Info("No CHROME_PATH set, chromedp will look up the browser")
		return nil
	}
	return checkExecutables(renderConfig.ChromePath, logger)
}
