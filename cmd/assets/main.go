// Command assets serves the card assets (background, logo, portrait) that the
// headless browser loads through ASSET_BASE_URL, and proxies /api/* to a
// backend started with cmd/backend.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	config "github.com/drummonds/sermonkit/config"
	"github.com/drummonds/sermonkit/engine/compositor"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

func main() {
	// Parse command-line flags
	port := flag.String("port", "3000", "Port to run the asset server on")
	publicPath := flag.String("public", "public", "Directory holding the card assets")
	apiURL := flag.String("api", "", "Backend API URL to proxy /api/* to (disabled when empty)")
	flag.Parse()

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("🎨  sermonkit Asset Server")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("• Serves card images for the renderer")
	fmt.Println("• Proxies API calls to backend")
	fmt.Println(strings.Repeat("=", 50) + "\n")

	Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	config.Logger = Logger

	root, err := filepath.Abs(*publicPath)
	if err != nil {
		Logger.Error("Invalid public path", "path", *publicPath, "error", err)
		os.Exit(1)
	}
	for _, asset := range compositor.Assets {
		if _, err := os.Stat(filepath.Join(root, asset)); err != nil {
			Logger.Warn("Card asset missing", "asset", asset, "dir", root)
		}
	}

	e := newAssetServer(root, *apiURL)

	// Start server
	addr := fmt.Sprintf(":%s", *port)
	Logger.Info("Starting Asset Server", "address", addr, "public", root, "backendAPI", *apiURL)
	fmt.Printf("\n✅  Asset Server running on %s\n", addr)
	fmt.Printf("🖼   Set ASSET_BASE_URL=http://localhost:%s on the backend\n", *port)
	if *apiURL != "" {
		fmt.Printf("📡  API proxied to: %s\n\n", *apiURL)
	}

	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		Logger.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}

// newAssetServer serves root as static files and optionally forwards /api/*
// to apiURL
func newAssetServer(root, apiURL string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// CORS - allow requests from anywhere (since we're just serving static content)
	e.Use(middleware.CORS())

	// Request logging
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}, latency=${latency_human}\n",
	}))

	// API proxy middleware - forward /api/* requests to backend
	if apiURL != "" {
		backendURL := mustParseURL(apiURL)
		e.Group("/api", middleware.ProxyWithConfig(middleware.ProxyConfig{
			Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{
				{
					URL: backendURL,
				},
			}),
		}))
	}

	e.Static("/", root)
	return e
}

// mustParseURL parses a URL and panics if invalid
func mustParseURL(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(fmt.Sprintf("Invalid URL: %s - %v", rawURL, err))
	}
	return u
}
