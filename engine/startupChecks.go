package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drummonds/sermonkit/config"
	"github.com/drummonds/sermonkit/engine/compositor"
	"github.com/drummonds/sermonkit/engine/pdfrenderer"
)

// StartupChecks performs all the checks to make sure everything works. Only a
// public path that cannot be used as a directory is fatal.
func (serverHandler *ServerHandler) StartupChecks() error {
	serverConfig := serverHandler.ServerConfig
	if err := publicDirectoryChecks(serverConfig); err != nil {
		return err
	}
	baseURLChecks(serverConfig)
	chromeChecks(serverConfig)
	fontChecks(serverConfig)
	previewEngineChecks(serverConfig)
	return nil
}

// publicDirectoryChecks ensures the public directory exists and reports
// missing card assets
func publicDirectoryChecks(serverConfig config.ServerConfig) error {
	if serverConfig.PublicPath == "" {
		Logger.Warn("Public path not configured, card assets must be served elsewhere")
		return nil
	}

	publicInfo, err := os.Stat(serverConfig.PublicPath)
	if err != nil {
		if os.IsNotExist(err) {
			Logger.Info("Creating public directory", "path", serverConfig.PublicPath)
			if err = os.MkdirAll(serverConfig.PublicPath, 0755); err != nil {
				Logger.Error("Failed to create public directory", "path", serverConfig.PublicPath, "error", err)
				return err
			}
		} else {
			Logger.Error("Error checking public directory", "path", serverConfig.PublicPath, "error", err)
			return err
		}
	} else if !publicInfo.IsDir() {
		Logger.Error("Public path exists but is not a directory", "path", serverConfig.PublicPath)
		return fmt.Errorf("public path is not a directory: %s", serverConfig.PublicPath)
	}

	for _, asset := range compositor.Assets {
		assetPath := filepath.Join(serverConfig.PublicPath, asset)
		if _, err := os.Stat(assetPath); err != nil {
			Logger.Warn("Card asset missing from public directory", "path", assetPath)
		}
	}
	Logger.Info("Public directory exists", "path", serverConfig.PublicPath)
	return nil
}

func baseURLChecks(serverConfig config.ServerConfig) {
	if err := config.ValidateBaseURL(serverConfig.AssetBaseURL); err != nil {
		Logger.Warn("Asset base URL is unusable, social images will render without assets",
			"url", serverConfig.AssetBaseURL, "error", err)
		return
	}
	Logger.Info("Asset base URL set", "url", serverConfig.AssetBaseURL)
}

func chromeChecks(serverConfig config.ServerConfig) {
	if err := config.CheckChrome(serverConfig.RenderConfig, Logger); err != nil {
		Logger.Warn("Browser not found, social image generation will fail", "path", serverConfig.ChromePath, "error", err)
	}
}

func fontChecks(serverConfig config.ServerConfig) {
	if serverConfig.PDFFontPath == "" {
		Logger.Info("No PDF font configured, study guides are limited to Windows-1252 text")
		return
	}
	file, err := os.Open(serverConfig.PDFFontPath)
	if err != nil {
		Logger.Warn("PDF font unreadable, study guide generation will fail", "path", serverConfig.PDFFontPath, "error", err)
		return
	}
	file.Close()
	Logger.Info("PDF font found", "path", serverConfig.PDFFontPath)
}

func previewEngineChecks(serverConfig config.ServerConfig) {
	switch serverConfig.PreviewEngine {
	case "", pdfrenderer.EnginePDFium, pdfrenderer.EngineFitz:
		Logger.Info("Study guide previews enabled", "engine", serverConfig.PreviewEngine)
	default:
		Logger.Warn("Unknown preview engine, study guide previews disabled", "engine", serverConfig.PreviewEngine)
	}
}
