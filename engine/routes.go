package engine

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/drummonds/sermonkit/config"
	"github.com/drummonds/sermonkit/engine/pdfrenderer"
	"github.com/drummonds/sermonkit/engine/transform"
)

// ImageRenderer rasterises a card fragment to PNG
type ImageRenderer interface {
	Render(ctx context.Context, htmlContent string, width, height int) ([]byte, error)
}

// DocumentRenderer lays a study guide out as a PDF
type DocumentRenderer interface {
	Render(title, guide string) ([]byte, error)
}

// ServerHandler will inject the renderers and clients needed into routes
type ServerHandler struct {
	Echo         *echo.Echo
	ServerConfig config.ServerConfig

	Images     ImageRenderer
	Documents  DocumentRenderer
	Previews   pdfrenderer.Renderer // optional, preview route answers 500 without it
	Transforms transform.Provider
	Sermons    SermonSource

	// Now stamps download filenames, defaults to time.Now
	Now func() time.Time
}

// RegisterRoutes adds every API route to the handler's echo instance
func (serverHandler *ServerHandler) RegisterRoutes() {
	e := serverHandler.Echo

	// Render API routes
	e.POST("/api/generate-post", serverHandler.GeneratePost)
	e.POST("/api/generate-study-guide", serverHandler.GenerateStudyGuide)
	e.POST("/api/preview-study-guide", serverHandler.PreviewStudyGuide)

	// Sermon API routes
	e.GET("/api/sermons", serverHandler.ListSermons)
	e.GET("/api/sermons/:id", serverHandler.GetSermon)
	e.POST("/api/sermons/:id/summary", serverHandler.SummarizeSermon)
	e.POST("/api/sermons/:id/translation", serverHandler.TranslateSermon)
	e.GET("/api/sermons/:id/study-guide", serverHandler.GetSermonStudyGuide)
	e.GET("/api/sermons/:id/quote", serverHandler.GetSermonQuote)
	e.GET("/api/languages", serverHandler.GetLanguages)

	// Admin API routes
	e.GET("/api/health", serverHandler.GetHealth)
}

// GetHealth reports that the service is up
// @Summary Health check
// @Description Returns service status for load balancers and uptime probes
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]string "Service status"
// @Router /health [get]
func (serverHandler *ServerHandler) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "sermonkit",
	})
}

func (serverHandler *ServerHandler) now() time.Time {
	if serverHandler.Now != nil {
		return serverHandler.Now()
	}
	return time.Now()
}

// jsonError is the body of every failed API response
func jsonError(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"error": message})
}
