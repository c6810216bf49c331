package engine

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/drummonds/sermonkit/engine/pdfrenderer"
	"github.com/drummonds/sermonkit/engine/renderer"
)

const (
	defaultCardSize     = 1200
	defaultPreviewWidth = 600
	defaultMaxDimension = 4096
)

// whitespaceRun covers Unicode spaces and the byte order mark as well as ASCII
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

type generatePostRequest struct {
	HTMLContent string `json:"htmlContent"`
	Width       *int   `json:"width"`
	Height      *int   `json:"height"`
}

type studyGuideRequest struct {
	Guide *string `json:"guide"`
	Title string  `json:"title"`
	Width *int    `json:"width"` // preview only
}

// GeneratePost renders a social media card to PNG
// @Summary Generate a social media image
// @Description Lays the HTML fragment out on the branded card and returns it as a PNG download
// @Tags Render
// @Accept json
// @Produce png
// @Param request body generatePostRequest true "Card fragment and optional size"
// @Success 200 {file} binary "PNG image"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Failed to generate image"
// @Router /generate-post [post]
func (serverHandler *ServerHandler) GeneratePost(c echo.Context) error {
	requestID := startRequest(c)
	var request generatePostRequest
	if err := c.Bind(&request); err != nil {
		Logger.Warn("Invalid generate-post body", "requestID", requestID, "error", err)
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(request.HTMLContent) == "" {
		return jsonError(c, http.StatusBadRequest, "htmlContent is required")
	}
	width, err := serverHandler.dimension("width", request.Width, serverHandler.cardDefault(serverHandler.ServerConfig.DefaultImageWidth))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	height, err := serverHandler.dimension("height", request.Height, serverHandler.cardDefault(serverHandler.ServerConfig.DefaultImageHeight))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	png, err := serverHandler.Images.Render(c.Request().Context(), request.HTMLContent, width, height)
	if err != nil {
		return renderFailure(c, requestID, "Failed to generate image", err)
	}
	Logger.Info("Generated social image", "requestID", requestID, "width", width, "height", height,
		"bytes", len(png), "duration", time.Since(start))

	filename := fmt.Sprintf("faith-post-%s.png", serverHandler.now().UTC().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return c.Blob(http.StatusOK, "image/png", png)
}

// GenerateStudyGuide renders a study guide to a paginated PDF
// @Summary Generate a study guide PDF
// @Description Paginates the guide text under a title header and returns it as a PDF download
// @Tags Render
// @Accept json
// @Produce application/pdf
// @Param request body studyGuideRequest true "Guide text and title"
// @Success 200 {file} binary "PDF document"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Failed to generate PDF"
// @Router /generate-study-guide [post]
func (serverHandler *ServerHandler) GenerateStudyGuide(c echo.Context) error {
	requestID := startRequest(c)
	request, err := bindStudyGuide(c)
	if err != nil {
		Logger.Warn("Invalid study guide request", "requestID", requestID, "error", err)
		return jsonError(c, http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	pdf, err := serverHandler.Documents.Render(request.Title, *request.Guide)
	if err != nil {
		return renderFailure(c, requestID, "Failed to generate PDF", err)
	}
	Logger.Info("Generated study guide", "requestID", requestID, "title", request.Title,
		"bytes", len(pdf), "duration", time.Since(start))

	filename := StudyGuideFilename(request.Title, ".pdf")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// PreviewStudyGuide renders the first page of a study guide to PNG
// @Summary Preview a study guide
// @Description Renders the study guide PDF and rasterises its first page at the requested width
// @Tags Render
// @Accept json
// @Produce png
// @Param request body studyGuideRequest true "Guide text, title and optional width"
// @Success 200 {file} binary "PNG image of page one"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 500 {object} map[string]string "Failed to generate preview"
// @Router /preview-study-guide [post]
func (serverHandler *ServerHandler) PreviewStudyGuide(c echo.Context) error {
	requestID := startRequest(c)
	request, err := bindStudyGuide(c)
	if err != nil {
		Logger.Warn("Invalid study guide preview request", "requestID", requestID, "error", err)
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	width, err := serverHandler.dimension("width", request.Width, defaultPreviewWidth)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if serverHandler.Previews == nil {
		Logger.Error("No preview engine configured", "requestID", requestID)
		return jsonError(c, http.StatusInternalServerError, "Failed to generate preview")
	}

	start := time.Now()
	pdf, err := serverHandler.Documents.Render(request.Title, *request.Guide)
	if err != nil {
		return renderFailure(c, requestID, "Failed to generate preview", err)
	}
	png, err := pdfrenderer.Thumbnail(serverHandler.Previews, pdf, width)
	if err != nil {
		return renderFailure(c, requestID, "Failed to generate preview", err)
	}
	Logger.Info("Generated study guide preview", "requestID", requestID, "width", width,
		"bytes", len(png), "duration", time.Since(start))

	filename := StudyGuideFilename(request.Title, ".png")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", filename))
	return c.Blob(http.StatusOK, "image/png", png)
}

// StudyGuideFilename builds the download name from the guide title: lowercased
// with every whitespace run replaced by a hyphen
func StudyGuideFilename(title, ext string) string {
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.NewReplacer(`"`, "", `\`, "").Replace(slug)
	return slug + "-study-guide" + ext
}

func bindStudyGuide(c echo.Context) (*studyGuideRequest, error) {
	var request studyGuideRequest
	if err := c.Bind(&request); err != nil {
		return nil, errors.New("invalid request body")
	}
	if strings.TrimSpace(request.Title) == "" {
		return nil, errors.New("title is required")
	}
	if request.Guide == nil {
		return nil, errors.New("guide is required")
	}
	return &request, nil
}

// dimension applies the default and the configured upper bound to a
// requested pixel size
func (serverHandler *ServerHandler) dimension(name string, requested *int, fallback int) (int, error) {
	limit := serverHandler.ServerConfig.MaxImageDimension
	if limit <= 0 {
		limit = defaultMaxDimension
	}
	if requested == nil {
		return fallback, nil
	}
	if *requested <= 0 || *requested > limit {
		return 0, fmt.Errorf("%s must be between 1 and %d", name, limit)
	}
	return *requested, nil
}

func (serverHandler *ServerHandler) cardDefault(configured int) int {
	if configured > 0 {
		return configured
	}
	return defaultCardSize
}

// startRequest tags the request with a ULID that follows it through the logs
func startRequest(c echo.Context) string {
	requestID := c.Request().Header.Get(echo.HeaderXRequestID)
	if requestID == "" {
		requestID = ulid.Make().String()
	}
	c.Response().Header().Set(echo.HeaderXRequestID, requestID)
	return requestID
}

// renderFailure logs the cause and answers with the fixed message. Validation
// errors raised inside a renderer still map to 400.
func renderFailure(c echo.Context, requestID, message string, err error) error {
	kind := renderer.KindOf(err)
	if kind == renderer.KindValidation {
		Logger.Warn("Render rejected input", "requestID", requestID, "error", err)
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if kind == renderer.KindCanceled {
		Logger.Info("Render canceled by client", "requestID", requestID, "error", err)
	} else {
		Logger.Error(message, "requestID", requestID, "kind", kind, "error", err)
	}
	return jsonError(c, http.StatusInternalServerError, message)
}
