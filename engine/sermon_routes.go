package engine

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/drummonds/sermonkit/engine/transform"
)

type translationRequest struct {
	Language string `json:"language"`
}

// ListSermons proxies one page of the sermon listing
// @Summary List sermons
// @Description Returns a page of sermons from the sermon data API
// @Tags Sermons
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param search query string false "Search text"
// @Success 200 {object} PaginatedSermons
// @Failure 502 {object} map[string]string "Failed to load sermons"
// @Router /sermons [get]
func (serverHandler *ServerHandler) ListSermons(c echo.Context) error {
	params := c.QueryParams()
	query := SermonQuery{Search: strings.TrimSpace(params.Get("search"))}
	query.Page, _ = strconv.Atoi(params.Get("page"))
	query.Limit, _ = strconv.Atoi(params.Get("limit"))

	list, err := serverHandler.Sermons.ListSermons(c.Request().Context(), query)
	if err != nil {
		Logger.Error("Unable to list sermons", "query", query.Values().Encode(), "error", err)
		return jsonError(c, http.StatusBadGateway, "Failed to load sermons")
	}
	if list.Data == nil {
		list.Data = []Sermon{}
	}
	return c.JSON(http.StatusOK, list)
}

// GetSermon proxies a single sermon
// @Summary Get a sermon
// @Tags Sermons
// @Produce json
// @Param id path string true "Sermon ID"
// @Success 200 {object} Sermon
// @Failure 404 {object} map[string]string "Sermon not found"
// @Failure 502 {object} map[string]string "Failed to load sermon"
// @Router /sermons/{id} [get]
func (serverHandler *ServerHandler) GetSermon(c echo.Context) error {
	sermon, err := serverHandler.fetchSermon(c)
	if err != nil {
		return sermonFailure(c, err)
	}
	return c.JSON(http.StatusOK, sermon)
}

// SummarizeSermon summarizes the sermon text
// @Summary Summarize a sermon
// @Tags Sermons
// @Produce json
// @Param id path string true "Sermon ID"
// @Success 200 {object} map[string]string "summary"
// @Failure 404 {object} map[string]string "Sermon not found"
// @Failure 500 {object} map[string]string "Failed to summarize sermon"
// @Failure 502 {object} map[string]string "Failed to load sermon"
// @Router /sermons/{id}/summary [post]
func (serverHandler *ServerHandler) SummarizeSermon(c echo.Context) error {
	sermon, err := serverHandler.fetchSermon(c)
	if err != nil {
		return sermonFailure(c, err)
	}
	summary, err := serverHandler.Transforms.Summarize(c.Request().Context(), sermon.FullText)
	if err != nil {
		Logger.Error("Unable to summarize sermon", "id", sermon.ID, "error", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to summarize sermon")
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": summary})
}

// TranslateSermon translates the sermon text into one of the offered languages
// @Summary Translate a sermon
// @Tags Sermons
// @Accept json
// @Produce json
// @Param id path string true "Sermon ID"
// @Param request body translationRequest true "Target language"
// @Success 200 {object} map[string]string "language and translation"
// @Failure 400 {object} map[string]string "Unsupported language"
// @Failure 404 {object} map[string]string "Sermon not found"
// @Failure 502 {object} map[string]string "Failed to load sermon"
// @Router /sermons/{id}/translation [post]
func (serverHandler *ServerHandler) TranslateSermon(c echo.Context) error {
	var request translationRequest
	if err := c.Bind(&request); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request body")
	}
	if request.Language == "" {
		return jsonError(c, http.StatusBadRequest, "language is required")
	}
	if !transform.Supported(request.Language) {
		return jsonError(c, http.StatusBadRequest, "unsupported language: "+request.Language)
	}

	sermon, err := serverHandler.fetchSermon(c)
	if err != nil {
		return sermonFailure(c, err)
	}
	translation, err := serverHandler.Transforms.Translate(c.Request().Context(), sermon.FullText, request.Language)
	if err != nil {
		if errors.Is(err, transform.ErrUnsupportedLanguage) {
			return jsonError(c, http.StatusBadRequest, err.Error())
		}
		Logger.Error("Unable to translate sermon", "id", sermon.ID, "language", request.Language, "error", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to translate sermon")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"language":    request.Language,
		"translation": translation,
	})
}

// GetSermonStudyGuide generates the study guide text for a sermon
// @Summary Generate study guide text
// @Description Returns the title and guide text, ready to post to /generate-study-guide
// @Tags Sermons
// @Produce json
// @Param id path string true "Sermon ID"
// @Success 200 {object} map[string]string "title and guide"
// @Failure 404 {object} map[string]string "Sermon not found"
// @Failure 502 {object} map[string]string "Failed to load sermon"
// @Router /sermons/{id}/study-guide [get]
func (serverHandler *ServerHandler) GetSermonStudyGuide(c echo.Context) error {
	sermon, err := serverHandler.fetchSermon(c)
	if err != nil {
		return sermonFailure(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"title": sermon.Topic,
		"guide": BuildStudyGuide(sermon),
	})
}

// GetSermonQuote suggests a card quote for a sermon
// @Summary Generate a card quote
// @Description Returns the quote text and the HTML fragment ready to post to /generate-post
// @Tags Sermons
// @Produce json
// @Param id path string true "Sermon ID"
// @Success 200 {object} Quote
// @Failure 404 {object} map[string]string "Sermon not found"
// @Failure 502 {object} map[string]string "Failed to load sermon"
// @Router /sermons/{id}/quote [get]
func (serverHandler *ServerHandler) GetSermonQuote(c echo.Context) error {
	sermon, err := serverHandler.fetchSermon(c)
	if err != nil {
		return sermonFailure(c, err)
	}
	quote, err := BuildQuote(sermon)
	if err != nil {
		Logger.Error("Unable to build quote", "id", sermon.ID, "error", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to generate quote")
	}
	return c.JSON(http.StatusOK, quote)
}

// GetLanguages lists the translation targets
// @Summary List translation languages
// @Tags Sermons
// @Produce json
// @Success 200 {array} transform.Language
// @Router /languages [get]
func (serverHandler *ServerHandler) GetLanguages(c echo.Context) error {
	return c.JSON(http.StatusOK, transform.Languages())
}

func (serverHandler *ServerHandler) fetchSermon(c echo.Context) (*Sermon, error) {
	id := c.Param("id")
	sermon, err := serverHandler.Sermons.GetSermon(c.Request().Context(), id)
	if err != nil {
		Logger.Error("Unable to fetch sermon", "id", id, "error", err)
		return nil, err
	}
	return sermon, nil
}

func sermonFailure(c echo.Context, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		return jsonError(c, http.StatusNotFound, "Sermon not found")
	}
	return jsonError(c, http.StatusBadGateway, "Failed to load sermon")
}
