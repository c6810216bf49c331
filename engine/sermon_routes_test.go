package engine

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const faithText = "Faith is the assurance of things hoped for, the conviction of things not seen. By faith we understand that the universe was created by the word of God, so that what is seen was not made out of things that are visible."

// fakeSermonAPI serves two sermons and a broken record from an upstream test server
func fakeSermonAPI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/sermons":
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "faith", r.URL.Query().Get("search"))
			json.NewEncoder(w).Encode(PaginatedSermons{
				Data:       []Sermon{{ID: "1", Topic: "Walking by Faith", Preacher: "Pastor James"}},
				Pagination: Pagination{Total: 11, Page: 2, Limit: 10, TotalPages: 2},
			})
		case "/api/sermons/1":
			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"message": "ok",
				"code":    200,
				"data": Sermon{
					ID:           "1",
					Topic:        "Walking by Faith",
					Preacher:     "Pastor James",
					FullText:     faithText,
					DatePreached: "2026-10-18",
					Themes:       []string{"Faith is assurance", "Faith explains creation"},
					Scriptures:   []string{"Hebrews 11:1-3"},
				},
			})
		case "/api/sermons/404":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Sermon not found", "code": 404})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("database unavailable"))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func setupSermonServer(t *testing.T) *echo.Echo {
	t.Helper()
	e, handler := setupTestServer(t)
	handler.Sermons = NewSermonClient(fakeSermonAPI(t).URL+"/api", 5*time.Second)
	return e
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListSermons(t *testing.T) {
	e := setupSermonServer(t)
	rec := doRequest(e, http.MethodGet, "/api/sermons?page=2&search=faith", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var list PaginatedSermons
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Walking by Faith", list.Data[0].Topic)
	assert.Equal(t, 2, list.Pagination.TotalPages)
}

func TestGetSermon(t *testing.T) {
	e := setupSermonServer(t)

	t.Run("Found", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/sermons/1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var sermon Sermon
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sermon))
		assert.Equal(t, "Pastor James", sermon.Preacher)
		assert.Equal(t, []string{"Hebrews 11:1-3"}, sermon.Scriptures)
	})

	t.Run("Not found", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/sermons/404", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Sermon not found", errorMessage(t, rec))
	})

	t.Run("Upstream failure", func(t *testing.T) {
		rec := doRequest(e, http.MethodGet, "/api/sermons/500", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Failed to load sermon", errorMessage(t, rec))
	})
}

func TestSermonUnreachableAPI(t *testing.T) {
	e, _ := setupTestServer(t)
	rec := doRequest(e, http.MethodGet, "/api/sermons/1", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/sermons", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSummarizeSermon(t *testing.T) {
	e := setupSermonServer(t)
	rec := doRequest(e, http.MethodPost, "/api/sermons/1/summary", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, faithText, body["summary"])
}

func TestTranslateSermon(t *testing.T) {
	e := setupSermonServer(t)

	t.Run("Spanish", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/sermons/1/translation", `{"language":"Spanish"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Spanish", body["language"])
		assert.Contains(t, body["translation"], "La fe")
	})

	t.Run("Unsupported language", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/sermons/1/translation", `{"language":"Klingon"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Missing language", func(t *testing.T) {
		rec := doRequest(e, http.MethodPost, "/api/sermons/1/translation", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "language is required", errorMessage(t, rec))
	})
}

func TestGetSermonStudyGuide(t *testing.T) {
	e := setupSermonServer(t)
	rec := doRequest(e, http.MethodGet, "/api/sermons/1/study-guide", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Walking by Faith", body["title"])
	assert.True(t, strings.HasPrefix(body["guide"], "STUDY GUIDE: Walking by Faith\n"))
	assert.Contains(t, body["guide"], "1. Faith is assurance")

	// the generated guide feeds straight into the PDF route
	guideJSON, err := json.Marshal(body)
	require.NoError(t, err)
	pdf := doRequest(e, http.MethodPost, "/api/generate-study-guide", string(guideJSON))
	assert.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, `attachment; filename="walking-by-faith-study-guide.pdf"`, pdf.Header().Get(echo.HeaderContentDisposition))
}

func TestGetSermonQuote(t *testing.T) {
	e := setupSermonServer(t)
	rec := doRequest(e, http.MethodGet, "/api/sermons/1/quote", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var quote Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.True(t, strings.HasSuffix(quote.Quote, "...\"\n\n- Pastor James"))
	assert.Contains(t, quote.HTMLContent, `<p class="attribution">- Pastor James</p>`)

	post := doRequest(e, http.MethodPost, "/api/generate-post", string(mustJSON(t, map[string]string{"htmlContent": quote.HTMLContent})))
	assert.Equal(t, http.StatusOK, post.Code)
}

func TestGetLanguages(t *testing.T) {
	e, _ := setupTestServer(t)
	rec := doRequest(e, http.MethodGet, "/api/languages", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var languages []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &languages))
	assert.Len(t, languages, 8)
	assert.Equal(t, "Igbo", languages[0]["value"])
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
