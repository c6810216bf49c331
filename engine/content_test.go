package engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuote(t *testing.T) {
	t.Run("Long text is cut at the quote length", func(t *testing.T) {
		quote, err := BuildQuote(&Sermon{FullText: faithText, Preacher: "Pastor James"})
		require.NoError(t, err)

		parts := strings.Split(quote.Quote, "\n\n")
		require.Len(t, parts, 2)
		assert.Equal(t, `"`+faithText[:quoteLength]+`..."`, parts[0])
		assert.Equal(t, "- Pastor James", parts[1])
	})

	t.Run("Counts characters not bytes", func(t *testing.T) {
		text := strings.Repeat("é", 200)
		quote, err := BuildQuote(&Sermon{FullText: text})
		require.NoError(t, err)
		assert.Equal(t, quoteLength+5, utf8.RuneCountInString(quote.Quote))
	})

	t.Run("Markup in the sermon is escaped", func(t *testing.T) {
		quote, err := BuildQuote(&Sermon{FullText: `<script>alert(1)</script>`, Preacher: "A & B"})
		require.NoError(t, err)
		assert.NotContains(t, quote.HTMLContent, "<script>")
		assert.Contains(t, quote.HTMLContent, "&lt;script&gt;")
		assert.Contains(t, quote.HTMLContent, "- A &amp; B")
		assert.True(t, strings.HasPrefix(quote.HTMLContent, `<p class="quote">`))
	})

	t.Run("No preacher means no attribution", func(t *testing.T) {
		quote, err := BuildQuote(&Sermon{FullText: "Short"})
		require.NoError(t, err)
		assert.Equal(t, `"Short..."`, quote.Quote)
		assert.NotContains(t, quote.HTMLContent, "attribution")
	})
}

func TestBuildStudyGuide(t *testing.T) {
	t.Run("Themes become main points", func(t *testing.T) {
		guide := BuildStudyGuide(&Sermon{
			Topic:        "Walking by Faith",
			Preacher:     "Pastor James",
			DatePreached: "2026-10-18",
			Themes:       []string{"Trust", "Obedience"},
			Scriptures:   []string{"Hebrews 11:1"},
		})
		lines := strings.Split(guide, "\n")
		assert.Equal(t, "STUDY GUIDE: Walking by Faith", lines[0])
		assert.Equal(t, "", lines[1])
		assert.Equal(t, "Date: October 18, 2026", lines[2])
		assert.Equal(t, "Speaker: Pastor James", lines[3])
		assert.Contains(t, guide, "=== Main Points ===\n1. Trust\n2. Obedience\n")
		assert.Contains(t, guide, "=== Scriptures ===\n- Hebrews 11:1\n")
		assert.Contains(t, guide, "3. What biblical examples of faith inspire you?")
		assert.True(t, strings.HasSuffix(guide, "- Share this lesson with someone who needs encouragement"))
	})

	t.Run("Fallback main points", func(t *testing.T) {
		guide := BuildStudyGuide(&Sermon{Topic: "Hope", DatePreached: "last Sunday"})
		assert.Contains(t, guide, "Date: last Sunday")
		assert.Contains(t, guide, "4. Faith gives strength for challenges")
		assert.NotContains(t, guide, "=== Scriptures ===")
	})
}
