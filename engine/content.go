package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
)

// quoteLength is how many characters of the sermon text go into a card quote
const quoteLength = 150

var defaultMainPoints = []string{
	"Faith provides assurance and conviction",
	"Faith helps us understand creation",
	"Faith transforms our lives",
	"Faith gives strength for challenges",
}

var discussionQuestions = []string{
	"What does faith mean to you personally?",
	"How has faith helped you overcome challenges?",
	"What biblical examples of faith inspire you?",
}

var applicationSteps = []string{
	"Identify one area where you need more faith this week",
	"Share this lesson with someone who needs encouragement",
}

// quote fragments are escaped since the text comes from the data API
var quoteTemplate = pongo2.Must(pongo2.FromString(
	`<p class="quote">{{ quote }}</p>{% if attribution %}
<p class="attribution">{{ attribution }}</p>{% endif %}`))

// Quote is the card text suggested for a sermon
type Quote struct {
	Quote       string `json:"quote"`
	HTMLContent string `json:"htmlContent"`
}

// BuildQuote takes the opening of the sermon text and attributes it to the
// preacher. HTMLContent is ready to post to the card renderer.
func BuildQuote(sermon *Sermon) (*Quote, error) {
	text := strings.TrimSpace(sermon.FullText)
	runes := []rune(text)
	if len(runes) > quoteLength {
		runes = runes[:quoteLength]
	}
	quoted := fmt.Sprintf("\"%s...\"", string(runes))

	attribution := ""
	if preacher := strings.TrimSpace(sermon.Preacher); preacher != "" {
		attribution = "- " + preacher
	}

	fragment, err := quoteTemplate.Execute(pongo2.Context{
		"quote":       quoted,
		"attribution": attribution,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering quote fragment: %w", err)
	}

	plain := quoted
	if attribution != "" {
		plain += "\n\n" + attribution
	}
	return &Quote{Quote: plain, HTMLContent: fragment}, nil
}

// BuildStudyGuide writes the plain text study guide for a sermon. Main points
// come from the sermon themes when it has any.
func BuildStudyGuide(sermon *Sermon) string {
	var b strings.Builder

	fmt.Fprintf(&b, "STUDY GUIDE: %s\n\n", sermon.Topic)
	fmt.Fprintf(&b, "Date: %s\n", preachedOn(sermon.DatePreached))
	fmt.Fprintf(&b, "Speaker: %s\n", sermon.Preacher)

	points := sermon.Themes
	if len(points) == 0 {
		points = defaultMainPoints
	}
	b.WriteString("\n=== Main Points ===\n")
	for i, point := range points {
		fmt.Fprintf(&b, "%d. %s\n", i+1, point)
	}

	if len(sermon.Scriptures) > 0 {
		b.WriteString("\n=== Scriptures ===\n")
		for _, scripture := range sermon.Scriptures {
			fmt.Fprintf(&b, "- %s\n", scripture)
		}
	}

	b.WriteString("\n=== Discussion Questions ===\n")
	for i, question := range discussionQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, question)
	}

	b.WriteString("\n=== Application ===\n")
	for _, step := range applicationSteps {
		fmt.Fprintf(&b, "- %s\n", step)
	}

	return strings.TrimRight(b.String(), "\n")
}

// preachedOn shows ISO dates in long form and leaves anything else alone
func preachedOn(date string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return date
}
