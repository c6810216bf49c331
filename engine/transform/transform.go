// Package transform isolates the text transforms offered on a sermon
// (summary and translation) behind a provider interface. Only a mock
// provider exists today.
package transform

import (
	"context"
	"errors"
)

// Provider summarizes and translates sermon text.
type Provider interface {
	Summarize(ctx context.Context, text string) (string, error)
	Translate(ctx context.Context, text string, language string) (string, error)
}

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Language is a selectable translation target.
type Language struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Languages lists the translation targets offered to users.
func Languages() []Language {
	return []Language{
		{Value: "Igbo", Label: "Igbo"},
		{Value: "Hausa", Label: "Hausa"},
		{Value: "Yoruba", Label: "Yoruba"},
		{Value: "Spanish", Label: "Español"},
		{Value: "French", Label: "Français"},
		{Value: "German", Label: "Deutsch"},
		{Value: "Chinese", Label: "中文"},
		{Value: "Arabic", Label: "العربية"},
	}
}

// Supported reports whether language is one of Languages.
func Supported(language string) bool {
	for _, l := range Languages() {
		if l.Value == language {
			return true
		}
	}
	return false
}
