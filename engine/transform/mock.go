package transform

import (
	"context"
	"fmt"
)

var _ Provider = (*Mock)(nil)

// NotAvailable is returned by the mock for languages without a canned
// translation.
const NotAvailable = "Translation not available"

var mockTranslations = map[string]string{
	"Spanish": "La fe es la certeza de lo que se espera, la convicción de lo que no se ve. Por la fe entendemos que el universo fue creado por la palabra de Dios... La fe verdadera transforma nuestras vidas y nos da fuerza para superar los desafíos...",
	"French":  "La foi est une ferme assurance des choses qu'on espère, une démonstration de celles qu'on ne voit pas. Par la foi, nous comprenons que l'univers a été formé par la parole de Dieu... La vraie foi transforme nos vies et nous donne la force de surmonter les défis...",
	"German":  "Glaube ist die feste Zuversicht auf das, was man hofft, die Überzeugung von dem, was man nicht sieht. Durch den Glauben verstehen wir, dass das Universum durch Gottes Wort geschaffen wurde... Wahrer Glaube verwandelt unser Leben und gibt uns die Kraft, Herausforderungen zu überwinden...",
	"Chinese": "信就是所望之事的实底，是未见之事的确据。我们因着信，就知道诸世界是藉神的话造成的... 真正的信心会改变我们的生活，并给我们力量去克服挑战...",
	"Arabic":  "الإيمان هو الثقة بما يُرجى والإيقان بأمور لا تُرى. بالإيمان نفهم أن الكون خُلق بكلمة الله... الإيمان الحقيقي يغير حياتنا ويعطينا القوة للتغلب على التحديات...",
}

// Mock returns canned results: summaries echo the source text and
// translations come from a fixed table regardless of the input.
type Mock struct{}

// NewMock returns the mock provider.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Summarize(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return text, nil
}

func (m *Mock) Translate(ctx context.Context, text string, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !Supported(language) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	if translation, ok := mockTranslations[language]; ok {
		return translation, nil
	}
	return NotAvailable, nil
}
