package compositor

import (
	"strings"

	"github.com/flosch/pongo2/v6"
)

// Asset file names fetched from the asset base URL.
const (
	BackgroundAsset = "background.jpg"
	LogoAsset       = "logo-trans-crop.png"
	PortraitAsset   = "pjakes.jpeg"
)

// Assets lists every file the card template references.
var Assets = []string{BackgroundAsset, LogoAsset, PortraitAsset}

const cardSource = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      body {
        margin: 0;
        font-family: Arial, Helvetica, sans-serif;
        background-color: #37591e;
        color: #ffffff;
        display: flex;
        justify-content: center;
        align-items: center;
        width: {{ width }}px;
        height: {{ height }}px;
        overflow: hidden;
      }
      .post {
        position: relative;
        box-sizing: border-box;
        width: 100%;
        height: 100%;
        background-image: url('{{ base_url }}/{{ background }}');
        background-size: cover;
        background-position: center;
        display: flex;
        justify-content: center;
        align-items: center;
        text-align: center;
        padding: 32px;
      }
      .overlay {
        position: absolute;
        inset: 0;
        background-color: rgba(0, 0, 0, 0.5);
      }
      .logo {
        position: absolute;
        top: 32px;
        left: 16px;
        width: 64px;
        height: 64px;
        z-index: 3;
        object-fit: contain;
      }
      .pastor {
        position: absolute;
        bottom: 50px;
        right: 16px;
        width: 150px;
        height: 150px;
        border-radius: 50%;
        object-fit: cover;
        z-index: 3;
        box-shadow: 0 0 10px rgba(0, 0, 0, 0.3);
      }
      .content {
        position: relative;
        max-width: 600px;
        z-index: 10;
        display: flex;
        flex-direction: column;
        align-items: center;
      }
      .quote {
        font-size: 24px;
        font-weight: 700;
        color: #ffffff;
        margin-bottom: 24px;
        line-height: 1.5;
        max-width: 100%;
      }
      .attribution {
        font-size: 18px;
        color: #f5f5ec;
        opacity: 0.9;
      }
    </style>
  </head>
  <body>
    <div class="post">
      <div class="overlay"></div>
      <img class="logo" src="{{ base_url }}/{{ logo }}" alt="Church Logo" />
      <img class="pastor" src="{{ base_url }}/{{ portrait }}" alt="Pastor" />
      <div class="content">
        {{ content|safe }}
      </div>
    </div>
  </body>
</html>
`

var cardTemplate = pongo2.Must(pongo2.FromString(cardSource))

// Document builds the full card document around the caller's markup. The
// markup is inserted verbatim; everything else is escaped.
func Document(baseURL, htmlContent string, width, height int) (string, error) {
	return cardTemplate.Execute(pongo2.Context{
		"width":      width,
		"height":     height,
		"base_url":   strings.TrimRight(baseURL, "/"),
		"background": BackgroundAsset,
		"logo":       LogoAsset,
		"portrait":   PortraitAsset,
		"content":    htmlContent,
	})
}

// AssetURL is the address the card document loads asset from.
func AssetURL(baseURL, asset string) string {
	return strings.TrimRight(baseURL, "/") + "/" + asset
}
