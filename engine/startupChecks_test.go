package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drummonds/sermonkit/config"
)

func TestPublicDirectoryChecks(t *testing.T) {
	t.Run("Creates a missing directory", func(t *testing.T) {
		publicPath := filepath.Join(t.TempDir(), "public")
		require.NoError(t, publicDirectoryChecks(config.ServerConfig{PublicPath: publicPath}))
		info, err := os.Stat(publicPath)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("Rejects a file", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), "public")
		require.NoError(t, os.WriteFile(filePath, []byte("x"), 0644))
		assert.Error(t, publicDirectoryChecks(config.ServerConfig{PublicPath: filePath}))
	})
}

func TestStartupChecks(t *testing.T) {
	handler := &ServerHandler{ServerConfig: config.ServerConfig{
		PublicPath:   t.TempDir(),
		AssetBaseURL: "not a url",
		RenderConfig: config.RenderConfig{
			ChromePath:    "/nonexistent/chrome",
			PDFFontPath:   "/nonexistent/font.ttf",
			PreviewEngine: "ghostscript",
		},
	}}
	// everything but the public directory only warns
	assert.NoError(t, handler.StartupChecks())
}
