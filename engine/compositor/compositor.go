// Package compositor renders social media cards to PNG by laying out a
// styled HTML document in a disposable headless Chromium session.
//
// Every call launches its own browser, loads the card into a viewport of
// exactly the requested size, waits a bounded time for the card's images,
// captures a clipped screenshot and closes the browser again.
package compositor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/disintegration/imaging"
	"golang.org/x/time/rate"

	"github.com/drummonds/sermonkit/engine/renderer"
)

// Logger is replaced by the application logger at startup
var Logger = slog.Default()

const (
	DefaultImageWait = 5 * time.Second
	DefaultTimeout   = 30 * time.Second

	imagesSettled = `Array.from(document.images).every(img => img.complete)`
)

// Compositor renders cards. Fields are read-only once rendering starts, so a
// single Compositor may serve concurrent requests.
type Compositor struct {
	BrowserPath  string
	Headless     bool
	Args         []string
	AssetBaseURL string

	// Timeout bounds a whole session, launch to screenshot.
	Timeout time.Duration
	// ImageWait bounds how long the card's images may take to resolve.
	ImageWait time.Duration

	// Limiter throttles browser launches when set.
	Limiter *rate.Limiter
}

// New returns a headless Compositor fetching assets from assetBaseURL.
func New(assetBaseURL string) *Compositor {
	return &Compositor{
		Headless:     true,
		Args:         []string{"--no-sandbox", "--disable-setuid-sandbox", "--disable-dev-shm-usage"},
		AssetBaseURL: assetBaseURL,
		Timeout:      DefaultTimeout,
		ImageWait:    DefaultImageWait,
	}
}

// Render lays out htmlContent on a width × height card and returns it as PNG.
func (c *Compositor) Render(ctx context.Context, htmlContent string, width, height int) ([]byte, error) {
	const op = "compositor"
	if width <= 0 || height <= 0 {
		return nil, renderer.Validation(op, "width and height must be positive")
	}

	document, err := Document(c.AssetBaseURL, htmlContent, width, height)
	if err != nil {
		return nil, renderer.NewError(renderer.KindRender, op, "card template failed", err)
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, renderer.NewError(renderer.KindResource, op, "no render session available", err)
		}
	}

	var shot []byte
	err = c.withSession(ctx, func(ctx context.Context) error {
		if err := chromedp.Run(ctx,
			chromedp.EmulateViewport(int64(width), int64(height)),
			chromedp.Navigate("about:blank"),
			setContent(document),
		); err != nil {
			return renderer.NewError(renderer.KindRender, op, "loading card failed", err)
		}

		var settled bool
		if err := chromedp.Run(ctx, chromedp.Poll(imagesSettled, &settled, chromedp.WithPollingTimeout(c.imageWait()))); err != nil {
			if errors.Is(err, chromedp.ErrPollingTimeout) {
				return renderer.NewError(renderer.KindTimeout, op, "card images did not load", err)
			}
			return renderer.NewError(renderer.KindRender, op, "waiting for card images failed", err)
		}

		return chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			shot, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{X: 0, Y: 0, Width: float64(width), Height: float64(height), Scale: 1}).
				Do(ctx)
			if err != nil {
				return renderer.NewError(renderer.KindRender, op, "screenshot failed", err)
			}
			return nil
		}))
	})
	if err != nil {
		return nil, err
	}

	return exactSize(shot, width, height)
}

// withSession launches a browser for the duration of fn and always tears it
// down afterwards. Cancelling ctx kills the browser.
func (c *Compositor) withSession(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	started := time.Now()
	if err := chromedp.Run(browserCtx); err != nil {
		return renderer.NewError(renderer.KindRender, "session", "browser failed to start", err)
	}
	defer func() {
		if err := chromedp.Cancel(browserCtx); err != nil && ctx.Err() == nil {
			Logger.Warn("Render session did not close cleanly", "error", err)
		}
		Logger.Debug("Render session closed", "duration", time.Since(started))
	}()

	return fn(browserCtx)
}

func (c *Compositor) allocatorOptions() []chromedp.ExecAllocatorOption {
	options := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if c.BrowserPath != "" {
		options = append(options, chromedp.ExecPath(c.BrowserPath))
	}
	options = append(options, chromedp.Flag("headless", c.Headless))
	options = append(options, chromedp.Flag("hide-scrollbars", true))
	return append(options, allocatorOptionsFromArgs(c.Args)...)
}

func (c *Compositor) imageWait() time.Duration {
	if c.ImageWait <= 0 {
		return DefaultImageWait
	}
	return c.ImageWait
}

func setContent(document string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
	})
}

// exactSize guarantees the PNG is width × height pixels. Chromium captures at
// the device scale factor, which is not always 1.
func exactSize(shot []byte, width, height int) ([]byte, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(shot))
	if err != nil {
		return nil, renderer.NewError(renderer.KindRender, "compositor", "screenshot is not a PNG", err)
	}
	if cfg.Width == width && cfg.Height == height {
		return shot, nil
	}

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, renderer.NewError(renderer.KindRender, "compositor", "decoding screenshot failed", err)
	}
	Logger.Debug("Resampling screenshot", "captured", image.Pt(cfg.Width, cfg.Height), "wanted", image.Pt(width, height))
	resized := imaging.Resize(img, width, height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, renderer.NewError(renderer.KindRender, "compositor", "encoding PNG failed", err)
	}
	return buf.Bytes(), nil
}

func allocatorOptionsFromArgs(args []string) []chromedp.ExecAllocatorOption {
	options := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimPrefix(strings.TrimSpace(arg), "--")
		if arg == "" {
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			options = append(options, chromedp.Flag(name, value))
			continue
		}
		options = append(options, chromedp.Flag(arg, true))
	}
	return options
}
