package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/hltvstats/internal/logger"
	"github.com/jmylchreest/hltvstats/pkg/fetcher"
)

// Window size used when the request does not specify a viewport.
const (
	defaultWidth  = 1366
	defaultHeight = 768
)

// DynamicFetcher renders pages in headless Chrome via chromedp.
type DynamicFetcher struct {
	config    Config
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewDynamicFetcher creates a fetcher backed by a browser allocator.
// Chrome is started lazily on the first Fetch.
func NewDynamicFetcher(cfg Config) (*DynamicFetcher, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	var opts []chromedp.ExecAllocatorOption
	if cfg.Stealth {
		opts = append(chromedp.DefaultExecAllocatorOptions[:], StealthExecAllocatorOptions(defaultWidth, defaultHeight)...)
	} else {
		opts = append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(defaultWidth, defaultHeight),
		)
	}

	chromePath := cfg.ChromePath
	if chromePath == "" {
		chromePath = FindChromePath()
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	opts = append(opts, chromedp.UserAgent(cfg.UserAgent))

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	logger.Debug("dynamic fetcher created",
		"stealth", cfg.Stealth,
		"chrome", chromePath,
		"timeout", cfg.Timeout)

	return &DynamicFetcher{
		config:    cfg,
		allocCtx:  allocCtx,
		cancelCtx: cancelAlloc,
	}, nil
}

// Fetch renders targetURL and returns the outer HTML once the wait
// selector is ready and the settle delay has passed.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string, opts fetcher.Options) (fetcher.Content, error) {
	result := fetcher.Content{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	logger.Debug("chromedp starting browser context", "url", targetURL)

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	// Tie the browser tab to the caller's context so SIGINT aborts the render.
	stop := context.AfterFunc(ctx, cancelBrowser)
	defer stop()

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = f.config.Timeout
	}
	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	var html, title, finalURL string
	actions := f.setupActions(opts)
	actions = append(actions, chromedp.Navigate(targetURL))

	waitFor := opts.WaitForSelector
	if waitFor == "" {
		waitFor = "body"
	}
	actions = append(actions, chromedp.WaitReady(waitFor))

	if opts.WaitDuration > 0 {
		actions = append(actions, chromedp.Sleep(opts.WaitDuration))
	}

	actions = append(actions,
		chromedp.OuterHTML("html", &html),
		chromedp.Title(&title),
		chromedp.Location(&finalURL),
	)

	logger.Debug("chromedp executing actions",
		"url", targetURL,
		"action_count", len(actions),
		"wait_for", waitFor,
		"timeout", timeout)

	if err := chromedp.Run(timeoutCtx, actions...); err != nil {
		if logger.Enabled(slog.LevelDebug) {
			saveDebugScreenshot(browserCtx)
		}
		if ctx.Err() != nil {
			return result, fmt.Errorf("%w: %w", fetcher.ErrNavigation, ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) || timeoutCtx.Err() != nil {
			logger.Warn("page did not settle before the deadline - possible anti-bot protection",
				"url", targetURL, "wait_for", waitFor, "timeout", timeout)
			return result, fmt.Errorf("%w: %v", fetcher.ErrChallengeTimeout, err)
		}
		return result, fmt.Errorf("%w: browser automation failed: %v", fetcher.ErrNavigation, err)
	}

	result.HTML = html
	result.Title = title
	result.FinalURL = finalURL
	result.StatusCode = 200 // chromedp doesn't easily expose status codes

	if challenge := fetcher.DetectChallenge(title, html); challenge != "" {
		logger.Warn("challenge page detected", "url", targetURL, "type", challenge)
		return result, fmt.Errorf("%w: %s", fetcher.ErrAntiBot, challenge)
	}

	logger.Debug("dynamic fetch complete",
		"url", targetURL,
		"final_url", finalURL,
		"title", title,
		"html_size", len(html))

	return result, nil
}

// setupActions emulates the requested browser environment. They run
// before navigation.
func (f *DynamicFetcher) setupActions(opts fetcher.Options) []chromedp.Action {
	actions := []chromedp.Action{network.Enable()}

	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		actions = append(actions, network.SetExtraHTTPHeaders(headers))
	}

	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		actions = append(actions, chromedp.EmulateViewport(opts.Viewport.Width, opts.Viewport.Height))
	}
	if opts.Timezone != "" {
		actions = append(actions, emulation.SetTimezoneOverride(opts.Timezone))
	}
	if opts.Locale != "" {
		actions = append(actions, emulation.SetLocaleOverride().WithLocale(opts.Locale))
	}
	if opts.UserAgent != "" && opts.UserAgent != f.config.UserAgent {
		actions = append(actions, emulation.SetUserAgentOverride(opts.UserAgent).
			WithAcceptLanguage(opts.Headers["Accept-Language"]))
	}

	if f.config.Stealth {
		actions = append(actions, InjectStealthScript(opts.Locale))
	}
	return actions
}

// saveDebugScreenshot writes the current tab to a temp file.
func saveDebugScreenshot(ctx context.Context) {
	screenshot := CaptureScreenshotOnError(ctx)
	if screenshot == nil {
		return
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("hltvstats-debug-%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, screenshot, 0o644); err == nil {
		logger.Debug("debug screenshot saved", "path", path)
	}
}

// Close releases browser resources.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
