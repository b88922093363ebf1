package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"property-scraper/utils"
)

// BrowserFetcher renders pages in a shared headless Chrome, one tab per request.
type BrowserFetcher struct {
	logger    *utils.Logger
	settle    time.Duration
	chromeBin string

	once        sync.Once
	initErr     error
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	browserCtx  context.Context
	cancelTab   context.CancelFunc
}

// NewBrowserFetcher returns a fetcher that starts Chrome lazily on first use.
// settle is how long to wait after navigation before reading the DOM.
func NewBrowserFetcher(chromeBin string, settle time.Duration, logger *utils.Logger) *BrowserFetcher {
	return &BrowserFetcher{logger: logger, settle: settle, chromeBin: chromeBin}
}

func (f *BrowserFetcher) start() error {
	f.once.Do(func() {
		bin := f.chromeBin
		if bin == "" {
			bin = FindChromeBinary()
		}
		if bin == "" {
			f.initErr = errors.New("browser: no Chrome/Chromium binary found")
			return
		}
		f.logger.Info("[fetch] Using browser binary: %s", bin)

		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.ExecPath(bin),
		)

		f.allocCtx, f.cancelAlloc = chromedp.NewExecAllocator(context.Background(), opts...)
		// Suppress chromedp log noise
		f.browserCtx, f.cancelTab = chromedp.NewContext(f.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
		if err := chromedp.Run(f.browserCtx); err != nil {
			f.initErr = fmt.Errorf("browser: start: %w", err)
		}
	})
	return f.initErr
}

// Fetch navigates a fresh tab to url and returns the rendered outer HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string, headers Headers) ([]byte, error) {
	if err := f.start(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(f.browserCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	extra := network.Headers{}
	var userAgent, acceptLanguage string
	for k, v := range headers {
		switch k {
		case "User-Agent":
			userAgent = v
		case "Accept-Language":
			acceptLanguage = v
		default:
			extra[k] = v
		}
	}

	var html string
	actions := []chromedp.Action{network.Enable()}
	if len(extra) > 0 {
		actions = append(actions, network.SetExtraHTTPHeaders(extra))
	}
	if userAgent != "" {
		actions = append(actions, emulation.SetUserAgentOverride(userAgent).WithAcceptLanguage(acceptLanguage))
	}
	actions = append(actions,
		chromedp.Navigate(url),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("browser: render %s: %w", url, err)
	}
	if html == "" {
		return nil, fmt.Errorf("browser: empty document for %s", url)
	}
	return []byte(html), nil
}

// Close shuts the browser down.
func (f *BrowserFetcher) Close() error {
	if f.cancelTab != nil {
		f.cancelTab()
	}
	if f.cancelAlloc != nil {
		f.cancelAlloc()
	}
	return nil
}

// Type returns the fetcher type.
func (f *BrowserFetcher) Type() string {
	return "browser"
}

// FindChromeBinary locates a Chrome/Chromium binary.
func FindChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
