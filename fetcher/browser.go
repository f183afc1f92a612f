package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
)

// BrowserFetcher renders pages in headless Chromium, for layouts that are
// filled in by JavaScript
type BrowserFetcher struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewBrowserFetcher creates a fetcher that waits at most timeout for navigation
func NewBrowserFetcher(timeout time.Duration, logger *slog.Logger) *BrowserFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserFetcher{timeout: timeout, logger: logger}
}

// Fetch navigates to url and parses the rendered DOM
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	f.logger.Info("retrieving page in browser", "url", url)

	// Install playwright if needed
	err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
	if err != nil {
		return nil, fmt.Errorf("could not install playwright: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch()
	if err != nil {
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	defer page.Close()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(float64(f.timeout.Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if resp != nil && !resp.Ok() {
		return nil, &StatusError{URL: url, Code: resp.Status()}
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("%w: could not read rendered page: %w", ErrFetch, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML from %s: %w", ErrFetch, url, err)
	}
	return doc, nil
}
