package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/scipunch/bohemka-bot/fetcher/types"
	"github.com/scipunch/bohemka-bot/parser"
)

// ErrFetch wraps every failure to retrieve a page or feed
var ErrFetch = errors.New("fetch failed")

// StatusError is returned for non-success HTTP responses
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrFetch
}

// PageFetcher retrieves a page and returns it ready for selector queries
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// HTTPFetcher fetches pages with a single plain GET request
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewHTTPFetcher creates a fetcher with the given request timeout
func NewHTTPFetcher(timeout time.Duration, userAgent string, logger *slog.Logger) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Fetch retrieves url and parses the body as HTML. There is no retry.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	f.logger.Info("retrieving page", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build request: %w", ErrFetch, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML from %s: %w", ErrFetch, url, err)
	}
	f.logger.Debug("page retrieved", "url", url, "status", resp.StatusCode)

	return doc, nil
}

// PageSource reads articles from a single web page
type PageSource struct {
	url     string
	fetcher PageFetcher
	parser  parser.Parser
}

// NewPageSource creates a source combining fetcher and parser for url
func NewPageSource(url string, f PageFetcher, p parser.Parser) *PageSource {
	return &PageSource{url: url, fetcher: f, parser: p}
}

// Articles fetches the page and parses it into a collection
func (s *PageSource) Articles(ctx context.Context) (*types.Collection, error) {
	doc, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		return nil, err
	}

	articles, err := s.parser.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.url, err)
	}
	return articles, nil
}
