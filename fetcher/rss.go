package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/scipunch/bohemka-bot/fetcher/types"
	"github.com/scipunch/bohemka-bot/parser"
)

// RSSSource reads articles from a feed instead of the HTML page
type RSSSource struct {
	feedURL string
	baseURL string
	parser  *gofeed.Parser
	logger  *slog.Logger
}

// NewRSSSource creates a feed source. Relative item links are resolved
// against baseURL.
func NewRSSSource(feedURL, baseURL string, timeout time.Duration, userAgent string, logger *slog.Logger) *RSSSource {
	if logger == nil {
		logger = slog.Default()
	}
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	p.UserAgent = userAgent
	return &RSSSource{
		feedURL: feedURL,
		baseURL: baseURL,
		parser:  p,
		logger:  logger,
	}
}

// Articles retrieves and parses the feed
func (s *RSSSource) Articles(ctx context.Context) (*types.Collection, error) {
	s.logger.Info("retrieving feed", "url", s.feedURL)

	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse RSS feed: %w", ErrFetch, err)
	}

	articles := types.NewCollection()
	for i, item := range feed.Items {
		article := types.Article{
			Title: strings.TrimSpace(item.Title),
		}

		// Parse published date if available
		switch {
		case item.PublishedParsed != nil:
			article.Date = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			article.Date = *item.UpdatedParsed
		default:
			return nil, &parser.StructureError{Index: i, Field: "date"}
		}

		if item.Link == "" {
			return nil, &parser.StructureError{Index: i, Field: "link"}
		}
		article.Link = parser.JoinLink(s.baseURL, item.Link)

		s.logger.Info("found article", "title", article.Title, "date", article.Date, "link", article.Link)
		articles.Put(article)
	}

	return articles, nil
}
