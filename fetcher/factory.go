package fetcher

import (
	"fmt"
	"log/slog"

	"github.com/scipunch/bohemka-bot/config"
	"github.com/scipunch/bohemka-bot/fetcher/types"
	"github.com/scipunch/bohemka-bot/parser/web"
)

// NewSource creates the article source described by the configuration
func NewSource(conf config.Config, logger *slog.Logger) (types.ArticleSource, error) {
	src := conf.Source

	switch src.T {
	case config.Web:
		loc, err := src.Location()
		if err != nil {
			return nil, fmt.Errorf("failed to load source timezone: %w", err)
		}

		var f PageFetcher
		switch src.Fetch {
		case config.HTTP:
			f = NewHTTPFetcher(src.Timeout, conf.Reddit.UserAgent, logger)
		case config.Browser:
			f = NewBrowserFetcher(src.Timeout, logger)
		default:
			return nil, fmt.Errorf("unknown fetch mode: %s", src.Fetch)
		}

		return NewPageSource(src.URL, f, web.New(src.URL, src.Layout, loc, logger)), nil
	case config.RSS:
		return NewRSSSource(src.FeedURL, src.URL, src.Timeout, conf.Reddit.UserAgent, logger), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", src.T)
	}
}
