package filter

import (
	"log/slog"
	"time"

	"github.com/scipunch/bohemka-bot/fetcher/types"
)

// Recent returns the articles published strictly after now-window, in the
// order given. An article dated exactly at the cutoff is not recent.
//
// Recency is the only notion of "new": the same article is selected again by
// every run that happens within window of its publication.
func Recent(articles []types.Article, now time.Time, window time.Duration, logger *slog.Logger) []types.Article {
	if logger == nil {
		logger = slog.Default()
	}

	cutoff := now.Add(-window)
	logger.Info("looking for articles published after cutoff", "cutoff", cutoff, "window", window)

	var recent []types.Article
	for _, a := range articles {
		if a.Date.After(cutoff) {
			logger.Info("new article", "title", a.Title)
			recent = append(recent, a)
		}
	}
	return recent
}
