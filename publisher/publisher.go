// Package publisher submits new articles as link posts to external destinations.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/scipunch/bohemka-bot/fetcher/types"
)

var (
	// ErrAuth means the destination rejected the configured credentials
	ErrAuth = errors.New("authentication failed")
	// ErrRejected means the destination refused the post, e.g. as a repeated link
	ErrRejected = errors.New("submission rejected")
)

// Submission is what a destination reports back for a created post
type Submission struct {
	Destination string
	ID          string
	URL         string
	Created     time.Time // Server-assigned creation time, zero when unknown
}

// Submitter posts a titled link to one destination
type Submitter interface {
	Name() string
	Submit(ctx context.Context, title, url string) (Submission, error)
}

// Recorder receives every successful submission
type Recorder interface {
	Record(ctx context.Context, article types.Article, sub Submission) error
}

// Publisher posts articles to every destination in order and stops at the
// first failure. Posts made before a failure are not rolled back.
type Publisher struct {
	destinations []Submitter
	dryRun       bool
	recorder     Recorder
	logger       *slog.Logger
}

// New creates a publisher. In dry run mode destinations are never called.
func New(dryRun bool, logger *slog.Logger, destinations ...Submitter) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		destinations: destinations,
		dryRun:       dryRun,
		logger:       logger,
	}
}

// WithRecorder sets the recorder notified after each successful post
func (p *Publisher) WithRecorder(r Recorder) *Publisher {
	p.recorder = r
	return p
}

// Publish submits every article and returns how many posts were made
// (or would have been made, in dry run mode)
func (p *Publisher) Publish(ctx context.Context, articles []types.Article) (int, error) {
	posted := 0

	for _, article := range articles {
		for _, dest := range p.destinations {
			p.logger.Info("posting article", "title", article.Title, "destination", dest.Name())

			if p.dryRun {
				p.logger.Info("noop is set, would post", "title", article.Title, "url", article.Link, "destination", dest.Name())
				posted++
				continue
			}

			if err := ctx.Err(); err != nil {
				return posted, err
			}

			sub, err := dest.Submit(ctx, article.Title, article.Link)
			if err != nil {
				return posted, fmt.Errorf("failed to post %q to %s: %w", article.Title, dest.Name(), err)
			}
			posted++
			p.logger.Info("submission created", "destination", dest.Name(), "id", sub.ID, "created", sub.Created)

			if p.recorder != nil {
				if err := p.recorder.Record(ctx, article, sub); err != nil {
					p.logger.Warn("failed to record submission", "url", article.Link, "error", err)
				}
			}
		}
	}

	return posted, nil
}
