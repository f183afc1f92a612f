// Package pipeline runs one fetch, parse, filter and publish pass.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scipunch/bohemka-bot/fetcher/types"
	"github.com/scipunch/bohemka-bot/filter"
	"github.com/scipunch/bohemka-bot/publisher"
)

// Ledger answers whether a link was submitted by an earlier run
type Ledger interface {
	Seen(ctx context.Context, link string) (bool, error)
}

// Report summarizes a run
type Report struct {
	Found  int // Unique articles on the page
	New    int // Articles inside the recency window that passed the rules
	Posted int // Posts made, or simulated in dry run mode
}

type Pipeline struct {
	source    types.ArticleSource
	publisher *publisher.Publisher
	window    time.Duration
	rules     *filter.Rules
	ledger    Ledger
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Pipeline)

// WithRules filters new articles by title rules
func WithRules(r *filter.Rules) Option {
	return func(p *Pipeline) { p.rules = r }
}

// WithLedger enables re-submission warnings
func WithLedger(l Ledger) Option {
	return func(p *Pipeline) { p.ledger = l }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func New(source types.ArticleSource, pub *publisher.Publisher, window time.Duration, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		source:    source,
		publisher: pub,
		window:    window,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs a single pass. The first error stops it; posts already made
// stay made.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	var report Report

	articles, err := p.source.Articles(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to collect articles: %w", err)
	}
	report.Found = articles.Len()

	recent := filter.Recent(articles.Articles(), p.now(), p.window, p.logger)
	if p.rules != nil {
		recent = p.rules.Apply(recent, p.logger)
	}
	report.New = len(recent)
	p.logger.Debug("new articles", "count", len(recent), "articles", recent)

	p.warnResubmissions(ctx, recent)

	report.Posted, err = p.publisher.Publish(ctx, recent)
	if err != nil {
		return report, err
	}
	return report, nil
}

// warnResubmissions flags articles an earlier run already posted. They are
// posted again regardless.
func (p *Pipeline) warnResubmissions(ctx context.Context, articles []types.Article) {
	if p.ledger == nil {
		return
	}
	for _, a := range articles {
		seen, err := p.ledger.Seen(ctx, a.Link)
		if err != nil {
			p.logger.Warn("failed to check submission history", "url", a.Link, "error", err)
			continue
		}
		if seen {
			p.logger.Warn("re-submitting previously posted article", "title", a.Title, "url", a.Link)
		}
	}
}
