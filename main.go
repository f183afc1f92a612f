package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/scipunch/bohemka-bot/config"
	"github.com/scipunch/bohemka-bot/fetcher"
	"github.com/scipunch/bohemka-bot/filter"
	"github.com/scipunch/bohemka-bot/history"
	"github.com/scipunch/bohemka-bot/pipeline"
	"github.com/scipunch/bohemka-bot/publisher"
	"github.com/scipunch/bohemka-bot/publisher/reddit"
	"github.com/scipunch/bohemka-bot/publisher/telegram"
)

func main() {
	var cfgPath string
	var noop, cleanHistory bool
	flag.StringVar(&cfgPath, "config", "", "path to an optional TOML config")
	flag.BoolVar(&noop, "noop", false, "log what would be posted without posting")
	flag.BoolVar(&cleanHistory, "clean-history", false, "remove all submission history entries")
	flag.Parse()

	conf, err := config.Load(cfgPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	if noop {
		conf.DryRun = true
	}

	debug := os.Getenv("DEBUG") != ""
	level := conf.SlogLevel()
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := conf.Validate(); err != nil {
		fatal("bad configuration", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Submission history is opt-in
	var ledger *history.History
	if conf.HistoryPath != "" {
		ledger, err = history.New(conf.HistoryPath)
		if err != nil {
			fatal("failed to open submission history", err)
		}
		defer ledger.Close()

		if cleanHistory {
			if err := ledger.Clear(); err != nil {
				fatal("failed to clear submission history", err)
			}
			slog.Info("submission history cleared", "path", conf.HistoryPath)
			return
		}

		stats, err := ledger.Stats()
		if err != nil {
			slog.Warn("failed to get history stats", "error", err)
		} else {
			slog.Info("submission history opened",
				"submissions", stats.Submissions,
				"links", stats.Links,
				"last_recorded", stats.LastRecorded)
		}
	} else if cleanHistory {
		slog.Warn("HISTORY_PATH is not set, nothing to clean")
		return
	}

	source, err := fetcher.NewSource(conf, logger)
	if err != nil {
		fatal("failed to initialize article source", err)
	}

	// No request is made until the first submission, so the client is
	// safe to build in dry run mode without credentials
	redditClient, err := reddit.New(conf.Reddit, logger)
	if err != nil {
		fatal("failed to initialize reddit client", err)
	}
	destinations := []publisher.Submitter{redditClient}

	if conf.Telegram.IsValid() {
		tgClient, err := telegram.New(conf.Telegram, debug, logger)
		if err != nil {
			fatal("failed to initialize telegram client", err)
		}
		defer tgClient.Close()
		destinations = append(destinations, tgClient)
		slog.Info("telegram mirror enabled", "channel", conf.Telegram.Channel)
	}

	pub := publisher.New(conf.DryRun, logger, destinations...)
	opts := []pipeline.Option{}
	if rules := filter.NewRules(conf.Filter); !rules.Empty() {
		opts = append(opts, pipeline.WithRules(rules))
	}
	if ledger != nil {
		pub.WithRecorder(ledger)
		opts = append(opts, pipeline.WithLedger(ledger))
	}

	report, err := pipeline.New(source, pub, conf.Filter.Window, logger, opts...).Run(ctx)
	if err != nil {
		fatal("run failed", err, "found", report.Found, "new", report.New, "posted", report.Posted)
	}

	slog.Info("done",
		"found", report.Found,
		"new", report.New,
		"posted", report.Posted,
		"dry_run", conf.DryRun)
}

func fatal(msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err}, args...)...)
	os.Exit(1)
}
