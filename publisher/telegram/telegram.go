// Package telegram mirrors new articles into a Telegram channel as a bot.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/scipunch/bohemka-bot/config"
	"github.com/scipunch/bohemka-bot/publisher"
)

// Client posts to a single channel the bot is an administrator of
type Client struct {
	creds  config.TelegramCredentials
	zapLog *zap.Logger
	logger *slog.Logger
}

// New creates a channel client. gotd's own logs are emitted through zap at
// warn level, or debug when debug is true.
func New(creds config.TelegramCredentials, debug bool, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	level := zapcore.WarnLevel
	if debug {
		level = zapcore.DebugLevel
	}
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapLog, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build telegram logger: %w", err)
	}

	return &Client{creds: creds, zapLog: zapLog, logger: logger}, nil
}

// Name returns the destination identifier used in logs
func (c *Client) Name() string {
	return "telegram:" + c.creds.Channel
}

// Submit sends the title and link as one message
func (c *Client) Submit(ctx context.Context, title, url string) (publisher.Submission, error) {
	sub := publisher.Submission{Destination: c.Name()}

	err := c.run(ctx, func(ctx context.Context, client *telegram.Client) error {
		sender := message.NewSender(client.API())
		updates, err := sender.Resolve(c.creds.Channel).Text(ctx, Format(title, url))
		if err != nil {
			return classify(fmt.Errorf("failed to send message to %s: %w", c.creds.Channel, err))
		}

		id, date := sentMessage(updates)
		if id != 0 {
			sub.ID = strconv.Itoa(id)
		}
		if date != 0 {
			sub.Created = time.Unix(int64(date), 0)
		}
		return nil
	})
	if err != nil {
		return sub, err
	}

	sub.URL = url
	return sub, nil
}

// Close flushes the zap logger
func (c *Client) Close() error {
	_ = c.zapLog.Sync()
	return nil
}

// run connects, authenticates as the bot and calls fn
func (c *Client) run(ctx context.Context, fn func(ctx context.Context, client *telegram.Client) error) error {
	waiter := floodwait.NewWaiter().WithCallback(func(ctx context.Context, wait floodwait.FloodWait) {
		c.logger.Warn("telegram rate limit", "retry_after", wait.Duration)
	})

	opts := telegram.Options{
		Logger:      c.zapLog,
		Middlewares: []telegram.Middleware{waiter},
	}
	if c.creds.SessionPath != "" {
		opts.SessionStorage = &session.FileStorage{Path: c.creds.SessionPath}
	}
	client := telegram.NewClient(c.creds.AppID, c.creds.AppHash, opts)

	return waiter.Run(ctx, func(ctx context.Context) error {
		return client.Run(ctx, func(ctx context.Context) error {
			status, err := client.Auth().Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get auth status: %w", err)
			}
			if !status.Authorized {
				if _, err := client.Auth().Bot(ctx, c.creds.BotToken); err != nil {
					return fmt.Errorf("%w: telegram bot login: %w", publisher.ErrAuth, err)
				}
			}
			return fn(ctx, client)
		})
	})
}

// classify marks errors returned by the Telegram API as rejections.
// Connection errors are returned as they are.
func classify(err error) error {
	if _, ok := tgerr.As(err); ok {
		return fmt.Errorf("%w: %w", publisher.ErrRejected, err)
	}
	return err
}

// Format renders the channel message for an article
func Format(title, url string) string {
	return title + "\n" + url
}

// sentMessage extracts the message id and unix date from a send result
func sentMessage(updates tg.UpdatesClass) (id int, date int) {
	switch u := updates.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID, u.Date
	case *tg.Updates:
		for _, upd := range u.Updates {
			switch m := upd.(type) {
			case *tg.UpdateNewChannelMessage:
				if msg, ok := m.Message.(*tg.Message); ok {
					return msg.ID, msg.Date
				}
			case *tg.UpdateNewMessage:
				if msg, ok := m.Message.(*tg.Message); ok {
					return msg.ID, msg.Date
				}
			}
		}
	}
	return 0, 0
}
