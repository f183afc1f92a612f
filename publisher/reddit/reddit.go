// Package reddit posts links to a subreddit through the Reddit API.
package reddit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"
	"golang.org/x/oauth2"

	"github.com/scipunch/bohemka-bot/config"
	"github.com/scipunch/bohemka-bot/publisher"
)

// Client submits link posts to a single subreddit
type Client struct {
	client    *reddit.Client
	subreddit string
	logger    *slog.Logger
}

// New creates a client authenticating as a script app with the account's
// username and password. Credentials are checked on the first request.
func New(creds config.RedditCredentials, logger *slog.Logger, opts ...reddit.Opt) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts = append([]reddit.Opt{reddit.WithUserAgent(creds.UserAgent)}, opts...)
	client, err := reddit.NewClient(reddit.Credentials{
		ID:       creds.ClientID,
		Secret:   creds.ClientSecret,
		Username: creds.Username,
		Password: creds.Password,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create reddit client: %w", err)
	}

	return &Client{
		client:    client,
		subreddit: strings.TrimPrefix(creds.Subreddit, "r/"),
		logger:    logger,
	}, nil
}

// Name returns the destination identifier used in logs
func (c *Client) Name() string {
	return "r/" + c.subreddit
}

// Submit posts a link. Reposting a link the subreddit already has is refused.
func (c *Client) Submit(ctx context.Context, title, url string) (publisher.Submission, error) {
	sub := publisher.Submission{Destination: c.Name()}

	submitted, _, err := c.client.Post.SubmitLink(ctx, reddit.SubmitLinkRequest{
		Subreddit: c.subreddit,
		Title:     title,
		URL:       url,
		Resubmit:  false,
	})
	if err != nil {
		return sub, classify(err)
	}
	sub.ID = submitted.ID
	sub.URL = submitted.URL

	// The submit response has no timestamp, read the post back for it
	post, _, err := c.client.Post.Get(ctx, submitted.ID)
	if err != nil {
		c.logger.Warn("failed to read back submission", "id", submitted.ID, "error", err)
		return sub, nil
	}
	if post.Post != nil && post.Post.Created != nil {
		sub.Created = post.Post.Created.Time
	}

	return sub, nil
}

// classify maps API failures onto publisher error kinds. Transport errors
// are returned as they are.
func classify(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %w", publisher.ErrAuth, err)
	}

	// Validation failures such as ALREADY_SUB arrive as JSON errors
	var jsonErr *reddit.JSONErrorResponse
	if errors.As(err, &jsonErr) {
		return fmt.Errorf("%w: %w", publisher.ErrRejected, err)
	}

	var respErr *reddit.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", publisher.ErrAuth, err)
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return fmt.Errorf("%w: %w", publisher.ErrRejected, err)
		}
	}

	return err
}
