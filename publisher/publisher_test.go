package publisher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scipunch/bohemka-bot/fetcher/types"
)

type call struct {
	title string
	url   string
}

type fakeSubmitter struct {
	name   string
	calls  []call
	failOn int // 1-based call number that fails, 0 never
	err    error
}

func (f *fakeSubmitter) Name() string { return f.name }

func (f *fakeSubmitter) Submit(_ context.Context, title, url string) (Submission, error) {
	f.calls = append(f.calls, call{title, url})
	if f.failOn == len(f.calls) {
		return Submission{}, f.err
	}
	return Submission{
		Destination: f.name,
		ID:          "id" + title,
		URL:         url,
		Created:     time.Unix(1700000000, 0),
	}, nil
}

type fakeRecorder struct {
	links []string
	err   error
}

func (r *fakeRecorder) Record(_ context.Context, a types.Article, _ Submission) error {
	r.links = append(r.links, a.Link)
	return r.err
}

func articles(n int) []types.Article {
	var out []types.Article
	for i := range n {
		c := string(rune('a' + i))
		out = append(out, types.Article{Title: c, Link: "https://www.bohemians.cz/" + c})
	}
	return out
}

func bufLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

func TestPublish_SubmitsInOrder(t *testing.T) {
	sub := &fakeSubmitter{name: "reddit"}
	logger, buf := bufLogger()

	posted, err := New(false, logger, sub).Publish(context.Background(), articles(3))
	require.NoError(t, err)
	assert.Equal(t, 3, posted)
	assert.Equal(t, []call{
		{"a", "https://www.bohemians.cz/a"},
		{"b", "https://www.bohemians.cz/b"},
		{"c", "https://www.bohemians.cz/c"},
	}, sub.calls)
	assert.Equal(t, 3, strings.Count(buf.String(), "submission created"))
}

func TestPublish_DryRunNeverSubmits(t *testing.T) {
	sub := &fakeSubmitter{name: "reddit"}
	rec := &fakeRecorder{}
	logger, buf := bufLogger()

	posted, err := New(true, logger, sub).WithRecorder(rec).Publish(context.Background(), articles(2))
	require.NoError(t, err)

	assert.Equal(t, 2, posted)
	assert.Empty(t, sub.calls)
	assert.Empty(t, rec.links)
	assert.Equal(t, 2, strings.Count(buf.String(), "would post"))
	assert.Contains(t, buf.String(), "url=https://www.bohemians.cz/a")
	assert.Contains(t, buf.String(), "url=https://www.bohemians.cz/b")
}

func TestPublish_StopsAtFirstFailure(t *testing.T) {
	sub := &fakeSubmitter{name: "reddit", failOn: 3, err: ErrRejected}
	logger, _ := bufLogger()

	posted, err := New(false, logger, sub).Publish(context.Background(), articles(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 2, posted)
	assert.Len(t, sub.calls, 3)
}

func TestPublish_AllDestinations(t *testing.T) {
	reddit := &fakeSubmitter{name: "reddit"}
	telegram := &fakeSubmitter{name: "telegram", failOn: 2, err: errors.New("boom")}
	logger, _ := bufLogger()

	posted, err := New(false, logger, reddit, telegram).Publish(context.Background(), articles(3))
	require.Error(t, err)

	// a -> reddit, telegram; b -> reddit, telegram fails
	assert.Equal(t, 3, posted)
	assert.Len(t, reddit.calls, 2)
	assert.Len(t, telegram.calls, 2)
}

func TestPublish_RecordsSubmissions(t *testing.T) {
	sub := &fakeSubmitter{name: "reddit"}
	rec := &fakeRecorder{err: errors.New("disk full")}
	logger, buf := bufLogger()

	posted, err := New(false, logger, sub).WithRecorder(rec).Publish(context.Background(), articles(2))
	require.NoError(t, err, "recorder failures are not fatal")
	assert.Equal(t, 2, posted)
	assert.Equal(t, []string{"https://www.bohemians.cz/a", "https://www.bohemians.cz/b"}, rec.links)
	assert.Contains(t, buf.String(), "failed to record submission")
}

func TestPublish_CancelledContext(t *testing.T) {
	sub := &fakeSubmitter{name: "reddit"}
	logger, _ := bufLogger()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	posted, err := New(false, logger, sub).Publish(ctx, articles(2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, posted)
	assert.Empty(t, sub.calls)
}

func TestPublish_NothingToPost(t *testing.T) {
	sub := &fakeSubmitter{name: "reddit"}
	posted, err := New(false, nil, sub).Publish(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, posted)
}
