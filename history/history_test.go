package history

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scipunch/bohemka-bot/fetcher/types"
	"github.com/scipunch/bohemka-bot/publisher"
)

func newHistory(t *testing.T) *History {
	t.Helper()
	h, err := New(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

var article = types.Article{
	Title: "Bohemians porazili Slavii",
	Date:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	Link:  "https://www.bohemians.cz/clanky/derby",
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")

	h, err := New(path)
	require.NoError(t, err)
	defer h.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "history database file was not created")
}

func TestRecordAndSeen(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()

	seen, err := h.Seen(ctx, article.Link)
	require.NoError(t, err)
	assert.False(t, seen)

	err = h.Record(ctx, article, publisher.Submission{
		Destination: "r/BohemiansPraha",
		ID:          "1abcde",
		URL:         article.Link,
		Created:     time.Unix(1709287200, 0),
	})
	require.NoError(t, err)

	seen, err = h.Seen(ctx, article.Link)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = h.Seen(ctx, "https://www.bohemians.cz/clanky/jiny")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRecord_AppendsResubmissions(t *testing.T) {
	h := newHistory(t)
	h.now = func() time.Time { return time.Unix(1709290000, 0) }
	ctx := context.Background()

	for range 2 {
		require.NoError(t, h.Record(ctx, article, publisher.Submission{Destination: "r/BohemiansPraha"}))
	}
	require.NoError(t, h.Record(ctx, types.Article{Title: "x", Link: "https://www.bohemians.cz/x"}, publisher.Submission{Destination: "telegram:@bohemka"}))

	stats, err := h.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Submissions)
	assert.Equal(t, 2, stats.Links)
	assert.Equal(t, time.Unix(1709290000, 0), stats.LastRecorded)
}

func TestStats_Empty(t *testing.T) {
	h := newHistory(t)

	stats, err := h.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Submissions)
	assert.Equal(t, 0, stats.Links)
	assert.True(t, stats.LastRecorded.IsZero())
}

func TestClear(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, article, publisher.Submission{Destination: "r/BohemiansPraha"}))
	require.NoError(t, h.Clear())

	seen, err := h.Seen(ctx, article.Link)
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRecord_ReturnsErrorWithoutLogging(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := newHistory(t)
	require.NoError(t, h.Close())

	err := h.Record(context.Background(), article, publisher.Submission{Destination: "r/BohemiansPraha"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), article.Link)
	assert.Empty(t, buf.String())
}
