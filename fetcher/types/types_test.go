package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_LastWriteWins(t *testing.T) {
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)
	second := first.Add(time.Hour)

	c := NewCollection()
	c.Put(Article{Title: "First", Date: first, Link: "https://example.com/a"})
	c.Put(Article{Title: "Other", Date: first, Link: "https://example.com/b"})
	c.Put(Article{Title: "Second", Date: second, Link: "https://example.com/a"})

	require.Equal(t, 2, c.Len())

	got, ok := c.Get("https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, "Second", got.Title)
	assert.Equal(t, second, got.Date)
}

func TestCollection_KeepsDocumentOrder(t *testing.T) {
	c := NewCollection()
	c.Put(Article{Title: "A", Link: "/a"})
	c.Put(Article{Title: "B", Link: "/b"})
	c.Put(Article{Title: "A2", Link: "/a"})
	c.Put(Article{Title: "C", Link: "/c"})

	var titles []string
	for _, a := range c.Articles() {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"A2", "B", "C"}, titles)
}

func TestCollection_ZeroValue(t *testing.T) {
	var c Collection
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Articles())

	c.Put(Article{Title: "A", Link: "/a"})
	assert.Equal(t, 1, c.Len())
}
