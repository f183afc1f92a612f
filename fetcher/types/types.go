package types

import (
	"context"
	"time"
)

// Article is a single news item found on the club page
type Article struct {
	Title string
	Date  time.Time
	Link  string // Absolute URL, unique key within a Collection
}

// Collection maps article links to articles, keeping document order
type Collection struct {
	order  []string
	byLink map[string]Article
}

// NewCollection creates an empty collection
func NewCollection() *Collection {
	return &Collection{byLink: make(map[string]Article)}
}

// Put stores the article under its link. A repeated link replaces the
// earlier record but keeps the position of its first occurrence.
func (c *Collection) Put(a Article) {
	if c.byLink == nil {
		c.byLink = make(map[string]Article)
	}
	if _, exists := c.byLink[a.Link]; !exists {
		c.order = append(c.order, a.Link)
	}
	c.byLink[a.Link] = a
}

// Get returns the article stored under link
func (c *Collection) Get(link string) (Article, bool) {
	a, ok := c.byLink[link]
	return a, ok
}

// Len returns the number of unique links
func (c *Collection) Len() int {
	return len(c.order)
}

// Articles returns all articles in document order
func (c *Collection) Articles() []Article {
	articles := make([]Article, 0, len(c.order))
	for _, link := range c.order {
		articles = append(articles, c.byLink[link])
	}
	return articles
}

// ArticleSource produces the article collection for a single run
type ArticleSource interface {
	Articles(ctx context.Context) (*Collection, error)
}
