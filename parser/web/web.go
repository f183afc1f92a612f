// Package web extracts articles from a club news page using CSS selectors.
package web

import (
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/scipunch/bohemka-bot/config"
	"github.com/scipunch/bohemka-bot/fetcher/types"
	"github.com/scipunch/bohemka-bot/parser"
)

type Parser struct {
	baseURL string
	layout  config.Layout
	loc     *time.Location
	logger  *slog.Logger
}

// New creates a parser for pages following layout. Empty layout fields
// fall back to the default club page layout and a nil loc means local time.
func New(baseURL string, layout config.Layout, loc *time.Location, logger *slog.Logger) Parser {
	def := config.Default().Source.Layout
	if layout.Article == "" {
		layout.Article = def.Article
	}
	if layout.Title == "" {
		layout.Title = def.Title
	}
	if layout.Time == "" {
		layout.Time = def.Time
	}
	if layout.TimeAttr == "" {
		layout.TimeAttr = def.TimeAttr
	}
	if layout.TimeFormat == "" {
		layout.TimeFormat = def.TimeFormat
	}
	if layout.LinkAttr == "" {
		layout.LinkAttr = def.LinkAttr
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return Parser{baseURL: baseURL, layout: layout, loc: loc, logger: logger}
}

// Parse extracts one article per node matching the layout's article selector.
// The first malformed entry fails the whole page.
func (p Parser) Parse(doc *goquery.Document) (*types.Collection, error) {
	articles := types.NewCollection()
	p.logger.Info("looking for new articles", "selector", p.layout.Article)

	var parseErr error
	doc.Find(p.layout.Article).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		article, err := p.parseEntry(i, sel)
		if err != nil {
			parseErr = err
			return false
		}

		p.logger.Info("found article", "title", article.Title, "date", article.Date, "link", article.Link)
		articles.Put(article)
		p.logger.Debug("article stored", "index", i, "unique", articles.Len())
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	if articles.Len() == 0 {
		p.logger.Warn("no articles matched the page layout", "selector", p.layout.Article)
	}
	return articles, nil
}

func (p Parser) parseEntry(i int, sel *goquery.Selection) (types.Article, error) {
	var article types.Article

	heading := sel.Find(p.layout.Title).First()
	if heading.Length() == 0 {
		return article, &parser.StructureError{Index: i, Field: "title"}
	}
	article.Title = strings.TrimSpace(heading.Text())

	raw, ok := sel.Find(p.layout.Time).First().Attr(p.layout.TimeAttr)
	if !ok {
		return article, &parser.StructureError{Index: i, Field: "date"}
	}
	date, err := time.ParseInLocation(p.layout.TimeFormat, strings.TrimSpace(raw), p.loc)
	if err != nil {
		return article, &parser.StructureError{Index: i, Field: "date", Err: err}
	}
	article.Date = date

	href, ok := sel.Parent().Attr(p.layout.LinkAttr)
	if !ok {
		return article, &parser.StructureError{Index: i, Field: "link"}
	}
	article.Link = parser.JoinLink(p.baseURL, href)

	return article, nil
}
