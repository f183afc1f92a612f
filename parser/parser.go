package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/scipunch/bohemka-bot/fetcher/types"
)

// ErrStructureMismatch means the markup does not have the expected shape
var ErrStructureMismatch = errors.New("structure mismatch")

// Parser turns a parsed page into an article collection
type Parser interface {
	Parse(doc *goquery.Document) (*types.Collection, error)
}

// StructureError describes which entry and field broke the expected layout
type StructureError struct {
	Index int    // Position of the entry in the document
	Field string // "title", "date" or "link"
	Err   error
}

func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: entry %d: %s: %s", ErrStructureMismatch, e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: entry %d: missing %s", ErrStructureMismatch, e.Index, e.Field)
}

func (e *StructureError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrStructureMismatch, e.Err}
	}
	return []error{ErrStructureMismatch}
}

// JoinLink makes href absolute by prefixing the site base URL.
// Hrefs that already carry a scheme are returned untouched.
func JoinLink(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if href == "" {
		return strings.TrimRight(base, "/")
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
}
