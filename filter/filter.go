package filter

import (
	"log/slog"
	"regexp"
	"unicode"

	"github.com/scipunch/bohemka-bot/config"
	"github.com/scipunch/bohemka-bot/fetcher/types"
)

// Rules drops articles whose titles do not look worth posting
type Rules struct {
	minWords        int
	patterns        []string
	excludePatterns []*regexp.Regexp
}

// NewRules compiles the configured title rules. Invalid patterns are
// logged and skipped.
func NewRules(cfg config.Filter) *Rules {
	r := &Rules{
		minWords:        cfg.MinWords,
		excludePatterns: make([]*regexp.Regexp, 0, len(cfg.ExcludePatterns)),
	}

	for _, pattern := range cfg.ExcludePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			slog.Warn("invalid regex pattern in filter", "pattern", pattern, "error", err)
			continue
		}
		r.patterns = append(r.patterns, pattern)
		r.excludePatterns = append(r.excludePatterns, re)
	}

	return r
}

// Empty reports whether no rule is configured
func (r *Rules) Empty() bool {
	return r.minWords <= 0 && len(r.excludePatterns) == 0
}

// ShouldInclude returns false and the name of the failed rule for
// articles that should not be posted
func (r *Rules) ShouldInclude(a types.Article) (bool, string) {
	if r.minWords > 0 && countWords(a.Title) < r.minWords {
		return false, "min_words"
	}

	for i, pattern := range r.excludePatterns {
		if pattern.MatchString(a.Title) {
			return false, "exclude_pattern[" + r.patterns[i] + "]"
		}
	}

	return true, ""
}

// Apply keeps the articles passing every rule, preserving order
func (r *Rules) Apply(articles []types.Article, logger *slog.Logger) []types.Article {
	if r.Empty() {
		return articles
	}
	if logger == nil {
		logger = slog.Default()
	}

	kept := make([]types.Article, 0, len(articles))
	for _, a := range articles {
		if ok, reason := r.ShouldInclude(a); !ok {
			logger.Info("article filtered out", "title", a.Title, "reason", reason, "url", a.Link)
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// countWords counts the number of words in text
func countWords(text string) int {
	words := 0
	inWord := false

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if !inWord {
				words++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	return words
}
