// Package snippet condenses scraped content items into short texts suitable
// for prompting. Snippets are derived on every run and never persisted.
package snippet

import (
	"strings"

	"curator/internal/core"
)

const (
	// DefaultMaxSentences is the article body sentence budget.
	DefaultMaxSentences = 2
	// DefaultMaxComments is the post comment budget.
	DefaultMaxComments = 3
	// DefaultCharBudget caps post snippet length before the ellipsis marker.
	DefaultCharBudget = 2000
)

// Builder generates concise snippets from articles and posts.
type Builder struct {
	maxSentences int
	maxComments  int
	charBudget   int
}

// NewBuilder creates a Builder. Non-positive arguments fall back to defaults.
func NewBuilder(maxSentences, maxComments, charBudget int) *Builder {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	if maxComments <= 0 {
		maxComments = DefaultMaxComments
	}
	if charBudget <= 0 {
		charBudget = DefaultCharBudget
	}
	return &Builder{maxSentences: maxSentences, maxComments: maxComments, charBudget: charBudget}
}

// clean collapses all whitespace runs, including newlines, to single spaces.
func clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitSentences naively splits text into sentences, closing a sentence on
// '.', '?' or '!'. Trailing text without terminal punctuation is still
// emitted as a final sentence. Abbreviation handling is deliberately absent.
func splitSentences(text string) []string {
	if text == "" {
		return nil
	}
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '?' || r == '!' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// Article builds a snippet from an article: title, newline, then the first
// maxSentences sentences of the description (falling back to content).
func (b *Builder) Article(article core.Article) string {
	title := clean(article.Title)
	body := article.Description
	if body == "" {
		body = article.Content
	}
	body = clean(body)

	sentences := splitSentences(body)
	if len(sentences) > b.maxSentences {
		sentences = sentences[:b.maxSentences]
	}
	teaser := strings.Join(sentences, " ")
	if teaser == "" {
		return title
	}
	return title + "\n" + teaser
}

// Post builds a snippet from a post: title, newline, then up to maxComments
// comment bodies, one per line, in original order. Snippets exceeding the
// character budget are truncated at the budget boundary with an ellipsis
// marker; fields before the boundary are never cut in half silently, only
// the tail is dropped.
func (b *Builder) Post(post core.Post) string {
	title := clean(post.Title)
	var lines []string
	for _, c := range post.Comments {
		if len(lines) >= b.maxComments {
			break
		}
		if body := clean(c.Body); body != "" {
			lines = append(lines, body)
		}
	}

	s := title
	if len(lines) > 0 {
		s = title + "\n" + strings.Join(lines, "\n")
	}
	return b.truncate(s)
}

// truncate cuts at the end of the last whole line that fits within the
// budget and appends "...". A title longer than the budget is cut at the
// budget boundary itself.
func (b *Builder) truncate(s string) string {
	if len(s) <= b.charBudget {
		return s
	}
	cut := s[:b.charBudget]
	if idx := strings.LastIndexByte(cut, '\n'); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}
