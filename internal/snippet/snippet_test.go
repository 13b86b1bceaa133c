package snippet

import (
	"strings"
	"testing"

	"curator/internal/core"
)

func TestArticleSnippet(t *testing.T) {
	b := NewBuilder(2, 3, 0)
	article := core.Article{
		Title:       "AI Ethics Group Warns of Risks",
		Description: "First sentence. Second sentence! Third sentence?",
	}
	got := b.Article(article)
	want := "AI Ethics Group Warns of Risks\nFirst sentence. Second sentence!"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestArticleSnippetFallsBackToContent(t *testing.T) {
	b := NewBuilder(2, 3, 0)
	article := core.Article{Title: "Title", Content: "Body without punctuation"}
	got := b.Article(article)
	if got != "Title\nBody without punctuation" {
		t.Errorf("Expected trailing fragment to be kept as a sentence, got %q", got)
	}
}

func TestArticleSnippetTitleOnly(t *testing.T) {
	b := NewBuilder(2, 3, 0)
	got := b.Article(core.Article{Title: "Just a title"})
	if got != "Just a title" {
		t.Errorf("Expected bare title, got %q", got)
	}
}

func TestArticleSnippetEmptyInput(t *testing.T) {
	b := NewBuilder(0, 0, 0)
	if got := b.Article(core.Article{}); got != "" {
		t.Errorf("Expected empty snippet for empty article, got %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two? Three! Four")
	if len(got) != 4 {
		t.Fatalf("Expected 4 sentences, got %d: %v", len(got), got)
	}
	if got[3] != "Four" {
		t.Errorf("Expected trailing text without punctuation to be emitted, got %q", got[3])
	}
}

func TestPostSnippet(t *testing.T) {
	b := NewBuilder(2, 2, 0)
	post := core.Post{
		Title: "Will AI replace programmers?",
		Comments: []core.Comment{
			{Body: "No chance.\nAI tools are assistants."},
			{Body: "Copilot saves me hours."},
			{Body: "This one is over the comment budget."},
		},
	}
	got := b.Post(post)
	want := "Will AI replace programmers?\nNo chance. AI tools are assistants.\nCopilot saves me hours."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestPostSnippetCollapsesWhitespace(t *testing.T) {
	b := NewBuilder(2, 3, 0)
	post := core.Post{
		Title:    "Title  with\n newlines",
		Comments: []core.Comment{{Body: "a\n\nb   c"}},
	}
	got := b.Post(post)
	if got != "Title with newlines\na b c" {
		t.Errorf("Expected whitespace collapsed to single spaces, got %q", got)
	}
}

func TestPostSnippetTruncation(t *testing.T) {
	budget := 50
	b := NewBuilder(2, 10, budget)
	post := core.Post{
		Title: "Short title",
		Comments: []core.Comment{
			{Body: strings.Repeat("x", 30)},
			{Body: strings.Repeat("y", 30)},
			{Body: strings.Repeat("z", 30)},
		},
	}
	got := b.Post(post)
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Expected ellipsis marker, got %q", got)
	}
	body := strings.TrimSuffix(got, "...")
	if len(body) > budget {
		t.Errorf("Expected truncation within the %d char budget, got %d", budget, len(body))
	}
	// Cut must land at a field boundary, never mid-field.
	lines := strings.Split(body, "\n")
	last := lines[len(lines)-1]
	if last != strings.Repeat("x", 30) {
		t.Errorf("Expected truncation at a field boundary, last field was %q", last)
	}
}

func TestPostSnippetNoTruncationUnderBudget(t *testing.T) {
	b := NewBuilder(2, 3, 100)
	got := b.Post(core.Post{Title: "tiny"})
	if strings.Contains(got, "...") {
		t.Errorf("Expected no ellipsis under budget, got %q", got)
	}
}
