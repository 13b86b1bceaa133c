package analyze

import (
	"strings"
	"testing"
)

func TestNewsPromptNumbersItems(t *testing.T) {
	prompt := NewsPrompt(
		[]string{"First article snippet.", "Second article snippet."},
		[]string{"https://a.example.com", "https://b.example.com"},
	)
	for _, want := range []string{
		"1. First article snippet.\nurl: https://a.example.com",
		"2. Second article snippet.\nurl: https://b.example.com",
		"FORMAT REQUIREMENTS:",
		"NOW ANALYZE THESE ARTICLES:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("news prompt missing %q", want)
		}
	}
}

func TestNewsPromptDeterministic(t *testing.T) {
	snippets := []string{"Same snippet."}
	urls := []string{"https://a.example.com"}
	if NewsPrompt(snippets, urls) != NewsPrompt(snippets, urls) {
		t.Error("identical inputs produced different prompts")
	}
}

func TestPostPromptNullURL(t *testing.T) {
	url := "https://reddit.com/r/golang/abc"
	prompt := PostPrompt(
		[]string{"Linked post.", "Self post."},
		[]*string{&url, nil},
	)
	if !strings.Contains(prompt, "1. Linked post.\nurl: "+url) {
		t.Error("post prompt missing linked url line")
	}
	if !strings.Contains(prompt, "2. Self post.\nurl: null") {
		t.Error("post prompt did not render nil url as null")
	}
	if !strings.Contains(prompt, "NOW ANALYZE THESE POSTS:") {
		t.Error("post prompt missing task marker")
	}
}

func TestPromptsEmbedExampleURLs(t *testing.T) {
	if !strings.Contains(NewsPrompt(nil, nil), exampleArticleURL) {
		t.Error("news prompt lost its worked-example url")
	}
	if !strings.Contains(PostPrompt(nil, nil), examplePostURL) {
		t.Error("post prompt lost its worked-example url")
	}
}
