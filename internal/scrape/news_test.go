package scrape

import (
	"testing"
)

func TestBuildArticleFilters(t *testing.T) {
	cases := []struct {
		name string
		raw  rawHeadline
		want bool
	}{
		{"valid", rawHeadline{URL: "https://example.com/a", Title: "A headline"}, true},
		{"missing url", rawHeadline{Title: "A headline"}, false},
		{"missing title", rawHeadline{URL: "https://example.com/a"}, false},
		{"removed title", rawHeadline{URL: "https://example.com/a", Title: "[Removed]"}, false},
		{"removed description", rawHeadline{URL: "https://example.com/a", Title: "A", Description: "[Removed]"}, false},
	}
	for _, tc := range cases {
		if _, ok := buildArticle(tc.raw, "technology", "us"); ok != tc.want {
			t.Errorf("%s: buildArticle ok = %v, want %v", tc.name, ok, tc.want)
		}
	}
}

func TestBuildArticleNormalizes(t *testing.T) {
	raw := rawHeadline{
		URL:         "  https://example.com/a  ",
		Title:       " Spaced title ",
		Description: " desc ",
	}
	article, ok := buildArticle(raw, "science", "us")
	if !ok {
		t.Fatal("buildArticle rejected a valid entry")
	}
	if article.URL != "https://example.com/a" {
		t.Errorf("url = %q, not trimmed", article.URL)
	}
	if article.Title != "Spaced title" {
		t.Errorf("title = %q, not trimmed", article.Title)
	}
	if article.Author != "Unknown" {
		t.Errorf("author = %q, want Unknown fallback", article.Author)
	}
	if article.Source != "NewsAPI" {
		t.Errorf("source = %q, want NewsAPI fallback", article.Source)
	}
	if article.Category != "science" || article.Country != "us" {
		t.Errorf("category/country = %q/%q", article.Category, article.Country)
	}
	if article.ScrapedAt.IsZero() {
		t.Error("scraped_at not set")
	}
}

func TestContentTruncated(t *testing.T) {
	if !contentTruncated("Some article body cut short... [+2148 chars]") {
		t.Error("did not detect the provider truncation marker")
	}
	if contentTruncated("A complete article body.") {
		t.Error("flagged complete content as truncated")
	}
	if contentTruncated("") {
		t.Error("flagged empty content as truncated")
	}
}
