package embeddings

import (
	"context"
	"errors"
	"strings"
	"testing"

	"curator/internal/core"
)

type fakeProvider struct {
	calls   []string
	failFor string
}

func (f *fakeProvider) GenerateEmbedding(_ context.Context, text string) ([]float64, error) {
	f.calls = append(f.calls, text)
	if f.failFor != "" && strings.Contains(text, f.failFor) {
		return nil, errors.New("provider unavailable")
	}
	return []float64{0.1, 0.2, 0.3}, nil
}

type setCall struct {
	coll string
	id   interface{}
	text string
}

type fakeEmbeddingStore struct {
	articles []core.Article
	posts    []core.Post
	listErr  error
	sets     []setCall
}

func (f *fakeEmbeddingStore) ArticlesMissingEmbeddings(_ context.Context) ([]core.Article, error) {
	return f.articles, f.listErr
}

func (f *fakeEmbeddingStore) PostsMissingEmbeddings(_ context.Context) ([]core.Post, error) {
	return f.posts, f.listErr
}

func (f *fakeEmbeddingStore) SetEmbedding(_ context.Context, coll string, id interface{}, _ []float64, embeddingString string) error {
	f.sets = append(f.sets, setCall{coll: coll, id: id, text: embeddingString})
	return nil
}

func TestArticleString(t *testing.T) {
	article := core.Article{
		Title:       "Go 1.25 released",
		Description: "New runtime improvements.",
		Source:      "golang.org",
		Category:    "technology",
	}
	got := ArticleString(article)
	want := "TITLE: Go 1.25 released\n\nDESCRIPTION: New runtime improvements.\n\nSOURCE: golang.org\n\nCATEGORY: technology"
	if got != want {
		t.Errorf("ArticleString = %q, want %q", got, want)
	}
}

func TestArticleStringSkipsEmptyFields(t *testing.T) {
	got := ArticleString(core.Article{Title: "Only a title"})
	if got != "TITLE: Only a title" {
		t.Errorf("ArticleString = %q, want title only", got)
	}
}

func TestPostStringCapsComments(t *testing.T) {
	post := core.Post{Title: "Discussion", Subreddit: "golang"}
	for i := 0; i < 8; i++ {
		post.Comments = append(post.Comments, core.Comment{Body: "c"})
	}
	got := PostString(post)
	if want := "TITLE: Discussion\n\nCOMMENTS: c c c c c\n\nSUBREDDIT: golang"; got != want {
		t.Errorf("PostString = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short text", 100); got != "short text" {
		t.Errorf("Truncate altered text under budget: %q", got)
	}
	got := Truncate("alpha beta gamma delta", 12)
	if got != "alpha beta..." {
		t.Errorf("Truncate = %q, want %q", got, "alpha beta...")
	}
	if strings.Contains(strings.TrimSuffix(got, "..."), "gam") {
		t.Errorf("Truncate split a word: %q", got)
	}
}

func TestProcessArticlesSkipsThinContent(t *testing.T) {
	st := &fakeEmbeddingStore{articles: []core.Article{
		{ID: "1", Title: "Substantial article title"},
		{ID: "2"},
	}}
	e := NewContentEmbedder(&fakeProvider{}, st, 10, 0)

	n, err := e.ProcessArticles(context.Background())
	if err != nil {
		t.Fatalf("ProcessArticles returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("processed = %d, want 1", n)
	}
	if len(st.sets) != 1 || st.sets[0].id != "1" {
		t.Errorf("SetEmbedding calls = %+v, want one for id 1", st.sets)
	}
}

func TestProcessPostsContinuesPastProviderFailure(t *testing.T) {
	st := &fakeEmbeddingStore{posts: []core.Post{
		{ID: "a", Title: "Post that fails embedding"},
		{ID: "b", Title: "Post that succeeds embedding"},
	}}
	provider := &fakeProvider{failFor: "fails"}
	e := NewContentEmbedder(provider, st, 10, 0)

	n, err := e.ProcessPosts(context.Background())
	if err != nil {
		t.Fatalf("ProcessPosts returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("processed = %d, want 1", n)
	}
	if len(provider.calls) != 2 {
		t.Errorf("provider called %d times, want 2", len(provider.calls))
	}
	if len(st.sets) != 1 || st.sets[0].id != "b" {
		t.Errorf("SetEmbedding calls = %+v, want one for id b", st.sets)
	}
}

func TestRunReportsBothCounts(t *testing.T) {
	st := &fakeEmbeddingStore{
		articles: []core.Article{{ID: "1", Title: "An article with content"}},
		posts:    []core.Post{{ID: "p", Title: "A post with content"}},
	}
	e := NewContentEmbedder(&fakeProvider{}, st, 10, 0)

	counts, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if counts.Articles != 1 || counts.Posts != 1 {
		t.Errorf("counts = %+v, want 1 and 1", counts)
	}
}

func TestRunListFailurePropagates(t *testing.T) {
	st := &fakeEmbeddingStore{listErr: errors.New("cursor timeout")}
	e := NewContentEmbedder(&fakeProvider{}, st, 10, 0)

	if _, err := e.Run(context.Background()); err == nil {
		t.Fatal("Run did not surface listing failure")
	}
}
