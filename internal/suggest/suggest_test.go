package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"curator/internal/core"
)

type fakeStore struct {
	existing  map[string]bool
	near      map[string]bool
	inserted  []core.Suggestion
	touched   []string
	insertErr error // consumed by the next InsertSuggestions call
	checkErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{existing: map[string]bool{}, near: map[string]bool{}}
}

func (f *fakeStore) SuggestionExists(_ context.Context, suggestionID string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.existing[suggestionID], nil
}

func (f *fakeStore) NearDuplicateExists(_ context.Context, topic, label, sourceQuery string) (bool, error) {
	if f.checkErr != nil {
		return false, f.checkErr
	}
	return f.near[strings.ToLower(topic)+"|"+label+"|"+sourceQuery], nil
}

func (f *fakeStore) InsertSuggestions(_ context.Context, suggestions []core.Suggestion) (int, error) {
	if f.insertErr != nil {
		err := f.insertErr
		f.insertErr = nil
		return 0, err
	}
	f.inserted = append(f.inserted, suggestions...)
	for _, s := range suggestions {
		f.existing[s.SuggestionID] = true
	}
	return len(suggestions), nil
}

func (f *fakeStore) TouchSuggestion(_ context.Context, suggestionID string, _ time.Time) error {
	f.touched = append(f.touched, suggestionID)
	return nil
}

func strp(s string) *string { return &s }

func articleCandidate(topic, url string) core.SuggestionCandidate {
	return core.SuggestionCandidate{
		Topic:       topic,
		Keywords:    []string{"a", "b", "c", "d"},
		Description: "desc",
		Label:       "technology",
		URL:         strp(url),
		ContentType: core.ContentTypeArticle,
	}
}

func TestFingerprintNormalization(t *testing.T) {
	a := Fingerprint("Go Generics", "https://example.com/x", "golang")
	b := Fingerprint("  go generics ", "HTTPS://EXAMPLE.COM/X", " GoLang ")
	if a != b {
		t.Errorf("normalized inputs produced different fingerprints: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
	if c := Fingerprint("Go Generics", "https://example.com/y", "golang"); c == a {
		t.Error("different urls produced the same fingerprint")
	}
}

func TestWriteStoresValidCandidates(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store)

	post := core.SuggestionCandidate{
		Topic: "Community topic", Keywords: []string{"k"}, Description: "d",
		Label: "general", URL: nil, ContentType: core.ContentTypePost,
	}
	counts, err := w.Write(context.Background(),
		[]core.SuggestionCandidate{articleCandidate("Article topic", "https://example.com/a"), post}, "golang")
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if counts.StoredArticles != 1 || counts.StoredPosts != 1 {
		t.Errorf("counts = %+v, want 1 article and 1 post", counts)
	}
	if len(store.inserted) != 2 {
		t.Fatalf("inserted %d suggestions, want 2", len(store.inserted))
	}
	for _, s := range store.inserted {
		if s.SuggestionID == "" {
			t.Error("inserted suggestion missing id")
		}
		if s.CreatedAt.IsZero() || s.AnalyzedAt.IsZero() {
			t.Error("inserted suggestion missing timestamps")
		}
	}
}

func TestWriteAssignsAnalysisType(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store)

	post := core.SuggestionCandidate{Topic: "P", Label: "general", ContentType: core.ContentTypePost}
	if _, err := w.Write(context.Background(),
		[]core.SuggestionCandidate{articleCandidate("A", "https://example.com/a"), post}, "q"); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	types := map[string]core.AnalysisType{}
	for _, s := range store.inserted {
		types[s.Topic] = s.Type
	}
	if types["A"] != core.AnalysisTypeNews {
		t.Errorf("article suggestion type = %q, want %q", types["A"], core.AnalysisTypeNews)
	}
	if types["P"] != core.AnalysisTypeReddit {
		t.Errorf("post suggestion type = %q, want %q", types["P"], core.AnalysisTypeReddit)
	}
}

func TestWriteDropsInvalid(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store)

	cands := []core.SuggestionCandidate{
		{Topic: "   ", Label: "technology", ContentType: core.ContentTypeArticle},
		{Topic: "Bad label", Label: "finance", ContentType: core.ContentTypeArticle},
		articleCandidate("Good", "https://example.com/good"),
	}
	counts, err := w.Write(context.Background(), cands, "q")
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if counts.StoredArticles != 1 {
		t.Errorf("stored = %d, want 1", counts.StoredArticles)
	}
	if counts.SkippedArticles != 2 {
		t.Errorf("skipped = %d, want 2", counts.SkippedArticles)
	}
}

func TestWriteRetainsLabelCasing(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store)

	// Validation is case-insensitive, but the stored label keeps the
	// candidate's casing, trimmed.
	c := articleCandidate("Cased", "https://example.com/c")
	c.Label = " Technology "
	counts, err := w.Write(context.Background(), []core.SuggestionCandidate{c}, "q")
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if counts.StoredArticles != 1 {
		t.Fatalf("stored = %d, want the cased label accepted", counts.StoredArticles)
	}
	if store.inserted[0].Label != "Technology" {
		t.Errorf("stored label = %q, want original casing retained", store.inserted[0].Label)
	}
}

func TestWriteIdempotent(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store)
	cands := []core.SuggestionCandidate{articleCandidate("Repeat", "https://example.com/r")}

	first, err := w.Write(context.Background(), cands, "q")
	if err != nil {
		t.Fatalf("first Write returned error: %v", err)
	}
	second, err := w.Write(context.Background(), cands, "q")
	if err != nil {
		t.Fatalf("second Write returned error: %v", err)
	}
	if first.StoredArticles != 1 {
		t.Errorf("first pass stored %d, want 1", first.StoredArticles)
	}
	if second.StoredArticles != 0 || second.SkippedArticles != 1 {
		t.Errorf("second pass counts = %+v, want 0 stored 1 skipped", second)
	}
	if len(store.touched) != 1 {
		t.Errorf("touched %d suggestions, want the known one refreshed", len(store.touched))
	}
}

func TestWriteInBatchDuplicates(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store)
	cands := []core.SuggestionCandidate{
		articleCandidate("Twice", "https://example.com/t"),
		articleCandidate("Twice", "https://example.com/t"),
	}
	counts, err := w.Write(context.Background(), cands, "q")
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if counts.StoredArticles != 1 || counts.SkippedArticles != 1 {
		t.Errorf("counts = %+v, want 1 stored 1 skipped", counts)
	}
}

func TestWriteNearDuplicateSkipped(t *testing.T) {
	store := newFakeStore()
	store.near["reused topic|technology|q"] = true
	w := NewWriter(store)

	counts, err := w.Write(context.Background(),
		[]core.SuggestionCandidate{articleCandidate("Reused Topic", "https://example.com/new")}, "q")
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if counts.StoredArticles != 0 || counts.SkippedArticles != 1 {
		t.Errorf("counts = %+v, want near-duplicate skipped", counts)
	}
}

func TestWriteURLLessCandidatesNeverCollide(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store)
	cands := []core.SuggestionCandidate{
		{Topic: "Same topic", Label: "general", URL: nil, ContentType: core.ContentTypePost},
		{Topic: "Other topic", Label: "general", URL: nil, ContentType: core.ContentTypePost},
	}
	counts, err := w.Write(context.Background(), cands, "q")
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if counts.StoredPosts != 2 {
		t.Errorf("stored posts = %d, want 2 (placeholder urls must differ)", counts.StoredPosts)
	}
}

func TestWriteInsertFailureZeroesOnlyThatType(t *testing.T) {
	store := newFakeStore()
	w := NewWriter(store)
	post := core.SuggestionCandidate{Topic: "P", Label: "general", ContentType: core.ContentTypePost}

	// Articles are inserted first; the fake fails that call only.
	store.insertErr = errors.New("write concern")
	counts, err := w.Write(context.Background(),
		[]core.SuggestionCandidate{articleCandidate("A", "https://example.com/a"), post}, "q")
	if err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if counts.StoredArticles != 0 {
		t.Errorf("stored articles = %d, want 0 on insert failure", counts.StoredArticles)
	}
	if counts.StoredPosts != 1 {
		t.Errorf("stored posts = %d, want 1 despite article failure", counts.StoredPosts)
	}
}

func TestWriteDuplicateCheckErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.checkErr = errors.New("connection reset")
	w := NewWriter(store)

	if _, err := w.Write(context.Background(),
		[]core.SuggestionCandidate{articleCandidate("A", "https://example.com/a")}, "q"); err == nil {
		t.Fatal("Write did not propagate duplicate-check failure")
	}
}
