// Package suggest persists suggestion candidates with duplicate protection.
package suggest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"curator/internal/core"
	"curator/internal/logger"
)

// SuggestionStore is the persistence surface the writer needs.
type SuggestionStore interface {
	SuggestionExists(ctx context.Context, suggestionID string) (bool, error)
	NearDuplicateExists(ctx context.Context, topic, label, sourceQuery string) (bool, error)
	InsertSuggestions(ctx context.Context, suggestions []core.Suggestion) (int, error)
	TouchSuggestion(ctx context.Context, suggestionID string, now time.Time) error
}

// Counts reports per-type outcomes of a write pass.
type Counts struct {
	StoredArticles  int
	StoredPosts     int
	SkippedArticles int
	SkippedPosts    int
}

// Writer validates, deduplicates, and inserts suggestion candidates.
type Writer struct {
	store SuggestionStore
}

// NewWriter returns a Writer backed by the given store.
func NewWriter(store SuggestionStore) *Writer {
	return &Writer{store: store}
}

// Fingerprint derives the stable identity of a suggestion from its topic,
// URL, and originating query. Each part is trimmed and lowercased before
// hashing so that cosmetic variations map to the same identity.
func Fingerprint(topic, url, sourceQuery string) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	payload := norm(topic) + "|" + norm(url) + "|" + norm(sourceQuery)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Write persists the candidates that survive validation and duplicate
// checks. Candidates with an empty topic or an unknown label are dropped.
// A candidate without a URL gets a random placeholder so two url-less
// candidates never collide on identity. Articles and posts are inserted
// separately so a storage failure for one type leaves the other's count
// intact.
func (w *Writer) Write(ctx context.Context, candidates []core.SuggestionCandidate, sourceQuery string) (Counts, error) {
	var counts Counts
	var articles, posts []core.Suggestion
	seen := make(map[string]struct{})

	for _, c := range candidates {
		topic := strings.TrimSpace(c.Topic)
		if topic == "" {
			logger.Warn("Dropping candidate with empty topic", "query", sourceQuery)
			w.skip(&counts, c.ContentType)
			continue
		}
		// Label matching is case-insensitive; the stored value keeps the
		// candidate's casing.
		label := strings.TrimSpace(c.Label)
		if !core.ValidLabel(strings.ToLower(label)) {
			logger.Warn("Dropping candidate with unknown label", "topic", topic, "label", c.Label)
			w.skip(&counts, c.ContentType)
			continue
		}

		url := ""
		if c.URL != nil {
			url = *c.URL
		}
		if url == "" {
			url = "placeholder://" + uuid.NewString()
		}

		id := Fingerprint(topic, url, sourceQuery)
		if _, dup := seen[id]; dup {
			w.skip(&counts, c.ContentType)
			continue
		}
		seen[id] = struct{}{}

		exists, err := w.store.SuggestionExists(ctx, id)
		if err != nil {
			return counts, fmt.Errorf("duplicate check failed: %w", err)
		}
		if exists {
			logger.Debug("Skipping known suggestion", "topic", topic)
			if err := w.store.TouchSuggestion(ctx, id, time.Now().UTC()); err != nil {
				logger.Warn("Could not refresh known suggestion", "topic", topic, "error", err.Error())
			}
			w.skip(&counts, c.ContentType)
			continue
		}
		near, err := w.store.NearDuplicateExists(ctx, topic, strings.ToLower(label), sourceQuery)
		if err != nil {
			return counts, fmt.Errorf("near-duplicate check failed: %w", err)
		}
		if near {
			logger.Debug("Skipping near-duplicate suggestion", "topic", topic)
			w.skip(&counts, c.ContentType)
			continue
		}

		now := time.Now().UTC()
		s := core.Suggestion{
			SuggestionID: id,
			Topic:        topic,
			Keywords:     c.Keywords,
			Description:  c.Description,
			Label:        label,
			URL:          &url,
			Type:         core.AnalysisTypeFor(c.ContentType),
			SourceQuery:  sourceQuery,
			CreatedAt:    now,
			UpdatedAt:    now,
			AnalyzedAt:   now,
		}
		if c.ContentType == core.ContentTypePost {
			posts = append(posts, s)
		} else {
			articles = append(articles, s)
		}
	}

	if len(articles) > 0 {
		n, err := w.store.InsertSuggestions(ctx, articles)
		if err != nil {
			logger.Error("Failed to insert article suggestions", err)
		} else {
			counts.StoredArticles = n
		}
	}
	if len(posts) > 0 {
		n, err := w.store.InsertSuggestions(ctx, posts)
		if err != nil {
			logger.Error("Failed to insert post suggestions", err)
		} else {
			counts.StoredPosts = n
		}
	}
	return counts, nil
}

func (w *Writer) skip(counts *Counts, ct core.ContentType) {
	if ct == core.ContentTypePost {
		counts.SkippedPosts++
	} else {
		counts.SkippedArticles++
	}
}
