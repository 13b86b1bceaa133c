// Package embeddings backfills vector embeddings for scraped content that
// does not have them yet.
package embeddings

import (
	"context"
	"strings"
	"time"

	"curator/internal/core"
	"curator/internal/logger"
	"curator/internal/store"
)

const (
	// DefaultBatchSize paces provider calls to stay under rate limits.
	DefaultBatchSize = 10
	// DefaultMaxTextLength caps the embedding input before truncation.
	DefaultMaxTextLength = 2000
	// minTextLength is the floor below which content is too thin to embed.
	minTextLength = 10

	batchPause = 500 * time.Millisecond
)

// Provider generates the embedding vector for a text.
type Provider interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// EmbeddingStore is the persistence surface the backfill needs.
type EmbeddingStore interface {
	ArticlesMissingEmbeddings(ctx context.Context) ([]core.Article, error)
	PostsMissingEmbeddings(ctx context.Context) ([]core.Post, error)
	SetEmbedding(ctx context.Context, coll string, id interface{}, embedding []float64, embeddingString string) error
}

// Counts reports how many documents each collection pass embedded.
type Counts struct {
	Articles int
	Posts    int
}

// ContentEmbedder walks the content collections and fills in missing
// embeddings in paced batches.
type ContentEmbedder struct {
	provider  Provider
	store     EmbeddingStore
	batchSize int
	maxLength int
}

// NewContentEmbedder creates a backfill worker. Non-positive batchSize and
// maxLength fall back to the defaults.
func NewContentEmbedder(provider Provider, st EmbeddingStore, batchSize, maxLength int) *ContentEmbedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxTextLength
	}
	return &ContentEmbedder{
		provider:  provider,
		store:     st,
		batchSize: batchSize,
		maxLength: maxLength,
	}
}

// ArticleString flattens an article into the text that gets embedded. Each
// populated field appears as an uppercased prefix followed by its value,
// fields separated by blank lines.
func ArticleString(article core.Article) string {
	fields := []struct{ key, value string }{
		{"TITLE", article.Title},
		{"DESCRIPTION", article.Description},
		{"CONTENT", article.Content},
		{"SOURCE", article.Source},
		{"COUNTRY", article.Country},
		{"CATEGORY", article.Category},
	}
	var parts []string
	for _, f := range fields {
		if f.value != "" {
			parts = append(parts, f.key+": "+f.value)
		}
	}
	return strings.Join(parts, "\n\n")
}

// PostString flattens a post into the text that gets embedded: title, then
// up to five comment bodies joined into one block, then the subreddit.
func PostString(post core.Post) string {
	var parts []string
	if post.Title != "" {
		parts = append(parts, "TITLE: "+post.Title)
	}
	var bodies []string
	for i, c := range post.Comments {
		if i >= 5 {
			break
		}
		if c.Body != "" {
			bodies = append(bodies, c.Body)
		}
	}
	if len(bodies) > 0 {
		parts = append(parts, "COMMENTS: "+strings.Join(bodies, " "))
	}
	if post.Subreddit != "" {
		parts = append(parts, "SUBREDDIT: "+post.Subreddit)
	}
	return strings.Join(parts, "\n\n")
}

// Truncate cuts text to at most maxLength characters plus an ellipsis
// marker, backing off to the last word boundary so no word is split.
func Truncate(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	cut := text[:maxLength]
	if idx := strings.LastIndexAny(cut, " \n\t"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \n\t") + "..."
}

// ProcessArticles embeds every article that is missing an embedding.
// Per-document provider failures are logged and skipped; the pass keeps
// going.
func (e *ContentEmbedder) ProcessArticles(ctx context.Context) (int, error) {
	articles, err := e.store.ArticlesMissingEmbeddings(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("Found articles without embeddings", "count", len(articles))

	processed := 0
	for i, article := range articles {
		text := ArticleString(article)
		if len(text) < minTextLength {
			logger.Warn("Article has insufficient content for embedding", "id", article.ID)
			continue
		}
		if e.embedOne(ctx, store.NewsCollection, article.ID, text) {
			processed++
		}
		e.pause(ctx, i, len(articles))
	}
	logger.Info("Finished embedding articles", "processed", processed)
	return processed, nil
}

// ProcessPosts embeds every post that is missing an embedding. Post text is
// truncated to the length budget before the provider call.
func (e *ContentEmbedder) ProcessPosts(ctx context.Context) (int, error) {
	posts, err := e.store.PostsMissingEmbeddings(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("Found posts without embeddings", "count", len(posts))

	processed := 0
	for i, post := range posts {
		text := Truncate(PostString(post), e.maxLength)
		if len(text) < minTextLength {
			logger.Warn("Post has insufficient content for embedding", "id", post.ID)
			continue
		}
		if e.embedOne(ctx, store.PostsCollection, post.ID, text) {
			processed++
		}
		e.pause(ctx, i, len(posts))
	}
	logger.Info("Finished embedding posts", "processed", processed)
	return processed, nil
}

// Run backfills both collections and returns per-collection counts. An error
// listing one collection does not stop the other.
func (e *ContentEmbedder) Run(ctx context.Context) (Counts, error) {
	var counts Counts
	var firstErr error

	n, err := e.ProcessArticles(ctx)
	if err != nil {
		logger.Error("Article embedding pass failed", err)
		firstErr = err
	}
	counts.Articles = n

	n, err = e.ProcessPosts(ctx)
	if err != nil {
		logger.Error("Post embedding pass failed", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	counts.Posts = n
	return counts, firstErr
}

func (e *ContentEmbedder) embedOne(ctx context.Context, coll string, id interface{}, text string) bool {
	vector, err := e.provider.GenerateEmbedding(ctx, text)
	if err != nil {
		logger.Error("Failed to generate embedding", err, "collection", coll, "id", id)
		return false
	}
	if err := e.store.SetEmbedding(ctx, coll, id, vector, text); err != nil {
		logger.Error("Failed to persist embedding", err, "collection", coll, "id", id)
		return false
	}
	return true
}

// pause sleeps between batches, not between every document, and never after
// the final one.
func (e *ContentEmbedder) pause(ctx context.Context, index, total int) {
	if (index+1)%e.batchSize != 0 || index+1 >= total {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(batchPause):
	}
}
