// Package search implements similarity retrieval over the scraped content
// collections: query embedding, per-type vector search with over-fetch, and
// optional diversity sampling of the candidate pool.
package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"curator/internal/core"
	"curator/internal/logger"
)

// ErrNoEmbedding is returned when the embedding provider cannot produce a
// vector for the query. Retrieval fails outright rather than proceeding with
// a zero vector.
var ErrNoEmbedding = errors.New("no embedding produced for query")

// overFetchFactor controls how many candidates are requested per content
// type relative to the result budget, so diversity sampling has a pool to
// draw from.
const overFetchFactor = 3

// Embedder converts text to a fixed-length vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// ContentSearcher runs vector-similarity queries against the store.
type ContentSearcher interface {
	VectorSearchArticles(ctx context.Context, vector []float64, limit int64) ([]core.Article, error)
	VectorSearchPosts(ctx context.Context, vector []float64, limit int64) ([]core.Post, error)
}

// Results holds the retrieved candidates per content type.
type Results struct {
	Articles []core.Article
	Posts    []core.Post
}

// Retriever fetches similar content for a query.
type Retriever struct {
	embedder  Embedder
	searcher  ContentSearcher
	diversity bool

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRetriever creates a Retriever. Sampling is time-seeded; tests inject a
// deterministic source via WithRand.
func NewRetriever(embedder Embedder, searcher ContentSearcher, diversity bool) *Retriever {
	return &Retriever{
		embedder:  embedder,
		searcher:  searcher,
		diversity: diversity,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the sampling source. Intended for tests.
func (r *Retriever) WithRand(rng *rand.Rand) *Retriever {
	r.rng = rng
	return r
}

// Retrieve embeds the query and returns up to limit similar items per
// content type. The two content types are searched concurrently; a failed
// search for one type degrades that type to empty rather than failing the
// whole retrieval.
func (r *Retriever) Retrieve(ctx context.Context, query string, limit int) (Results, error) {
	vector, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil || len(vector) == 0 {
		logger.Error("Failed to generate embedding for query", err, "query", query)
		return Results{}, fmt.Errorf("%w: %q", ErrNoEmbedding, query)
	}

	searchLimit := int64(limit * overFetchFactor)
	var results Results

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		candidates, err := r.searcher.VectorSearchArticles(gctx, vector, searchLimit)
		if err != nil {
			logger.Error("Article vector search failed", err, "query", query)
			return nil
		}
		results.Articles = r.selectArticles(candidates, limit)
		return nil
	})
	g.Go(func() error {
		candidates, err := r.searcher.VectorSearchPosts(gctx, vector, searchLimit)
		if err != nil {
			logger.Error("Post vector search failed", err, "query", query)
			return nil
		}
		results.Posts = r.selectPosts(candidates, limit)
		return nil
	})
	_ = g.Wait()

	logger.Info("Retrieved similar content",
		"query", query, "articles", len(results.Articles), "posts", len(results.Posts))
	return results, nil
}

func (r *Retriever) selectArticles(candidates []core.Article, limit int) []core.Article {
	if limit <= 0 {
		return nil
	}
	if !r.diversity || len(candidates) <= limit {
		return topN(candidates, limit)
	}
	picks := r.samplePicks(len(candidates), limit)
	selected := make([]core.Article, 0, limit)
	for _, i := range picks {
		selected = append(selected, candidates[i])
	}
	return selected
}

func (r *Retriever) selectPosts(candidates []core.Post, limit int) []core.Post {
	if limit <= 0 {
		return nil
	}
	if !r.diversity || len(candidates) <= limit {
		return topN(candidates, limit)
	}
	picks := r.samplePicks(len(candidates), limit)
	selected := make([]core.Post, 0, limit)
	for _, i := range picks {
		selected = append(selected, candidates[i])
	}
	return selected
}

// samplePicks returns limit candidate indexes: index 0 (the relevance
// anchor) always first, then limit-1 indexes sampled uniformly without
// replacement from the remainder. Candidates arrive ranked by score, so
// index 0 is the best match.
func (r *Retriever) samplePicks(n, limit int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	rest := make([]int, n-1)
	for i := range rest {
		rest[i] = i + 1
	}
	r.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})

	picks := append([]int{0}, rest[:limit-1]...)
	return picks
}

func topN[T any](candidates []T, limit int) []T {
	if len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}
