// Package analyze drives suggestion generation: retrieval, prompt
// compilation, resilient LLM extraction, and the handoff to deduplicated
// storage.
package analyze

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"curator/internal/core"
	"curator/internal/logger"
	"curator/internal/search"
	"curator/internal/snippet"
	"curator/internal/suggest"
)

// Completer sends a prompt to the language model and returns the raw text
// completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever fetches similar content for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) (search.Results, error)
}

// Writer persists novel suggestion candidates.
type Writer interface {
	Write(ctx context.Context, candidates []core.SuggestionCandidate, sourceQuery string) (suggest.Counts, error)
}

// Result is the outcome of one pipeline run. A run always produces a Result
// with explicit counts, even when one content type degraded to empty.
type Result struct {
	Suggestions []core.SuggestionCandidate
	Stored      suggest.Counts
}

// Analyzer orchestrates the suggestion pipeline for a query.
type Analyzer struct {
	completer Completer
	retriever Retriever
	writer    Writer
	snippets  *snippet.Builder
}

// NewAnalyzer wires the pipeline stages together.
func NewAnalyzer(completer Completer, retriever Retriever, writer Writer, snippets *snippet.Builder) *Analyzer {
	return &Analyzer{
		completer: completer,
		retriever: retriever,
		writer:    writer,
		snippets:  snippets,
	}
}

// Analyze retrieves similar content for the query and extracts suggestion
// candidates from both content types concurrently. Failure in one content
// type's extraction never blocks the other's results; the failed type
// contributes an empty list. Results merge deterministically: articles
// first, then posts, regardless of which task finished first.
func (a *Analyzer) Analyze(ctx context.Context, query string, limit int) ([]core.SuggestionCandidate, error) {
	results, err := a.retriever.Retrieve(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	var articleCands, postCands []core.SuggestionCandidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		articleCands = a.processArticles(gctx, results.Articles)
		return nil
	})
	g.Go(func() error {
		postCands = a.processPosts(gctx, results.Posts)
		return nil
	})
	_ = g.Wait()

	combined := make([]core.SuggestionCandidate, 0, len(articleCands)+len(postCands))
	combined = append(combined, articleCands...)
	combined = append(combined, postCands...)
	return combined, nil
}

// AnalyzeAndStore runs Analyze, optionally filters by label, and persists the
// surviving candidates. The returned Result carries the filtered candidate
// list and per-type stored counts.
func (a *Analyzer) AnalyzeAndStore(ctx context.Context, query string, limit int, label string) (Result, error) {
	candidates, err := a.Analyze(ctx, query, limit)
	if err != nil {
		return Result{}, err
	}

	if label != "" {
		filtered := candidates[:0]
		for _, c := range candidates {
			if c.Label == label {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	counts, err := a.writer.Write(ctx, candidates, query)
	if err != nil {
		// Write-side failures are reported as zero-stored, not a failed run.
		logger.Error("Failed to store suggestions", err, "query", query)
		counts = suggest.Counts{}
	}

	logger.Info("Suggestion run complete",
		"query", query,
		"candidates", len(candidates),
		"stored_articles", counts.StoredArticles,
		"stored_posts", counts.StoredPosts)
	return Result{Suggestions: candidates, Stored: counts}, nil
}

func (a *Analyzer) processArticles(ctx context.Context, articles []core.Article) []core.SuggestionCandidate {
	if len(articles) == 0 {
		return nil
	}
	snippets := make([]string, 0, len(articles))
	urls := make([]string, 0, len(articles))
	for _, article := range articles {
		snippets = append(snippets, a.snippets.Article(article))
		urls = append(urls, article.URL)
	}

	prompt := NewsPrompt(snippets, urls)
	logger.Info("Sending batch news prompt", "items", len(snippets))
	response, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Error("News extraction failed", err)
		return nil
	}
	return ExtractCandidates(response, core.ContentTypeArticle)
}

func (a *Analyzer) processPosts(ctx context.Context, posts []core.Post) []core.SuggestionCandidate {
	if len(posts) == 0 {
		return nil
	}
	snippets := make([]string, 0, len(posts))
	urls := make([]*string, 0, len(posts))
	for _, post := range posts {
		snippets = append(snippets, a.snippets.Post(post))
		urls = append(urls, post.URL)
	}

	prompt := PostPrompt(snippets, urls)
	logger.Info("Sending batch post prompt", "items", len(snippets))
	response, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Error("Post extraction failed", err)
		return nil
	}
	return ExtractCandidates(response, core.ContentTypePost)
}
