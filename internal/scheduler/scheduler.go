// Package scheduler runs the daily ingestion and suggestion jobs.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"curator/internal/analyze"
	"curator/internal/config"
	"curator/internal/embeddings"
	"curator/internal/logger"
	"curator/internal/retention"
	"curator/internal/scrape"
	"curator/internal/store"
)

// cronSpec converts a daily "HH:MM" wall-clock time to a cron expression.
func cronSpec(hhmm string) (string, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid schedule time %q, want HH:MM", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in schedule time %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in schedule time %q", hhmm)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// Scheduler owns the cron runner and the job dependencies.
type Scheduler struct {
	cron      *cron.Cron
	cfg       *config.Config
	news      *scrape.NewsScraper
	reddit    *scrape.RedditScraper
	embedder  *embeddings.ContentEmbedder
	analyzer  *analyze.Analyzer
	retention *retention.Enforcer
}

// New assembles the scheduler. Jobs run on UTC wall-clock times from config.
func New(cfg *config.Config, news *scrape.NewsScraper, reddit *scrape.RedditScraper,
	embedder *embeddings.ContentEmbedder, analyzer *analyze.Analyzer,
	enforcer *retention.Enforcer) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		cfg:       cfg,
		news:      news,
		reddit:    reddit,
		embedder:  embedder,
		analyzer:  analyzer,
		retention: enforcer,
	}
}

// Start registers all jobs and begins the cron loop. The heartbeat fires
// every four hours on the hour.
func (s *Scheduler) Start(ctx context.Context) error {
	jobs := []struct {
		name string
		at   string
		run  func(context.Context)
	}{
		{"news_scrape", s.cfg.Scheduler.NewsScrape, s.runNewsScrape},
		{"reddit_scrape", s.cfg.Scheduler.RedditScrape, s.runRedditScrape},
		{"embeddings", s.cfg.Scheduler.Embeddings, s.runEmbeddings},
		{"suggestions", s.cfg.Scheduler.Suggestions, s.runSuggestions},
	}
	for _, job := range jobs {
		spec, err := cronSpec(job.at)
		if err != nil {
			return fmt.Errorf("scheduling %s: %w", job.name, err)
		}
		run := job.run
		if _, err := s.cron.AddFunc(spec, func() { run(ctx) }); err != nil {
			return fmt.Errorf("scheduling %s: %w", job.name, err)
		}
	}
	if _, err := s.cron.AddFunc("0 */4 * * *", s.logStatus); err != nil {
		return fmt.Errorf("scheduling heartbeat: %w", err)
	}

	s.cron.Start()
	s.logStatus()
	return nil
}

// Run blocks until the context is cancelled, then stops the cron loop and
// waits for running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info("Scheduler stopped")
	return nil
}

func (s *Scheduler) logStatus() {
	logger.Info("Scheduler heartbeat",
		"news_scrape", s.cfg.Scheduler.NewsScrape,
		"reddit_scrape", s.cfg.Scheduler.RedditScrape,
		"embeddings", s.cfg.Scheduler.Embeddings,
		"suggestions", s.cfg.Scheduler.Suggestions)
}

func (s *Scheduler) runNewsScrape(ctx context.Context) {
	logger.Info("Starting news scrape job")
	total, err := s.news.Run(ctx, scrape.NewsCategories)
	if err != nil {
		logger.Error("News scrape job failed", err)
	} else {
		logger.Info("News scrape job finished", "articles", total)
	}
	s.enforceRetention(ctx, store.NewsCollection, "scraped_at")
}

func (s *Scheduler) runRedditScrape(ctx context.Context) {
	logger.Info("Starting reddit scrape job")
	total, err := s.reddit.Run(ctx, nil)
	if err != nil {
		logger.Error("Reddit scrape job failed", err)
	} else {
		logger.Info("Reddit scrape job finished", "posts", total)
	}
	s.enforceRetention(ctx, store.PostsCollection, "scraped_at")
}

func (s *Scheduler) runEmbeddings(ctx context.Context) {
	logger.Info("Starting embedding backfill job")
	counts, err := s.embedder.Run(ctx)
	if err != nil {
		logger.Error("Embedding backfill job failed", err)
	}
	logger.Info("Embedding backfill job finished", "articles", counts.Articles, "posts", counts.Posts)
}

func (s *Scheduler) runSuggestions(ctx context.Context) {
	logger.Info("Starting suggestion generation job")
	limit := s.cfg.Suggest.ResultLimit
	totalStored := 0

	for _, category := range scrape.NewsCategories {
		query := fmt.Sprintf("Latest %s news and developments", category)
		result, err := s.analyzer.AnalyzeAndStore(ctx, query, limit, "")
		if err != nil {
			logger.Error("Suggestion generation failed for category", err, "category", category)
			continue
		}
		totalStored += result.Stored.StoredArticles + result.Stored.StoredPosts
	}

	for _, subreddit := range sortedSubreddits() {
		query := targetedQuery(subreddit)
		result, err := s.analyzer.AnalyzeAndStore(ctx, query, limit, "")
		if err != nil {
			logger.Error("Suggestion generation failed for subreddit", err, "subreddit", subreddit)
			continue
		}
		totalStored += result.Stored.StoredArticles + result.Stored.StoredPosts
	}

	s.enforceRetention(ctx, store.SuggestionsCollection, "analyzed_at")
	logger.Info("Suggestion generation job finished", "stored", totalStored)
}

func (s *Scheduler) enforceRetention(ctx context.Context, coll, timeField string) {
	removed, err := s.retention.Enforce(ctx, coll, timeField, s.cfg.Retention.MaxAge, s.cfg.Retention.MaxDocs)
	if err != nil {
		logger.Error("Retention pass failed", err, "collection", coll)
		return
	}
	if removed > 0 {
		logger.Info("Retention pass finished", "collection", coll, "removed", removed)
	}
}

// targetedQuery phrases a suggestion query for a subreddit using two of its
// mapped topics.
func targetedQuery(subreddit string) string {
	topics, ok := scrape.SubredditTopics[subreddit]
	if !ok || len(topics) == 0 {
		return fmt.Sprintf("Current discussions in r/%s", subreddit)
	}
	picks := rand.Perm(len(topics))
	n := 2
	if len(topics) < n {
		n = len(topics)
	}
	selected := make([]string, 0, n)
	for _, idx := range picks[:n] {
		selected = append(selected, topics[idx])
	}
	return fmt.Sprintf("Trending discussions about %s in r/%s", strings.Join(selected, " and "), subreddit)
}

// sortedSubreddits gives map iteration a stable order for logs and tests.
func sortedSubreddits() []string {
	subs := make([]string, 0, len(scrape.SubredditTopics))
	for sub := range scrape.SubredditTopics {
		subs = append(subs, sub)
	}
	sort.Strings(subs)
	return subs
}
