// Package scrape collects content from external providers into the store.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"curator/internal/config"
	"curator/internal/core"
	"curator/internal/logger"
	"curator/internal/store"
)

// NewsCategories is the closed set of categories scraped from the headlines
// provider. It mirrors the label set minus "general" being last.
var NewsCategories = []string{
	"technology", "health", "sports", "politics",
	"science", "business", "entertainment", "general",
}

const (
	newsAPIBaseURL  = "https://newsapi.org/v2/top-headlines"
	newsPagePause   = 1 * time.Second
	categoryPause   = 2 * time.Second
	readableTimeout = 15 * time.Second
)

// ArticleUpserter persists scraped articles.
type ArticleUpserter interface {
	UpsertArticles(ctx context.Context, articles []core.Article) (store.UpsertResult, error)
}

// NewsScraper pulls top headlines per category from NewsAPI.
type NewsScraper struct {
	apiKey   string
	pageSize int
	maxPages int
	country  string
	language string
	client   *http.Client
	store    ArticleUpserter
}

// NewNewsScraper builds a scraper from config. Returns an error when the API
// key is absent.
func NewNewsScraper(cfg config.NewsAPIConfig, st ArticleUpserter) (*NewsScraper, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("newsapi key is not configured")
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 2
	}
	country := cfg.Country
	if country == "" {
		country = "us"
	}
	language := cfg.Language
	if language == "" {
		language = "en"
	}
	return &NewsScraper{
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		maxPages: maxPages,
		country:  country,
		language: language,
		client:   &http.Client{Timeout: 10 * time.Second},
		store:    st,
	}, nil
}

type newsAPIResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Articles []rawHeadline `json:"articles"`
}

type rawHeadline struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// ScrapeCategory fetches up to maxPages of headlines for one category,
// filtering out removed and unusable entries.
func (n *NewsScraper) ScrapeCategory(ctx context.Context, category string) ([]core.Article, error) {
	var all []core.Article
	for page := 1; page <= n.maxPages; page++ {
		resp, err := n.fetchPage(ctx, category, page)
		if err != nil {
			return all, err
		}
		if resp.Status != "ok" {
			return all, fmt.Errorf("newsapi error: %s", resp.Message)
		}
		if len(resp.Articles) == 0 {
			logger.Info("No more headlines", "category", category, "page", page)
			break
		}

		kept := 0
		for _, raw := range resp.Articles {
			article, ok := buildArticle(raw, category, n.country)
			if !ok {
				continue
			}
			all = append(all, article)
			kept++
		}
		logger.Info("Processed headlines page", "category", category, "page", page, "kept", kept)

		if page < n.maxPages {
			sleepCtx(ctx, newsPagePause)
		}
	}
	return all, nil
}

func (n *NewsScraper) fetchPage(ctx context.Context, category string, page int) (*newsAPIResponse, error) {
	params := url.Values{}
	params.Set("apiKey", n.apiKey)
	params.Set("category", category)
	params.Set("pageSize", strconv.Itoa(n.pageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("language", n.language)
	params.Set("country", n.country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching headlines: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned status %d", resp.StatusCode)
	}

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding headlines response: %w", err)
	}
	return &parsed, nil
}

// buildArticle validates and normalizes one provider entry. Entries without
// a url or title, or redacted to "[Removed]", are rejected.
func buildArticle(raw rawHeadline, category, country string) (core.Article, bool) {
	if raw.URL == "" || raw.Title == "" {
		return core.Article{}, false
	}
	if raw.Title == "[Removed]" || raw.Description == "[Removed]" {
		return core.Article{}, false
	}

	author := strings.TrimSpace(raw.Author)
	if author == "" {
		author = "Unknown"
	}
	source := raw.Source.Name
	if source == "" {
		source = "NewsAPI"
	}
	return core.Article{
		URL:         strings.TrimSpace(raw.URL),
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Content:     strings.TrimSpace(raw.Content),
		Author:      author,
		Source:      source,
		Category:    category,
		Country:     country,
		PublishedAt: raw.PublishedAt,
		ScrapedAt:   time.Now().UTC(),
	}, true
}

// contentTruncated reports whether the provider cut the article body, which
// it marks with a "[+N chars]" suffix.
func contentTruncated(content string) bool {
	return strings.Contains(content, "[+") && strings.HasSuffix(content, "chars]")
}

// recoverContent re-fetches the article page and extracts the readable text
// when the provider delivered a truncated body. Failures keep the truncated
// content.
func (n *NewsScraper) recoverContent(article *core.Article) {
	if !contentTruncated(article.Content) {
		return
	}
	parsed, err := readability.FromURL(article.URL, readableTimeout)
	if err != nil {
		logger.Debug("Could not recover full article text", "url", article.URL, "error", err.Error())
		return
	}
	text := strings.TrimSpace(parsed.TextContent)
	if len(text) > len(article.Content) {
		article.Content = text
	}
}

// Run scrapes every category and upserts the results. A category failure
// logs and moves on.
func (n *NewsScraper) Run(ctx context.Context, categories []string) (int, error) {
	if len(categories) == 0 {
		categories = NewsCategories
	}
	total := 0
	for i, category := range categories {
		logger.Info("Scraping headlines", "category", category)
		articles, err := n.ScrapeCategory(ctx, category)
		if err != nil {
			logger.Error("Category scrape failed", err, "category", category)
		}
		for j := range articles {
			n.recoverContent(&articles[j])
		}
		if len(articles) > 0 {
			result, err := n.store.UpsertArticles(ctx, articles)
			if err != nil {
				logger.Error("Failed to store articles", err, "category", category)
			} else {
				total += int(result.Upserted + result.Updated)
				logger.Info("Stored articles", "category", category,
					"new", result.Upserted, "updated", result.Updated)
			}
		}
		if i < len(categories)-1 {
			sleepCtx(ctx, categoryPause)
		}
	}
	logger.Info("News scrape complete", "total", total)
	return total, nil
}

// sleepCtx pauses for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
