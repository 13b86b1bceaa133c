package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"curator/internal/config"
	"curator/internal/core"
	"curator/internal/logger"
	"curator/internal/store"
)

// SubredditTopics maps each scraped subreddit to query phrasings used for
// targeted suggestion generation.
var SubredditTopics = map[string][]string{
	"technology": {
		"emerging tech trends",
		"AI developments",
		"software engineering",
		"tech innovations",
	},
	"health": {
		"medical research",
		"wellness trends",
		"mental health",
		"fitness advice",
	},
	"sports": {
		"sports events",
		"athlete performances",
		"team updates",
		"league standings",
	},
	"politics": {
		"policy developments",
		"election news",
		"political debates",
		"government actions",
	},
	"science": {
		"scientific discoveries",
		"research findings",
		"space exploration",
		"scientific studies",
	},
	"business": {
		"market trends",
		"company news",
		"economic updates",
		"startup developments",
	},
	"entertainment": {
		"movie releases",
		"TV show updates",
		"celebrity news",
		"media industry",
	},
}

const (
	redditBaseURL       = "https://www.reddit.com"
	defaultPostLimit    = 15
	defaultCommentLimit = 5
	subredditPause      = 2 * time.Second
)

// PostUpserter persists scraped posts.
type PostUpserter interface {
	UpsertPosts(ctx context.Context, posts []core.Post) (store.UpsertResult, error)
}

// RedditScraper pulls posts from public subreddit listings, alternating sort
// methods by weekday for feed diversity.
type RedditScraper struct {
	userAgent    string
	postLimit    int
	commentLimit int
	client       *http.Client
	store        PostUpserter

	// now is swappable so tests can pin the weekday.
	now func() time.Time
}

// NewRedditScraper builds a scraper from config.
func NewRedditScraper(cfg config.RedditConfig, st PostUpserter) *RedditScraper {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "curator/1.0"
	}
	postLimit := cfg.PostLimit
	if postLimit <= 0 {
		postLimit = defaultPostLimit
	}
	commentLimit := cfg.CommentLimit
	if commentLimit <= 0 {
		commentLimit = defaultCommentLimit
	}
	return &RedditScraper{
		userAgent:    userAgent,
		postLimit:    postLimit,
		commentLimit: commentLimit,
		client:       &http.Client{Timeout: 15 * time.Second},
		store:        st,
		now:          time.Now,
	}
}

// sortPlan selects the sort methods and top-listing time filter for a day.
// Even weekdays use the default feeds, odd weekdays the discovery feeds.
func sortPlan(day time.Weekday) (sorts []string, timeFilter string) {
	if int(day)%2 == 0 {
		return []string{"hot", "new"}, "week"
	}
	return []string{"rising", "top"}, "month"
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditThing `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditThing struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	IsSelf     bool    `json:"is_self"`
	Author     string  `json:"author"`
	Subreddit  string  `json:"subreddit"`
	CreatedUTC float64 `json:"created_utc"`
	Body       string  `json:"body"`
	Score      int     `json:"score"`
}

// ScrapeSubreddit collects posts for one subreddit across the day's sort
// methods, deduplicated by post id. The post budget is split across sorts.
func (r *RedditScraper) ScrapeSubreddit(ctx context.Context, subreddit string) ([]core.Post, error) {
	sorts, timeFilter := sortPlan(r.now().UTC().Weekday())
	perSort := r.postLimit / len(sorts)
	if perSort < 1 {
		perSort = 1
	}

	seen := make(map[string]struct{})
	var posts []core.Post
	for _, sort := range sorts {
		things, err := r.fetchListing(ctx, subreddit, sort, timeFilter, perSort)
		if err != nil {
			logger.Error("Listing fetch failed", err, "subreddit", subreddit, "sort", sort)
			continue
		}
		for _, thing := range things {
			if _, dup := seen[thing.ID]; dup {
				continue
			}
			seen[thing.ID] = struct{}{}
			post := buildPost(thing, subreddit)
			post.Comments = r.fetchComments(ctx, thing.ID)
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (r *RedditScraper) fetchListing(ctx context.Context, subreddit, sort, timeFilter string, limit int) ([]redditThing, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if sort == "top" {
		params.Set("t", timeFilter)
	}
	endpoint := fmt.Sprintf("%s/r/%s/%s.json?%s", redditBaseURL, subreddit, sort, params.Encode())

	var listing redditListing
	if err := r.getJSON(ctx, endpoint, &listing); err != nil {
		return nil, err
	}
	things := make([]redditThing, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		things = append(things, child.Data)
	}
	return things, nil
}

// fetchComments retrieves up to the configured number of top-level comments.
// Comment failures degrade to a post without comments.
func (r *RedditScraper) fetchComments(ctx context.Context, postID string) []core.Comment {
	endpoint := fmt.Sprintf("%s/comments/%s.json?limit=%d&depth=1", redditBaseURL, postID, r.commentLimit)

	// The comments endpoint returns two listings: the post, then its
	// comment tree.
	var payload []redditListing
	if err := r.getJSON(ctx, endpoint, &payload); err != nil {
		logger.Debug("Comment fetch failed", "post", postID, "error", err.Error())
		return nil
	}
	if len(payload) < 2 {
		return nil
	}

	var comments []core.Comment
	for _, child := range payload[1].Data.Children {
		if len(comments) >= r.commentLimit {
			break
		}
		if child.Data.Body == "" {
			continue
		}
		comments = append(comments, core.Comment{
			Body:      child.Data.Body,
			Author:    child.Data.Author,
			Score:     child.Data.Score,
			CreatedAt: time.Unix(int64(child.Data.CreatedUTC), 0).UTC(),
		})
	}
	return comments
}

func (r *RedditScraper) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("listing returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// buildPost maps one listing entry to a Post. Self posts carry no external
// url.
func buildPost(thing redditThing, subreddit string) core.Post {
	var postURL *string
	if !thing.IsSelf && thing.URL != "" {
		u := thing.URL
		postURL = &u
	}
	return core.Post{
		ID:        thing.ID,
		URL:       postURL,
		Title:     thing.Title,
		Body:      thing.Selftext,
		Author:    thing.Author,
		Subreddit: subreddit,
		CreatedAt: time.Unix(int64(thing.CreatedUTC), 0).UTC(),
		ScrapedAt: time.Now().UTC(),
	}
}

// Run scrapes every configured subreddit and upserts the results.
func (r *RedditScraper) Run(ctx context.Context, subreddits []string) (int, error) {
	if len(subreddits) == 0 {
		for sub := range SubredditTopics {
			subreddits = append(subreddits, sub)
		}
	}
	total := 0
	for i, subreddit := range subreddits {
		logger.Info("Scraping subreddit", "subreddit", subreddit)
		posts, err := r.ScrapeSubreddit(ctx, subreddit)
		if err != nil {
			logger.Error("Subreddit scrape failed", err, "subreddit", subreddit)
			continue
		}
		if len(posts) > 0 {
			result, err := r.store.UpsertPosts(ctx, posts)
			if err != nil {
				logger.Error("Failed to store posts", err, "subreddit", subreddit)
			} else {
				total += int(result.Upserted + result.Updated)
				logger.Info("Stored posts", "subreddit", subreddit,
					"new", result.Upserted, "updated", result.Updated)
			}
		}
		if i < len(subreddits)-1 {
			sleepCtx(ctx, subredditPause)
		}
	}
	logger.Info("Reddit scrape complete", "total", total)
	return total, nil
}
