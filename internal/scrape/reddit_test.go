package scrape

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSortPlanAlternatesByWeekday(t *testing.T) {
	sorts, filter := sortPlan(time.Monday) // weekday 1, odd
	if sorts[0] != "rising" || sorts[1] != "top" || filter != "month" {
		t.Errorf("odd weekday plan = %v/%s, want rising+top month", sorts, filter)
	}
	sorts, filter = sortPlan(time.Tuesday) // weekday 2, even
	if sorts[0] != "hot" || sorts[1] != "new" || filter != "week" {
		t.Errorf("even weekday plan = %v/%s, want hot+new week", sorts, filter)
	}
}

func TestBuildPostSelfPostHasNoURL(t *testing.T) {
	post := buildPost(redditThing{
		ID:         "abc123",
		Title:      "A self post",
		Selftext:   "Body text",
		URL:        "https://www.reddit.com/r/golang/comments/abc123/",
		IsSelf:     true,
		Author:     "gopher",
		CreatedUTC: 1756700000,
	}, "golang")
	if post.URL != nil {
		t.Errorf("self post url = %v, want nil", *post.URL)
	}
	if post.ID != "abc123" || post.Subreddit != "golang" {
		t.Errorf("post identity = %q/%q", post.ID, post.Subreddit)
	}
	if post.CreatedAt.IsZero() || post.ScrapedAt.IsZero() {
		t.Error("post timestamps not set")
	}
}

func TestBuildPostLinkPostKeepsURL(t *testing.T) {
	post := buildPost(redditThing{
		ID:     "def456",
		Title:  "A link post",
		URL:    "https://blog.example.com/entry",
		IsSelf: false,
	}, "golang")
	if post.URL == nil || *post.URL != "https://blog.example.com/entry" {
		t.Errorf("link post url = %v, want the external url", post.URL)
	}
}

func TestRedditListingDecode(t *testing.T) {
	payload := `{
		"data": {
			"children": [
				{"data": {"id": "p1", "title": "First", "is_self": true, "selftext": "body", "author": "u1", "created_utc": 1756700000.0}},
				{"data": {"id": "p2", "title": "Second", "is_self": false, "url": "https://example.com/x"}}
			]
		}
	}`
	var listing redditListing
	if err := json.Unmarshal([]byte(payload), &listing); err != nil {
		t.Fatalf("decoding listing: %v", err)
	}
	if len(listing.Data.Children) != 2 {
		t.Fatalf("decoded %d children, want 2", len(listing.Data.Children))
	}
	if listing.Data.Children[0].Data.ID != "p1" {
		t.Errorf("first id = %q, want p1", listing.Data.Children[0].Data.ID)
	}
	if !listing.Data.Children[0].Data.IsSelf {
		t.Error("is_self not decoded")
	}
}
