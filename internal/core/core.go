package core

import "time"

// ContentType distinguishes the two kinds of scraped content the pipeline
// analyzes.
type ContentType string

const (
	ContentTypeArticle ContentType = "article"
	ContentTypePost    ContentType = "post"
)

// AnalysisType is the persisted suggestion kind corresponding to a ContentType.
type AnalysisType string

const (
	AnalysisTypeNews   AnalysisType = "news_analysis"
	AnalysisTypeReddit AnalysisType = "reddit_analysis"
)

// AnalysisTypeFor maps a content type to its analysis type.
func AnalysisTypeFor(ct ContentType) AnalysisType {
	if ct == ContentTypePost {
		return AnalysisTypeReddit
	}
	return AnalysisTypeNews
}

// Labels is the closed set of category labels the extraction contract allows.
var Labels = []string{
	"general", "technology", "health", "sports",
	"politics", "science", "business", "entertainment",
}

// ValidLabel reports whether label is one of the allowed category labels.
func ValidLabel(label string) bool {
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Article is a scraped news article.
type Article struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	URL         string    `bson:"url" json:"url"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Content     string    `bson:"content,omitempty" json:"content,omitempty"`
	Author      string    `bson:"author,omitempty" json:"author,omitempty"`
	Source      string    `bson:"source,omitempty" json:"source,omitempty"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	Country     string    `bson:"country,omitempty" json:"country,omitempty"`
	PublishedAt string    `bson:"published_at,omitempty" json:"published_at,omitempty"`
	ScrapedAt   time.Time `bson:"scraped_at,omitempty" json:"scraped_at,omitempty"`
	Embedding   []float64 `bson:"embedding,omitempty" json:"embedding,omitempty"`

	// Score is the similarity annotated by vector search; never persisted.
	Score float64 `bson:"similarity_score,omitempty" json:"similarity_score,omitempty"`
}

// Comment is a single comment on a Post.
type Comment struct {
	Body      string    `bson:"body" json:"body"`
	Author    string    `bson:"author,omitempty" json:"author,omitempty"`
	Score     int       `bson:"score,omitempty" json:"score,omitempty"`
	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// Post is a scraped community discussion post. URL is nil for self posts.
type Post struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	URL       *string   `bson:"url" json:"url"`
	Title     string    `bson:"title" json:"title"`
	Body      string    `bson:"body,omitempty" json:"body,omitempty"`
	Author    string    `bson:"author,omitempty" json:"author,omitempty"`
	Subreddit string    `bson:"subreddit,omitempty" json:"subreddit,omitempty"`
	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	ScrapedAt time.Time `bson:"scraped_at,omitempty" json:"scraped_at,omitempty"`
	Comments  []Comment `bson:"comments,omitempty" json:"comments,omitempty"`
	Embedding []float64 `bson:"embedding,omitempty" json:"embedding,omitempty"`

	Score float64 `bson:"similarity_score,omitempty" json:"similarity_score,omitempty"`
}

// SuggestionCandidate is the model's claim about one content item, as parsed
// from the extraction response. Not yet validated, not yet persisted.
type SuggestionCandidate struct {
	Topic       string   `json:"topic"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
	Label       string   `json:"label"`
	URL         *string  `json:"url"`

	// ContentType tags which extraction batch produced the candidate.
	ContentType ContentType `json:"content_type,omitempty"`
}

// Suggestion is a persisted, deduplicated content suggestion.
type Suggestion struct {
	SuggestionID string       `bson:"suggestion_id" json:"suggestion_id"`
	Topic        string       `bson:"topic" json:"topic"`
	Keywords     []string     `bson:"keywords" json:"keywords"`
	Description  string       `bson:"description" json:"description"`
	Label        string       `bson:"label" json:"label"`
	URL          *string      `bson:"url" json:"url"`
	Type         AnalysisType `bson:"type" json:"type"`
	SourceQuery  string       `bson:"source_query,omitempty" json:"source_query,omitempty"`
	CreatedAt    time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `bson:"updated_at" json:"updated_at"`
	AnalyzedAt   time.Time    `bson:"analyzed_at" json:"analyzed_at"`
}
