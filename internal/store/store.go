// Package store provides access to the MongoDB collections backing the
// pipeline: scraped news, scraped posts, and generated suggestions.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"curator/internal/config"
	"curator/internal/core"
	"curator/internal/logger"
)

const (
	// NewsCollection holds scraped news articles.
	NewsCollection = "news"
	// PostsCollection holds scraped community posts.
	PostsCollection = "reddit_posts"
	// SuggestionsCollection holds generated content suggestions.
	SuggestionsCollection = "suggestions"
)

// Store wraps a MongoDB database connection. A Store is safe for concurrent
// use; no document state is cached client-side.
type Store struct {
	client      *mongo.Client
	db          *mongo.Database
	vectorIndex string
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, cfg config.Mongo) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.URI).SetAppName(cfg.AppName)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Store{
		client:      client,
		db:          client.Database(cfg.Database),
		vectorIndex: cfg.VectorIndex,
	}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Collection returns a handle to a named collection.
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// EnsureIndexes creates the indexes the pipeline relies on: the unique
// fingerprint index is the backstop against concurrent duplicate writes, the
// url+title index serves duplicate detection on scraped content.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := true
	_, err := s.Collection(SuggestionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "suggestion_id", Value: 1}},
		Options: &options.IndexOptions{Unique: &unique},
	})
	if err != nil {
		return fmt.Errorf("failed to create suggestion_id index: %w", err)
	}

	for _, name := range []string{NewsCollection, PostsCollection, SuggestionsCollection} {
		_, err := s.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "url", Value: 1}, {Key: "title", Value: 1}},
		})
		if err != nil {
			return fmt.Errorf("failed to create url_title index on %s: %w", name, err)
		}
	}
	return nil
}

// vectorSearchPipeline builds the aggregation for similarity retrieval:
// vector search annotated with the similarity score, post-filtered to
// documents that have a non-empty title and a stored embedding.
func vectorSearchPipeline(index string, vector []float64, limit int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: index},
			{Key: "path", Value: "embedding"},
			{Key: "queryVector", Value: vector},
			{Key: "numCandidates", Value: limit * 2},
			{Key: "limit", Value: limit},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "similarity_score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "embedding", Value: bson.D{{Key: "$exists", Value: true}}},
			{Key: "title", Value: bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: ""}}},
		}}},
	}
}

// VectorSearchArticles returns up to limit articles ranked by cosine
// similarity to vector.
func (s *Store) VectorSearchArticles(ctx context.Context, vector []float64, limit int64) ([]core.Article, error) {
	cursor, err := s.Collection(NewsCollection).Aggregate(ctx, vectorSearchPipeline(s.vectorIndex, vector, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to vector search %s: %w", NewsCollection, err)
	}
	defer cursor.Close(ctx)

	var articles []core.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode article results: %w", err)
	}
	return articles, nil
}

// VectorSearchPosts returns up to limit posts ranked by cosine similarity to
// vector.
func (s *Store) VectorSearchPosts(ctx context.Context, vector []float64, limit int64) ([]core.Post, error) {
	cursor, err := s.Collection(PostsCollection).Aggregate(ctx, vectorSearchPipeline(s.vectorIndex, vector, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to vector search %s: %w", PostsCollection, err)
	}
	defer cursor.Close(ctx)

	var posts []core.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode post results: %w", err)
	}
	return posts, nil
}

// UpsertResult reports the outcome of a bulk upsert.
type UpsertResult struct {
	Upserted int64
	Updated  int64
}

// UpsertArticles writes articles keyed on url, inserting new ones and
// replacing existing ones.
func (s *Store) UpsertArticles(ctx context.Context, articles []core.Article) (UpsertResult, error) {
	if len(articles) == 0 {
		return UpsertResult{}, nil
	}
	models := make([]mongo.WriteModel, 0, len(articles))
	for _, a := range articles {
		a.ID = "" // let mongo assign _id on insert
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "url", Value: a.URL}}).
			SetReplacement(a).
			SetUpsert(true))
	}
	return s.bulkUpsert(ctx, NewsCollection, models)
}

// UpsertPosts writes posts keyed on their provider id.
func (s *Store) UpsertPosts(ctx context.Context, posts []core.Post) (UpsertResult, error) {
	if len(posts) == 0 {
		return UpsertResult{}, nil
	}
	models := make([]mongo.WriteModel, 0, len(posts))
	for _, p := range posts {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: p.ID}}).
			SetReplacement(p).
			SetUpsert(true))
	}
	return s.bulkUpsert(ctx, PostsCollection, models)
}

func (s *Store) bulkUpsert(ctx context.Context, coll string, models []mongo.WriteModel) (UpsertResult, error) {
	res, err := s.Collection(coll).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to upsert into %s: %w", coll, err)
	}
	return UpsertResult{Upserted: res.UpsertedCount, Updated: res.ModifiedCount}, nil
}

// SuggestionExists reports whether a suggestion with the exact fingerprint is
// already stored.
func (s *Store) SuggestionExists(ctx context.Context, suggestionID string) (bool, error) {
	count, err := s.Collection(SuggestionsCollection).CountDocuments(ctx,
		bson.D{{Key: "suggestion_id", Value: suggestionID}})
	if err != nil {
		return false, fmt.Errorf("failed to check suggestion fingerprint: %w", err)
	}
	return count > 0, nil
}

// NearDuplicateExists reports whether a stored suggestion shares the same
// topic (case-insensitively), label, and source query.
func (s *Store) NearDuplicateExists(ctx context.Context, topic, label, sourceQuery string) (bool, error) {
	collation := &options.Collation{Locale: "en", Strength: 2}
	count, err := s.Collection(SuggestionsCollection).CountDocuments(ctx,
		bson.D{
			{Key: "topic", Value: topic},
			{Key: "label", Value: label},
			{Key: "source_query", Value: sourceQuery},
		},
		options.Count().SetCollation(collation))
	if err != nil {
		return false, fmt.Errorf("failed to check near-duplicate: %w", err)
	}
	return count > 0, nil
}

// InsertSuggestions writes a batch of suggestions. Inserts are unordered so a
// duplicate-key rejection (the fingerprint race backstop) does not abort the
// rest of the batch; the returned count covers only documents actually
// written.
func (s *Store) InsertSuggestions(ctx context.Context, suggestions []core.Suggestion) (int, error) {
	if len(suggestions) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(suggestions))
	for i, sg := range suggestions {
		docs[i] = sg
	}
	res, err := s.Collection(SuggestionsCollection).InsertMany(ctx, docs,
		options.InsertMany().SetOrdered(false))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) && res != nil {
			logger.Warn("Duplicate fingerprint rejected by store during insert",
				"inserted", len(res.InsertedIDs), "attempted", len(suggestions))
			return len(res.InsertedIDs), nil
		}
		return 0, fmt.Errorf("failed to insert suggestions: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// TouchSuggestion refreshes updated_at and analyzed_at on a stored
// suggestion; used on retrieval-triggered re-evaluation of a known item.
func (s *Store) TouchSuggestion(ctx context.Context, suggestionID string, now time.Time) error {
	_, err := s.Collection(SuggestionsCollection).UpdateOne(ctx,
		bson.D{{Key: "suggestion_id", Value: suggestionID}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "updated_at", Value: now},
			{Key: "analyzed_at", Value: now},
		}}})
	if err != nil {
		return fmt.Errorf("failed to touch suggestion %s: %w", suggestionID, err)
	}
	return nil
}

// CountDocuments returns the total number of documents in a collection.
func (s *Store) CountDocuments(ctx context.Context, coll string) (int64, error) {
	count, err := s.Collection(coll).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", coll, err)
	}
	return count, nil
}

// missingEmbeddingFilter matches documents with no usable embedding.
var missingEmbeddingFilter = bson.D{{Key: "$or", Value: bson.A{
	bson.D{{Key: "embedding", Value: bson.D{{Key: "$exists", Value: false}}}},
	bson.D{{Key: "embedding", Value: nil}},
}}}

// CountMissingEmbeddings returns how many documents in a collection still
// lack an embedding.
func (s *Store) CountMissingEmbeddings(ctx context.Context, coll string) (int64, error) {
	count, err := s.Collection(coll).CountDocuments(ctx, missingEmbeddingFilter)
	if err != nil {
		return 0, fmt.Errorf("failed to count missing embeddings in %s: %w", coll, err)
	}
	return count, nil
}

// ArticlesMissingEmbeddings returns news articles without an embedding.
func (s *Store) ArticlesMissingEmbeddings(ctx context.Context) ([]core.Article, error) {
	cursor, err := s.Collection(NewsCollection).Find(ctx, missingEmbeddingFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to find articles missing embeddings: %w", err)
	}
	defer cursor.Close(ctx)

	var articles []core.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode articles: %w", err)
	}
	return articles, nil
}

// PostsMissingEmbeddings returns posts without an embedding.
func (s *Store) PostsMissingEmbeddings(ctx context.Context) ([]core.Post, error) {
	cursor, err := s.Collection(PostsCollection).Find(ctx, missingEmbeddingFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts missing embeddings: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []core.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// SetEmbedding stores the embedding vector and the exact string it was
// computed from on a document.
func (s *Store) SetEmbedding(ctx context.Context, coll string, id interface{}, embedding []float64, embeddingString string) error {
	_, err := s.Collection(coll).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "embedding", Value: embedding},
			{Key: "embedding_string", Value: embeddingString},
		}}})
	if err != nil {
		return fmt.Errorf("failed to set embedding on %s/%v: %w", coll, id, err)
	}
	return nil
}

// IDsOlderThan returns the ids of documents whose timeField is before cutoff,
// ordered oldest first.
func (s *Store) IDsOlderThan(ctx context.Context, coll, timeField string, cutoff time.Time) ([]interface{}, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetSort(bson.D{{Key: timeField, Value: 1}})
	cursor, err := s.Collection(coll).Find(ctx,
		bson.D{{Key: timeField, Value: bson.D{{Key: "$lt", Value: cutoff}}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find old documents in %s: %w", coll, err)
	}
	defer cursor.Close(ctx)
	return collectIDs(ctx, cursor)
}

// OldestIDs returns the ids of the n oldest documents by insertion order.
func (s *Store) OldestIDs(ctx context.Context, coll string, n int64) ([]interface{}, error) {
	opts := options.Find().
		SetProjection(bson.D{{Key: "_id", Value: 1}}).
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(n)
	cursor, err := s.Collection(coll).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find oldest documents in %s: %w", coll, err)
	}
	defer cursor.Close(ctx)
	return collectIDs(ctx, cursor)
}

func collectIDs(ctx context.Context, cursor *mongo.Cursor) ([]interface{}, error) {
	var ids []interface{}
	for cursor.Next(ctx) {
		var doc struct {
			ID interface{} `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}

// DeleteByIDs removes the documents with the given ids and returns the
// deleted count.
func (s *Store) DeleteByIDs(ctx context.Context, coll string, ids []interface{}) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.Collection(coll).DeleteMany(ctx,
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", coll, err)
	}
	return res.DeletedCount, nil
}
