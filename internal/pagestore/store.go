package pagestore

/*
Page Store Responsibilities
- Idempotent upsert of crawled-page records keyed by canonical URL.
- Indexed aggregate queries over domain and timestamp for the
  dump-status and domain-stats CLI surfaces.

Page records are never deleted by the core crawl loop; only upserted.
*/

import (
	"context"
	"time"

	"github.com/nullmapper/distcrawler/pkg/failure"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Sink is the subset of Store the worker pipeline depends on. Workers
// take a Sink rather than a *Store so tests can substitute an
// in-memory fake instead of dialing a live document store.
type Sink interface {
	SavePage(ctx context.Context, page Page) failure.ClassifiedError
}

type Store struct {
	client *mongo.Client
	pages  *mongo.Collection
}

var _ Sink = (*Store)(nil)

// Connect dials the document store and returns a Store bound to the
// "pages" collection of db.
func Connect(ctx context.Context, mongoURL string, db string) (*Store, failure.ClassifiedError) {
	client, err := mongo.Connect(options.Client().ApplyURI(mongoURL))
	if err != nil {
		return nil, &StoreError{Message: err.Error(), Cause: ErrCauseConnectFailure}
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, &StoreError{Message: err.Error(), Cause: ErrCauseConnectFailure}
	}
	return &Store{
		client: client,
		pages:  client.Database(db).Collection("pages"),
	}, nil
}

// Init creates the uniqueness index on url and secondary indexes on
// domain and timestamp. Idempotent: safe to call on every startup.
func (s *Store) Init(ctx context.Context) failure.ClassifiedError {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "domain", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
	}
	if _, err := s.pages.Indexes().CreateMany(ctx, models); err != nil {
		return &StoreError{Message: err.Error(), Cause: ErrCauseIndexFailure, Retryable: false}
	}
	return nil
}

// SavePage upserts a page document by url; repeated upserts for the
// same url never create duplicate documents.
func (s *Store) SavePage(ctx context.Context, page Page) failure.ClassifiedError {
	filter := bson.D{{Key: "url", Value: page.URL}}
	update := bson.D{{Key: "$set", Value: page}}
	opts := options.UpdateOne().SetUpsert(true)
	if _, err := s.pages.UpdateOne(ctx, filter, update, opts); err != nil {
		return &StoreError{Message: err.Error(), Cause: ErrCauseWriteFailure, Retryable: true}
	}
	return nil
}

// GetPage returns the stored page for url, or (Page{}, false, nil) if
// no document exists.
func (s *Store) GetPage(ctx context.Context, url string) (Page, bool, failure.ClassifiedError) {
	var page Page
	err := s.pages.FindOne(ctx, bson.D{{Key: "url", Value: url}}).Decode(&page)
	if err == mongo.ErrNoDocuments {
		return Page{}, false, nil
	}
	if err != nil {
		return Page{}, false, &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure, Retryable: true}
	}
	return page, true, nil
}

// CountPages returns the approximate number of stored pages.
func (s *Store) CountPages(ctx context.Context) (int64, failure.ClassifiedError) {
	n, err := s.pages.EstimatedDocumentCount(ctx)
	if err != nil {
		return 0, &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure, Retryable: true}
	}
	return n, nil
}

// AggregateByDomain returns the top-limit hosts by stored page count,
// descending.
func (s *Store) AggregateByDomain(ctx context.Context, limit int) ([]DomainCount, failure.ClassifiedError) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$domain"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := s.pages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure, Retryable: true}
	}
	defer cursor.Close(ctx)

	var results []DomainCount
	if err := cursor.All(ctx, &results); err != nil {
		return nil, &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure, Retryable: true}
	}
	return results, nil
}

// AggregateStatusSince returns a status-code histogram over pages
// whose timestamp is at or after since.
func (s *Store) AggregateStatusSince(ctx context.Context, since time.Time) ([]StatusCount, failure.ClassifiedError) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: float64(since.Unix())}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.pages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure, Retryable: true}
	}
	defer cursor.Close(ctx)

	var results []StatusCount
	if err := cursor.All(ctx, &results); err != nil {
		return nil, &StoreError{Message: err.Error(), Cause: ErrCauseReadFailure, Retryable: true}
	}
	return results, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) failure.ClassifiedError {
	if err := s.client.Disconnect(ctx); err != nil {
		return &StoreError{Message: err.Error(), Cause: ErrCauseConnectFailure}
	}
	return nil
}
