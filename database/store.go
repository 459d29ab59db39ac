package database

import (
	"context"
	"errors"
	"fmt"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store implements every persistence operation of the services on top of
// five collections. Each method is one round trip unless noted.
type Store struct {
	client       *mongo.Client
	diners       *mongo.Collection
	tables       *mongo.Collection
	reservations *mongo.Collection
	payments     *mongo.Collection
	workflows    *mongo.Collection

	// afterPruneScan runs between reading references and removing the
	// dangling ones.
	afterPruneScan func()
}

func NewStore(client *mongo.Client, dbName string) *Store {
	return &Store{
		client:       client,
		diners:       OpenCollection(client, dbName, "diners"),
		tables:       OpenCollection(client, dbName, "tables"),
		reservations: OpenCollection(client, dbName, "reservations"),
		payments:     OpenCollection(client, dbName, "payments"),
		workflows:    OpenCollection(client, dbName, "workflows"),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return models.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", models.ErrDuplicate, err)
	}
	return err
}

// findPage counts the filter, then fetches one sorted page of it.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, q models.PageQuery, projection bson.D) (*models.Page[T], error) {
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSkip(q.Skip()).SetLimit(int64(q.Limit))
	if len(q.Sort) > 0 {
		opts.SetSort(q.Sort)
	}
	if len(projection) > 0 {
		opts.SetProjection(projection)
	}
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return models.NewPage(docs, total, q), nil
}

// exists is used after a guarded update matched nothing, to tell a missing
// document from a guard that did not hold.
func exists(ctx context.Context, coll *mongo.Collection, id interface{}) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func textOrAll(keyword string) bson.M {
	if keyword == "" {
		return bson.M{}
	}
	return bson.M{"$text": bson.M{"$search": keyword}}
}
