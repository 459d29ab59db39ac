package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and text indexes the store relies on.
// Creating an index that already exists is a no-op on the server.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.diners: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
			{Keys: bson.D{{Key: "fname", Value: "text"}, {Key: "lname", Value: "text"}, {Key: "email", Value: "text"}}, Options: options.Index().SetName("diner_text")},
			{Keys: bson.D{{Key: "dateRegistered", Value: -1}}},
		},
		s.tables: {
			{Keys: bson.D{{Key: "tableName", Value: 1}}, Options: options.Index().SetUnique(true).SetName("tableName_unique")},
			{Keys: bson.D{{Key: "tableName", Value: "text"}}, Options: options.Index().SetName("table_text")},
			{Keys: bson.D{{Key: "dateAdded", Value: -1}}},
		},
		s.reservations: {
			{Keys: bson.D{{Key: "diner", Value: 1}}},
			{Keys: bson.D{{Key: "tables", Value: 1}}},
			{Keys: bson.D{{Key: "dateReserved", Value: -1}}},
		},
		s.workflows: {
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "startedAt", Value: -1}}},
			{Keys: bson.D{{Key: "reservation", Value: 1}, {Key: "kind", Value: 1}, {Key: "startedAt", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}
