package database

import (
	"context"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// link pushes ref onto the array field of document id and increments the
// counter, in one update that only matches while ref is absent. Calling it
// twice moves the counter once.
func link(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field, counter string, ref primitive.ObjectID) (bool, error) {
	result, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, field: bson.M{"$ne": ref}},
		bson.M{
			"$push": bson.M{field: ref},
			"$inc":  bson.M{counter: 1},
		},
	)
	if err != nil {
		return false, translate(err)
	}
	if result.ModifiedCount > 0 {
		return true, nil
	}
	found, err := exists(ctx, coll, id)
	if err != nil {
		return false, translate(err)
	}
	if !found {
		return false, models.ErrNotFound
	}
	return false, nil
}

// unlink is the inverse of link. A missing document counts as already
// unlinked.
func unlink(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, field, counter string, ref primitive.ObjectID) (bool, error) {
	result, err := coll.UpdateOne(ctx,
		bson.M{"_id": id, field: ref},
		bson.M{
			"$pull": bson.M{field: ref},
			"$inc":  bson.M{counter: -1},
		},
	)
	if err != nil {
		return false, translate(err)
	}
	return result.ModifiedCount > 0, nil
}
