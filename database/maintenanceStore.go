package database

import (
	"context"
	"fmt"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// missing returns the values of field found in from that name no document
// in to. References are read before the targets, and a reference is only
// ever written after its target exists, so anything returned was dangling
// when the scan started and stays dangling.
func missing(ctx context.Context, from *mongo.Collection, field string, to *mongo.Collection) ([]interface{}, error) {
	refs, err := from.Distinct(ctx, field, bson.M{field: bson.M{"$exists": true}})
	if err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", from.Name(), field, err)
	}
	if len(refs) == 0 {
		return nil, nil
	}
	found, err := to.Distinct(ctx, "_id", bson.M{"_id": bson.M{"$in": refs}})
	if err != nil {
		return nil, fmt.Errorf("distinct ids of %s: %w", to.Name(), err)
	}
	present := make(map[interface{}]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var gone []interface{}
	for _, id := range refs {
		if id != nil && !present[id] {
			gone = append(gone, id)
		}
	}
	return gone, nil
}

func (s *Store) PruneDanglingReferences(ctx context.Context) (int64, error) {
	var touched int64
	pulls := []struct {
		coll   *mongo.Collection
		field  string
		target *mongo.Collection
	}{
		{s.diners, "reservations", s.reservations},
		{s.tables, "reservations", s.reservations},
		{s.reservations, "tables", s.tables},
	}
	for _, p := range pulls {
		gone, err := missing(ctx, p.coll, p.field, p.target)
		if err != nil {
			return touched, err
		}
		if s.afterPruneScan != nil {
			s.afterPruneScan()
		}
		if len(gone) == 0 {
			continue
		}
		result, err := p.coll.UpdateMany(ctx,
			bson.M{p.field: bson.M{"$in": gone}},
			bson.M{"$pull": bson.M{p.field: bson.M{"$in": gone}}},
		)
		if err != nil {
			return touched, fmt.Errorf("prune %s.%s: %w", p.coll.Name(), p.field, err)
		}
		touched += result.ModifiedCount
	}

	gone, err := missing(ctx, s.reservations, "payment", s.payments)
	if err != nil {
		return touched, err
	}
	if len(gone) > 0 {
		result, err := s.reservations.UpdateMany(ctx,
			bson.M{"payment": bson.M{"$in": gone}},
			bson.M{"$unset": bson.M{"payment": ""}},
		)
		if err != nil {
			return touched, fmt.Errorf("prune reservations.payment: %w", err)
		}
		touched += result.ModifiedCount
	}

	// A payment shares its reservation's _id, and is created only after the
	// reservation, so a payment without one is an orphan.
	orphans, err := missing(ctx, s.payments, "_id", s.reservations)
	if err != nil {
		return touched, err
	}
	if s.afterPruneScan != nil {
		s.afterPruneScan()
	}
	if len(orphans) == 0 {
		return touched, nil
	}
	deleted, err := s.payments.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": orphans}})
	if err != nil {
		return touched, fmt.Errorf("prune orphan payments: %w", err)
	}
	return touched + deleted.DeletedCount, nil
}

// sizeOf is the aggregation expression for the length of an array field
// that may be missing.
func sizeOf(field string) bson.M {
	return bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + field, bson.A{}}}}
}

func (s *Store) RecountReferences(ctx context.Context) (int64, error) {
	counters := []struct {
		coll           *mongo.Collection
		array, counter string
	}{
		{s.diners, "reservations", "reservationCount"},
		{s.tables, "reservations", "reservationCount"},
		{s.reservations, "tables", "tableCount"},
	}
	var touched int64
	for _, c := range counters {
		filter := bson.M{"$expr": bson.M{"$ne": bson.A{"$" + c.counter, sizeOf(c.array)}}}
		update := mongo.Pipeline{{{Key: "$set", Value: bson.M{c.counter: sizeOf(c.array)}}}}
		result, err := c.coll.UpdateMany(ctx, filter, update)
		if err != nil {
			return touched, fmt.Errorf("recount %s.%s: %w", c.coll.Name(), c.counter, err)
		}
		touched += result.ModifiedCount
	}
	return touched, nil
}

func (s *Store) EachPayment(ctx context.Context, fn func(*models.Payment) error) error {
	return each(ctx, s.payments, fn)
}

func (s *Store) EachReservation(ctx context.Context, fn func(*models.Reservation) error) error {
	return each(ctx, s.reservations, fn)
}

func each[T any](ctx context.Context, coll *mongo.Collection, fn func(*T) error) error {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return translate(err)
	}
	defer cursor.Close(ctx)
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		if err := fn(&doc); err != nil {
			return err
		}
	}
	return cursor.Err()
}
