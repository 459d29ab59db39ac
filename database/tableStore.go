package database

import (
	"context"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var tableListProjection = bson.D{{Key: "reservations", Value: 0}}

func (s *Store) InsertTable(ctx context.Context, t *models.Table) error {
	if t.Reservations == nil {
		t.Reservations = []primitive.ObjectID{}
	}
	_, err := s.tables.InsertOne(ctx, t)
	return translate(err)
}

func (s *Store) FindTable(ctx context.Context, id primitive.ObjectID) (*models.Table, error) {
	var table models.Table
	if err := s.tables.FindOne(ctx, bson.M{"_id": id}).Decode(&table); err != nil {
		return nil, translate(err)
	}
	return &table, nil
}

func (s *Store) ListTables(ctx context.Context, q models.PageQuery) (*models.Page[models.Table], error) {
	return findPage[models.Table](ctx, s.tables, textOrAll(q.Keyword), q, tableListProjection)
}

func (s *Store) UpdateTable(ctx context.Context, id primitive.ObjectID, p models.TablePatch) error {
	var updateObj primitive.D
	if p.TableName != nil {
		updateObj = append(updateObj, bson.E{Key: "tableName", Value: p.TableName})
	}
	if p.SeatCapacity != nil {
		updateObj = append(updateObj, bson.E{Key: "seatCapacity", Value: p.SeatCapacity})
	}
	result, err := s.tables.UpdateOne(ctx, bson.M{"_id": id}, bson.D{{Key: "$set", Value: updateObj}})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteTable(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.tables.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, translate(err)
	}
	return result.DeletedCount > 0, nil
}

func (s *Store) CountTables(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	n, err := s.tables.CountDocuments(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return n, translate(err)
}

func (s *Store) LinkTableReservation(ctx context.Context, tableID, reservationID primitive.ObjectID) (bool, error) {
	return link(ctx, s.tables, tableID, "reservations", "reservationCount", reservationID)
}

func (s *Store) UnlinkTableReservation(ctx context.Context, tableID, reservationID primitive.ObjectID) (bool, error) {
	return unlink(ctx, s.tables, tableID, "reservations", "reservationCount", reservationID)
}
