package database

import (
	"context"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var dinerListProjection = bson.D{{Key: "reservations", Value: 0}}

func (s *Store) InsertDiner(ctx context.Context, d *models.Diner) error {
	if d.Reservations == nil {
		d.Reservations = []primitive.ObjectID{}
	}
	_, err := s.diners.InsertOne(ctx, d)
	return translate(err)
}

func (s *Store) FindDiner(ctx context.Context, id primitive.ObjectID) (*models.Diner, error) {
	var diner models.Diner
	if err := s.diners.FindOne(ctx, bson.M{"_id": id}).Decode(&diner); err != nil {
		return nil, translate(err)
	}
	return &diner, nil
}

func (s *Store) ListDiners(ctx context.Context, q models.PageQuery) (*models.Page[models.Diner], error) {
	return findPage[models.Diner](ctx, s.diners, textOrAll(q.Keyword), q, dinerListProjection)
}

func (s *Store) UpdateDiner(ctx context.Context, id primitive.ObjectID, p models.DinerPatch) error {
	var updateObj primitive.D
	if p.Fname != nil {
		updateObj = append(updateObj, bson.E{Key: "fname", Value: p.Fname})
	}
	if p.Lname != nil {
		updateObj = append(updateObj, bson.E{Key: "lname", Value: p.Lname})
	}
	if p.Phone != nil {
		updateObj = append(updateObj, bson.E{Key: "phone", Value: p.Phone})
	}
	if p.Email != nil {
		updateObj = append(updateObj, bson.E{Key: "email", Value: p.Email})
	}
	if p.Address != nil {
		updateObj = append(updateObj, bson.E{Key: "address", Value: p.Address})
	}
	if p.Birthdate != nil {
		updateObj = append(updateObj, bson.E{Key: "birthdate", Value: p.Birthdate})
	}
	result, err := s.diners.UpdateOne(ctx, bson.M{"_id": id}, bson.D{{Key: "$set", Value: updateObj}})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteDiner(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.diners.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, translate(err)
	}
	return result.DeletedCount > 0, nil
}

func (s *Store) LinkDinerReservation(ctx context.Context, dinerID, reservationID primitive.ObjectID) (bool, error) {
	return link(ctx, s.diners, dinerID, "reservations", "reservationCount", reservationID)
}

func (s *Store) UnlinkDinerReservation(ctx context.Context, dinerID, reservationID primitive.ObjectID) (bool, error) {
	return unlink(ctx, s.diners, dinerID, "reservations", "reservationCount", reservationID)
}
