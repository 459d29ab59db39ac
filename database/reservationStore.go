package database

import (
	"context"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var reservationListProjection = bson.D{{Key: "tables", Value: 0}}

func (s *Store) InsertReservation(ctx context.Context, r *models.Reservation) error {
	if r.Tables == nil {
		r.Tables = []primitive.ObjectID{}
	}
	_, err := s.reservations.InsertOne(ctx, r)
	return translate(err)
}

func (s *Store) FindReservation(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.reservations.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation); err != nil {
		return nil, translate(err)
	}
	return &reservation, nil
}

// FindReservationView joins the diner, tables and payment documents onto
// the reservation, leaving out their own reference arrays.
func (s *Store) FindReservationView(ctx context.Context, id primitive.ObjectID) (*models.ReservationView, error) {
	match := bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}}
	lookupDiner := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: s.diners.Name()},
		{Key: "localField", Value: "diner"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "diner"},
	}}}
	unwindDiner := bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$diner"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}
	lookupTables := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: s.tables.Name()},
		{Key: "localField", Value: "tables"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "tables"},
	}}}
	lookupPayment := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: s.payments.Name()},
		{Key: "localField", Value: "payment"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "payment"},
	}}}
	unwindPayment := bson.D{{Key: "$unwind", Value: bson.D{
		{Key: "path", Value: "$payment"},
		{Key: "preserveNullAndEmptyArrays", Value: true},
	}}}
	project := bson.D{{Key: "$project", Value: bson.D{
		{Key: "diner.reservations", Value: 0},
		{Key: "tables.reservations", Value: 0},
	}}}

	cursor, err := s.reservations.Aggregate(ctx, mongo.Pipeline{
		match, lookupDiner, unwindDiner, lookupTables, lookupPayment, unwindPayment, project,
	})
	if err != nil {
		return nil, translate(err)
	}
	var views []models.ReservationView
	if err := cursor.All(ctx, &views); err != nil {
		return nil, translate(err)
	}
	if len(views) == 0 {
		return nil, models.ErrNotFound
	}
	if views[0].Tables == nil {
		views[0].Tables = []models.Table{}
	}
	return &views[0], nil
}

func (s *Store) ListReservations(ctx context.Context, f models.ReservationFilter, q models.PageQuery) (*models.Page[models.Reservation], error) {
	filter := bson.M{}
	if f.Diner != nil {
		filter["diner"] = *f.Diner
	}
	if f.Table != nil {
		filter["tables"] = *f.Table
	}
	return findPage[models.Reservation](ctx, s.reservations, filter, q, reservationListProjection)
}

func (s *Store) PatchReservation(ctx context.Context, id primitive.ObjectID, p models.ReservationPatch) error {
	result, err := s.reservations.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": p})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) AddReservationTable(ctx context.Context, reservationID, tableID primitive.ObjectID) (bool, error) {
	return link(ctx, s.reservations, reservationID, "tables", "tableCount", tableID)
}

func (s *Store) RemoveReservationTable(ctx context.Context, reservationID, tableID primitive.ObjectID) (bool, error) {
	return unlink(ctx, s.reservations, reservationID, "tables", "tableCount", tableID)
}

func (s *Store) SetReservationStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus) error {
	result, err := s.reservations.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) ConfirmReservation(ctx context.Context, id, paymentID primitive.ObjectID) error {
	result, err := s.reservations.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"payment": paymentID,
		"status":  models.StatusConfirmed,
	}})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteReservation(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.reservations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, translate(err)
	}
	return result.DeletedCount > 0, nil
}

func (s *Store) ReservationsWithTable(ctx context.Context, tableID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := s.reservations.Find(ctx, bson.M{"tables": tableID}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, translate(err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err)
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
