package database

import (
	"context"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) (bool, error) {
	onInsert := bson.M{
		"guestsCount":       p.GuestsCount,
		"chargePerHead":     p.ChargePerHead,
		"depositPercentage": p.DepositPercentage,
		"depositFee":        p.DepositFee,
		"totalAmount":       p.TotalAmount,
		"paymentMethod":     p.PaymentMethod,
	}
	if p.DateOfPayment != nil {
		onInsert["dateOfPayment"] = p.DateOfPayment
	}
	result, err := s.payments.UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, translate(err)
	}
	return result.UpsertedCount > 0, nil
}

func (s *Store) FindPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.payments.FindOne(ctx, bson.M{"_id": id}).Decode(&payment); err != nil {
		return nil, translate(err)
	}
	return &payment, nil
}

func (s *Store) PatchPayment(ctx context.Context, id primitive.ObjectID, p models.PaymentPatch) error {
	result, err := s.payments.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": p})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePayment(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := s.payments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, translate(err)
	}
	return result.DeletedCount > 0, nil
}
