package services

import (
	"context"
	"log/slog"

	"go-restobook/helpers"
	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DinerService struct {
	*base
	reservations *ReservationService
}

func (s *DinerService) Create(ctx context.Context, d *models.Diner) (*models.Diner, error) {
	if err := helpers.Validate(d); err != nil {
		return nil, err
	}
	d.ID = primitive.NewObjectID()
	d.ReservationCount = 0
	d.Reservations = []primitive.ObjectID{}
	d.DateRegistered = s.now()
	if err := s.store.InsertDiner(ctx, d); err != nil {
		return nil, err
	}
	slog.Info("diner created", "diner", d.ID.Hex())
	s.publish(ctx, models.Event{Event: models.EventDinerCreated, Diner: idPtr(d.ID)})
	d.Reservations = nil
	return d, nil
}

func (s *DinerService) Get(ctx context.Context, id primitive.ObjectID) (*models.Diner, error) {
	return s.store.FindDiner(ctx, id)
}

func (s *DinerService) List(ctx context.Context, q models.PageQuery) (*models.Page[models.Diner], error) {
	q.Keyword = ""
	return s.store.ListDiners(ctx, q)
}

// Search matches keyword against the diner's names and email.
func (s *DinerService) Search(ctx context.Context, q models.PageQuery) (*models.Page[models.Diner], error) {
	if q.Keyword == "" {
		return nil, models.Invalid("keyword is required")
	}
	return s.store.ListDiners(ctx, q)
}

func (s *DinerService) Update(ctx context.Context, id primitive.ObjectID, p models.DinerPatch) (*models.Diner, error) {
	if err := helpers.Validate(&p); err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, models.Invalid("no diner fields to update")
	}
	if err := s.store.UpdateDiner(ctx, id, p); err != nil {
		return nil, err
	}
	return s.store.FindDiner(ctx, id)
}

// Delete removes every reservation the diner holds, each through the full
// reservation delete sequence, and then the diner itself.
func (s *DinerService) Delete(ctx context.Context, id primitive.ObjectID) error {
	d, err := s.store.FindDiner(ctx, id)
	if err != nil {
		return err
	}
	for _, rid := range d.Reservations {
		err := s.reservations.Delete(ctx, rid)
		if err != nil && !isNotFound(err) {
			return err
		}
	}
	if _, err := s.store.DeleteDiner(ctx, id); err != nil {
		return err
	}
	slog.Info("diner deleted", "diner", id.Hex(), "reservations", len(d.Reservations))
	s.publish(ctx, models.Event{Event: models.EventDinerDeleted, Diner: idPtr(id)})
	return nil
}

// Reservations lists the diner's reservations.
func (s *DinerService) Reservations(ctx context.Context, id primitive.ObjectID, q models.PageQuery) (*models.Page[models.Reservation], error) {
	if _, err := s.store.FindDiner(ctx, id); err != nil {
		return nil, err
	}
	q.Keyword = ""
	return s.store.ListReservations(ctx, models.ReservationFilter{Diner: &id}, q)
}
