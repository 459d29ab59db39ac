package services

import (
	"context"
	"log/slog"

	"go-restobook/helpers"
	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TableService struct {
	*base
}

func (s *TableService) Create(ctx context.Context, t *models.Table) (*models.Table, error) {
	if err := helpers.Validate(t); err != nil {
		return nil, err
	}
	t.ID = primitive.NewObjectID()
	t.ReservationCount = 0
	t.Reservations = []primitive.ObjectID{}
	t.DateAdded = s.now()
	if err := s.store.InsertTable(ctx, t); err != nil {
		return nil, err
	}
	slog.Info("table created", "table", t.ID.Hex())
	s.publish(ctx, models.Event{Event: models.EventTableCreated, Table: idPtr(t.ID)})
	t.Reservations = nil
	return t, nil
}

func (s *TableService) Get(ctx context.Context, id primitive.ObjectID) (*models.Table, error) {
	return s.store.FindTable(ctx, id)
}

func (s *TableService) List(ctx context.Context, q models.PageQuery) (*models.Page[models.Table], error) {
	q.Keyword = ""
	return s.store.ListTables(ctx, q)
}

func (s *TableService) Search(ctx context.Context, q models.PageQuery) (*models.Page[models.Table], error) {
	if q.Keyword == "" {
		return nil, models.Invalid("keyword is required")
	}
	return s.store.ListTables(ctx, q)
}

func (s *TableService) Update(ctx context.Context, id primitive.ObjectID, p models.TablePatch) (*models.Table, error) {
	if err := helpers.Validate(&p); err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, models.Invalid("no table fields to update")
	}
	if err := s.store.UpdateTable(ctx, id, p); err != nil {
		return nil, err
	}
	return s.store.FindTable(ctx, id)
}

// Delete pulls the table out of every reservation listing it and then
// removes it. Reservations left without tables fall back to enquiry unless
// they are paid. Every step is a no-op when repeated, so a failed delete is
// retried by issuing it again.
func (s *TableService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.store.FindTable(ctx, id); err != nil {
		return err
	}
	reservations, err := s.store.ReservationsWithTable(ctx, id)
	if err != nil {
		return err
	}
	for _, rid := range reservations {
		if _, err := s.store.RemoveReservationTable(ctx, rid, id); err != nil {
			return err
		}
		if err := s.releaseIfEmpty(ctx, rid); err != nil {
			return err
		}
	}
	if _, err := s.store.DeleteTable(ctx, id); err != nil {
		return err
	}
	slog.Info("table deleted", "table", id.Hex(), "reservations", len(reservations))
	s.publish(ctx, models.Event{Event: models.EventTableDeleted, Table: idPtr(id), Payload: reservations})
	return nil
}

func (s *TableService) releaseIfEmpty(ctx context.Context, rid primitive.ObjectID) error {
	r, err := s.store.FindReservation(ctx, rid)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(r.Tables) > 0 {
		return nil
	}
	next, err := r.Status.Next(models.TablesReleased)
	if err != nil || next == r.Status {
		return err
	}
	return s.store.SetReservationStatus(ctx, rid, next)
}

// Reservations lists the reservations the table is assigned to.
func (s *TableService) Reservations(ctx context.Context, id primitive.ObjectID, q models.PageQuery) (*models.Page[models.Reservation], error) {
	if _, err := s.store.FindTable(ctx, id); err != nil {
		return nil, err
	}
	q.Keyword = ""
	return s.store.ListReservations(ctx, models.ReservationFilter{Table: &id}, q)
}
