// Package services holds the reservation rules: the status lifecycle, the
// multi-document write sequences that keep counters and back-references in
// step, and the reconciliation pass that heals them.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Publisher interface {
	Publish(ctx context.Context, e models.Event) error
}

type Services struct {
	Diners       *DinerService
	Tables       *TableService
	Reservations *ReservationService
	Reconciler   *Reconciler
}

func New(store Store, publisher Publisher) *Services {
	b := &base{store: store, publisher: publisher, now: now}
	reservations := &ReservationService{base: b}
	return &Services{
		Diners:       &DinerService{base: b, reservations: reservations},
		Tables:       &TableService{base: b},
		Reservations: reservations,
		Reconciler:   &Reconciler{base: b},
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

type base struct {
	store     Store
	publisher Publisher
	now       func() time.Time
}

// publish never fails the caller; the change it reports is already stored.
func (b *base) publish(ctx context.Context, e models.Event) {
	if b.publisher == nil {
		return
	}
	e.At = b.now()
	if err := b.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		slog.Warn("event publish failed", "event", e.Event, "error", err)
	}
}

func idPtr(id primitive.ObjectID) *primitive.ObjectID {
	return &id
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
