package memory

import (
	"context"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func keep[V any](ids []primitive.ObjectID, live map[primitive.ObjectID]V) ([]primitive.ObjectID, bool) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := live[id]; ok {
			out = append(out, id)
		}
	}
	return out, len(out) != len(ids)
}

func (s *Store) PruneDanglingReferences(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var touched int64
	for _, d := range s.diners {
		if ids, changed := keep(d.Reservations, s.reservations); changed {
			d.Reservations = ids
			touched++
		}
	}
	for _, t := range s.tables {
		if ids, changed := keep(t.Reservations, s.reservations); changed {
			t.Reservations = ids
			touched++
		}
	}
	for _, r := range s.reservations {
		if ids, changed := keep(r.Tables, s.tables); changed {
			r.Tables = ids
			touched++
		}
		if r.Payment != nil {
			if _, ok := s.payments[*r.Payment]; !ok {
				r.Payment = nil
				touched++
			}
		}
	}
	for id := range s.payments {
		if _, ok := s.reservations[id]; !ok {
			delete(s.payments, id)
			touched++
		}
	}
	return touched, nil
}

func (s *Store) RecountReferences(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var touched int64
	for _, d := range s.diners {
		if d.ReservationCount != len(d.Reservations) {
			d.ReservationCount = len(d.Reservations)
			touched++
		}
	}
	for _, t := range s.tables {
		if t.ReservationCount != len(t.Reservations) {
			t.ReservationCount = len(t.Reservations)
			touched++
		}
	}
	for _, r := range s.reservations {
		if r.TableCount != len(r.Tables) {
			r.TableCount = len(r.Tables)
			touched++
		}
	}
	return touched, nil
}

// EachPayment and EachReservation hand out copies, so fn may call back
// into the store.
func (s *Store) EachPayment(ctx context.Context, fn func(*models.Payment) error) error {
	s.mu.RLock()
	docs := make([]models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		docs = append(docs, *p)
	}
	s.mu.RUnlock()
	for i := range docs {
		if err := fn(&docs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) EachReservation(ctx context.Context, fn func(*models.Reservation) error) error {
	s.mu.RLock()
	docs := make([]*models.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		docs = append(docs, copyReservation(r))
	}
	s.mu.RUnlock()
	for _, r := range docs {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}
