package memory

import (
	"context"
	"fmt"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func copyReservation(r *models.Reservation) *models.Reservation {
	c := *r
	c.Tables = cloneIDs(r.Tables)
	return &c
}

func reservationField(r models.Reservation, key string) interface{} {
	switch key {
	case "_id":
		return r.ID
	case "date":
		return r.Date
	case "timeEnter":
		return r.TimeEnter
	case "status":
		return string(r.Status)
	case "guestsCount":
		return r.GuestsCount
	case "dateReserved":
		return r.DateReserved
	}
	return nil
}

func (s *Store) InsertReservation(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reservations[r.ID]; ok {
		return fmt.Errorf("%w: _id %s", models.ErrDuplicate, r.ID.Hex())
	}
	if r.Tables == nil {
		r.Tables = []primitive.ObjectID{}
	}
	s.reservations[r.ID] = copyReservation(r)
	return nil
}

func (s *Store) FindReservation(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyReservation(r), nil
}

func (s *Store) FindReservationView(ctx context.Context, id primitive.ObjectID) (*models.ReservationView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	view := &models.ReservationView{
		ID:           r.ID,
		Date:         r.Date,
		TimeEnter:    r.TimeEnter,
		TimeExits:    r.TimeExits,
		Status:       r.Status,
		GuestsCount:  r.GuestsCount,
		Tables:       []models.Table{},
		TableCount:   r.TableCount,
		DateReserved: r.DateReserved,
	}
	if r.Diner != nil {
		if d, ok := s.diners[*r.Diner]; ok {
			c := *d
			c.Reservations = nil
			view.Diner = &c
		}
	}
	for _, tid := range r.Tables {
		if t, ok := s.tables[tid]; ok {
			c := *t
			c.Reservations = nil
			view.Tables = append(view.Tables, c)
		}
	}
	if r.Payment != nil {
		if p, ok := s.payments[*r.Payment]; ok {
			c := *p
			view.Payment = &c
		}
	}
	return view, nil
}

func (s *Store) ListReservations(ctx context.Context, f models.ReservationFilter, q models.PageQuery) (*models.Page[models.Reservation], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]models.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		if f.Diner != nil && (r.Diner == nil || *r.Diner != *f.Diner) {
			continue
		}
		if f.Table != nil && indexOf(r.Tables, *f.Table) < 0 {
			continue
		}
		c := *r
		c.Tables = nil
		docs = append(docs, c)
	}
	return page(docs, q, reservationField), nil
}

func (s *Store) PatchReservation(ctx context.Context, id primitive.ObjectID, p models.ReservationPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return models.ErrNotFound
	}
	if p.Date != nil {
		r.Date = p.Date
	}
	if p.TimeEnter != nil {
		r.TimeEnter = p.TimeEnter
	}
	if p.TimeExits != nil {
		r.TimeExits = p.TimeExits
	}
	if p.GuestsCount != nil {
		r.GuestsCount = p.GuestsCount
	}
	return nil
}

func (s *Store) AddReservationTable(ctx context.Context, reservationID, tableID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[reservationID]
	if !ok {
		return false, models.ErrNotFound
	}
	if indexOf(r.Tables, tableID) >= 0 {
		return false, nil
	}
	r.Tables = append(cloneIDs(r.Tables), tableID)
	r.TableCount++
	return true, nil
}

func (s *Store) RemoveReservationTable(ctx context.Context, reservationID, tableID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[reservationID]
	if !ok {
		return false, nil
	}
	i := indexOf(r.Tables, tableID)
	if i < 0 {
		return false, nil
	}
	r.Tables = remove(r.Tables, i)
	r.TableCount--
	return true, nil
}

func (s *Store) SetReservationStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return models.ErrNotFound
	}
	r.Status = status
	return nil
}

func (s *Store) ConfirmReservation(ctx context.Context, id, paymentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return models.ErrNotFound
	}
	pid := paymentID
	r.Payment = &pid
	r.Status = models.StatusConfirmed
	return nil
}

func (s *Store) DeleteReservation(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reservations[id]
	delete(s.reservations, id)
	return ok, nil
}

func (s *Store) ReservationsWithTable(ctx context.Context, tableID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []primitive.ObjectID
	for id, r := range s.reservations {
		if indexOf(r.Tables, tableID) >= 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
