package memory

import (
	"context"
	"fmt"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func copyDiner(d *models.Diner) *models.Diner {
	c := *d
	c.Reservations = cloneIDs(d.Reservations)
	return &c
}

func dinerField(d models.Diner, key string) interface{} {
	switch key {
	case "_id":
		return d.ID
	case "fname":
		return d.Fname
	case "lname":
		return d.Lname
	case "email":
		return d.Email
	case "phone":
		return d.Phone
	case "reservationCount":
		return d.ReservationCount
	case "dateRegistered":
		return d.DateRegistered
	}
	return nil
}

// emailTaken must be called with the lock held.
func (s *Store) emailTaken(email *string, except primitive.ObjectID) bool {
	if email == nil {
		return false
	}
	for id, d := range s.diners {
		if id != except && d.Email != nil && *d.Email == *email {
			return true
		}
	}
	return false
}

func (s *Store) InsertDiner(ctx context.Context, d *models.Diner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.diners[d.ID]; ok {
		return fmt.Errorf("%w: _id %s", models.ErrDuplicate, d.ID.Hex())
	}
	if s.emailTaken(d.Email, d.ID) {
		return fmt.Errorf("%w: email %s", models.ErrDuplicate, *d.Email)
	}
	if d.Reservations == nil {
		d.Reservations = []primitive.ObjectID{}
	}
	s.diners[d.ID] = copyDiner(d)
	return nil
}

func (s *Store) FindDiner(ctx context.Context, id primitive.ObjectID) (*models.Diner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diners[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyDiner(d), nil
}

func (s *Store) ListDiners(ctx context.Context, q models.PageQuery) (*models.Page[models.Diner], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]models.Diner, 0, len(s.diners))
	for _, d := range s.diners {
		if q.Keyword != "" && !matchesText(q.Keyword, d.Fname, d.Lname, d.Email) {
			continue
		}
		c := *d
		c.Reservations = nil
		docs = append(docs, c)
	}
	return page(docs, q, dinerField), nil
}

func (s *Store) UpdateDiner(ctx context.Context, id primitive.ObjectID, p models.DinerPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.diners[id]
	if !ok {
		return models.ErrNotFound
	}
	if s.emailTaken(p.Email, id) {
		return fmt.Errorf("%w: email %s", models.ErrDuplicate, *p.Email)
	}
	if p.Fname != nil {
		d.Fname = p.Fname
	}
	if p.Lname != nil {
		d.Lname = p.Lname
	}
	if p.Phone != nil {
		d.Phone = p.Phone
	}
	if p.Email != nil {
		d.Email = p.Email
	}
	if p.Address != nil {
		d.Address = p.Address
	}
	if p.Birthdate != nil {
		d.Birthdate = p.Birthdate
	}
	return nil
}

func (s *Store) DeleteDiner(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.diners[id]
	delete(s.diners, id)
	return ok, nil
}

func (s *Store) LinkDinerReservation(ctx context.Context, dinerID, reservationID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.diners[dinerID]
	if !ok {
		return false, models.ErrNotFound
	}
	if indexOf(d.Reservations, reservationID) >= 0 {
		return false, nil
	}
	d.Reservations = append(cloneIDs(d.Reservations), reservationID)
	d.ReservationCount++
	return true, nil
}

func (s *Store) UnlinkDinerReservation(ctx context.Context, dinerID, reservationID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.diners[dinerID]
	if !ok {
		return false, nil
	}
	i := indexOf(d.Reservations, reservationID)
	if i < 0 {
		return false, nil
	}
	d.Reservations = remove(d.Reservations, i)
	d.ReservationCount--
	return true, nil
}
