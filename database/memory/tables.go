package memory

import (
	"context"
	"fmt"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func copyTable(t *models.Table) *models.Table {
	c := *t
	c.Reservations = cloneIDs(t.Reservations)
	return &c
}

func tableField(t models.Table, key string) interface{} {
	switch key {
	case "_id":
		return t.ID
	case "tableName":
		return t.TableName
	case "seatCapacity":
		return t.SeatCapacity
	case "reservationCount":
		return t.ReservationCount
	case "dateAdded":
		return t.DateAdded
	}
	return nil
}

func (s *Store) tableNameTaken(name *string, except primitive.ObjectID) bool {
	if name == nil {
		return false
	}
	for id, t := range s.tables {
		if id != except && t.TableName != nil && *t.TableName == *name {
			return true
		}
	}
	return false
}

func (s *Store) InsertTable(ctx context.Context, t *models.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[t.ID]; ok {
		return fmt.Errorf("%w: _id %s", models.ErrDuplicate, t.ID.Hex())
	}
	if s.tableNameTaken(t.TableName, t.ID) {
		return fmt.Errorf("%w: tableName %s", models.ErrDuplicate, *t.TableName)
	}
	if t.Reservations == nil {
		t.Reservations = []primitive.ObjectID{}
	}
	s.tables[t.ID] = copyTable(t)
	return nil
}

func (s *Store) FindTable(ctx context.Context, id primitive.ObjectID) (*models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyTable(t), nil
}

func (s *Store) ListTables(ctx context.Context, q models.PageQuery) (*models.Page[models.Table], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]models.Table, 0, len(s.tables))
	for _, t := range s.tables {
		if q.Keyword != "" && !matchesText(q.Keyword, t.TableName) {
			continue
		}
		c := *t
		c.Reservations = nil
		docs = append(docs, c)
	}
	return page(docs, q, tableField), nil
}

func (s *Store) UpdateTable(ctx context.Context, id primitive.ObjectID, p models.TablePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return models.ErrNotFound
	}
	if s.tableNameTaken(p.TableName, id) {
		return fmt.Errorf("%w: tableName %s", models.ErrDuplicate, *p.TableName)
	}
	if p.TableName != nil {
		t.TableName = p.TableName
	}
	if p.SeatCapacity != nil {
		t.SeatCapacity = p.SeatCapacity
	}
	return nil
}

func (s *Store) DeleteTable(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tables[id]
	delete(s.tables, id)
	return ok, nil
}

func (s *Store) CountTables(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[primitive.ObjectID]bool, len(ids))
	var n int64
	for _, id := range ids {
		if _, ok := s.tables[id]; ok && !seen[id] {
			seen[id] = true
			n++
		}
	}
	return n, nil
}

func (s *Store) LinkTableReservation(ctx context.Context, tableID, reservationID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return false, models.ErrNotFound
	}
	if indexOf(t.Reservations, reservationID) >= 0 {
		return false, nil
	}
	t.Reservations = append(cloneIDs(t.Reservations), reservationID)
	t.ReservationCount++
	return true, nil
}

func (s *Store) UnlinkTableReservation(ctx context.Context, tableID, reservationID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[tableID]
	if !ok {
		return false, nil
	}
	i := indexOf(t.Reservations, reservationID)
	if i < 0 {
		return false, nil
	}
	t.Reservations = remove(t.Reservations, i)
	t.ReservationCount--
	return true, nil
}
