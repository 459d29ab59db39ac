package memory

import (
	"context"
	"fmt"
	"time"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func copyWorkflow(w *models.Workflow) *models.Workflow {
	c := *w
	c.Steps = append([]string(nil), w.Steps...)
	c.Payload.Tables = cloneIDs(w.Payload.Tables)
	if w.Payload.Diner != nil {
		d := *w.Payload.Diner
		c.Payload.Diner = &d
	}
	if w.Payload.Payment != nil {
		p := *w.Payload.Payment
		c.Payload.Payment = &p
	}
	if w.Payload.Patch != nil {
		p := *w.Payload.Patch
		c.Payload.Patch = &p
	}
	if w.Payload.Reservation != nil {
		c.Payload.Reservation = copyReservation(w.Payload.Reservation)
	}
	return &c
}

func workflowField(w models.Workflow, key string) interface{} {
	switch key {
	case "_id":
		return w.ID
	case "startedAt":
		return w.StartedAt
	case "updatedAt":
		return w.UpdatedAt
	case "kind":
		return string(w.Kind)
	case "state":
		return string(w.State)
	}
	return nil
}

func (s *Store) InsertWorkflow(ctx context.Context, w *models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[w.ID]; ok {
		return fmt.Errorf("%w: _id %s", models.ErrDuplicate, w.ID.Hex())
	}
	s.workflows[w.ID] = copyWorkflow(w)
	return nil
}

func (s *Store) FindWorkflow(ctx context.Context, id primitive.ObjectID) (*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workflows[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyWorkflow(w), nil
}

func (s *Store) LatestWorkflow(ctx context.Context, reservationID primitive.ObjectID, kind models.WorkflowKind) (*models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Workflow
	for _, w := range s.workflows {
		if w.Reservation != reservationID || w.Kind != kind {
			continue
		}
		if latest == nil || w.StartedAt.After(latest.StartedAt) {
			latest = w
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return copyWorkflow(latest), nil
}

func (s *Store) ListWorkflows(ctx context.Context, state models.WorkflowState, q models.PageQuery) (*models.Page[models.Workflow], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]models.Workflow, 0, len(s.workflows))
	for _, w := range s.workflows {
		if state != "" && w.State != state {
			continue
		}
		docs = append(docs, *copyWorkflow(w))
	}
	return page(docs, q, workflowField), nil
}

func (s *Store) UpdateWorkflow(ctx context.Context, id primitive.ObjectID, state models.WorkflowState, cursor int, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[id]
	if !ok {
		return models.ErrNotFound
	}
	w.State = state
	w.Cursor = cursor
	w.Error = errMsg
	w.UpdatedAt = time.Now().UTC()
	return nil
}
