package database

import (
	"context"
	"time"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) InsertWorkflow(ctx context.Context, w *models.Workflow) error {
	_, err := s.workflows.InsertOne(ctx, w)
	return translate(err)
}

func (s *Store) FindWorkflow(ctx context.Context, id primitive.ObjectID) (*models.Workflow, error) {
	var workflow models.Workflow
	if err := s.workflows.FindOne(ctx, bson.M{"_id": id}).Decode(&workflow); err != nil {
		return nil, translate(err)
	}
	return &workflow, nil
}

// LatestWorkflow is the most recently started workflow of kind for the
// reservation.
func (s *Store) LatestWorkflow(ctx context.Context, reservationID primitive.ObjectID, kind models.WorkflowKind) (*models.Workflow, error) {
	var workflow models.Workflow
	opts := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	err := s.workflows.FindOne(ctx, bson.M{"reservation": reservationID, "kind": kind}, opts).Decode(&workflow)
	if err != nil {
		return nil, translate(err)
	}
	return &workflow, nil
}

func (s *Store) ListWorkflows(ctx context.Context, state models.WorkflowState, q models.PageQuery) (*models.Page[models.Workflow], error) {
	filter := bson.M{}
	if state != "" {
		filter["state"] = state
	}
	return findPage[models.Workflow](ctx, s.workflows, filter, q, nil)
}

func (s *Store) UpdateWorkflow(ctx context.Context, id primitive.ObjectID, state models.WorkflowState, cursor int, errMsg string) error {
	result, err := s.workflows.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"state":     state,
		"cursor":    cursor,
		"error":     errMsg,
		"updatedAt": time.Now().UTC(),
	}})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
