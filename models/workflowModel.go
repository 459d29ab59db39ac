package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkflowKind string

const (
	WorkflowCreateReservation WorkflowKind = "create-reservation"
	WorkflowAssignTables      WorkflowKind = "assign-tables"
	WorkflowRecordPayment     WorkflowKind = "record-payment"
	WorkflowUpdateReservation WorkflowKind = "update-reservation"
	WorkflowUpdatePayment     WorkflowKind = "update-payment"
	WorkflowDeleteReservation WorkflowKind = "delete-reservation"
)

type WorkflowState string

const (
	WorkflowRunning   WorkflowState = "running"
	WorkflowCompleted WorkflowState = "completed"
	WorkflowFailed    WorkflowState = "failed"
)

func ParseWorkflowState(s string) (WorkflowState, error) {
	switch WorkflowState(s) {
	case WorkflowRunning, WorkflowCompleted, WorkflowFailed:
		return WorkflowState(s), nil
	}
	return "", Invalid("unknown workflow state %q", s)
}

// Workflow records a multi-document write sequence. Cursor is the index of
// the next step to run, so a failed workflow resumes at Steps[Cursor].
type Workflow struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Kind        WorkflowKind       `bson:"kind" json:"kind"`
	Reservation primitive.ObjectID `bson:"reservation" json:"reservation"`
	Steps       []string           `bson:"steps" json:"steps"`
	Cursor      int                `bson:"cursor" json:"cursor"`
	State       WorkflowState      `bson:"state" json:"state"`
	Error       string             `bson:"error,omitempty" json:"error,omitempty"`
	Payload     WorkflowPayload    `bson:"payload" json:"payload"`
	StartedAt   time.Time          `bson:"startedAt" json:"startedAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkflowPayload holds what a workflow needs to rebuild its steps after
// the documents it started from may have changed or disappeared.
type WorkflowPayload struct {
	Diner       *primitive.ObjectID  `bson:"diner,omitempty" json:"diner,omitempty"`
	Tables      []primitive.ObjectID `bson:"tables,omitempty" json:"tables,omitempty"`
	Payment     *PaymentInput        `bson:"payment,omitempty" json:"payment,omitempty"`
	Patch       *ReservationPatch    `bson:"patch,omitempty" json:"patch,omitempty"`
	Reservation *Reservation         `bson:"reservationDoc,omitempty" json:"reservationDoc,omitempty"`
	HasPayment  bool                 `bson:"hasPayment,omitempty" json:"hasPayment,omitempty"`
}
