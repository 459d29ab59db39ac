package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventDinerCreated         = "diner.created"
	EventDinerDeleted         = "diner.deleted"
	EventTableCreated         = "table.created"
	EventTableDeleted         = "table.deleted"
	EventReservationCreated   = "reservation.created"
	EventReservationUpdated   = "reservation.updated"
	EventTablesAssigned       = "reservation.tables_assigned"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationDeleted   = "reservation.deleted"
	EventWorkflowFailed       = "workflow.failed"
)

// Event is pushed to websocket clients and the message broker after a
// committed change.
type Event struct {
	Event       string              `json:"event"`
	Reservation *primitive.ObjectID `json:"reservation,omitempty"`
	Diner       *primitive.ObjectID `json:"diner,omitempty"`
	Table       *primitive.ObjectID `json:"table,omitempty"`
	Payload     interface{}         `json:"payload,omitempty"`
	At          time.Time           `json:"at"`
}
