package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationStatus string

const (
	StatusEnquiry   ReservationStatus = "enquiry"
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
)

func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case StatusEnquiry, StatusPending, StatusConfirmed:
		return ReservationStatus(s), nil
	}
	return "", Invalid("unknown reservation status %q", s)
}

// LifecycleEvent is anything that moves a reservation between states.
type LifecycleEvent int

const (
	TablesAssigned LifecycleEvent = iota
	TablesReleased
	PaymentRecorded
)

func (e LifecycleEvent) String() string {
	switch e {
	case TablesAssigned:
		return "tables-assigned"
	case TablesReleased:
		return "tables-released"
	case PaymentRecorded:
		return "payment-recorded"
	}
	return fmt.Sprintf("LifecycleEvent(%d)", int(e))
}

// Next returns the status reached from s after e. A confirmed reservation
// stays confirmed whatever happens to its tables; the payment is what
// confirms it.
func (s ReservationStatus) Next(e LifecycleEvent) (ReservationStatus, error) {
	switch s {
	case StatusEnquiry, StatusPending:
		switch e {
		case TablesAssigned:
			return StatusPending, nil
		case TablesReleased:
			return StatusEnquiry, nil
		case PaymentRecorded:
			return StatusConfirmed, nil
		}
	case StatusConfirmed:
		switch e {
		case TablesAssigned, TablesReleased:
			return StatusConfirmed, nil
		case PaymentRecorded:
			return "", ErrPaymentRecorded
		}
	default:
		return "", Invalid("unknown reservation status %q", string(s))
	}
	return "", Invalid("unknown lifecycle event %s", e)
}

// DeriveStatus is the status a reservation must have given what is attached
// to it.
func DeriveStatus(hasTables, hasPayment bool) ReservationStatus {
	switch {
	case hasPayment:
		return StatusConfirmed
	case hasTables:
		return StatusPending
	default:
		return StatusEnquiry
	}
}

type Reservation struct {
	ID           primitive.ObjectID   `bson:"_id" json:"_id"`
	Diner        *primitive.ObjectID  `bson:"diner,omitempty" json:"diner,omitempty"`
	Date         *time.Time           `bson:"date" json:"date" validate:"required"`
	TimeEnter    *time.Time           `bson:"timeEnter" json:"timeEnter" validate:"required"`
	TimeExits    *time.Time           `bson:"timeExits" json:"timeExits" validate:"required"`
	Status       ReservationStatus    `bson:"status" json:"status"`
	GuestsCount  *int                 `bson:"guestsCount" json:"guestsCount" validate:"required,min=1,max=9999"`
	Tables       []primitive.ObjectID `bson:"tables" json:"tables,omitempty"`
	TableCount   int                  `bson:"tableCount" json:"tableCount"`
	Payment      *primitive.ObjectID  `bson:"payment,omitempty" json:"payment,omitempty"`
	DateReserved time.Time            `bson:"dateReserved" json:"dateReserved"`
}

func (r *Reservation) HasTable(id primitive.ObjectID) bool {
	for _, t := range r.Tables {
		if t == id {
			return true
		}
	}
	return false
}

// ReservationPatch is the field patch accepted by PUT /reservations/:id.
// Status, tables and payment only change through their own operations.
type ReservationPatch struct {
	Date        *time.Time `bson:"date,omitempty" json:"date"`
	TimeEnter   *time.Time `bson:"timeEnter,omitempty" json:"timeEnter"`
	TimeExits   *time.Time `bson:"timeExits,omitempty" json:"timeExits"`
	GuestsCount *int       `bson:"guestsCount,omitempty" json:"guestsCount" validate:"omitempty,min=1,max=9999"`
}

func (p ReservationPatch) Empty() bool {
	return p.Date == nil && p.TimeEnter == nil && p.TimeExits == nil && p.GuestsCount == nil
}

// ReservationView is a reservation with its diner, tables and payment
// documents joined in.
type ReservationView struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Diner        *Diner             `bson:"diner,omitempty" json:"diner,omitempty"`
	Date         *time.Time         `bson:"date" json:"date"`
	TimeEnter    *time.Time         `bson:"timeEnter" json:"timeEnter"`
	TimeExits    *time.Time         `bson:"timeExits" json:"timeExits"`
	Status       ReservationStatus  `bson:"status" json:"status"`
	GuestsCount  *int               `bson:"guestsCount" json:"guestsCount"`
	Tables       []Table            `bson:"tables" json:"tables"`
	TableCount   int                `bson:"tableCount" json:"tableCount"`
	Payment      *Payment           `bson:"payment,omitempty" json:"payment,omitempty"`
	DateReserved time.Time          `bson:"dateReserved" json:"dateReserved"`
}

// ReservationFilter narrows a reservation listing to one diner or table.
type ReservationFilter struct {
	Diner *primitive.ObjectID
	Table *primitive.ObjectID
}
