package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Diner struct {
	ID               primitive.ObjectID   `bson:"_id" json:"_id"`
	Fname            *string              `bson:"fname" json:"fname" validate:"required,min=1,max=100"`
	Lname            *string              `bson:"lname" json:"lname" validate:"required,min=1,max=100"`
	Phone            *int64               `bson:"phone" json:"phone" validate:"required,min=1,max=9999999999"`
	Email            *string              `bson:"email" json:"email" validate:"required,email"`
	ReservationCount int                  `bson:"reservationCount" json:"reservationCount" validate:"min=0,max=9999"`
	Reservations     []primitive.ObjectID `bson:"reservations" json:"reservations,omitempty"`
	Address          *string              `bson:"address,omitempty" json:"address,omitempty"`
	Birthdate        *time.Time           `bson:"birthdate,omitempty" json:"birthdate,omitempty"`
	DateRegistered   time.Time            `bson:"dateRegistered" json:"dateRegistered"`
}

// DinerPatch carries the fields a PUT may change. Counters, references and
// the registration date are owned by the server.
type DinerPatch struct {
	Fname     *string    `json:"fname" validate:"omitempty,min=1,max=100"`
	Lname     *string    `json:"lname" validate:"omitempty,min=1,max=100"`
	Phone     *int64     `json:"phone" validate:"omitempty,min=1,max=9999999999"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Address   *string    `json:"address"`
	Birthdate *time.Time `json:"birthdate"`
}

func (p DinerPatch) Empty() bool {
	return p.Fname == nil && p.Lname == nil && p.Phone == nil && p.Email == nil &&
		p.Address == nil && p.Birthdate == nil
}
