package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Table struct {
	ID               primitive.ObjectID   `bson:"_id" json:"_id"`
	TableName        *string              `bson:"tableName" json:"tableName" validate:"required,min=1,max=100"`
	SeatCapacity     *int                 `bson:"seatCapacity" json:"seatCapacity" validate:"required,min=1,max=999"`
	ReservationCount int                  `bson:"reservationCount" json:"reservationCount" validate:"min=0,max=9999"`
	Reservations     []primitive.ObjectID `bson:"reservations" json:"reservations,omitempty"`
	DateAdded        time.Time            `bson:"dateAdded" json:"dateAdded"`
}

type TablePatch struct {
	TableName    *string `json:"tableName" validate:"omitempty,min=1,max=100"`
	SeatCapacity *int    `json:"seatCapacity" validate:"omitempty,min=1,max=999"`
}

func (p TablePatch) Empty() bool {
	return p.TableName == nil && p.SeatCapacity == nil
}
