package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultChargePerHead     = 200.0
	DefaultDepositPercentage = 0.20
	DefaultPaymentMethod     = "cash"
)

// Payment shares its _id with the reservation it belongs to.
type Payment struct {
	ID                primitive.ObjectID `bson:"_id" json:"_id"`
	GuestsCount       int                `bson:"guestsCount" json:"guestsCount"`
	ChargePerHead     float64            `bson:"chargePerHead" json:"chargePerHead"`
	DepositPercentage float64            `bson:"depositPercentage" json:"depositPercentage"`
	DepositFee        float64            `bson:"depositFee" json:"depositFee"`
	TotalAmount       float64            `bson:"totalAmount" json:"totalAmount"`
	PaymentMethod     string             `bson:"paymentMethod" json:"paymentMethod"`
	DateOfPayment     *time.Time         `bson:"dateOfPayment,omitempty" json:"dateOfPayment,omitempty"`
}

// PaymentInput is the body of the record-payment and update-payment
// requests. Absent fields fall back to the defaults, or to the stored
// values on update.
type PaymentInput struct {
	GuestsCount       *int       `bson:"guestsCount,omitempty" json:"guestsCount" validate:"omitempty,min=1,max=9999"`
	ChargePerHead     *float64   `bson:"chargePerHead,omitempty" json:"chargePerHead" validate:"omitempty,min=0"`
	DepositPercentage *float64   `bson:"depositPercentage,omitempty" json:"depositPercentage" validate:"omitempty,min=0,max=1"`
	PaymentMethod     *string    `bson:"paymentMethod,omitempty" json:"paymentMethod" validate:"omitempty,min=1,max=50"`
	DateOfPayment     *time.Time `bson:"dateOfPayment,omitempty" json:"dateOfPayment"`
}

// PaymentPatch is a $set on a payment document.
type PaymentPatch struct {
	GuestsCount       *int       `bson:"guestsCount,omitempty"`
	ChargePerHead     *float64   `bson:"chargePerHead,omitempty"`
	DepositPercentage *float64   `bson:"depositPercentage,omitempty"`
	TotalAmount       *float64   `bson:"totalAmount,omitempty"`
	DepositFee        *float64   `bson:"depositFee,omitempty"`
	PaymentMethod     *string    `bson:"paymentMethod,omitempty"`
	DateOfPayment     *time.Time `bson:"dateOfPayment,omitempty"`
}
