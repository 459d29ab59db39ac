package services

import (
	"context"

	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Link and Unlink methods are guarded on set membership: they report
// whether the reference actually moved and only then touch the counter,
// in the same single-document update.

type DinerStore interface {
	InsertDiner(ctx context.Context, d *models.Diner) error
	FindDiner(ctx context.Context, id primitive.ObjectID) (*models.Diner, error)
	ListDiners(ctx context.Context, q models.PageQuery) (*models.Page[models.Diner], error)
	UpdateDiner(ctx context.Context, id primitive.ObjectID, p models.DinerPatch) error
	DeleteDiner(ctx context.Context, id primitive.ObjectID) (bool, error)
	LinkDinerReservation(ctx context.Context, dinerID, reservationID primitive.ObjectID) (bool, error)
	UnlinkDinerReservation(ctx context.Context, dinerID, reservationID primitive.ObjectID) (bool, error)
}

type TableStore interface {
	InsertTable(ctx context.Context, t *models.Table) error
	FindTable(ctx context.Context, id primitive.ObjectID) (*models.Table, error)
	ListTables(ctx context.Context, q models.PageQuery) (*models.Page[models.Table], error)
	UpdateTable(ctx context.Context, id primitive.ObjectID, p models.TablePatch) error
	DeleteTable(ctx context.Context, id primitive.ObjectID) (bool, error)
	CountTables(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	LinkTableReservation(ctx context.Context, tableID, reservationID primitive.ObjectID) (bool, error)
	UnlinkTableReservation(ctx context.Context, tableID, reservationID primitive.ObjectID) (bool, error)
}

type ReservationStore interface {
	InsertReservation(ctx context.Context, r *models.Reservation) error
	FindReservation(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error)
	FindReservationView(ctx context.Context, id primitive.ObjectID) (*models.ReservationView, error)
	ListReservations(ctx context.Context, f models.ReservationFilter, q models.PageQuery) (*models.Page[models.Reservation], error)
	PatchReservation(ctx context.Context, id primitive.ObjectID, p models.ReservationPatch) error
	AddReservationTable(ctx context.Context, reservationID, tableID primitive.ObjectID) (bool, error)
	RemoveReservationTable(ctx context.Context, reservationID, tableID primitive.ObjectID) (bool, error)
	SetReservationStatus(ctx context.Context, id primitive.ObjectID, status models.ReservationStatus) error
	ConfirmReservation(ctx context.Context, id, paymentID primitive.ObjectID) error
	DeleteReservation(ctx context.Context, id primitive.ObjectID) (bool, error)
	ReservationsWithTable(ctx context.Context, tableID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type PaymentStore interface {
	// CreatePayment inserts p unless a payment with the same id exists and
	// reports whether it inserted.
	CreatePayment(ctx context.Context, p *models.Payment) (bool, error)
	FindPayment(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	PatchPayment(ctx context.Context, id primitive.ObjectID, p models.PaymentPatch) error
	DeletePayment(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type WorkflowStore interface {
	InsertWorkflow(ctx context.Context, w *models.Workflow) error
	FindWorkflow(ctx context.Context, id primitive.ObjectID) (*models.Workflow, error)
	LatestWorkflow(ctx context.Context, reservationID primitive.ObjectID, kind models.WorkflowKind) (*models.Workflow, error)
	ListWorkflows(ctx context.Context, state models.WorkflowState, q models.PageQuery) (*models.Page[models.Workflow], error)
	UpdateWorkflow(ctx context.Context, id primitive.ObjectID, state models.WorkflowState, cursor int, errMsg string) error
}

type MaintenanceStore interface {
	// PruneDanglingReferences removes references to documents that no
	// longer exist and deletes payments whose reservation is gone.
	PruneDanglingReferences(ctx context.Context) (int64, error)
	// RecountReferences resets every denormalized counter to the size of
	// its reference array.
	RecountReferences(ctx context.Context) (int64, error)
	EachPayment(ctx context.Context, fn func(*models.Payment) error) error
	EachReservation(ctx context.Context, fn func(*models.Reservation) error) error
	Ping(ctx context.Context) error
}

type Store interface {
	DinerStore
	TableStore
	ReservationStore
	PaymentStore
	WorkflowStore
	MaintenanceStore
}
