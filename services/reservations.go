package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go-restobook/helpers"
	"go-restobook/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReservationService struct {
	*base
}

// Create books a new enquiry for a diner: the reservation is inserted and
// then linked onto the diner, bumping its counter.
func (s *ReservationService) Create(ctx context.Context, dinerID primitive.ObjectID, r *models.Reservation) (*models.Reservation, error) {
	if err := helpers.Validate(r); err != nil {
		return nil, err
	}
	if _, err := s.store.FindDiner(ctx, dinerID); err != nil {
		return nil, err
	}
	r.ID = primitive.NewObjectID()
	r.Diner = idPtr(dinerID)
	r.Status = models.StatusEnquiry
	r.Tables = []primitive.ObjectID{}
	r.TableCount = 0
	r.Payment = nil
	r.DateReserved = s.now()

	wf := s.newWorkflow(models.WorkflowCreateReservation, r.ID, models.WorkflowPayload{
		Diner:       r.Diner,
		Reservation: r,
	})
	if err := s.runWorkflow(ctx, wf, s.steps(wf)); err != nil {
		return nil, err
	}
	slog.Info("reservation created", "reservation", r.ID.Hex(), "diner", dinerID.Hex())
	s.publish(ctx, models.Event{Event: models.EventReservationCreated, Reservation: idPtr(r.ID), Diner: r.Diner})
	return s.store.FindReservation(ctx, r.ID)
}

func (s *ReservationService) Get(ctx context.Context, id primitive.ObjectID) (*models.ReservationView, error) {
	return s.store.FindReservationView(ctx, id)
}

func (s *ReservationService) List(ctx context.Context, q models.PageQuery) (*models.Page[models.Reservation], error) {
	q.Keyword = ""
	return s.store.ListReservations(ctx, models.ReservationFilter{}, q)
}

// AssignTables adds tables to a reservation and the reservation to each
// table. Tables already assigned are left alone, so their counters do not
// move twice.
func (s *ReservationService) AssignTables(ctx context.Context, id primitive.ObjectID, tableIDs []primitive.ObjectID) (*models.ReservationView, error) {
	if len(tableIDs) == 0 {
		return nil, models.Invalid("at least one table is required")
	}
	r, err := s.store.FindReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.Status.Next(models.TablesAssigned); err != nil {
		return nil, err
	}
	found, err := s.store.CountTables(ctx, tableIDs)
	if err != nil {
		return nil, err
	}
	if found != int64(len(tableIDs)) {
		return nil, fmt.Errorf("%w: %d of %d tables do not exist", models.ErrNotFound, int64(len(tableIDs))-found, len(tableIDs))
	}

	wf := s.newWorkflow(models.WorkflowAssignTables, id, models.WorkflowPayload{Tables: tableIDs})
	if err := s.runWorkflow(ctx, wf, s.steps(wf)); err != nil {
		return nil, err
	}
	slog.Info("tables assigned", "reservation", id.Hex(), "tables", len(tableIDs))
	s.publish(ctx, models.Event{Event: models.EventTablesAssigned, Reservation: idPtr(id), Diner: r.Diner, Payload: tableIDs})
	return s.store.FindReservationView(ctx, id)
}

// RecordPayment creates the reservation's payment, computes its amounts
// and confirms the reservation.
func (s *ReservationService) RecordPayment(ctx context.Context, id primitive.ObjectID, in models.PaymentInput) (*models.ReservationView, error) {
	if err := helpers.Validate(&in); err != nil {
		return nil, err
	}
	r, err := s.store.FindReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Payment != nil {
		return nil, models.ErrPaymentRecorded
	}
	if _, err := r.Status.Next(models.PaymentRecorded); err != nil {
		return nil, err
	}
	if err := s.unfinishedPayment(ctx, id); err != nil {
		return nil, err
	}

	wf := s.newWorkflow(models.WorkflowRecordPayment, id, models.WorkflowPayload{Payment: &in})
	if err := s.runWorkflow(ctx, wf, s.steps(wf)); err != nil {
		return nil, err
	}
	slog.Info("payment recorded", "reservation", id.Hex())
	s.publish(ctx, models.Event{Event: models.EventReservationConfirmed, Reservation: idPtr(id), Diner: r.Diner})
	return s.store.FindReservationView(ctx, id)
}

// unfinishedPayment refuses a new payment while one from an earlier,
// unfinished attempt is still stored: its rates would win over the new ones.
func (s *ReservationService) unfinishedPayment(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.store.FindPayment(ctx, id); err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	wf, err := s.store.LatestWorkflow(ctx, id, models.WorkflowRecordPayment)
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: payment stored but reservation not confirmed", models.ErrPaymentRecorded)
		}
		return err
	}
	step := ""
	if wf.Cursor < len(wf.Steps) {
		step = wf.Steps[wf.Cursor]
	}
	return &models.PendingError{Workflow: wf.ID.Hex(), Step: step, Err: models.ErrPaymentRecorded}
}

// UpdatePayment changes the rates or method of a recorded payment and
// recomputes its amounts.
func (s *ReservationService) UpdatePayment(ctx context.Context, id primitive.ObjectID, in models.PaymentInput) (*models.ReservationView, error) {
	if err := helpers.Validate(&in); err != nil {
		return nil, err
	}
	if in == (models.PaymentInput{}) {
		return nil, models.Invalid("no payment fields to update")
	}
	if _, err := s.store.FindPayment(ctx, id); err != nil {
		return nil, err
	}
	wf := s.newWorkflow(models.WorkflowUpdatePayment, id, models.WorkflowPayload{Payment: &in})
	if err := s.runWorkflow(ctx, wf, s.steps(wf)); err != nil {
		return nil, err
	}
	s.publish(ctx, models.Event{Event: models.EventReservationUpdated, Reservation: idPtr(id)})
	return s.store.FindReservationView(ctx, id)
}

// Update patches reservation fields. A guest count change flows through to
// the payment, whose amounts are then recomputed.
func (s *ReservationService) Update(ctx context.Context, id primitive.ObjectID, patch models.ReservationPatch) (*models.ReservationView, error) {
	if err := helpers.Validate(&patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, models.Invalid("no reservation fields to update")
	}
	r, err := s.store.FindReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	wf := s.newWorkflow(models.WorkflowUpdateReservation, id, models.WorkflowPayload{
		Patch:      &patch,
		HasPayment: r.Payment != nil && patch.GuestsCount != nil,
	})
	if err := s.runWorkflow(ctx, wf, s.steps(wf)); err != nil {
		return nil, err
	}
	s.publish(ctx, models.Event{Event: models.EventReservationUpdated, Reservation: idPtr(id), Diner: r.Diner})
	return s.store.FindReservationView(ctx, id)
}

// Delete unlinks the reservation from its diner and tables, deletes its
// payment and finally the reservation itself.
func (s *ReservationService) Delete(ctx context.Context, id primitive.ObjectID) error {
	r, err := s.store.FindReservation(ctx, id)
	if err != nil {
		return err
	}
	wf := s.newWorkflow(models.WorkflowDeleteReservation, id, models.WorkflowPayload{
		Diner:      r.Diner,
		Tables:     r.Tables,
		HasPayment: r.Payment != nil,
	})
	if err := s.runWorkflow(ctx, wf, s.steps(wf)); err != nil {
		return err
	}
	slog.Info("reservation deleted", "reservation", id.Hex())
	s.publish(ctx, models.Event{Event: models.EventReservationDeleted, Reservation: idPtr(id), Diner: r.Diner})
	return nil
}

func (s *ReservationService) Workflow(ctx context.Context, id primitive.ObjectID) (*models.Workflow, error) {
	return s.store.FindWorkflow(ctx, id)
}

func (s *ReservationService) Workflows(ctx context.Context, state models.WorkflowState, q models.PageQuery) (*models.Page[models.Workflow], error) {
	return s.store.ListWorkflows(ctx, state, q)
}

// Resume continues a failed or interrupted workflow from its recorded
// cursor. Completed workflows are returned unchanged.
func (s *ReservationService) Resume(ctx context.Context, id primitive.ObjectID) (*models.Workflow, error) {
	wf, err := s.store.FindWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	if wf.State == models.WorkflowCompleted {
		return wf, nil
	}
	if err := s.runWorkflow(ctx, wf, s.steps(wf)); err != nil {
		return wf, err
	}
	slog.Info("workflow resumed", "workflow", wf.ID.Hex(), "kind", wf.Kind)
	return s.store.FindWorkflow(ctx, id)
}

// steps rebuilds the step list of a workflow from its kind and payload.
// Every step is safe to run again after it has already been applied.
func (s *ReservationService) steps(wf *models.Workflow) []step {
	id := wf.Reservation
	p := wf.Payload
	switch wf.Kind {
	case models.WorkflowCreateReservation:
		return []step{
			{"insert-reservation", func(ctx context.Context) error { return s.insertReservation(ctx, p.Reservation) }},
			{"link-diner", func(ctx context.Context) error {
				_, err := s.store.LinkDinerReservation(ctx, *p.Diner, id)
				return err
			}},
		}
	case models.WorkflowAssignTables:
		return []step{
			{"add-tables", func(ctx context.Context) error { return s.addTables(ctx, id, p.Tables) }},
			{"derive-status", func(ctx context.Context) error { return s.advanceStatus(ctx, id, models.TablesAssigned) }},
			{"link-tables", func(ctx context.Context) error { return s.linkTables(ctx, id, p.Tables) }},
		}
	case models.WorkflowRecordPayment:
		return []step{
			{"create-payment", func(ctx context.Context) error { return s.createPayment(ctx, id, p.Payment) }},
			{"compute-total", func(ctx context.Context) error { return s.computeTotal(ctx, id) }},
			{"compute-deposit", func(ctx context.Context) error { return s.computeDeposit(ctx, id) }},
			{"confirm-reservation", func(ctx context.Context) error { return s.store.ConfirmReservation(ctx, id, id) }},
		}
	case models.WorkflowUpdateReservation:
		steps := []step{
			{"patch-reservation", func(ctx context.Context) error { return s.store.PatchReservation(ctx, id, *p.Patch) }},
		}
		if p.HasPayment {
			steps = append(steps,
				step{"sync-payment-guests", func(ctx context.Context) error { return s.syncPaymentGuests(ctx, id) }},
				step{"compute-total", func(ctx context.Context) error { return s.computeTotal(ctx, id) }},
				step{"compute-deposit", func(ctx context.Context) error { return s.computeDeposit(ctx, id) }},
			)
		}
		return steps
	case models.WorkflowUpdatePayment:
		return []step{
			{"patch-payment", func(ctx context.Context) error { return s.patchPayment(ctx, id, p.Payment) }},
			{"compute-total", func(ctx context.Context) error { return s.computeTotal(ctx, id) }},
			{"compute-deposit", func(ctx context.Context) error { return s.computeDeposit(ctx, id) }},
		}
	case models.WorkflowDeleteReservation:
		return []step{
			{"unlink-diner", func(ctx context.Context) error {
				if p.Diner == nil {
					return nil
				}
				_, err := s.store.UnlinkDinerReservation(ctx, *p.Diner, id)
				return err
			}},
			{"unlink-tables", func(ctx context.Context) error { return s.unlinkTables(ctx, id, p.Tables) }},
			{"delete-payment", func(ctx context.Context) error {
				_, err := s.store.DeletePayment(ctx, id)
				return err
			}},
			{"delete-reservation", func(ctx context.Context) error {
				_, err := s.store.DeleteReservation(ctx, id)
				return err
			}},
		}
	}
	return []step{{"unknown-kind", func(context.Context) error {
		return models.Invalid("unknown workflow kind %q", wf.Kind)
	}}}
}

func (s *ReservationService) insertReservation(ctx context.Context, r *models.Reservation) error {
	err := s.store.InsertReservation(ctx, r)
	if errors.Is(err, models.ErrDuplicate) {
		// Already inserted by an earlier attempt.
		if _, ferr := s.store.FindReservation(ctx, r.ID); ferr == nil {
			return nil
		}
	}
	return err
}

func (s *ReservationService) addTables(ctx context.Context, id primitive.ObjectID, tables []primitive.ObjectID) error {
	for _, t := range tables {
		if _, err := s.store.AddReservationTable(ctx, id, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReservationService) linkTables(ctx context.Context, id primitive.ObjectID, tables []primitive.ObjectID) error {
	for _, t := range tables {
		if _, err := s.store.LinkTableReservation(ctx, t, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReservationService) unlinkTables(ctx context.Context, id primitive.ObjectID, tables []primitive.ObjectID) error {
	for _, t := range tables {
		if _, err := s.store.UnlinkTableReservation(ctx, t, id); err != nil {
			return err
		}
	}
	return nil
}

// advanceStatus applies a lifecycle event to the stored status.
func (s *ReservationService) advanceStatus(ctx context.Context, id primitive.ObjectID, e models.LifecycleEvent) error {
	r, err := s.store.FindReservation(ctx, id)
	if err != nil {
		return err
	}
	next, err := r.Status.Next(e)
	if err != nil {
		return err
	}
	if next == r.Status {
		return nil
	}
	return s.store.SetReservationStatus(ctx, id, next)
}

func (s *ReservationService) createPayment(ctx context.Context, id primitive.ObjectID, in *models.PaymentInput) error {
	r, err := s.store.FindReservation(ctx, id)
	if err != nil {
		return err
	}
	p := &models.Payment{
		ID:                id,
		ChargePerHead:     models.DefaultChargePerHead,
		DepositPercentage: models.DefaultDepositPercentage,
		PaymentMethod:     models.DefaultPaymentMethod,
	}
	if r.GuestsCount != nil {
		p.GuestsCount = *r.GuestsCount
	}
	if in != nil {
		if in.GuestsCount != nil {
			p.GuestsCount = *in.GuestsCount
		}
		if in.ChargePerHead != nil {
			p.ChargePerHead = *in.ChargePerHead
		}
		if in.DepositPercentage != nil {
			p.DepositPercentage = *in.DepositPercentage
		}
		if in.PaymentMethod != nil {
			p.PaymentMethod = *in.PaymentMethod
		}
		p.DateOfPayment = in.DateOfPayment
	}
	if p.DateOfPayment == nil {
		t := s.now()
		p.DateOfPayment = &t
	}
	_, err = s.store.CreatePayment(ctx, p)
	return err
}

func (s *ReservationService) patchPayment(ctx context.Context, id primitive.ObjectID, in *models.PaymentInput) error {
	if in == nil {
		return nil
	}
	return s.store.PatchPayment(ctx, id, models.PaymentPatch{
		GuestsCount:       in.GuestsCount,
		ChargePerHead:     in.ChargePerHead,
		DepositPercentage: in.DepositPercentage,
		PaymentMethod:     in.PaymentMethod,
		DateOfPayment:     in.DateOfPayment,
	})
}

func (s *ReservationService) syncPaymentGuests(ctx context.Context, id primitive.ObjectID) error {
	r, err := s.store.FindReservation(ctx, id)
	if err != nil {
		return err
	}
	if r.Payment == nil || r.GuestsCount == nil {
		return nil
	}
	return s.store.PatchPayment(ctx, *r.Payment, models.PaymentPatch{GuestsCount: r.GuestsCount})
}

func (s *ReservationService) computeTotal(ctx context.Context, id primitive.ObjectID) error {
	p, err := s.store.FindPayment(ctx, id)
	if err != nil {
		return err
	}
	total := helpers.TotalAmount(p.GuestsCount, p.ChargePerHead)
	return s.store.PatchPayment(ctx, id, models.PaymentPatch{TotalAmount: &total})
}

func (s *ReservationService) computeDeposit(ctx context.Context, id primitive.ObjectID) error {
	p, err := s.store.FindPayment(ctx, id)
	if err != nil {
		return err
	}
	deposit := helpers.DepositFee(p.TotalAmount, p.DepositPercentage)
	return s.store.PatchPayment(ctx, id, models.PaymentPatch{DepositFee: &deposit})
}
