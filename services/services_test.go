package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-restobook/database/memory"
	"go-restobook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr[T any](v T) *T { return &v }

type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Publish(ctx context.Context, e models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Event)
	}
	return out
}

// flakyStore fails the named operation until fail is cleared.
type flakyStore struct {
	*memory.Store
	fail string
}

var errStoreDown = errors.New("store unavailable")

func (f *flakyStore) LinkDinerReservation(ctx context.Context, dinerID, reservationID primitive.ObjectID) (bool, error) {
	if f.fail == "link-diner" {
		return false, errStoreDown
	}
	return f.Store.LinkDinerReservation(ctx, dinerID, reservationID)
}

func (f *flakyStore) PatchPayment(ctx context.Context, id primitive.ObjectID, p models.PaymentPatch) error {
	if f.fail == "patch-payment" {
		return errStoreDown
	}
	return f.Store.PatchPayment(ctx, id, p)
}

func (f *flakyStore) UnlinkTableReservation(ctx context.Context, tableID, reservationID primitive.ObjectID) (bool, error) {
	if f.fail == "unlink-table" {
		return false, errStoreDown
	}
	return f.Store.UnlinkTableReservation(ctx, tableID, reservationID)
}

func setup(t *testing.T) (*Services, *flakyStore, *recorder) {
	t.Helper()
	store := &flakyStore{Store: memory.NewStore()}
	events := &recorder{}
	return New(store, events), store, events
}

func newDiner(t *testing.T, svc *Services, email string) *models.Diner {
	t.Helper()
	d, err := svc.Diners.Create(context.Background(), &models.Diner{
		Fname: ptr("A"),
		Lname: ptr("B"),
		Phone: ptr(int64(5551234567)),
		Email: ptr(email),
	})
	require.NoError(t, err)
	return d
}

func newTable(t *testing.T, svc *Services, name string) *models.Table {
	t.Helper()
	tbl, err := svc.Tables.Create(context.Background(), &models.Table{
		TableName:    ptr(name),
		SeatCapacity: ptr(4),
	})
	require.NoError(t, err)
	return tbl
}

func newReservation(t *testing.T, svc *Services, diner primitive.ObjectID, guests int) *models.Reservation {
	t.Helper()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	r, err := svc.Reservations.Create(context.Background(), diner, &models.Reservation{
		Date:        ptr(day),
		TimeEnter:   ptr(day.Add(19 * time.Hour)),
		TimeExits:   ptr(day.Add(21 * time.Hour)),
		GuestsCount: ptr(guests),
	})
	require.NoError(t, err)
	return r
}

func TestCreateReservationLinksDiner(t *testing.T) {
	svc, store, events := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)

	assert.Equal(t, models.StatusEnquiry, r.Status)
	assert.Equal(t, d.ID, *r.Diner)

	got, err := store.FindDiner(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReservationCount)
	assert.Equal(t, []primitive.ObjectID{r.ID}, got.Reservations)
	assert.Equal(t, []string{models.EventDinerCreated, models.EventReservationCreated}, events.names())
}

func TestCreateReservationUnknownDiner(t *testing.T) {
	svc, _, _ := setup(t)
	day := time.Now()
	_, err := svc.Reservations.Create(context.Background(), primitive.NewObjectID(), &models.Reservation{
		Date: &day, TimeEnter: &day, TimeExits: &day, GuestsCount: ptr(2),
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCreateReservationValidation(t *testing.T) {
	svc, _, _ := setup(t)
	d := newDiner(t, svc, "a@b.com")
	_, err := svc.Reservations.Create(context.Background(), d.ID, &models.Reservation{GuestsCount: ptr(2)})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestAssignTables(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)
	t1 := newTable(t, svc, "t1")
	t2 := newTable(t, svc, "t2")

	view, err := svc.Reservations.AssignTables(ctx, r.ID, []primitive.ObjectID{t1.ID, t2.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, view.Status)
	assert.Equal(t, 2, view.TableCount)
	require.Len(t, view.Tables, 2)

	for _, id := range []primitive.ObjectID{t1.ID, t2.ID} {
		tbl, err := store.FindTable(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, tbl.ReservationCount)
		assert.Equal(t, []primitive.ObjectID{r.ID}, tbl.Reservations)
	}
}

func TestAssignTablesTwiceDoesNotDoubleCount(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)
	t1 := newTable(t, svc, "t1")
	t2 := newTable(t, svc, "t2")

	_, err := svc.Reservations.AssignTables(ctx, r.ID, []primitive.ObjectID{t1.ID})
	require.NoError(t, err)
	_, err = svc.Reservations.AssignTables(ctx, r.ID, []primitive.ObjectID{t1.ID, t2.ID})
	require.NoError(t, err)

	tbl, err := store.FindTable(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.ReservationCount)

	res, err := store.FindReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{t1.ID, t2.ID}, res.Tables)
	assert.Equal(t, 2, res.TableCount)
}

func TestAssignTablesRejectsUnknownTable(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)
	t1 := newTable(t, svc, "t1")

	_, err := svc.Reservations.AssignTables(ctx, r.ID, []primitive.ObjectID{t1.ID, primitive.NewObjectID()})
	assert.ErrorIs(t, err, models.ErrNotFound)

	res, err := store.FindReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Tables)
	assert.Equal(t, models.StatusEnquiry, res.Status)

	_, err = svc.Reservations.AssignTables(ctx, r.ID, nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRecordPayment(t *testing.T) {
	svc, store, events := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)

	view, err := svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{
		ChargePerHead:     ptr(200.0),
		DepositPercentage: ptr(0.2),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, view.Status)
	require.NotNil(t, view.Payment)
	assert.Equal(t, r.ID, view.Payment.ID)
	assert.Equal(t, 4, view.Payment.GuestsCount)
	assert.InDelta(t, 800, view.Payment.TotalAmount, 1e-9)
	assert.InDelta(t, 640, view.Payment.DepositFee, 1e-9)
	assert.Equal(t, models.DefaultPaymentMethod, view.Payment.PaymentMethod)
	assert.NotNil(t, view.Payment.DateOfPayment)

	res, err := store.FindReservation(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Payment)
	assert.Equal(t, r.ID, *res.Payment)
	assert.Contains(t, events.names(), models.EventReservationConfirmed)

	_, err = svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{})
	assert.ErrorIs(t, err, models.ErrPaymentRecorded)
}

func TestRecordPaymentDefaultsAndGuestOverride(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)

	view, err := svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{GuestsCount: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, view.Payment.GuestsCount)
	assert.Equal(t, models.DefaultChargePerHead, view.Payment.ChargePerHead)
	assert.Equal(t, models.DefaultDepositPercentage, view.Payment.DepositPercentage)
	assert.InDelta(t, 1000, view.Payment.TotalAmount, 1e-9)
	assert.InDelta(t, 800, view.Payment.DepositFee, 1e-9)
}

func TestAssignTablesKeepsConfirmedStatus(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 2)
	t1 := newTable(t, svc, "t1")

	_, err := svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{})
	require.NoError(t, err)
	view, err := svc.Reservations.AssignTables(ctx, r.ID, []primitive.ObjectID{t1.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, view.Status)
}

func TestUpdateGuestsRecomputesPayment(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)
	_, err := svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{
		ChargePerHead:     ptr(100.0),
		DepositPercentage: ptr(0.5),
	})
	require.NoError(t, err)

	view, err := svc.Reservations.Update(ctx, r.ID, models.ReservationPatch{GuestsCount: ptr(6)})
	require.NoError(t, err)
	assert.Equal(t, 6, *view.GuestsCount)

	p, err := store.FindPayment(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, p.GuestsCount)
	assert.InDelta(t, 600, p.TotalAmount, 1e-9)
	assert.InDelta(t, 300, p.DepositFee, 1e-9)
}

func TestUpdateWithoutPaymentOnlyPatches(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)

	view, err := svc.Reservations.Update(ctx, r.ID, models.ReservationPatch{GuestsCount: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, *view.GuestsCount)
	assert.Nil(t, view.Payment)

	_, err = svc.Reservations.Update(ctx, r.ID, models.ReservationPatch{})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdatePayment(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)

	_, err := svc.Reservations.UpdatePayment(ctx, r.ID, models.PaymentInput{ChargePerHead: ptr(50.0)})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{})
	require.NoError(t, err)

	view, err := svc.Reservations.UpdatePayment(ctx, r.ID, models.PaymentInput{
		ChargePerHead: ptr(50.0),
		PaymentMethod: ptr("card"),
	})
	require.NoError(t, err)
	assert.InDelta(t, 200, view.Payment.TotalAmount, 1e-9)
	assert.InDelta(t, 160, view.Payment.DepositFee, 1e-9)
	assert.Equal(t, "card", view.Payment.PaymentMethod)
}

func TestDeleteReservation(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)
	t1 := newTable(t, svc, "t1")
	_, err := svc.Reservations.AssignTables(ctx, r.ID, []primitive.ObjectID{t1.ID})
	require.NoError(t, err)
	_, err = svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{})
	require.NoError(t, err)

	require.NoError(t, svc.Reservations.Delete(ctx, r.ID))

	tbl, err := store.FindTable(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.ReservationCount)
	assert.Empty(t, tbl.Reservations)

	diner, err := store.FindDiner(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, diner.ReservationCount)
	assert.Empty(t, diner.Reservations)

	_, err = store.FindPayment(ctx, r.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = store.FindReservation(ctx, r.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, svc.Reservations.Delete(ctx, r.ID), models.ErrNotFound)
}

func TestDeleteDinerCascades(t *testing.T) {
	svc, store, events := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r1 := newReservation(t, svc, d.ID, 2)
	r2 := newReservation(t, svc, d.ID, 3)
	t1 := newTable(t, svc, "t1")
	_, err := svc.Reservations.AssignTables(ctx, r2.ID, []primitive.ObjectID{t1.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Diners.Delete(ctx, d.ID))

	for _, id := range []primitive.ObjectID{r1.ID, r2.ID} {
		_, err := store.FindReservation(ctx, id)
		assert.ErrorIs(t, err, models.ErrNotFound)
	}
	_, err = store.FindDiner(ctx, d.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	tbl, err := store.FindTable(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.ReservationCount)
	assert.Contains(t, events.names(), models.EventDinerDeleted)
}

func TestDeleteTableReleasesReservations(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	pending := newReservation(t, svc, d.ID, 2)
	paid := newReservation(t, svc, d.ID, 2)
	t1 := newTable(t, svc, "t1")
	t2 := newTable(t, svc, "t2")

	_, err := svc.Reservations.AssignTables(ctx, pending.ID, []primitive.ObjectID{t1.ID})
	require.NoError(t, err)
	_, err = svc.Reservations.AssignTables(ctx, paid.ID, []primitive.ObjectID{t1.ID, t2.ID})
	require.NoError(t, err)
	_, err = svc.Reservations.RecordPayment(ctx, paid.ID, models.PaymentInput{})
	require.NoError(t, err)

	require.NoError(t, svc.Tables.Delete(ctx, t1.ID))

	res, err := store.FindReservation(ctx, pending.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Tables)
	assert.Equal(t, 0, res.TableCount)
	assert.Equal(t, models.StatusEnquiry, res.Status)

	res, err = store.FindReservation(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{t2.ID}, res.Tables)
	assert.Equal(t, models.StatusConfirmed, res.Status)

	_, err = store.FindTable(ctx, t1.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDuplicateEmailAndTableName(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	newDiner(t, svc, "a@b.com")
	_, err := svc.Diners.Create(ctx, &models.Diner{
		Fname: ptr("C"), Lname: ptr("D"), Phone: ptr(int64(1)), Email: ptr("a@b.com"),
	})
	assert.ErrorIs(t, err, models.ErrDuplicate)
	assert.ErrorIs(t, err, models.ErrValidation)

	newTable(t, svc, "window")
	_, err = svc.Tables.Create(ctx, &models.Table{TableName: ptr("window"), SeatCapacity: ptr(2)})
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestSearchRequiresKeyword(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()
	newDiner(t, svc, "maria@example.com")
	newDiner(t, svc, "john@example.com")

	_, err := svc.Diners.Search(ctx, models.PageQuery{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, models.ErrValidation)

	page, err := svc.Diners.Search(ctx, models.PageQuery{Page: 1, Limit: 20, Keyword: "maria"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)
	assert.Equal(t, "maria@example.com", *page.Documents[0].Email)
}

func TestDinerReservationsListing(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	other := newDiner(t, svc, "c@d.com")
	newReservation(t, svc, d.ID, 2)
	newReservation(t, svc, d.ID, 3)
	newReservation(t, svc, other.ID, 4)

	page, err := svc.Diners.Reservations(ctx, d.ID, models.PageQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	for _, r := range page.Documents {
		assert.Equal(t, d.ID, *r.Diner)
		assert.Nil(t, r.Tables)
	}

	_, err = svc.Diners.Reservations(ctx, primitive.NewObjectID(), models.PageQuery{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFailedStepIsRecordedAndResumable(t *testing.T) {
	svc, store, events := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	store.fail = "link-diner"

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	_, err := svc.Reservations.Create(ctx, d.ID, &models.Reservation{
		Date: &day, TimeEnter: &day, TimeExits: &day, GuestsCount: ptr(2),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInconsistentState)
	assert.ErrorIs(t, err, errStoreDown)

	var stepErr *models.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "link-diner", stepErr.Step)
	assert.Contains(t, events.names(), models.EventWorkflowFailed)

	wfID, err := primitive.ObjectIDFromHex(stepErr.Workflow)
	require.NoError(t, err)
	wf, err := svc.Reservations.Workflow(ctx, wfID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowFailed, wf.State)
	assert.Equal(t, 1, wf.Cursor)
	assert.Equal(t, []string{"insert-reservation", "link-diner"}, wf.Steps)

	diner, err := store.FindDiner(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, diner.ReservationCount)

	failed, err := svc.Reservations.Workflows(ctx, models.WorkflowFailed, models.PageQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, failed.TotalCount)

	store.fail = ""
	wf, err = svc.Reservations.Resume(ctx, wfID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowCompleted, wf.State)
	assert.Equal(t, 2, wf.Cursor)

	diner, err = store.FindDiner(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, diner.ReservationCount)
	assert.Equal(t, []primitive.ObjectID{wf.Reservation}, diner.Reservations)

	again, err := svc.Reservations.Resume(ctx, wfID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowCompleted, again.State)
	diner, err = store.FindDiner(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, diner.ReservationCount)
}

func TestFailedPaymentStepResumes(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)

	store.fail = "patch-payment"
	_, err := svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{})
	var stepErr *models.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "compute-total", stepErr.Step)

	res, err := store.FindReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnquiry, res.Status)

	store.fail = ""
	wfID, _ := primitive.ObjectIDFromHex(stepErr.Workflow)
	_, err = svc.Reservations.Resume(ctx, wfID)
	require.NoError(t, err)

	p, err := store.FindPayment(ctx, r.ID)
	require.NoError(t, err)
	assert.InDelta(t, 800, p.TotalAmount, 1e-9)
	assert.InDelta(t, 640, p.DepositFee, 1e-9)
	res, err = store.FindReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, res.Status)
}

func TestRepeatedPaymentAfterFailedStepPointsToWorkflow(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)

	store.fail = "patch-payment"
	_, err := svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{})
	var stepErr *models.StepError
	require.ErrorAs(t, err, &stepErr)
	store.fail = ""

	_, err = svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{
		ChargePerHead:     ptr(500.0),
		DepositPercentage: ptr(0.5),
	})
	assert.ErrorIs(t, err, models.ErrPaymentRecorded)
	var pending *models.PendingError
	require.ErrorAs(t, err, &pending)
	assert.Equal(t, stepErr.Workflow, pending.Workflow)
	assert.Equal(t, "compute-total", pending.Step)

	p, err := store.FindPayment(ctx, r.ID)
	require.NoError(t, err)
	assert.InDelta(t, 200, p.ChargePerHead, 1e-9)
	res, err := store.FindReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnquiry, res.Status)
}

func TestFailedUnlinkResumesDelete(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)
	t1 := newTable(t, svc, "t1")
	_, err := svc.Reservations.AssignTables(ctx, r.ID, []primitive.ObjectID{t1.ID})
	require.NoError(t, err)

	// unlink-diner runs first and succeeds; unlink-tables fails second.
	store.fail = "unlink-table"
	err = svc.Reservations.Delete(ctx, r.ID)
	assert.ErrorIs(t, err, models.ErrInconsistentState)

	store.fail = ""
	var stepErr *models.StepError
	require.ErrorAs(t, err, &stepErr)
	wfID, _ := primitive.ObjectIDFromHex(stepErr.Workflow)
	_, err = svc.Reservations.Resume(ctx, wfID)
	require.NoError(t, err)

	diner, err := store.FindDiner(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, diner.ReservationCount)
	tbl, err := store.FindTable(ctx, t1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.ReservationCount)
}

func TestReconcileHealsDrift(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)
	t1 := newTable(t, svc, "t1")
	_, err := svc.Reservations.AssignTables(ctx, r.ID, []primitive.ObjectID{t1.ID})
	require.NoError(t, err)
	_, err = svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{})
	require.NoError(t, err)

	// Leave dangling table and payment references behind.
	_, err = store.DeleteTable(ctx, t1.ID)
	require.NoError(t, err)
	_, err = store.DeletePayment(ctx, r.ID)
	require.NoError(t, err)

	report, err := svc.Reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Positive(t, report.Pruned)
	assert.Positive(t, report.Recounted)
	assert.EqualValues(t, 1, report.StatusesRederived)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	res, err := store.FindReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Tables)
	assert.Equal(t, 0, res.TableCount)
	assert.Nil(t, res.Payment)
	assert.Equal(t, models.StatusEnquiry, res.Status)

	again, err := svc.Reconciler.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Pruned+again.Recounted+again.PaymentsRecomputed+again.StatusesRederived)
}

func TestReconcileRecomputesPayments(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	d := newDiner(t, svc, "a@b.com")
	r := newReservation(t, svc, d.ID, 4)
	_, err := svc.Reservations.RecordPayment(ctx, r.ID, models.PaymentInput{})
	require.NoError(t, err)

	wrong := 1.0
	require.NoError(t, store.PatchPayment(ctx, r.ID, models.PaymentPatch{TotalAmount: &wrong, DepositFee: &wrong}))

	report, err := svc.Reconciler.Run(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.PaymentsRecomputed)

	p, err := store.FindPayment(ctx, r.ID)
	require.NoError(t, err)
	assert.InDelta(t, 800, p.TotalAmount, 1e-9)
	assert.InDelta(t, 640, p.DepositFee, 1e-9)
}
