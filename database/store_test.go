package database

import (
	"context"
	"os"
	"testing"
	"time"

	"go-restobook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr[T any](v T) *T { return &v }

// newTestStore connects to MONGODB_TEST_URL and uses a throwaway database.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo integration test in short mode")
	}
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := "restobook_test_" + primitive.NewObjectID().Hex()
	client, err := Connect(ctx, Config{URI: url, Name: name, Timeout: 10 * time.Second})
	require.NoError(t, err)
	store := NewStore(client, name)
	require.NoError(t, store.EnsureIndexes(ctx))
	t.Cleanup(func() {
		_ = client.Database(name).Drop(context.Background())
		_ = store.Close(context.Background())
	})
	return store
}

func TestMongoLinkGuards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	table := &models.Table{ID: primitive.NewObjectID(), TableName: ptr("t1"), SeatCapacity: ptr(4), DateAdded: time.Now().UTC()}
	require.NoError(t, s.InsertTable(ctx, table))
	r := primitive.NewObjectID()

	for i := 0; i < 2; i++ {
		_, err := s.LinkTableReservation(ctx, table.ID, r)
		require.NoError(t, err)
	}
	got, err := s.FindTable(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReservationCount)
	assert.Equal(t, []primitive.ObjectID{r}, got.Reservations)

	for i := 0; i < 2; i++ {
		_, err := s.UnlinkTableReservation(ctx, table.ID, r)
		require.NoError(t, err)
	}
	got, err = s.FindTable(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReservationCount)

	_, err = s.LinkTableReservation(ctx, primitive.NewObjectID(), r)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMongoUniqueAndText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Window Booth", "Patio"} {
		require.NoError(t, s.InsertTable(ctx, &models.Table{
			ID: primitive.NewObjectID(), TableName: ptr(name), SeatCapacity: ptr(2), DateAdded: time.Now().UTC(),
		}))
	}
	err := s.InsertTable(ctx, &models.Table{ID: primitive.NewObjectID(), TableName: ptr("Patio"), SeatCapacity: ptr(2)})
	assert.ErrorIs(t, err, models.ErrDuplicate)

	page, err := s.ListTables(ctx, models.PageQuery{Page: 1, Limit: 10, Keyword: "window"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)
	assert.Nil(t, page.Documents[0].Reservations)
}

func TestMongoReservationView(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	diner := &models.Diner{ID: primitive.NewObjectID(), Fname: ptr("A"), Lname: ptr("B"), Phone: ptr(int64(5551234567)), Email: ptr("a@b.com")}
	require.NoError(t, s.InsertDiner(ctx, diner))
	table := &models.Table{ID: primitive.NewObjectID(), TableName: ptr("t1"), SeatCapacity: ptr(4)}
	require.NoError(t, s.InsertTable(ctx, table))

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	r := &models.Reservation{
		ID: primitive.NewObjectID(), Diner: &diner.ID, Date: &day, TimeEnter: &day, TimeExits: &day,
		Status: models.StatusEnquiry, GuestsCount: ptr(4), DateReserved: day,
	}
	require.NoError(t, s.InsertReservation(ctx, r))
	_, err := s.LinkDinerReservation(ctx, diner.ID, r.ID)
	require.NoError(t, err)
	_, err = s.AddReservationTable(ctx, r.ID, table.ID)
	require.NoError(t, err)
	_, err = s.LinkTableReservation(ctx, table.ID, r.ID)
	require.NoError(t, err)

	inserted, err := s.CreatePayment(ctx, &models.Payment{ID: r.ID, GuestsCount: 4, ChargePerHead: 200, DepositPercentage: 0.2})
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = s.CreatePayment(ctx, &models.Payment{ID: r.ID, GuestsCount: 9})
	require.NoError(t, err)
	assert.False(t, inserted)
	require.NoError(t, s.ConfirmReservation(ctx, r.ID, r.ID))

	view, err := s.FindReservationView(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, view.Status)
	require.NotNil(t, view.Diner)
	assert.Nil(t, view.Diner.Reservations)
	require.Len(t, view.Tables, 1)
	assert.Nil(t, view.Tables[0].Reservations)
	require.NotNil(t, view.Payment)
	assert.Equal(t, 4, view.Payment.GuestsCount)
}

func TestMongoPruneAndRecount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	table := &models.Table{ID: primitive.NewObjectID(), TableName: ptr("t1"), SeatCapacity: ptr(4)}
	require.NoError(t, s.InsertTable(ctx, table))
	_, err := s.LinkTableReservation(ctx, table.ID, primitive.NewObjectID())
	require.NoError(t, err)
	_, err = s.tables.UpdateOne(ctx, bson.M{"_id": table.ID}, bson.M{"$set": bson.M{"reservationCount": 7}})
	require.NoError(t, err)

	pruned, err := s.PruneDanglingReferences(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)
	recounted, err := s.RecountReferences(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, recounted)

	got, err := s.FindTable(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ReservationCount)
	assert.Empty(t, got.Reservations)
}

func TestMongoPruneKeepsReferencesLinkedDuringPass(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	diner := &models.Diner{ID: primitive.NewObjectID(), Fname: ptr("A"), Lname: ptr("B"), Phone: ptr(int64(5551234567)), Email: ptr("a@b.com")}
	require.NoError(t, s.InsertDiner(ctx, diner))
	stale := primitive.NewObjectID()
	_, err := s.LinkDinerReservation(ctx, diner.ID, stale)
	require.NoError(t, err)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	fresh := &models.Reservation{
		ID: primitive.NewObjectID(), Diner: &diner.ID, Date: &day, TimeEnter: &day, TimeExits: &day,
		Status: models.StatusEnquiry, GuestsCount: ptr(2), DateReserved: day,
	}
	linked := false
	s.afterPruneScan = func() {
		if linked {
			return
		}
		linked = true
		require.NoError(t, s.InsertReservation(ctx, fresh))
		_, err := s.LinkDinerReservation(ctx, diner.ID, fresh.ID)
		require.NoError(t, err)
	}

	_, err = s.PruneDanglingReferences(ctx)
	require.NoError(t, err)
	_, err = s.RecountReferences(ctx)
	require.NoError(t, err)

	got, err := s.FindDiner(ctx, diner.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{fresh.ID}, got.Reservations)
	assert.Equal(t, 1, got.ReservationCount)
}
