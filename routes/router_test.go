package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-restobook/database/memory"
	"go-restobook/events"
	"go-restobook/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := memory.NewStore()
	hub := events.NewHub([]string{"*"})
	t.Cleanup(hub.Close)
	svc := services.New(store, hub)
	return NewRouter(svc, store, hub, Options{
		CORSOrigins:    []string{"http://localhost:9000"},
		Metrics:        true,
		RequestTimeout: 5 * time.Second,
	})
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createDiner(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/diners", gin.H{
		"fname": "A", "lname": "B", "phone": 5551234567, "email": email,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["_id"].(string)
}

func createTable(t *testing.T, r http.Handler, name string) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/tables", gin.H{"tableName": name, "seatCapacity": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["_id"].(string)
}

func createReservation(t *testing.T, r http.Handler, dinerID string, guests int) string {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/diners/"+dinerID+"/reservations", gin.H{
		"date":        "2026-03-14T00:00:00Z",
		"timeEnter":   "2026-03-14T19:00:00Z",
		"timeExits":   "2026-03-14T21:00:00Z",
		"guestsCount": guests,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["_id"].(string)
}

func TestCreateDiner(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/diners", gin.H{
		"fname": "A", "lname": "B", "phone": 5551234567, "email": "a@b.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "a@b.com", body["email"])
	assert.EqualValues(t, 0, body["reservationCount"])
	assert.NotContains(t, body, "reservations")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(t, r, http.MethodPost, "/api/v1/diners", gin.H{
		"fname": "C", "lname": "D", "phone": 1, "email": "a@b.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/diners", gin.H{"fname": "C", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "requestId")

	w = do(t, r, http.MethodPost, "/api/v1/diners", "{broken")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationScenario(t *testing.T) {
	r := newTestRouter(t)

	dinerID := createDiner(t, r, "a@b.com")
	reservationID := createReservation(t, r, dinerID, 4)

	w := do(t, r, http.MethodGet, "/api/v1/diners/"+dinerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["reservationCount"])

	w = do(t, r, http.MethodGet, "/api/v1/reservations/"+reservationID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "enquiry", decode(t, w)["status"])

	t1 := createTable(t, r, "t1")
	t2 := createTable(t, r, "t2")
	w = do(t, r, http.MethodPut, "/api/v1/reservations/"+reservationID+"/tables", []string{t1, t2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode(t, w)
	assert.Equal(t, "pending", view["status"])
	assert.Len(t, view["tables"], 2)

	for _, id := range []string{t1, t2} {
		w = do(t, r, http.MethodGet, "/api/v1/tables/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, decode(t, w)["reservationCount"])
	}

	w = do(t, r, http.MethodGet, "/api/v1/reservations/"+reservationID+"/payment", gin.H{
		"chargePerHead": 200, "depositPercentage": 0.2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view = decode(t, w)
	assert.Equal(t, "confirmed", view["status"])
	payment := view["payment"].(map[string]interface{})
	assert.InDelta(t, 800, payment["totalAmount"], 1e-9)
	assert.InDelta(t, 640, payment["depositFee"], 1e-9)

	diner := view["diner"].(map[string]interface{})
	assert.Equal(t, dinerID, diner["_id"])
	assert.NotContains(t, diner, "reservations")

	w = do(t, r, http.MethodPost, "/api/v1/reservations/"+reservationID+"/payment", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/reservations/"+reservationID, gin.H{"guestsCount": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	payment = decode(t, w)["payment"].(map[string]interface{})
	assert.InDelta(t, 1000, payment["totalAmount"], 1e-9)
	assert.InDelta(t, 800, payment["depositFee"], 1e-9)

	w = do(t, r, http.MethodPut, "/api/v1/reservations/"+reservationID+"/payment", gin.H{"depositPercentage": 0.5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	payment = decode(t, w)["payment"].(map[string]interface{})
	assert.InDelta(t, 500, payment["depositFee"], 1e-9)

	w = do(t, r, http.MethodDelete, "/api/v1/reservations/"+reservationID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/tables/"+t1, nil)
	assert.EqualValues(t, 0, decode(t, w)["reservationCount"])
	w = do(t, r, http.MethodGet, "/api/v1/diners/"+dinerID, nil)
	assert.EqualValues(t, 0, decode(t, w)["reservationCount"])
	w = do(t, r, http.MethodGet, "/api/v1/reservations/"+reservationID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignTablesBodyShapes(t *testing.T) {
	r := newTestRouter(t)
	dinerID := createDiner(t, r, "a@b.com")
	reservationID := createReservation(t, r, dinerID, 2)
	t1 := createTable(t, r, "t1")

	w := do(t, r, http.MethodPut, "/api/v1/reservations/"+reservationID+"/tables", gin.H{"tables": []string{t1, t1}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode(t, w)["tableCount"])

	w = do(t, r, http.MethodPut, "/api/v1/reservations/"+reservationID+"/tables", []string{"nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/reservations/"+reservationID+"/tables", []string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/reservations/"+reservationID+"/tables", []string{"0123456789abcdef01234567"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListingEnvelope(t *testing.T) {
	r := newTestRouter(t)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		createDiner(t, r, email)
	}

	w := do(t, r, http.MethodGet, "/api/v1/diners?limit=2&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 3, body["totalCount"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 2, body["totalPages"])
	docs := body["documents"].([]interface{})
	require.Len(t, docs, 1)
	assert.NotContains(t, docs[0].(map[string]interface{}), "reservations")

	w = do(t, r, http.MethodGet, "/api/v1/diners?limit=abc&page=-4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, 1, body["page"])
	assert.EqualValues(t, 20, body["limit"])

	w = do(t, r, http.MethodGet, "/api/v1/diners?sort=password", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/diners?sort=email", nil)
	require.Equal(t, http.StatusOK, w.Code)
	docs = decode(t, w)["documents"].([]interface{})
	assert.Equal(t, "a@x.com", docs[0].(map[string]interface{})["email"])
}

func TestSearch(t *testing.T) {
	r := newTestRouter(t)
	createTable(t, r, "Window Booth")
	createTable(t, r, "Patio")

	w := do(t, r, http.MethodGet, "/api/v1/tables/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/tables/search?keyword=window", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["totalCount"])
	docs := body["documents"].([]interface{})
	assert.Equal(t, "Window Booth", docs[0].(map[string]interface{})["tableName"])
}

func TestBadAndMissingIDs(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/diners/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/diners/0123456789abcdef01234567", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodDelete, "/api/v1/tables/0123456789abcdef01234567", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteDinerCascade(t *testing.T) {
	r := newTestRouter(t)
	dinerID := createDiner(t, r, "a@b.com")
	first := createReservation(t, r, dinerID, 2)
	second := createReservation(t, r, dinerID, 3)

	w := do(t, r, http.MethodGet, "/api/v1/diners/"+dinerID+"/reservations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["totalCount"])

	w = do(t, r, http.MethodDelete, "/api/v1/diners/"+dinerID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for _, id := range []string{first, second} {
		w = do(t, r, http.MethodGet, "/api/v1/reservations/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	w = do(t, r, http.MethodGet, "/api/v1/diners/"+dinerID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkflowsAndMaintenance(t *testing.T) {
	r := newTestRouter(t)
	dinerID := createDiner(t, r, "a@b.com")
	createReservation(t, r, dinerID, 2)

	w := do(t, r, http.MethodGet, "/api/v1/workflows?state=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["totalCount"])
	wf := body["documents"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "create-reservation", wf["kind"])

	w = do(t, r, http.MethodGet, "/api/v1/workflows/"+wf["_id"].(string), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/workflows/"+wf["_id"].(string)+"/resume", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["state"])

	w = do(t, r, http.MethodGet, "/api/v1/workflows?state=sleeping", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/maintenance/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode(t, w)
	assert.EqualValues(t, 0, report["recounted"])
	assert.Contains(t, report, "finishedAt")
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = do(t, r, http.MethodGet, "/api/v1/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "restobook_http_requests_total"))
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/diners", nil)
	req.Header.Set("Origin", "http://localhost:9000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:9000", w.Header().Get("Access-Control-Allow-Origin"))
}
