package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgate-backend/internal/cache"
	"vgate-backend/internal/models"
	"vgate-backend/internal/services"
)

// stubPassStore serves a fixed pass list; only ListByStatus is implemented.
type stubPassStore struct {
	services.GatePassStore
	passes []models.GatePass
}

func (s *stubPassStore) ListByStatus(_ context.Context, status string) ([]models.GatePass, error) {
	var out []models.GatePass
	for _, p := range s.passes {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestListAllPendingQueue(t *testing.T) {
	store := &stubPassStore{passes: []models.GatePass{
		{ID: 1, StudentID: 1, Purpose: "Errand", Status: models.PassStatusPending},
		{ID: 2, StudentID: 2, Purpose: "Home visit", Status: models.PassStatusRejected},
	}}
	// disabled cache: the endpoint must serve straight from the store
	h := NewGatePassHandler(services.NewGatePassService(store, nil), cache.New("", "", 0, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/gate-passes?status=pending", nil)
	rec := httptest.NewRecorder()
	h.ListAll(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []models.GatePass
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, models.PassStatusPending, got[0].Status)
}
