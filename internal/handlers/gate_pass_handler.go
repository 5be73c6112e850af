package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vgate-backend/internal/cache"
	"vgate-backend/internal/middleware"
	"vgate-backend/internal/models"
	"vgate-backend/internal/services"
)

type GatePassHandler struct {
	Service *services.GatePassService
	Cache   *cache.Cache
}

func NewGatePassHandler(service *services.GatePassService, c *cache.Cache) *GatePassHandler {
	return &GatePassHandler{Service: service, Cache: c}
}

// Create submits a new gate pass request for the logged-in student.
func (h *GatePassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGatePassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	studentID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	pass, err := h.Service.Submit(r.Context(), studentID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Cache.InvalidateGatePassCaches(r.Context())
	writeJSON(w, http.StatusCreated, pass)
}

// ListMine returns the student's pass history, optionally filtered by
// ?status=.
func (h *GatePassHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	studentID, _ := middleware.GetUserIDFromContext(r.Context())

	passes, err := h.Service.ListForStudent(r.Context(), studentID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	if passes == nil {
		passes = []models.GatePass{}
	}
	writeJSON(w, http.StatusOK, passes)
}

func (h *GatePassHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gate pass ID", http.StatusBadRequest)
		return
	}

	pass, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pass)
}

// Cancel withdraws the student's own pending pass.
func (h *GatePassHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gate pass ID", http.StatusBadRequest)
		return
	}
	studentID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := h.Service.Cancel(r.Context(), id, studentID); err != nil {
		writeError(w, err)
		return
	}

	h.Cache.InvalidateGatePassCaches(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Gate pass cancelled"})
}

// ListPendingForTutor returns the logged-in tutor's approval queue.
func (h *GatePassHandler) ListPendingForTutor(w http.ResponseWriter, r *http.Request) {
	tutorID, _ := middleware.GetUserIDFromContext(r.Context())

	passes, err := h.Service.ListPendingForTutor(r.Context(), tutorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if passes == nil {
		passes = []models.GatePass{}
	}
	writeJSON(w, http.StatusOK, passes)
}

// ListForTutor returns the tutor's decision history, filtered by ?status=.
func (h *GatePassHandler) ListForTutor(w http.ResponseWriter, r *http.Request) {
	tutorID, _ := middleware.GetUserIDFromContext(r.Context())

	passes, err := h.Service.ListForTutor(r.Context(), tutorID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	if passes == nil {
		passes = []models.GatePass{}
	}
	writeJSON(w, http.StatusOK, passes)
}

// Approve moves a pending pass to approved on behalf of the tutor.
func (h *GatePassHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gate pass ID", http.StatusBadRequest)
		return
	}
	tutorID, _ := middleware.GetUserIDFromContext(r.Context())

	pass, err := h.Service.Approve(r.Context(), id, tutorID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Cache.InvalidateGatePassCaches(r.Context())
	writeJSON(w, http.StatusOK, pass)
}

// Reject moves a pending pass to rejected.
func (h *GatePassHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gate pass ID", http.StatusBadRequest)
		return
	}
	tutorID, _ := middleware.GetUserIDFromContext(r.Context())

	pass, err := h.Service.Reject(r.Context(), id, tutorID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Cache.InvalidateGatePassCaches(r.Context())
	writeJSON(w, http.StatusOK, pass)
}

// ListAll is the admin overview, optionally filtered by ?status=. The pending
// queue is the dashboard's hot poll, so that variant is cached like the
// outstanding list; any pass mutation invalidates it.
func (h *GatePassHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == models.PassStatusPending {
		if data, ok := h.Cache.Get(r.Context(), cache.KeyPendingAll); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	passes, err := h.Service.ListAll(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	if passes == nil {
		passes = []models.GatePass{}
	}

	if status == models.PassStatusPending {
		payload, err := json.Marshal(passes)
		if err != nil {
			writeError(w, err)
			return
		}
		h.Cache.Set(r.Context(), cache.KeyPendingAll, payload)
		w.Header().Set("Content-Type", "application/json")
		w.Write(payload)
		return
	}
	writeJSON(w, http.StatusOK, passes)
}

// SetStatus is the admin status override.
func (h *GatePassHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gate pass ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pass, err := h.Service.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Cache.InvalidateGatePassCaches(r.Context())
	writeJSON(w, http.StatusOK, pass)
}

// Delete removes a pass outright (admin only).
func (h *GatePassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gate pass ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	h.Cache.InvalidateGatePassCaches(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Gate pass deleted"})
}
