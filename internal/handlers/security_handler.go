package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vgate-backend/internal/cache"
	"vgate-backend/internal/middleware"
	"vgate-backend/internal/services"
)

// SecurityHandler serves the gate desk: the outstanding-returns dashboard
// and the mark-returned actions.
type SecurityHandler struct {
	Returns *services.ReturnService
	Cache   *cache.Cache
}

func NewSecurityHandler(returns *services.ReturnService, c *cache.Cache) *SecurityHandler {
	return &SecurityHandler{Returns: returns, Cache: c}
}

// ListOutstanding returns everyone currently out on an approved pass, one
// row per person. The list is cached briefly; any return invalidates it.
func (h *SecurityHandler) ListOutstanding(w http.ResponseWriter, r *http.Request) {
	if data, ok := h.Cache.Get(r.Context(), cache.KeyOutstanding); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
		return
	}

	members, err := h.Returns.ListOutstanding(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	payload, err := json.Marshal(members)
	if err != nil {
		writeError(w, err)
		return
	}
	h.Cache.Set(r.Context(), cache.KeyOutstanding, payload)

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// LookupMember answers "is this person out right now?" for the gate desk:
// given ?admission_no= it returns the approved pass they are out on, 404 when
// there is none.
func (h *SecurityHandler) LookupMember(w http.ResponseWriter, r *http.Request) {
	pass, err := h.Returns.LookupMember(r.Context(), r.URL.Query().Get("admission_no"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pass)
}

// MarkReturned records one member of a pass as back. The member id comes
// from the outstanding list: a student id or a guest identifier.
func (h *SecurityHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	passID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gate pass ID", http.StatusBadRequest)
		return
	}

	var req struct {
		MemberID string `json:"member_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MemberID == "" {
		http.Error(w, "member_id required", http.StatusBadRequest)
		return
	}

	returnedBy, _ := middleware.GetNameFromContext(r.Context())
	pass, err := h.Returns.MarkReturned(r.Context(), passID, req.MemberID, returnedBy)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Cache.InvalidateGatePassCaches(r.Context())
	writeJSON(w, http.StatusOK, pass)
}

// MarkAllReturned closes out a whole pass at once.
func (h *SecurityHandler) MarkAllReturned(w http.ResponseWriter, r *http.Request) {
	passID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid gate pass ID", http.StatusBadRequest)
		return
	}

	returnedBy, _ := middleware.GetNameFromContext(r.Context())
	pass, err := h.Returns.MarkAllReturned(r.Context(), passID, returnedBy)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Cache.InvalidateGatePassCaches(r.Context())
	writeJSON(w, http.StatusOK, pass)
}
