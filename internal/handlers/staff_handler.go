package handlers

import (
	"encoding/json"
	"net/http"

	"vgate-backend/internal/services"
)

// StaffHandler authenticates the fixed admin and security accounts.
type StaffHandler struct {
	Service *services.StaffService
}

func NewStaffHandler(service *services.StaffService) *StaffHandler {
	return &StaffHandler{Service: service}
}

func (h *StaffHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, role, err := h.Service.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"role":  role,
	})
}
