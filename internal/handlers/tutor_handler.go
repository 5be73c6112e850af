package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vgate-backend/internal/auth"
	"vgate-backend/internal/middleware"
	"vgate-backend/internal/models"
	"vgate-backend/internal/services"
)

type TutorHandler struct {
	Service *services.TutorService
}

func NewTutorHandler(service *services.TutorService) *TutorHandler {
	return &TutorHandler{Service: service}
}

// Register creates a tutor account pending admin verification.
func (h *TutorHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterTutorRequest
	var image []byte

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		req = models.RegisterTutorRequest{
			EmployeeID: r.FormValue("employee_id"),
			Name:       r.FormValue("name"),
			Department: r.FormValue("department"),
			Email:      r.FormValue("email"),
			Password:   r.FormValue("password"),
		}
		var err error
		if image, err = readImageFile(r, "image"); err != nil {
			writeError(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tutor, err := h.Service.Register(r.Context(), &req, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration submitted. An administrator has to verify your account.",
		"tutor":   tutor,
	})
}

func (h *TutorHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.TutorLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, tutor, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"role":  auth.RoleTutor,
		"tutor": tutor,
	})
}

// ListVerified is public: the student registration form needs the tutor
// dropdown before any login exists.
func (h *TutorHandler) ListVerified(w http.ResponseWriter, r *http.Request) {
	tutors, err := h.Service.ListVerified(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if tutors == nil {
		tutors = []models.Tutor{}
	}
	writeJSON(w, http.StatusOK, tutors)
}

func (h *TutorHandler) List(w http.ResponseWriter, r *http.Request) {
	tutors, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if tutors == nil {
		tutors = []models.Tutor{}
	}
	writeJSON(w, http.StatusOK, tutors)
}

func (h *TutorHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tutor, err := h.Service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tutor)
}

func (h *TutorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid tutor ID", http.StatusBadRequest)
		return
	}

	role, _ := middleware.GetRoleFromContext(r.Context())
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if role != auth.RoleAdmin && userID != id {
		http.Error(w, "Insufficient permissions", http.StatusForbidden)
		return
	}

	var req models.UpdateTutorRequest
	var image []byte
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		req = models.UpdateTutorRequest{
			EmployeeID: r.FormValue("employee_id"),
			Name:       r.FormValue("name"),
			Department: r.FormValue("department"),
			Email:      r.FormValue("email"),
		}
		if image, err = readImageFile(r, "image"); err != nil {
			writeError(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tutor, err := h.Service.Update(r.Context(), id, &req, image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tutor)
}

func (h *TutorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid tutor ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tutor deleted"})
}

// Verify activates a tutor account (admin only).
func (h *TutorHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid tutor ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Verify(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Tutor verified"})
}

func (h *TutorHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid tutor ID", http.StatusBadRequest)
		return
	}

	image, err := h.Service.GetImage(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(image)
}
