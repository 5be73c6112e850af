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

type StudentHandler struct {
	Service *services.StudentService
}

func NewStudentHandler(service *services.StudentService) *StudentHandler {
	return &StudentHandler{Service: service}
}

// Register creates a student account. Accepts multipart (with a photo) or
// plain JSON. The account stays locked until the chosen tutor approves it.
func (h *StudentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterStudentRequest
	var image []byte

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		req = models.RegisterStudentRequest{
			AdmissionNo: r.FormValue("admission_no"),
			Name:        r.FormValue("name"),
			Department:  r.FormValue("department"),
			Semester:    formInt(r, "semester"),
			TutorID:     formInt(r, "tutor_id"),
			Email:       r.FormValue("email"),
			Phone:       r.FormValue("phone"),
			Password:    r.FormValue("password"),
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

	student, err := h.Service.Register(r.Context(), &req, image)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration submitted. Your tutor has to approve it before you can log in.",
		"student": student,
	})
}

func (h *StudentHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.StudentLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, student, err := h.Service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"role":    auth.RoleStudent,
		"student": student,
	})
}

// CheckApproval is the public polling endpoint the post-registration screen
// uses: ?admission_no=234/23.
func (h *StudentHandler) CheckApproval(w http.ResponseWriter, r *http.Request) {
	admissionNo := r.URL.Query().Get("admission_no")
	if admissionNo == "" {
		http.Error(w, "admission_no query parameter required", http.StatusBadRequest)
		return
	}

	student, err := h.Service.GetByAdmissionNo(r.Context(), admissionNo)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"admission_no":   student.AdmissionNo,
		"tutor_approved": student.TutorApproved,
	})
}

// Me returns the logged-in student's own record, including the mirrored
// current-pass fields the dashboard shows.
func (h *StudentHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	student, err := h.Service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	student, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// Update edits a profile. Students may only edit their own; admin may edit
// anyone.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	role, _ := middleware.GetRoleFromContext(r.Context())
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	if role != auth.RoleAdmin && userID != id {
		http.Error(w, "Insufficient permissions", http.StatusForbidden)
		return
	}

	var req models.UpdateStudentRequest
	var image []byte
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxImageSize); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		req = models.UpdateStudentRequest{
			AdmissionNo: r.FormValue("admission_no"),
			Name:        r.FormValue("name"),
			Department:  r.FormValue("department"),
			Semester:    formInt(r, "semester"),
			TutorID:     formInt(r, "tutor_id"),
			Email:       r.FormValue("email"),
			Phone:       r.FormValue("phone"),
		}
		if image, err = readImageFile(r, "image"); err != nil {
			writeError(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	student, err := h.Service.Update(r.Context(), id, &req, image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Student deleted"})
}

func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

// ListMine returns the logged-in tutor's students.
func (h *StudentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	tutorID, _ := middleware.GetUserIDFromContext(r.Context())

	students, err := h.Service.ListByTutor(r.Context(), tutorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

// ListPendingRegistrations returns the tutor's registration approval queue.
func (h *StudentHandler) ListPendingRegistrations(w http.ResponseWriter, r *http.Request) {
	tutorID, _ := middleware.GetUserIDFromContext(r.Context())

	students, err := h.Service.ListPendingByTutor(r.Context(), tutorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

// ApproveRegistration accepts a pending registration belonging to the
// logged-in tutor.
func (h *StudentHandler) ApproveRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
		return
	}
	tutorID, _ := middleware.GetUserIDFromContext(r.Context())

	if err := h.Service.ApproveRegistration(r.Context(), id, tutorID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Registration approved"})
}

// VerifyStudents bulk-marks students as identity-checked at the gate, fed by
// the roster page checkboxes.
func (h *StudentHandler) VerifyStudents(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentIDs []int `json:"student_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.MarkVerified(r.Context(), req.StudentIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Students verified"})
}

// GetImage serves the stored profile photo as JPEG.
func (h *StudentHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid student ID", http.StatusBadRequest)
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
