package handlers

import (
	"net/http"

	"vgate-backend/internal/middleware"
	"vgate-backend/internal/services"
)

// NotificationHandler serves the computed notification feeds. Feeds are
// recomputed per request from pass and registration state; there is no
// stored notification table.
type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

func (h *NotificationHandler) TutorFeed(w http.ResponseWriter, r *http.Request) {
	tutorID, _ := middleware.GetUserIDFromContext(r.Context())

	feed, err := h.Service.TutorFeed(r.Context(), tutorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func (h *NotificationHandler) StudentFeed(w http.ResponseWriter, r *http.Request) {
	studentID, _ := middleware.GetUserIDFromContext(r.Context())

	feed, err := h.Service.StudentFeed(r.Context(), studentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// MarkRead and MarkAllRead acknowledge without persisting anything: read
// state lives in the client, the next feed is recomputed from scratch.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}
