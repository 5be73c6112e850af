package models

import "time"

// Notification types
const (
	NotificationGatePass     = "gatepass"
	NotificationRegistration = "registration"
	NotificationReturn       = "return"
	NotificationApproval     = "approval"
)

// Notification is a transient projection entry. Nothing here is persisted;
// every projection call recomputes from current pass and student state.
type Notification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	StudentName string    `json:"student_name,omitempty"`
	AdmissionNo string    `json:"admission_no,omitempty"`
	Purpose     string    `json:"purpose,omitempty"`
	GatePassID  int       `json:"gate_pass_id,omitempty"`
	Date        time.Time `json:"date"`
	Read        bool      `json:"read"`
	Priority    string    `json:"priority"`
}

type NotificationFeed struct {
	Count         int            `json:"count"`
	UnreadCount   int            `json:"unread_count"`
	Notifications []Notification `json:"notifications"`
}
