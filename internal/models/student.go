package models

import "time"

// PassStatusNone is the mirror status for a student with no pass on record
const PassStatusNone = "none"

type Student struct {
	ID            int        `json:"id" db:"id"`
	AdmissionNo   string     `json:"admission_no" db:"admission_no"`
	Name          string     `json:"name" db:"name"`
	Department    string     `json:"department" db:"department"`
	Semester      int        `json:"semester" db:"semester"`
	TutorID       *int       `json:"tutor_id,omitempty" db:"tutor_id"`
	TutorName     string     `json:"tutor_name" db:"tutor_name"`
	Email         string     `json:"email" db:"email"`
	Phone         string     `json:"phone" db:"phone"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	TutorApproved bool       `json:"tutor_approved" db:"tutor_approved"`
	Verified      bool       `json:"verified" db:"verified"`
	Returned      bool       `json:"returned" db:"returned"`
	CurrentPassID *int       `json:"current_pass_id,omitempty" db:"current_pass_id"`
	PassStatus    string     `json:"pass_status" db:"pass_status"`
	Purpose       *string    `json:"purpose,omitempty" db:"purpose"`
	OutingDate    *time.Time `json:"outing_date,omitempty" db:"outing_date"`
	ReturnTime    *string    `json:"return_time,omitempty" db:"return_time"`
	RegisteredAt  time.Time  `json:"registered_at" db:"registered_at"`
}

// RegisterStudentRequest carries the multipart registration form fields.
// The photo bytes are handled separately by the handler.
type RegisterStudentRequest struct {
	AdmissionNo string `json:"admission_no"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Semester    int    `json:"semester"`
	TutorID     int    `json:"tutor_id"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
}

type UpdateStudentRequest struct {
	AdmissionNo string `json:"admission_no"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Semester    int    `json:"semester"`
	TutorID     int    `json:"tutor_id"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type StudentLoginRequest struct {
	AdmissionNo string `json:"admission_no"`
	Password    string `json:"password"`
}
