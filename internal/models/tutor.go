package models

// Tutor account statuses
const (
	TutorStatusPending  = "pending"
	TutorStatusApproved = "approved"
)

type Tutor struct {
	ID           int    `json:"id" db:"id"`
	EmployeeID   string `json:"employee_id" db:"employee_id"`
	Name         string `json:"name" db:"name"`
	Department   string `json:"department" db:"department"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Verified     bool   `json:"verified" db:"verified"`
	Status       string `json:"status" db:"status"`
}

type RegisterTutorRequest struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type UpdateTutorRequest struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

type TutorLoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}
