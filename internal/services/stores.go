package services

import (
	"context"
	"time"

	"vgate-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories implement
// them; tests substitute in-memory fakes.

type StudentStore interface {
	Create(ctx context.Context, s *models.Student, image []byte) error
	Get(ctx context.Context, id int) (*models.Student, error)
	// GetByAdmissionNo resolves an exact (already trimmed) admission number.
	// Returns domain.ErrNotFound when no identity matches.
	GetByAdmissionNo(ctx context.Context, admissionNo string) (*models.Student, error)
	Update(ctx context.Context, s *models.Student, image []byte) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]models.Student, error)
	ListByTutor(ctx context.Context, tutorID int) ([]models.Student, error)
	ListPendingByTutor(ctx context.Context, tutorID int) ([]models.Student, error)
	SetTutorApproved(ctx context.Context, id int) error
	SetVerified(ctx context.Context, ids []int) error
	SetReturned(ctx context.Context, id int, returned bool) error
	// MirrorPass denormalizes a pass onto a student's quick-display columns.
	MirrorPass(ctx context.Context, studentID, passID int, status, purpose string, outingDate time.Time, returnTime *string, returned bool) error
	// ClearPass detaches the student's current pass and records the final status.
	ClearPass(ctx context.Context, studentID int, status string) error
	GetImage(ctx context.Context, id int) ([]byte, error)
}

type TutorStore interface {
	Create(ctx context.Context, t *models.Tutor, image []byte) error
	Get(ctx context.Context, id int) (*models.Tutor, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*models.Tutor, error)
	Update(ctx context.Context, t *models.Tutor, image []byte) error
	Delete(ctx context.Context, id int) error
	List(ctx context.Context) ([]models.Tutor, error)
	ListVerified(ctx context.Context) ([]models.Tutor, error)
	Verify(ctx context.Context, id int) error
	GetImage(ctx context.Context, id int) ([]byte, error)
}

type GatePassStore interface {
	// Create inserts the pass and its member rows.
	Create(ctx context.Context, p *models.GatePass) error
	// Get loads a pass with members and return ledger.
	Get(ctx context.Context, id int) (*models.GatePass, error)
	// UpdateStatus performs a conditional transition: the row is updated only
	// if its current status equals from. Returns false when no row matched,
	// which callers surface as domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id int, from, to string, approvedBy *int, approvedAt *time.Time) (bool, error)
	// SetStatus overwrites the status unconditionally (admin override).
	SetStatus(ctx context.Context, id int, status string) error
	Delete(ctx context.Context, id int) error
	// ListByStatus returns passes with requester columns joined; empty status
	// means all.
	ListByStatus(ctx context.Context, status string) ([]models.GatePass, error)
	// ListForTutor returns passes whose requester belongs to the tutor.
	ListForTutor(ctx context.Context, tutorID int, status string) ([]models.GatePass, error)
	// ListForStudent returns passes where the student is requester or appears
	// in the member roster, newest first, deduplicated.
	ListForStudent(ctx context.Context, studentID int, admissionNo, status string) ([]models.GatePass, error)
	// ListApprovedWithReturnTime feeds the outstanding-returns projection.
	ListApprovedWithReturnTime(ctx context.Context) ([]models.GatePass, error)
	// FindOpenApprovedForMember locates the approved pass a student is out on,
	// as requester or roster member.
	FindOpenApprovedForMember(ctx context.Context, studentID int, admissionNo string) (*models.GatePass, error)
	// AppendReturn inserts a ledger entry. Returns false when an entry for the
	// same identifier already exists (idempotent no-op).
	AppendReturn(ctx context.Context, e *models.ReturnEntry) (bool, error)
	SetAllReturned(ctx context.Context, id int, v bool) error
	// ListWithReturnsSince returns approved passes that gained ledger entries
	// after the cutoff, for the tutor notification window.
	ListWithReturnsSince(ctx context.Context, since time.Time) ([]models.GatePass, error)
}
