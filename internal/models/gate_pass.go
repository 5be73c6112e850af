package models

import "time"

// Gate pass statuses. Rejected and cancelled are terminal; approved carries
// the return-tracking sub-lifecycle.
const (
	PassStatusPending   = "pending"
	PassStatusApproved  = "approved"
	PassStatusRejected  = "rejected"
	PassStatusCancelled = "cancelled"
)

type GatePass struct {
	ID          int           `json:"id" db:"id"`
	StudentID   int           `json:"student_id" db:"student_id"`
	Purpose     string        `json:"purpose" db:"purpose"`
	OutingDate  time.Time     `json:"outing_date" db:"outing_date"`
	ReturnTime  *string       `json:"return_time,omitempty" db:"return_time"`
	Status      string        `json:"status" db:"status"`
	ApprovedBy  *int          `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty" db:"approved_at"`
	AllReturned bool          `json:"all_returned" db:"all_returned"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
	Members     []GroupMember `json:"group_members"`
	Returns     []ReturnEntry `json:"returned_students"`

	// Denormalized requester columns populated by list queries
	StudentName        string `json:"student_name,omitempty" db:"student_name"`
	StudentAdmissionNo string `json:"student_admission_no,omitempty" db:"student_admission_no"`
	StudentDepartment  string `json:"student_department,omitempty" db:"student_department"`
	StudentSemester    int    `json:"student_semester,omitempty" db:"student_semester"`
}

// GroupMember is one additional person on a pass. StudentID is set when the
// admission number resolved to a registered student at submission time;
// otherwise the row is a guest and the fields hold the submitted values.
type GroupMember struct {
	ID          int    `json:"id" db:"id"`
	GatePassID  int    `json:"gate_pass_id" db:"gate_pass_id"`
	StudentID   *int   `json:"student_id,omitempty" db:"student_id"`
	Name        string `json:"name" db:"name"`
	AdmissionNo string `json:"admission_no" db:"admission_no"`
	Department  string `json:"department" db:"department"`
	Semester    *int   `json:"semester,omitempty" db:"semester"`
	Position    int    `json:"position" db:"position"`
}

// IsGuest reports whether the member has no backing student record.
func (m GroupMember) IsGuest() bool {
	return m.StudentID == nil
}

// ReturnEntry is one row of a pass's return ledger. At most one entry exists
// per member (registered or guest); inserts are idempotent.
type ReturnEntry struct {
	ID          int       `json:"id" db:"id"`
	GatePassID  int       `json:"gate_pass_id" db:"gate_pass_id"`
	StudentID   *int      `json:"student_id,omitempty" db:"student_id"`
	AdmissionNo string    `json:"admission_no" db:"admission_no"`
	Name        string    `json:"name" db:"name"`
	IsGuest     bool      `json:"is_guest" db:"is_guest"`
	ReturnedAt  time.Time `json:"returned_at" db:"returned_at"`
	ReturnedBy  string    `json:"returned_by" db:"returned_by"`
}

// TotalMembers is the expected headcount: requester plus group members.
func (p *GatePass) TotalMembers() int {
	return 1 + len(p.Members)
}

// ReturnEntryFor finds the ledger entry for a registered student or guest
// admission number, or nil when the member is still out.
func (p *GatePass) ReturnEntryFor(studentID *int, admissionNo string) *ReturnEntry {
	for i := range p.Returns {
		e := &p.Returns[i]
		if studentID != nil && e.StudentID != nil && *e.StudentID == *studentID {
			return e
		}
		if studentID == nil && e.StudentID == nil && e.AdmissionNo == admissionNo {
			return e
		}
	}
	return nil
}

type GroupMemberInput struct {
	Name        string `json:"name"`
	AdmissionNo string `json:"admission_no"`
	Department  string `json:"department"`
}

type CreateGatePassRequest struct {
	Purpose    string             `json:"purpose"`
	OutingDate time.Time          `json:"outing_date"`
	ReturnTime string             `json:"return_time"`
	Members    []GroupMemberInput `json:"group_members"`
}

// OutstandingMember is one not-yet-returned person on an approved pass, as
// listed for the security dashboard. Guests get a synthetic ID so the
// mark-returned endpoint can round-trip them.
type OutstandingMember struct {
	ID          string     `json:"id"`
	StudentID   *int       `json:"student_id,omitempty"`
	Name        string     `json:"name"`
	AdmissionNo string     `json:"admission_no"`
	Department  string     `json:"department"`
	Semester    *int       `json:"semester,omitempty"`
	Purpose     string     `json:"purpose"`
	OutingDate  time.Time  `json:"outing_date"`
	ReturnTime  string     `json:"return_time"`
	GatePassID  int        `json:"gate_pass_id"`
	IsGroup     bool       `json:"is_group_member"`
	IsGuest     bool       `json:"is_guest"`
}
