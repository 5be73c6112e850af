package services

import (
	"context"
	"strings"
	"time"

	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
	"vgate-backend/internal/validate"
)

// GatePassService owns the pass lifecycle: submission, tutor approval and
// rejection, student cancellation, and the admin views. Return tracking lives
// in ReturnService.
type GatePassService struct {
	passes   GatePassStore
	students StudentStore
}

func NewGatePassService(passes GatePassStore, students StudentStore) *GatePassService {
	return &GatePassService{passes: passes, students: students}
}

// Submit creates a pending pass for the requester. Group member admission
// numbers are resolved against the student registry at submission time:
// matches are linked, take their identity fields from the registry and get
// the pending pass mirrored onto their own record; non-matches are stored
// verbatim as guests.
func (s *GatePassService) Submit(ctx context.Context, studentID int, req *models.CreateGatePassRequest) (*models.GatePass, error) {
	fields := map[string]string{"purpose": req.Purpose, "return_time": req.ReturnTime}
	if errs := validate.Required(fields); len(errs) > 0 {
		return nil, errs
	}
	if req.OutingDate.IsZero() {
		return nil, validate.Errors{"outing_date is required"}
	}
	for _, m := range req.Members {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.AdmissionNo) == "" {
			return nil, validate.Errors{"each group member needs a name and admission number"}
		}
	}

	requester, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if requester.CurrentPassID != nil &&
		(requester.PassStatus == models.PassStatusPending || requester.PassStatus == models.PassStatusApproved) {
		return nil, domain.ErrPassAlreadyOpen
	}

	returnTime := req.ReturnTime
	pass := &models.GatePass{
		StudentID:  requester.ID,
		Purpose:    strings.TrimSpace(req.Purpose),
		OutingDate: req.OutingDate,
		ReturnTime: &returnTime,
		Status:     models.PassStatusPending,
	}

	for _, in := range req.Members {
		admissionNo := strings.TrimSpace(in.AdmissionNo)
		member := models.GroupMember{
			Name:        strings.TrimSpace(in.Name),
			AdmissionNo: admissionNo,
			Department:  strings.TrimSpace(in.Department),
		}
		if registered, err := s.students.GetByAdmissionNo(ctx, admissionNo); err == nil {
			id := registered.ID
			sem := registered.Semester
			member.StudentID = &id
			member.Name = registered.Name
			member.Department = registered.Department
			member.Semester = &sem
		}
		pass.Members = append(pass.Members, member)
	}

	if err := s.passes.Create(ctx, pass); err != nil {
		return nil, err
	}

	if err := s.students.MirrorPass(ctx, requester.ID, pass.ID,
		models.PassStatusPending, pass.Purpose, pass.OutingDate, pass.ReturnTime, false); err != nil {
		return nil, err
	}
	// Resolved members carry the pending pass on their own mirror too, so
	// their dashboards show the request they are part of.
	for _, m := range pass.Members {
		if m.StudentID == nil {
			continue
		}
		if err := s.students.MirrorPass(ctx, *m.StudentID, pass.ID,
			models.PassStatusPending, pass.Purpose, pass.OutingDate, pass.ReturnTime, false); err != nil {
			return nil, err
		}
	}

	pass.StudentName = requester.Name
	pass.StudentAdmissionNo = requester.AdmissionNo
	pass.StudentDepartment = requester.Department
	pass.StudentSemester = requester.Semester
	return pass, nil
}

// Approve transitions a pending pass to approved on behalf of the requester's
// tutor. The transition is conditional on the pass still being pending, so a
// concurrent decision or a retry cannot approve twice. Approval mirrors the
// pass onto the requester and every registered group member and resets their
// returned flags, starting the return-tracking cycle fresh.
func (s *GatePassService) Approve(ctx context.Context, passID, tutorID int) (*models.GatePass, error) {
	pass, err := s.passes.Get(ctx, passID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTutorOwns(ctx, pass, tutorID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ok, err := s.passes.UpdateStatus(ctx, passID,
		models.PassStatusPending, models.PassStatusApproved, &tutorID, &now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.students.MirrorPass(ctx, pass.StudentID, pass.ID,
		models.PassStatusApproved, pass.Purpose, pass.OutingDate, pass.ReturnTime, false); err != nil {
		return nil, err
	}
	for _, m := range pass.Members {
		if m.StudentID == nil {
			continue
		}
		if err := s.students.MirrorPass(ctx, *m.StudentID, pass.ID,
			models.PassStatusApproved, pass.Purpose, pass.OutingDate, pass.ReturnTime, false); err != nil {
			return nil, err
		}
	}

	return s.passes.Get(ctx, passID)
}

// Reject transitions a pending pass to rejected. Group members are left
// untouched; only the requester's mirror is updated.
func (s *GatePassService) Reject(ctx context.Context, passID, tutorID int) (*models.GatePass, error) {
	pass, err := s.passes.Get(ctx, passID)
	if err != nil {
		return nil, err
	}
	if err := s.checkTutorOwns(ctx, pass, tutorID); err != nil {
		return nil, err
	}

	ok, err := s.passes.UpdateStatus(ctx, passID,
		models.PassStatusPending, models.PassStatusRejected, nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidTransition
	}

	if err := s.students.ClearPass(ctx, pass.StudentID, models.PassStatusRejected); err != nil {
		return nil, err
	}
	return s.passes.Get(ctx, passID)
}

// Cancel lets the requester withdraw their own pass while it is still
// pending. Approved passes cannot be cancelled.
func (s *GatePassService) Cancel(ctx context.Context, passID, studentID int) error {
	pass, err := s.passes.Get(ctx, passID)
	if err != nil {
		return err
	}
	if pass.StudentID != studentID {
		return domain.ErrUnauthorized
	}

	ok, err := s.passes.UpdateStatus(ctx, passID,
		models.PassStatusPending, models.PassStatusCancelled, nil, nil)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidTransition
	}

	return s.students.ClearPass(ctx, studentID, models.PassStatusCancelled)
}

func (s *GatePassService) Get(ctx context.Context, id int) (*models.GatePass, error) {
	return s.passes.Get(ctx, id)
}

// ListForStudent returns the student's pass history: passes they requested
// plus passes they appear on as a group member.
func (s *GatePassService) ListForStudent(ctx context.Context, studentID int, status string) ([]models.GatePass, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.passes.ListForStudent(ctx, studentID, student.AdmissionNo, status)
}

// ListPendingForTutor returns the approval queue for a tutor's own students.
func (s *GatePassService) ListPendingForTutor(ctx context.Context, tutorID int) ([]models.GatePass, error) {
	return s.passes.ListForTutor(ctx, tutorID, models.PassStatusPending)
}

func (s *GatePassService) ListForTutor(ctx context.Context, tutorID int, status string) ([]models.GatePass, error) {
	return s.passes.ListForTutor(ctx, tutorID, status)
}

// ListAll is the admin view. While scanning it repairs the all_returned flag
// upward: an approved pass whose ledger already covers the full headcount is
// flipped to all_returned. The repair never clears the flag.
func (s *GatePassService) ListAll(ctx context.Context, status string) ([]models.GatePass, error) {
	passes, err := s.passes.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	for i := range passes {
		p := &passes[i]
		if p.Status != models.PassStatusApproved || p.AllReturned {
			continue
		}
		if len(p.Returns) >= p.TotalMembers() {
			if err := s.passes.SetAllReturned(ctx, p.ID, true); err != nil {
				return nil, err
			}
			p.AllReturned = true
		}
	}
	return passes, nil
}

// SetStatus is the admin override: it overwrites the status without
// consulting the transition table. The requester's mirror is kept consistent
// with the new status.
func (s *GatePassService) SetStatus(ctx context.Context, passID int, status string) (*models.GatePass, error) {
	switch status {
	case models.PassStatusPending, models.PassStatusApproved,
		models.PassStatusRejected, models.PassStatusCancelled:
	default:
		return nil, validate.Errors{"status must be pending, approved, rejected or cancelled"}
	}

	pass, err := s.passes.Get(ctx, passID)
	if err != nil {
		return nil, err
	}
	if err := s.passes.SetStatus(ctx, passID, status); err != nil {
		return nil, err
	}

	switch status {
	case models.PassStatusPending, models.PassStatusApproved:
		if err := s.students.MirrorPass(ctx, pass.StudentID, pass.ID,
			status, pass.Purpose, pass.OutingDate, pass.ReturnTime, false); err != nil {
			return nil, err
		}
	default:
		requester, err := s.students.Get(ctx, pass.StudentID)
		if err == nil && requester.CurrentPassID != nil && *requester.CurrentPassID == passID {
			if err := s.students.ClearPass(ctx, pass.StudentID, status); err != nil {
				return nil, err
			}
		}
	}
	return s.passes.Get(ctx, passID)
}

// Delete removes a pass outright (admin only) and detaches the requester's
// mirror if it still points at the deleted pass.
func (s *GatePassService) Delete(ctx context.Context, id int) error {
	pass, err := s.passes.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.passes.Delete(ctx, id); err != nil {
		return err
	}

	requester, err := s.students.Get(ctx, pass.StudentID)
	if err == nil && requester.CurrentPassID != nil && *requester.CurrentPassID == id {
		return s.students.ClearPass(ctx, requester.ID, models.PassStatusNone)
	}
	return nil
}

func (s *GatePassService) checkTutorOwns(ctx context.Context, pass *models.GatePass, tutorID int) error {
	requester, err := s.students.Get(ctx, pass.StudentID)
	if err != nil {
		return err
	}
	if requester.TutorID == nil || *requester.TutorID != tutorID {
		return domain.ErrUnauthorized
	}
	return nil
}
