package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
)

// ReturnService tracks who has come back through the gate on an approved
// pass. The ledger is append-only and idempotent: marking the same member
// twice is a no-op, and a pass flips to all_returned once every member
// (requester, registered group members, guests) has an entry.
type ReturnService struct {
	passes   GatePassStore
	students StudentStore
}

func NewReturnService(passes GatePassStore, students StudentStore) *ReturnService {
	return &ReturnService{passes: passes, students: students}
}

// GuestMemberID builds the synthetic identifier the security dashboard uses
// for members with no student record.
func GuestMemberID(passID int, admissionNo string) string {
	return fmt.Sprintf("guest-%d-%s", passID, admissionNo)
}

func parseGuestMemberID(memberID string) (passID int, admissionNo string, ok bool) {
	rest, found := strings.CutPrefix(memberID, "guest-")
	if !found {
		return 0, "", false
	}
	idStr, admissionNo, found := strings.Cut(rest, "-")
	if !found || admissionNo == "" {
		return 0, "", false
	}
	passID, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, "", false
	}
	return passID, admissionNo, true
}

// MarkReturned records that one member of an approved pass is back.
// memberID is either a numeric student id or a guest identifier from
// GuestMemberID. Returns the refreshed pass.
func (s *ReturnService) MarkReturned(ctx context.Context, passID int, memberID, returnedBy string) (*models.GatePass, error) {
	pass, err := s.passes.Get(ctx, passID)
	if err != nil {
		return nil, err
	}
	if pass.Status != models.PassStatusApproved {
		return nil, domain.ErrInvalidTransition
	}

	entry, err := s.resolveMember(ctx, pass, memberID)
	if err != nil {
		return nil, err
	}
	entry.GatePassID = pass.ID
	entry.ReturnedAt = time.Now().UTC()
	entry.ReturnedBy = returnedBy

	inserted, err := s.passes.AppendReturn(ctx, entry)
	if err != nil {
		return nil, err
	}
	if inserted && entry.StudentID != nil {
		if err := s.students.SetReturned(ctx, *entry.StudentID, true); err != nil {
			return nil, err
		}
	}

	pass, err = s.passes.Get(ctx, passID)
	if err != nil {
		return nil, err
	}
	if !pass.AllReturned && len(pass.Returns) >= pass.TotalMembers() {
		if err := s.passes.SetAllReturned(ctx, pass.ID, true); err != nil {
			return nil, err
		}
		pass.AllReturned = true
	}
	return pass, nil
}

// MarkAllReturned is the security override: it writes ledger entries for
// every member still out and forces all_returned regardless of prior state.
func (s *ReturnService) MarkAllReturned(ctx context.Context, passID int, returnedBy string) (*models.GatePass, error) {
	pass, err := s.passes.Get(ctx, passID)
	if err != nil {
		return nil, err
	}
	if pass.Status != models.PassStatusApproved {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	for _, entry := range s.missingEntries(pass) {
		entry.ReturnedAt = now
		entry.ReturnedBy = returnedBy
		inserted, err := s.passes.AppendReturn(ctx, &entry)
		if err != nil {
			return nil, err
		}
		if inserted && entry.StudentID != nil {
			if err := s.students.SetReturned(ctx, *entry.StudentID, true); err != nil {
				return nil, err
			}
		}
	}

	if err := s.passes.SetAllReturned(ctx, passID, true); err != nil {
		return nil, err
	}
	return s.passes.Get(ctx, passID)
}

// LookupMember finds the approved pass a person is currently out on, by
// admission number. Works for registered students and guests; ErrNotFound
// means nobody with that number is out right now.
func (s *ReturnService) LookupMember(ctx context.Context, admissionNo string) (*models.GatePass, error) {
	admissionNo = strings.TrimSpace(admissionNo)
	if admissionNo == "" {
		return nil, domain.ErrNotFound
	}

	studentID := 0
	if student, err := s.students.GetByAdmissionNo(ctx, admissionNo); err == nil {
		studentID = student.ID
	}
	return s.passes.FindOpenApprovedForMember(ctx, studentID, admissionNo)
}

// ListOutstanding flattens approved passes into the members who have not yet
// been marked back, one row per person, for the security dashboard.
func (s *ReturnService) ListOutstanding(ctx context.Context) ([]models.OutstandingMember, error) {
	passes, err := s.passes.ListApprovedWithReturnTime(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.OutstandingMember{}
	for i := range passes {
		p := &passes[i]
		if p.AllReturned {
			continue
		}

		returnTime := ""
		if p.ReturnTime != nil {
			returnTime = *p.ReturnTime
		}

		requesterID := p.StudentID
		if p.ReturnEntryFor(&requesterID, p.StudentAdmissionNo) == nil {
			sem := p.StudentSemester
			out = append(out, models.OutstandingMember{
				ID:          strconv.Itoa(p.StudentID),
				StudentID:   &requesterID,
				Name:        p.StudentName,
				AdmissionNo: p.StudentAdmissionNo,
				Department:  p.StudentDepartment,
				Semester:    &sem,
				Purpose:     p.Purpose,
				OutingDate:  p.OutingDate,
				ReturnTime:  returnTime,
				GatePassID:  p.ID,
			})
		}

		for _, m := range p.Members {
			if p.ReturnEntryFor(m.StudentID, m.AdmissionNo) != nil {
				continue
			}
			om := models.OutstandingMember{
				StudentID:   m.StudentID,
				Name:        m.Name,
				AdmissionNo: m.AdmissionNo,
				Department:  m.Department,
				Semester:    m.Semester,
				Purpose:     p.Purpose,
				OutingDate:  p.OutingDate,
				ReturnTime:  returnTime,
				GatePassID:  p.ID,
				IsGroup:     true,
				IsGuest:     m.IsGuest(),
			}
			if m.StudentID != nil {
				om.ID = strconv.Itoa(*m.StudentID)
			} else {
				om.ID = GuestMemberID(p.ID, m.AdmissionNo)
			}
			out = append(out, om)
		}
	}
	return out, nil
}

// resolveMember maps a dashboard member id onto a ledger entry template for
// the given pass. The member must actually be on the pass.
func (s *ReturnService) resolveMember(ctx context.Context, pass *models.GatePass, memberID string) (*models.ReturnEntry, error) {
	if guestPassID, admissionNo, ok := parseGuestMemberID(memberID); ok {
		if guestPassID != pass.ID {
			return nil, domain.ErrNotFound
		}
		for _, m := range pass.Members {
			if m.IsGuest() && m.AdmissionNo == admissionNo {
				return &models.ReturnEntry{
					AdmissionNo: m.AdmissionNo,
					Name:        m.Name,
					IsGuest:     true,
				}, nil
			}
		}
		return nil, domain.ErrNotFound
	}

	studentID, err := strconv.Atoi(memberID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	if studentID == pass.StudentID {
		id := studentID
		return &models.ReturnEntry{
			StudentID:   &id,
			AdmissionNo: pass.StudentAdmissionNo,
			Name:        pass.StudentName,
		}, nil
	}
	for _, m := range pass.Members {
		if m.StudentID != nil && *m.StudentID == studentID {
			return &models.ReturnEntry{
				StudentID:   m.StudentID,
				AdmissionNo: m.AdmissionNo,
				Name:        m.Name,
			}, nil
		}
	}
	return nil, domain.ErrNotFound
}

// missingEntries lists ledger templates for every member without an entry.
func (s *ReturnService) missingEntries(pass *models.GatePass) []models.ReturnEntry {
	var missing []models.ReturnEntry

	requesterID := pass.StudentID
	if pass.ReturnEntryFor(&requesterID, pass.StudentAdmissionNo) == nil {
		missing = append(missing, models.ReturnEntry{
			GatePassID:  pass.ID,
			StudentID:   &requesterID,
			AdmissionNo: pass.StudentAdmissionNo,
			Name:        pass.StudentName,
		})
	}
	for _, m := range pass.Members {
		if pass.ReturnEntryFor(m.StudentID, m.AdmissionNo) != nil {
			continue
		}
		missing = append(missing, models.ReturnEntry{
			GatePassID:  pass.ID,
			StudentID:   m.StudentID,
			AdmissionNo: m.AdmissionNo,
			Name:        m.Name,
			IsGuest:     m.IsGuest(),
		})
	}
	return missing
}
