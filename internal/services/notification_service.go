package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"vgate-backend/internal/models"
)

// Feed windows. Notifications are a pure projection over pass and
// registration state: nothing is stored, nothing is marked read. Restarting
// the server rebuilds the same feed.
const (
	tutorFeedCap        = 20
	studentFeedCap      = 20
	pendingPassLimit    = 5
	pendingStudentLimit = 5
	recentReturnLimit   = 10
	returnWindow        = 24 * time.Hour
	approvalWindow      = 7 * 24 * time.Hour
	ownPendingWindow    = 24 * time.Hour
)

type NotificationService struct {
	passes   GatePassStore
	students StudentStore
}

func NewNotificationService(passes GatePassStore, students StudentStore) *NotificationService {
	return &NotificationService{passes: passes, students: students}
}

// TutorFeed projects a tutor's attention queue: passes waiting for a
// decision, students waiting for registration approval, and recent returns
// by their students.
func (s *NotificationService) TutorFeed(ctx context.Context, tutorID int) (*models.NotificationFeed, error) {
	var items []models.Notification

	pending, err := s.passes.ListForTutor(ctx, tutorID, models.PassStatusPending)
	if err != nil {
		return nil, err
	}
	for i, p := range pending {
		if i == pendingPassLimit {
			break
		}
		items = append(items, models.Notification{
			ID:          fmt.Sprintf("gatepass-%d", p.ID),
			Type:        models.NotificationGatePass,
			Title:       "Gate pass awaiting approval",
			Message:     fmt.Sprintf("%s (%s) requested a gate pass: %s", p.StudentName, p.StudentAdmissionNo, p.Purpose),
			StudentName: p.StudentName,
			AdmissionNo: p.StudentAdmissionNo,
			Purpose:     p.Purpose,
			GatePassID:  p.ID,
			Date:        p.CreatedAt,
			Priority:    "high",
		})
	}

	registrations, err := s.students.ListPendingByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	for i, st := range registrations {
		if i == pendingStudentLimit {
			break
		}
		items = append(items, models.Notification{
			ID:          fmt.Sprintf("registration-%d", st.ID),
			Type:        models.NotificationRegistration,
			Title:       "Student registration pending",
			Message:     fmt.Sprintf("%s (%s) is waiting for registration approval", st.Name, st.AdmissionNo),
			StudentName: st.Name,
			AdmissionNo: st.AdmissionNo,
			Date:        st.RegisteredAt,
			Priority:    "medium",
		})
	}

	items, err = s.appendRecentReturns(ctx, items, tutorID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
	if len(items) > tutorFeedCap {
		items = items[:tutorFeedCap]
	}
	return buildFeed(items), nil
}

// StudentFeed projects a student's recent decisions: approvals from the last
// week (unread, high priority) and their own still-pending requests from the
// last day (informational, pre-read).
func (s *NotificationService) StudentFeed(ctx context.Context, studentID int) (*models.NotificationFeed, error) {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	passes, err := s.passes.ListForStudent(ctx, studentID, student.AdmissionNo, "")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var items []models.Notification
	for _, p := range passes {
		switch p.Status {
		case models.PassStatusApproved:
			if p.ApprovedAt == nil || now.Sub(*p.ApprovedAt) > approvalWindow {
				continue
			}
			items = append(items, models.Notification{
				ID:         fmt.Sprintf("approval-%d", p.ID),
				Type:       models.NotificationApproval,
				Title:      "Gate pass approved",
				Message:    fmt.Sprintf("Your gate pass for %s has been approved", p.Purpose),
				Purpose:    p.Purpose,
				GatePassID: p.ID,
				Date:       *p.ApprovedAt,
				Priority:   "high",
			})
		case models.PassStatusPending:
			if p.StudentID != studentID || now.Sub(p.CreatedAt) > ownPendingWindow {
				continue
			}
			items = append(items, models.Notification{
				ID:         fmt.Sprintf("gatepass-%d", p.ID),
				Type:       models.NotificationGatePass,
				Title:      "Gate pass pending",
				Message:    fmt.Sprintf("Your gate pass for %s is awaiting tutor approval", p.Purpose),
				Purpose:    p.Purpose,
				GatePassID: p.ID,
				Date:       p.CreatedAt,
				Read:       true,
				Priority:   "medium",
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) })
	if len(items) > studentFeedCap {
		items = items[:studentFeedCap]
	}
	return buildFeed(items), nil
}

// appendRecentReturns adds one entry per returned member, most recent first,
// limited to the tutor's own students' passes.
func (s *NotificationService) appendRecentReturns(ctx context.Context, items []models.Notification, tutorID int) ([]models.Notification, error) {
	cutoff := time.Now().UTC().Add(-returnWindow)
	passes, err := s.passes.ListWithReturnsSince(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	count := 0
	for i := range passes {
		p := &passes[i]
		requester, err := s.students.Get(ctx, p.StudentID)
		if err != nil {
			continue
		}
		if requester.TutorID == nil || *requester.TutorID != tutorID {
			continue
		}
		for _, e := range p.Returns {
			if e.ReturnedAt.Before(cutoff) || count == recentReturnLimit {
				continue
			}
			count++
			items = append(items, models.Notification{
				ID:          fmt.Sprintf("return-%d-%s", p.ID, e.AdmissionNo),
				Type:        models.NotificationReturn,
				Title:       "Student returned",
				Message:     fmt.Sprintf("%s (%s) has returned to campus", e.Name, e.AdmissionNo),
				StudentName: e.Name,
				AdmissionNo: e.AdmissionNo,
				GatePassID:  p.ID,
				Date:        e.ReturnedAt,
				Read:        true,
				Priority:    "low",
			})
		}
	}
	return items, nil
}

func buildFeed(items []models.Notification) *models.NotificationFeed {
	if items == nil {
		items = []models.Notification{}
	}
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return &models.NotificationFeed{
		Count:         len(items),
		UnreadCount:   unread,
		Notifications: items,
	}
}
