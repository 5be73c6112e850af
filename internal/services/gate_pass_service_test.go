package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
)

type passFixture struct {
	students *fakeStudentStore
	tutors   *fakeTutorStore
	passes   *fakeGatePassStore
	svc      *GatePassService
	tutorID  int
}

func newPassFixture(t *testing.T) *passFixture {
	t.Helper()

	students := newFakeStudentStore()
	tutors := newFakeTutorStore()
	passes := newFakeGatePassStore(students)

	tutor := &models.Tutor{EmployeeID: "EMP01", Name: "Dr. Rao", Department: "CSE", Email: "rao@college.edu"}
	require.NoError(t, tutors.Create(context.Background(), tutor, nil))
	require.NoError(t, tutors.Verify(context.Background(), tutor.ID))

	return &passFixture{
		students: students,
		tutors:   tutors,
		passes:   passes,
		svc:      NewGatePassService(passes, students),
		tutorID:  tutor.ID,
	}
}

func (f *passFixture) addStudent(t *testing.T, admissionNo, name string) *models.Student {
	t.Helper()
	tutorID := f.tutorID
	s := &models.Student{
		AdmissionNo:   admissionNo,
		Name:          name,
		Department:    "CSE",
		Semester:      5,
		TutorID:       &tutorID,
		TutorName:     "Dr. Rao",
		Email:         admissionNo + "@college.edu",
		Phone:         "9876543210",
		TutorApproved: true,
	}
	require.NoError(t, f.students.Create(context.Background(), s, nil))
	return s
}

func submitRequest() *models.CreateGatePassRequest {
	return &models.CreateGatePassRequest{
		Purpose:    "Medical appointment",
		OutingDate: time.Now().Add(24 * time.Hour),
		ReturnTime: "18:00",
	}
}

func TestSubmitResolvesMembersAndMirrors(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")
	registered := f.addStudent(t, "235/23", "Bala")

	req := submitRequest()
	req.Members = []models.GroupMemberInput{
		{Name: "wrong name", AdmissionNo: "235/23", Department: "wrong dept"},
		{Name: "Guest Kid", AdmissionNo: "999/99", Department: "Visiting"},
	}

	pass, err := f.svc.Submit(context.Background(), requester.ID, req)
	require.NoError(t, err)

	assert.Equal(t, models.PassStatusPending, pass.Status)
	require.Len(t, pass.Members, 2)

	// registered member takes identity from the registry, not the form
	require.NotNil(t, pass.Members[0].StudentID)
	assert.Equal(t, registered.ID, *pass.Members[0].StudentID)
	assert.Equal(t, "Bala", pass.Members[0].Name)
	assert.Equal(t, "CSE", pass.Members[0].Department)

	// unknown admission number stays a guest, stored verbatim
	assert.Nil(t, pass.Members[1].StudentID)
	assert.True(t, pass.Members[1].IsGuest())
	assert.Equal(t, "Guest Kid", pass.Members[1].Name)

	// requester and resolved member both carry the pending pass on their
	// mirror; the guest has no record to mutate
	for _, id := range []int{requester.ID, registered.ID} {
		got, err := f.students.Get(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, got.CurrentPassID)
		assert.Equal(t, pass.ID, *got.CurrentPassID)
		assert.Equal(t, models.PassStatusPending, got.PassStatus)
		require.NotNil(t, got.Purpose)
		assert.Equal(t, pass.Purpose, *got.Purpose)
	}
}

func TestSubmitRejectsSecondOpenPass(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")

	_, err := f.svc.Submit(context.Background(), requester.ID, submitRequest())
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), requester.ID, submitRequest())
	assert.ErrorIs(t, err, domain.ErrPassAlreadyOpen)
}

func TestSubmitValidation(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")

	req := submitRequest()
	req.Purpose = "  "
	_, err := f.svc.Submit(context.Background(), requester.ID, req)
	assert.Error(t, err)

	req = submitRequest()
	req.Members = []models.GroupMemberInput{{Name: "", AdmissionNo: "235/23"}}
	_, err = f.svc.Submit(context.Background(), requester.ID, req)
	assert.Error(t, err)
}

func TestApproveMirrorsOntoRegisteredMembers(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")
	registered := f.addStudent(t, "235/23", "Bala")

	req := submitRequest()
	req.Members = []models.GroupMemberInput{
		{Name: "Bala", AdmissionNo: "235/23", Department: "CSE"},
		{Name: "Guest", AdmissionNo: "999/99", Department: "Visiting"},
	}
	pass, err := f.svc.Submit(context.Background(), requester.ID, req)
	require.NoError(t, err)

	approved, err := f.svc.Approve(context.Background(), pass.ID, f.tutorID)
	require.NoError(t, err)

	assert.Equal(t, models.PassStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.tutorID, *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	for _, id := range []int{requester.ID, registered.ID} {
		s, err := f.students.Get(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, s.CurrentPassID)
		assert.Equal(t, pass.ID, *s.CurrentPassID)
		assert.Equal(t, models.PassStatusApproved, s.PassStatus)
		assert.False(t, s.Returned)
	}
}

func TestApproveIsConditionalOnPending(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")

	pass, err := f.svc.Submit(context.Background(), requester.ID, submitRequest())
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), pass.ID, f.tutorID)
	require.NoError(t, err)

	// second decision on the same pass loses the race
	_, err = f.svc.Approve(context.Background(), pass.ID, f.tutorID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.svc.Reject(context.Background(), pass.ID, f.tutorID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApproveRequiresOwningTutor(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")

	other := &models.Tutor{EmployeeID: "EMP02", Name: "Dr. Iyer", Department: "ECE", Email: "iyer@college.edu"}
	require.NoError(t, f.tutors.Create(context.Background(), other, nil))
	require.NoError(t, f.tutors.Verify(context.Background(), other.ID))

	pass, err := f.svc.Submit(context.Background(), requester.ID, submitRequest())
	require.NoError(t, err)

	_, err = f.svc.Approve(context.Background(), pass.ID, other.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// pass untouched
	got, err := f.svc.Get(context.Background(), pass.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusPending, got.Status)
}

func TestRejectLeavesMembersUntouched(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")
	registered := f.addStudent(t, "235/23", "Bala")

	req := submitRequest()
	req.Members = []models.GroupMemberInput{{Name: "Bala", AdmissionNo: "235/23", Department: "CSE"}}
	pass, err := f.svc.Submit(context.Background(), requester.ID, req)
	require.NoError(t, err)

	rejected, err := f.svc.Reject(context.Background(), pass.ID, f.tutorID)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusRejected, rejected.Status)

	// rejection never claims the approval fields
	assert.Nil(t, rejected.ApprovedBy)
	assert.Nil(t, rejected.ApprovedAt)

	s, err := f.students.Get(context.Background(), requester.ID)
	require.NoError(t, err)
	assert.Nil(t, s.CurrentPassID)
	assert.Equal(t, models.PassStatusRejected, s.PassStatus)

	// the member's mirror is left exactly as submission set it
	m, err := f.students.Get(context.Background(), registered.ID)
	require.NoError(t, err)
	require.NotNil(t, m.CurrentPassID)
	assert.Equal(t, pass.ID, *m.CurrentPassID)
	assert.Equal(t, models.PassStatusPending, m.PassStatus)

	// rejection frees the requester to submit again
	_, err = f.svc.Submit(context.Background(), requester.ID, submitRequest())
	assert.NoError(t, err)
}

func TestCancelOnlyPendingAndOwner(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")
	other := f.addStudent(t, "236/23", "Chitra")

	pass, err := f.svc.Submit(context.Background(), requester.ID, submitRequest())
	require.NoError(t, err)

	err = f.svc.Cancel(context.Background(), pass.ID, other.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, f.svc.Cancel(context.Background(), pass.ID, requester.ID))

	s, err := f.students.Get(context.Background(), requester.ID)
	require.NoError(t, err)
	assert.Nil(t, s.CurrentPassID)
	assert.Equal(t, models.PassStatusCancelled, s.PassStatus)

	// approved passes cannot be cancelled
	pass2, err := f.svc.Submit(context.Background(), requester.ID, submitRequest())
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), pass2.ID, f.tutorID)
	require.NoError(t, err)
	err = f.svc.Cancel(context.Background(), pass2.ID, requester.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestListAllRepairsAllReturnedUpward(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")

	pass, err := f.svc.Submit(context.Background(), requester.ID, submitRequest())
	require.NoError(t, err)
	_, err = f.svc.Approve(context.Background(), pass.ID, f.tutorID)
	require.NoError(t, err)

	// ledger covers the whole headcount but the flag was never set
	sid := requester.ID
	_, err = f.passes.AppendReturn(context.Background(), &models.ReturnEntry{
		GatePassID: pass.ID, StudentID: &sid, AdmissionNo: "234/23", Name: "Anita",
		ReturnedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	passes, err := f.svc.ListAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.True(t, passes[0].AllReturned)
}

func TestListForStudentIncludesMemberPasses(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")
	member := f.addStudent(t, "235/23", "Bala")

	req := submitRequest()
	req.Members = []models.GroupMemberInput{{Name: "Bala", AdmissionNo: "235/23", Department: "CSE"}}
	pass, err := f.svc.Submit(context.Background(), requester.ID, req)
	require.NoError(t, err)

	mine, err := f.svc.ListForStudent(context.Background(), member.ID, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, pass.ID, mine[0].ID)
}

func TestSetStatusOverrideKeepsMirrorConsistent(t *testing.T) {
	f := newPassFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")

	pass, err := f.svc.Submit(context.Background(), requester.ID, submitRequest())
	require.NoError(t, err)

	// force-approve skips the transition table entirely
	got, err := f.svc.SetStatus(context.Background(), pass.ID, models.PassStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusApproved, got.Status)

	student, err := f.students.Get(context.Background(), requester.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusApproved, student.PassStatus)

	// forcing a terminal status detaches the requester's mirror
	_, err = f.svc.SetStatus(context.Background(), pass.ID, models.PassStatusCancelled)
	require.NoError(t, err)

	student, err = f.students.Get(context.Background(), requester.ID)
	require.NoError(t, err)
	assert.Nil(t, student.CurrentPassID)
	assert.Equal(t, models.PassStatusCancelled, student.PassStatus)

	_, err = f.svc.SetStatus(context.Background(), pass.ID, "lost")
	assert.Error(t, err)
}
