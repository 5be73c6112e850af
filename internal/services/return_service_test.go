package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
)

type returnFixture struct {
	*passFixture
	returns *ReturnService
}

func newReturnFixture(t *testing.T) *returnFixture {
	f := newPassFixture(t)
	return &returnFixture{
		passFixture: f,
		returns:     NewReturnService(f.passes, f.students),
	}
}

// approvedGroupPass seeds an approved pass with one registered member and
// one guest, returning (pass, requester, registered member).
func (f *returnFixture) approvedGroupPass(t *testing.T) (*models.GatePass, *models.Student, *models.Student) {
	t.Helper()
	requester := f.addStudent(t, "234/23", "Anita")
	registered := f.addStudent(t, "235/23", "Bala")

	req := submitRequest()
	req.Members = []models.GroupMemberInput{
		{Name: "Bala", AdmissionNo: "235/23", Department: "CSE"},
		{Name: "Guest Kid", AdmissionNo: "999/99", Department: "Visiting"},
	}
	pass, err := f.svc.Submit(context.Background(), requester.ID, req)
	require.NoError(t, err)
	pass, err = f.svc.Approve(context.Background(), pass.ID, f.tutorID)
	require.NoError(t, err)
	return pass, requester, registered
}

func TestMarkReturnedIsIdempotent(t *testing.T) {
	f := newReturnFixture(t)
	pass, requester, _ := f.approvedGroupPass(t)

	got, err := f.returns.MarkReturned(context.Background(), pass.ID, strconv.Itoa(requester.ID), "Gate A")
	require.NoError(t, err)
	require.Len(t, got.Returns, 1)
	first := got.Returns[0].ReturnedAt

	// marking again changes nothing, including the timestamp
	got, err = f.returns.MarkReturned(context.Background(), pass.ID, strconv.Itoa(requester.ID), "Gate B")
	require.NoError(t, err)
	require.Len(t, got.Returns, 1)
	assert.Equal(t, first, got.Returns[0].ReturnedAt)
	assert.Equal(t, "Gate A", got.Returns[0].ReturnedBy)

	s, err := f.students.Get(context.Background(), requester.ID)
	require.NoError(t, err)
	assert.True(t, s.Returned)
}

func TestMarkReturnedRequiresApprovedPass(t *testing.T) {
	f := newReturnFixture(t)
	requester := f.addStudent(t, "234/23", "Anita")

	pass, err := f.svc.Submit(context.Background(), requester.ID, submitRequest())
	require.NoError(t, err)

	_, err = f.returns.MarkReturned(context.Background(), pass.ID, strconv.Itoa(requester.ID), "Gate A")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestMarkReturnedRejectsNonMembers(t *testing.T) {
	f := newReturnFixture(t)
	pass, _, _ := f.approvedGroupPass(t)
	stranger := f.addStudent(t, "300/23", "Dev")

	_, err := f.returns.MarkReturned(context.Background(), pass.ID, strconv.Itoa(stranger.ID), "Gate A")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.returns.MarkReturned(context.Background(), pass.ID, "guest-1-000/00", "Gate A")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGuestReturnAndAllReturnedFlip(t *testing.T) {
	f := newReturnFixture(t)
	pass, requester, registered := f.approvedGroupPass(t)

	_, err := f.returns.MarkReturned(context.Background(), pass.ID, strconv.Itoa(requester.ID), "Gate A")
	require.NoError(t, err)
	got, err := f.returns.MarkReturned(context.Background(), pass.ID, strconv.Itoa(registered.ID), "Gate A")
	require.NoError(t, err)
	assert.False(t, got.AllReturned)

	guestID := GuestMemberID(pass.ID, "999/99")
	got, err = f.returns.MarkReturned(context.Background(), pass.ID, guestID, "Gate A")
	require.NoError(t, err)

	assert.True(t, got.AllReturned)
	require.Len(t, got.Returns, 3)
	entry := got.ReturnEntryFor(nil, "999/99")
	require.NotNil(t, entry)
	assert.True(t, entry.IsGuest)
}

func TestMarkAllReturnedOverride(t *testing.T) {
	f := newReturnFixture(t)
	pass, requester, registered := f.approvedGroupPass(t)

	// one member already back; override completes the rest
	_, err := f.returns.MarkReturned(context.Background(), pass.ID, strconv.Itoa(requester.ID), "Gate A")
	require.NoError(t, err)

	got, err := f.returns.MarkAllReturned(context.Background(), pass.ID, "Supervisor")
	require.NoError(t, err)

	assert.True(t, got.AllReturned)
	assert.Len(t, got.Returns, 3)

	s, err := f.students.Get(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.True(t, s.Returned)
}

func TestListOutstandingFlattensMembers(t *testing.T) {
	f := newReturnFixture(t)
	pass, requester, registered := f.approvedGroupPass(t)

	out, err := f.returns.ListOutstanding(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, strconv.Itoa(requester.ID), out[0].ID)
	assert.False(t, out[0].IsGroup)
	assert.Equal(t, strconv.Itoa(registered.ID), out[1].ID)
	assert.True(t, out[1].IsGroup)
	assert.Equal(t, GuestMemberID(pass.ID, "999/99"), out[2].ID)
	assert.True(t, out[2].IsGuest)

	// returned members drop off the list
	_, err = f.returns.MarkReturned(context.Background(), pass.ID, strconv.Itoa(requester.ID), "Gate A")
	require.NoError(t, err)

	out, err = f.returns.ListOutstanding(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	// fully returned passes disappear entirely
	_, err = f.returns.MarkAllReturned(context.Background(), pass.ID, "Supervisor")
	require.NoError(t, err)

	out, err = f.returns.ListOutstanding(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLookupMemberFindsOpenPass(t *testing.T) {
	f := newPassFixture(t)
	returns := NewReturnService(f.passes, f.students)
	requester := f.addStudent(t, "234/23", "Anita")

	req := submitRequest()
	req.Members = []models.GroupMemberInput{{Name: "Guest Kid", AdmissionNo: "999/99", Department: "Visiting"}}
	pass, err := f.svc.Submit(context.Background(), requester.ID, req)
	require.NoError(t, err)

	// nothing approved yet
	_, err = returns.LookupMember(context.Background(), "234/23")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Approve(context.Background(), pass.ID, f.tutorID)
	require.NoError(t, err)

	got, err := returns.LookupMember(context.Background(), "234/23")
	require.NoError(t, err)
	assert.Equal(t, pass.ID, got.ID)

	// guests are found through the member roster
	got, err = returns.LookupMember(context.Background(), "999/99")
	require.NoError(t, err)
	assert.Equal(t, pass.ID, got.ID)

	_, err = returns.LookupMember(context.Background(), "000/00")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
