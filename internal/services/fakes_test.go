package services

import (
	"context"
	"sort"
	"time"

	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
)

// In-memory stores backing the service tests. Behaviour mirrors the pgx
// repositories: ErrNotFound on misses, conditional status updates, and
// idempotent return-ledger inserts.

type fakeStudentStore struct {
	nextID   int
	students map[int]*models.Student
	images   map[int][]byte
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{students: make(map[int]*models.Student), images: make(map[int][]byte)}
}

func (f *fakeStudentStore) Create(_ context.Context, s *models.Student, image []byte) error {
	for _, existing := range f.students {
		if existing.AdmissionNo == s.AdmissionNo || existing.Email == s.Email {
			return domain.ErrDuplicateKey
		}
	}
	f.nextID++
	s.ID = f.nextID
	s.PassStatus = models.PassStatusNone
	s.RegisteredAt = time.Now().UTC()
	cp := *s
	f.students[s.ID] = &cp
	if image != nil {
		f.images[s.ID] = image
	}
	return nil
}

func (f *fakeStudentStore) Get(_ context.Context, id int) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStudentStore) GetByAdmissionNo(_ context.Context, admissionNo string) (*models.Student, error) {
	for _, s := range f.students {
		if s.AdmissionNo == admissionNo {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeStudentStore) Update(_ context.Context, s *models.Student, image []byte) error {
	if _, ok := f.students[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	f.students[s.ID] = &cp
	if image != nil {
		f.images[s.ID] = image
	}
	return nil
}

func (f *fakeStudentStore) Delete(_ context.Context, id int) error {
	if _, ok := f.students[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.students, id)
	return nil
}

func (f *fakeStudentStore) List(_ context.Context) ([]models.Student, error) {
	return f.collect(func(*models.Student) bool { return true }), nil
}

func (f *fakeStudentStore) ListByTutor(_ context.Context, tutorID int) ([]models.Student, error) {
	return f.collect(func(s *models.Student) bool {
		return s.TutorID != nil && *s.TutorID == tutorID
	}), nil
}

func (f *fakeStudentStore) ListPendingByTutor(_ context.Context, tutorID int) ([]models.Student, error) {
	return f.collect(func(s *models.Student) bool {
		return s.TutorID != nil && *s.TutorID == tutorID && !s.TutorApproved
	}), nil
}

func (f *fakeStudentStore) collect(match func(*models.Student) bool) []models.Student {
	var out []models.Student
	for _, s := range f.students {
		if match(s) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStudentStore) SetTutorApproved(_ context.Context, id int) error {
	s, ok := f.students[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.TutorApproved = true
	return nil
}

func (f *fakeStudentStore) SetVerified(_ context.Context, ids []int) error {
	for _, id := range ids {
		if s, ok := f.students[id]; ok {
			s.Verified = true
		}
	}
	return nil
}

func (f *fakeStudentStore) SetReturned(_ context.Context, id int, returned bool) error {
	if s, ok := f.students[id]; ok {
		s.Returned = returned
	}
	return nil
}

func (f *fakeStudentStore) MirrorPass(_ context.Context, studentID, passID int, status, purpose string, outingDate time.Time, returnTime *string, returned bool) error {
	s, ok := f.students[studentID]
	if !ok {
		return domain.ErrNotFound
	}
	s.CurrentPassID = &passID
	s.PassStatus = status
	s.Purpose = &purpose
	s.OutingDate = &outingDate
	s.ReturnTime = returnTime
	s.Returned = returned
	return nil
}

func (f *fakeStudentStore) ClearPass(_ context.Context, studentID int, status string) error {
	s, ok := f.students[studentID]
	if !ok {
		return domain.ErrNotFound
	}
	s.CurrentPassID = nil
	s.PassStatus = status
	return nil
}

func (f *fakeStudentStore) GetImage(_ context.Context, id int) ([]byte, error) {
	img, ok := f.images[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return img, nil
}

type fakeTutorStore struct {
	nextID int
	tutors map[int]*models.Tutor
}

func newFakeTutorStore() *fakeTutorStore {
	return &fakeTutorStore{tutors: make(map[int]*models.Tutor)}
}

func (f *fakeTutorStore) Create(_ context.Context, t *models.Tutor, _ []byte) error {
	for _, existing := range f.tutors {
		if existing.EmployeeID == t.EmployeeID || existing.Email == t.Email {
			return domain.ErrDuplicateKey
		}
	}
	f.nextID++
	t.ID = f.nextID
	t.Status = models.TutorStatusPending
	cp := *t
	f.tutors[t.ID] = &cp
	return nil
}

func (f *fakeTutorStore) Get(_ context.Context, id int) (*models.Tutor, error) {
	t, ok := f.tutors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTutorStore) GetByEmployeeID(_ context.Context, employeeID string) (*models.Tutor, error) {
	for _, t := range f.tutors {
		if t.EmployeeID == employeeID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTutorStore) Update(_ context.Context, t *models.Tutor, _ []byte) error {
	if _, ok := f.tutors[t.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *t
	f.tutors[t.ID] = &cp
	return nil
}

func (f *fakeTutorStore) Delete(_ context.Context, id int) error {
	if _, ok := f.tutors[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.tutors, id)
	return nil
}

func (f *fakeTutorStore) List(_ context.Context) ([]models.Tutor, error) {
	var out []models.Tutor
	for _, t := range f.tutors {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTutorStore) ListVerified(ctx context.Context) ([]models.Tutor, error) {
	all, _ := f.List(ctx)
	var out []models.Tutor
	for _, t := range all {
		if t.Verified && t.Status == models.TutorStatusApproved {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTutorStore) Verify(_ context.Context, id int) error {
	t, ok := f.tutors[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.Verified = true
	t.Status = models.TutorStatusApproved
	return nil
}

func (f *fakeTutorStore) GetImage(_ context.Context, _ int) ([]byte, error) {
	return nil, domain.ErrNotFound
}

type fakeGatePassStore struct {
	nextID   int
	passes   map[int]*models.GatePass
	students *fakeStudentStore
}

func newFakeGatePassStore(students *fakeStudentStore) *fakeGatePassStore {
	return &fakeGatePassStore{passes: make(map[int]*models.GatePass), students: students}
}

func (f *fakeGatePassStore) Create(_ context.Context, p *models.GatePass) error {
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	for i := range p.Members {
		p.Members[i].GatePassID = p.ID
		p.Members[i].Position = i
	}
	cp := clonePass(p)
	f.passes[p.ID] = cp
	return nil
}

func clonePass(p *models.GatePass) *models.GatePass {
	cp := *p
	cp.Members = append([]models.GroupMember(nil), p.Members...)
	cp.Returns = append([]models.ReturnEntry(nil), p.Returns...)
	return &cp
}

// decorate fills the requester columns the SQL join would provide.
func (f *fakeGatePassStore) decorate(p *models.GatePass) *models.GatePass {
	cp := clonePass(p)
	if s, ok := f.students.students[p.StudentID]; ok {
		cp.StudentName = s.Name
		cp.StudentAdmissionNo = s.AdmissionNo
		cp.StudentDepartment = s.Department
		cp.StudentSemester = s.Semester
	}
	return cp
}

func (f *fakeGatePassStore) Get(_ context.Context, id int) (*models.GatePass, error) {
	p, ok := f.passes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return f.decorate(p), nil
}

func (f *fakeGatePassStore) UpdateStatus(_ context.Context, id int, from, to string, approvedBy *int, approvedAt *time.Time) (bool, error) {
	p, ok := f.passes[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.ApprovedBy = approvedBy
	p.ApprovedAt = approvedAt
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (f *fakeGatePassStore) SetStatus(_ context.Context, id int, status string) error {
	p, ok := f.passes[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeGatePassStore) Delete(_ context.Context, id int) error {
	if _, ok := f.passes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.passes, id)
	return nil
}

func (f *fakeGatePassStore) ListByStatus(_ context.Context, status string) ([]models.GatePass, error) {
	return f.collect(func(p *models.GatePass) bool {
		return status == "" || p.Status == status
	}), nil
}

func (f *fakeGatePassStore) ListForTutor(_ context.Context, tutorID int, status string) ([]models.GatePass, error) {
	return f.collect(func(p *models.GatePass) bool {
		s, ok := f.students.students[p.StudentID]
		if !ok || s.TutorID == nil || *s.TutorID != tutorID {
			return false
		}
		return status == "" || p.Status == status
	}), nil
}

func (f *fakeGatePassStore) ListForStudent(_ context.Context, studentID int, admissionNo, status string) ([]models.GatePass, error) {
	return f.collect(func(p *models.GatePass) bool {
		if status != "" && p.Status != status {
			return false
		}
		if p.StudentID == studentID {
			return true
		}
		for _, m := range p.Members {
			if m.AdmissionNo == admissionNo {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeGatePassStore) ListApprovedWithReturnTime(_ context.Context) ([]models.GatePass, error) {
	return f.collect(func(p *models.GatePass) bool {
		return p.Status == models.PassStatusApproved && p.ReturnTime != nil
	}), nil
}

func (f *fakeGatePassStore) FindOpenApprovedForMember(ctx context.Context, studentID int, admissionNo string) (*models.GatePass, error) {
	passes, _ := f.ListForStudent(ctx, studentID, admissionNo, models.PassStatusApproved)
	if len(passes) == 0 {
		return nil, domain.ErrNotFound
	}
	latest := passes[len(passes)-1]
	return &latest, nil
}

func (f *fakeGatePassStore) AppendReturn(_ context.Context, e *models.ReturnEntry) (bool, error) {
	p, ok := f.passes[e.GatePassID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.ReturnEntryFor(e.StudentID, e.AdmissionNo) != nil {
		return false, nil
	}
	e.ID = len(p.Returns) + 1
	p.Returns = append(p.Returns, *e)
	return true, nil
}

func (f *fakeGatePassStore) SetAllReturned(_ context.Context, id int, v bool) error {
	p, ok := f.passes[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.AllReturned = v
	return nil
}

func (f *fakeGatePassStore) ListWithReturnsSince(_ context.Context, since time.Time) ([]models.GatePass, error) {
	return f.collect(func(p *models.GatePass) bool {
		if p.Status != models.PassStatusApproved {
			return false
		}
		for _, e := range p.Returns {
			if !e.ReturnedAt.Before(since) {
				return true
			}
		}
		return false
	}), nil
}

func (f *fakeGatePassStore) collect(match func(*models.GatePass) bool) []models.GatePass {
	var out []models.GatePass
	for _, p := range f.passes {
		if match(p) {
			out = append(out, *f.decorate(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
