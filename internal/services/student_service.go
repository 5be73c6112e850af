package services

import (
	"context"
	"strings"

	"vgate-backend/internal/auth"
	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
	"vgate-backend/internal/validate"
)

// StudentService covers registration, login and profile management.
// A freshly registered student cannot log in until their tutor approves the
// registration.
type StudentService struct {
	students StudentStore
	tutors   TutorStore
	jwt      *auth.JWTManager
}

func NewStudentService(students StudentStore, tutors TutorStore, jwt *auth.JWTManager) *StudentService {
	return &StudentService{students: students, tutors: tutors, jwt: jwt}
}

func (s *StudentService) Register(ctx context.Context, req *models.RegisterStudentRequest, image []byte) (*models.Student, error) {
	req.AdmissionNo = strings.TrimSpace(req.AdmissionNo)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if errs := validate.StudentRegistration(req.AdmissionNo, req.Name, req.Email, req.Phone, req.Password); len(errs) > 0 {
		return nil, errs
	}
	if req.Department == "" || req.Semester < 1 || req.TutorID == 0 {
		return nil, validate.Errors{"department, semester and tutor are required"}
	}

	tutor, err := s.tutors.Get(ctx, req.TutorID)
	if err != nil {
		return nil, err
	}
	if !tutor.Verified || tutor.Status != models.TutorStatusApproved {
		return nil, validate.Errors{"selected tutor is not available"}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	tutorID := tutor.ID
	student := &models.Student{
		AdmissionNo:  req.AdmissionNo,
		Name:         strings.TrimSpace(req.Name),
		Department:   req.Department,
		Semester:     req.Semester,
		TutorID:      &tutorID,
		TutorName:    tutor.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
	}
	if err := s.students.Create(ctx, student, image); err != nil {
		return nil, err
	}
	return student, nil
}

// Login authenticates by admission number. Accounts still waiting for tutor
// approval get ErrAccountPending rather than a token.
func (s *StudentService) Login(ctx context.Context, req *models.StudentLoginRequest) (string, *models.Student, error) {
	student, err := s.students.GetByAdmissionNo(ctx, strings.TrimSpace(req.AdmissionNo))
	if err != nil {
		return "", nil, domain.ErrBadCredentials
	}
	if !auth.CheckPassword(student.PasswordHash, req.Password) {
		return "", nil, domain.ErrBadCredentials
	}
	if !student.TutorApproved {
		return "", nil, domain.ErrAccountPending
	}

	token, err := s.jwt.Issue(student.ID, auth.RoleStudent, student.Name)
	if err != nil {
		return "", nil, err
	}
	return token, student, nil
}

func (s *StudentService) Get(ctx context.Context, id int) (*models.Student, error) {
	return s.students.Get(ctx, id)
}

func (s *StudentService) GetByAdmissionNo(ctx context.Context, admissionNo string) (*models.Student, error) {
	return s.students.GetByAdmissionNo(ctx, strings.TrimSpace(admissionNo))
}

func (s *StudentService) Update(ctx context.Context, id int, req *models.UpdateStudentRequest, image []byte) (*models.Student, error) {
	student, err := s.students.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AdmissionNo != "" {
		admissionNo := strings.TrimSpace(req.AdmissionNo)
		if !validate.AdmissionNo(admissionNo) {
			return nil, validate.Errors{"Admission number must be in format: NNN/NN (e.g., 234/23)"}
		}
		student.AdmissionNo = admissionNo
	}
	if req.Name != "" {
		student.Name = strings.TrimSpace(req.Name)
	}
	if req.Department != "" {
		student.Department = req.Department
	}
	if req.Semester > 0 {
		student.Semester = req.Semester
	}
	if req.Email != "" {
		if !validate.Email(strings.TrimSpace(req.Email)) {
			return nil, validate.Errors{"Valid email required"}
		}
		student.Email = strings.TrimSpace(req.Email)
	}
	if req.Phone != "" {
		if !validate.Phone(strings.TrimSpace(req.Phone)) {
			return nil, validate.Errors{"Valid 10-digit phone number required"}
		}
		student.Phone = strings.TrimSpace(req.Phone)
	}
	if req.TutorID != 0 && (student.TutorID == nil || *student.TutorID != req.TutorID) {
		tutor, err := s.tutors.Get(ctx, req.TutorID)
		if err != nil {
			return nil, err
		}
		tutorID := tutor.ID
		student.TutorID = &tutorID
		student.TutorName = tutor.Name
	}

	if err := s.students.Update(ctx, student, image); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, id int) error {
	return s.students.Delete(ctx, id)
}

func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	return s.students.List(ctx)
}

func (s *StudentService) ListByTutor(ctx context.Context, tutorID int) ([]models.Student, error) {
	return s.students.ListByTutor(ctx, tutorID)
}

func (s *StudentService) ListPendingByTutor(ctx context.Context, tutorID int) ([]models.Student, error) {
	return s.students.ListPendingByTutor(ctx, tutorID)
}

// ApproveRegistration marks a registration as accepted by the student's own
// tutor. Other tutors get ErrUnauthorized.
func (s *StudentService) ApproveRegistration(ctx context.Context, studentID, tutorID int) error {
	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return err
	}
	if student.TutorID == nil || *student.TutorID != tutorID {
		return domain.ErrUnauthorized
	}
	return s.students.SetTutorApproved(ctx, studentID)
}

// MarkVerified bulk-flags students whose identity the gate desk has checked
// against the roster page.
func (s *StudentService) MarkVerified(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return validate.Errors{"student_ids is required"}
	}
	return s.students.SetVerified(ctx, ids)
}

func (s *StudentService) GetImage(ctx context.Context, id int) ([]byte, error) {
	return s.students.GetImage(ctx, id)
}
