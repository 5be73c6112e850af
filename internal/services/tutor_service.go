package services

import (
	"context"
	"strings"

	"vgate-backend/internal/auth"
	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
	"vgate-backend/internal/validate"
)

// TutorService covers tutor registration, login and the admin verification
// step. New tutors start unverified and cannot log in or appear in the
// registration dropdown until an admin verifies them.
type TutorService struct {
	tutors TutorStore
	jwt    *auth.JWTManager
}

func NewTutorService(tutors TutorStore, jwt *auth.JWTManager) *TutorService {
	return &TutorService{tutors: tutors, jwt: jwt}
}

func (s *TutorService) Register(ctx context.Context, req *models.RegisterTutorRequest, image []byte) (*models.Tutor, error) {
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.Email = strings.TrimSpace(req.Email)

	errs := validate.Required(map[string]string{
		"employee_id": req.EmployeeID,
		"name":        req.Name,
		"department":  req.Department,
	})
	if !validate.Email(req.Email) {
		errs = append(errs, "Valid email required")
	}
	if !validate.Password(req.Password) {
		errs = append(errs, "Password must be at least 6 characters")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	tutor := &models.Tutor{
		EmployeeID:   req.EmployeeID,
		Name:         strings.TrimSpace(req.Name),
		Department:   req.Department,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.tutors.Create(ctx, tutor, image); err != nil {
		return nil, err
	}
	return tutor, nil
}

func (s *TutorService) Login(ctx context.Context, req *models.TutorLoginRequest) (string, *models.Tutor, error) {
	tutor, err := s.tutors.GetByEmployeeID(ctx, strings.TrimSpace(req.EmployeeID))
	if err != nil {
		return "", nil, domain.ErrBadCredentials
	}
	if !auth.CheckPassword(tutor.PasswordHash, req.Password) {
		return "", nil, domain.ErrBadCredentials
	}
	if !tutor.Verified || tutor.Status != models.TutorStatusApproved {
		return "", nil, domain.ErrAccountPending
	}

	token, err := s.jwt.Issue(tutor.ID, auth.RoleTutor, tutor.Name)
	if err != nil {
		return "", nil, err
	}
	return token, tutor, nil
}

func (s *TutorService) Get(ctx context.Context, id int) (*models.Tutor, error) {
	return s.tutors.Get(ctx, id)
}

func (s *TutorService) List(ctx context.Context) ([]models.Tutor, error) {
	return s.tutors.List(ctx)
}

// ListVerified backs the public tutor dropdown on the registration form.
func (s *TutorService) ListVerified(ctx context.Context) ([]models.Tutor, error) {
	return s.tutors.ListVerified(ctx)
}

func (s *TutorService) Update(ctx context.Context, id int, req *models.UpdateTutorRequest, image []byte) (*models.Tutor, error) {
	tutor, err := s.tutors.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.EmployeeID != "" {
		tutor.EmployeeID = strings.TrimSpace(req.EmployeeID)
	}
	if req.Name != "" {
		tutor.Name = strings.TrimSpace(req.Name)
	}
	if req.Department != "" {
		tutor.Department = req.Department
	}
	if req.Email != "" {
		if !validate.Email(strings.TrimSpace(req.Email)) {
			return nil, validate.Errors{"Valid email required"}
		}
		tutor.Email = strings.TrimSpace(req.Email)
	}

	if err := s.tutors.Update(ctx, tutor, image); err != nil {
		return nil, err
	}
	return tutor, nil
}

func (s *TutorService) Delete(ctx context.Context, id int) error {
	return s.tutors.Delete(ctx, id)
}

// Verify is the admin step that activates a tutor account.
func (s *TutorService) Verify(ctx context.Context, id int) error {
	return s.tutors.Verify(ctx, id)
}

func (s *TutorService) GetImage(ctx context.Context, id int) ([]byte, error) {
	return s.tutors.GetImage(ctx, id)
}
