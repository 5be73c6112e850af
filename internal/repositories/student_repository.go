package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
)

const pgUniqueViolation = "23505"

// translateErr maps driver errors onto the domain taxonomy.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrDuplicateKey
	}
	return err
}

type StudentRepository struct {
	DB *pgxpool.Pool
}

func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{DB: db}
}

const studentColumns = `
	id, admission_no, name, department, semester, tutor_id, tutor_name,
	email, phone, password_hash, tutor_approved, verified, returned,
	current_pass_id, pass_status, purpose, outing_date, return_time, registered_at
`

func scanStudent(row pgx.Row, s *models.Student) error {
	return row.Scan(
		&s.ID, &s.AdmissionNo, &s.Name, &s.Department, &s.Semester, &s.TutorID,
		&s.TutorName, &s.Email, &s.Phone, &s.PasswordHash, &s.TutorApproved,
		&s.Verified, &s.Returned, &s.CurrentPassID, &s.PassStatus, &s.Purpose,
		&s.OutingDate, &s.ReturnTime, &s.RegisteredAt,
	)
}

func (r *StudentRepository) Create(ctx context.Context, s *models.Student, image []byte) error {
	query := `
		INSERT INTO students (
			admission_no, name, department, semester, tutor_id, tutor_name,
			email, phone, password_hash, image
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, tutor_approved, verified, returned, pass_status, registered_at
	`

	err := r.DB.QueryRow(ctx, query,
		s.AdmissionNo, s.Name, s.Department, s.Semester, s.TutorID, s.TutorName,
		s.Email, s.Phone, s.PasswordHash, image,
	).Scan(&s.ID, &s.TutorApproved, &s.Verified, &s.Returned, &s.PassStatus, &s.RegisteredAt)

	return translateErr(err)
}

func (r *StudentRepository) Get(ctx context.Context, id int) (*models.Student, error) {
	var s models.Student
	err := scanStudent(r.DB.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = $1`, id), &s)
	if err != nil {
		return nil, translateErr(err)
	}
	return &s, nil
}

func (r *StudentRepository) GetByAdmissionNo(ctx context.Context, admissionNo string) (*models.Student, error) {
	var s models.Student
	err := scanStudent(r.DB.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE admission_no = $1`, admissionNo), &s)
	if err != nil {
		return nil, translateErr(err)
	}
	return &s, nil
}

// Update rewrites the editable profile fields. A nil image leaves the stored
// photo untouched.
func (r *StudentRepository) Update(ctx context.Context, s *models.Student, image []byte) error {
	query := `
		UPDATE students SET
			admission_no = $2, name = $3, department = $4, semester = $5,
			tutor_id = $6, tutor_name = $7, email = $8, phone = $9,
			image = COALESCE($10, image)
		WHERE id = $1
	`

	tag, err := r.DB.Exec(ctx, query,
		s.ID, s.AdmissionNo, s.Name, s.Department, s.Semester,
		s.TutorID, s.TutorName, s.Email, s.Phone, image,
	)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	return r.list(ctx, `SELECT `+studentColumns+` FROM students ORDER BY registered_at DESC`)
}

func (r *StudentRepository) ListByTutor(ctx context.Context, tutorID int) ([]models.Student, error) {
	return r.list(ctx,
		`SELECT `+studentColumns+` FROM students WHERE tutor_id = $1 ORDER BY name`, tutorID)
}

func (r *StudentRepository) ListPendingByTutor(ctx context.Context, tutorID int) ([]models.Student, error) {
	return r.list(ctx,
		`SELECT `+studentColumns+` FROM students
		 WHERE tutor_id = $1 AND tutor_approved = FALSE
		 ORDER BY registered_at DESC`, tutorID)
}

func (r *StudentRepository) list(ctx context.Context, query string, args ...any) ([]models.Student, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var s models.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *StudentRepository) SetTutorApproved(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE students SET tutor_approved = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StudentRepository) SetVerified(ctx context.Context, ids []int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE students SET verified = TRUE WHERE id = ANY($1)`, ids)
	return err
}

func (r *StudentRepository) SetReturned(ctx context.Context, id int, returned bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE students SET returned = $2 WHERE id = $1`, id, returned)
	return err
}

func (r *StudentRepository) MirrorPass(ctx context.Context, studentID, passID int, status, purpose string, outingDate time.Time, returnTime *string, returned bool) error {
	query := `
		UPDATE students SET
			current_pass_id = $2, pass_status = $3, purpose = $4,
			outing_date = $5, return_time = $6, returned = $7
		WHERE id = $1
	`

	_, err := r.DB.Exec(ctx, query,
		studentID, passID, status, purpose, outingDate, returnTime, returned)
	return err
}

func (r *StudentRepository) ClearPass(ctx context.Context, studentID int, status string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE students SET current_pass_id = NULL, pass_status = $2 WHERE id = $1`,
		studentID, status)
	return err
}

func (r *StudentRepository) GetImage(ctx context.Context, id int) ([]byte, error) {
	var image []byte
	err := r.DB.QueryRow(ctx,
		`SELECT image FROM students WHERE id = $1`, id).Scan(&image)
	if err != nil {
		return nil, translateErr(err)
	}
	if len(image) == 0 {
		return nil, domain.ErrNotFound
	}
	return image, nil
}
