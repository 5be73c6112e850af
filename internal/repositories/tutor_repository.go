package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
)

type TutorRepository struct {
	DB *pgxpool.Pool
}

func NewTutorRepository(db *pgxpool.Pool) *TutorRepository {
	return &TutorRepository{DB: db}
}

const tutorColumns = `id, employee_id, name, department, email, password_hash, verified, status`

func scanTutor(row pgx.Row, t *models.Tutor) error {
	return row.Scan(&t.ID, &t.EmployeeID, &t.Name, &t.Department, &t.Email,
		&t.PasswordHash, &t.Verified, &t.Status)
}

func (r *TutorRepository) Create(ctx context.Context, t *models.Tutor, image []byte) error {
	query := `
		INSERT INTO tutors (employee_id, name, department, email, password_hash, image)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, verified, status
	`

	err := r.DB.QueryRow(ctx, query,
		t.EmployeeID, t.Name, t.Department, t.Email, t.PasswordHash, image,
	).Scan(&t.ID, &t.Verified, &t.Status)

	return translateErr(err)
}

func (r *TutorRepository) Get(ctx context.Context, id int) (*models.Tutor, error) {
	var t models.Tutor
	err := scanTutor(r.DB.QueryRow(ctx,
		`SELECT `+tutorColumns+` FROM tutors WHERE id = $1`, id), &t)
	if err != nil {
		return nil, translateErr(err)
	}
	return &t, nil
}

func (r *TutorRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*models.Tutor, error) {
	var t models.Tutor
	err := scanTutor(r.DB.QueryRow(ctx,
		`SELECT `+tutorColumns+` FROM tutors WHERE employee_id = $1`, employeeID), &t)
	if err != nil {
		return nil, translateErr(err)
	}
	return &t, nil
}

func (r *TutorRepository) Update(ctx context.Context, t *models.Tutor, image []byte) error {
	query := `
		UPDATE tutors SET
			employee_id = $2, name = $3, department = $4, email = $5,
			image = COALESCE($6, image)
		WHERE id = $1
	`

	tag, err := r.DB.Exec(ctx, query, t.ID, t.EmployeeID, t.Name, t.Department, t.Email, image)
	if err != nil {
		return translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TutorRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM tutors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TutorRepository) List(ctx context.Context) ([]models.Tutor, error) {
	return r.list(ctx, `SELECT `+tutorColumns+` FROM tutors ORDER BY name`)
}

func (r *TutorRepository) ListVerified(ctx context.Context) ([]models.Tutor, error) {
	return r.list(ctx,
		`SELECT `+tutorColumns+` FROM tutors
		 WHERE verified = TRUE AND status = 'approved'
		 ORDER BY name`)
}

func (r *TutorRepository) list(ctx context.Context, query string, args ...any) ([]models.Tutor, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tutors []models.Tutor
	for rows.Next() {
		var t models.Tutor
		if err := scanTutor(rows, &t); err != nil {
			return nil, err
		}
		tutors = append(tutors, t)
	}
	return tutors, rows.Err()
}

func (r *TutorRepository) Verify(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE tutors SET verified = TRUE, status = 'approved' WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TutorRepository) GetImage(ctx context.Context, id int) ([]byte, error) {
	var image []byte
	err := r.DB.QueryRow(ctx,
		`SELECT image FROM tutors WHERE id = $1`, id).Scan(&image)
	if err != nil {
		return nil, translateErr(err)
	}
	if len(image) == 0 {
		return nil, domain.ErrNotFound
	}
	return image, nil
}
