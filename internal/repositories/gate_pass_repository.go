package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vgate-backend/internal/domain"
	"vgate-backend/internal/models"
)

type GatePassRepository struct {
	DB *pgxpool.Pool
}

func NewGatePassRepository(db *pgxpool.Pool) *GatePassRepository {
	return &GatePassRepository{DB: db}
}

// passColumns joins the requester's display fields so list endpoints don't
// need a second round trip per pass.
const passColumns = `
	gp.id, gp.student_id, gp.purpose, gp.outing_date, gp.return_time,
	gp.status, gp.approved_by, gp.approved_at, gp.all_returned,
	gp.created_at, gp.updated_at,
	s.name, s.admission_no, s.department, s.semester
`

func scanPass(row pgx.Row, p *models.GatePass) error {
	return row.Scan(
		&p.ID, &p.StudentID, &p.Purpose, &p.OutingDate, &p.ReturnTime,
		&p.Status, &p.ApprovedBy, &p.ApprovedAt, &p.AllReturned,
		&p.CreatedAt, &p.UpdatedAt,
		&p.StudentName, &p.StudentAdmissionNo, &p.StudentDepartment, &p.StudentSemester,
	)
}

// Create inserts the pass and its member roster in one transaction.
func (r *GatePassRepository) Create(ctx context.Context, p *models.GatePass) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO gate_passes (student_id, purpose, outing_date, return_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, all_returned, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		p.StudentID, p.Purpose, p.OutingDate, p.ReturnTime, p.Status,
	).Scan(&p.ID, &p.AllReturned, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return translateErr(err)
	}

	for i := range p.Members {
		m := &p.Members[i]
		m.GatePassID = p.ID
		m.Position = i
		err = tx.QueryRow(ctx, `
			INSERT INTO gate_pass_members (gate_pass_id, student_id, name, admission_no, department, semester, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, m.GatePassID, m.StudentID, m.Name, m.AdmissionNo, m.Department, m.Semester, m.Position).Scan(&m.ID)
		if err != nil {
			return translateErr(err)
		}
	}

	return tx.Commit(ctx)
}

func (r *GatePassRepository) Get(ctx context.Context, id int) (*models.GatePass, error) {
	var p models.GatePass
	err := scanPass(r.DB.QueryRow(ctx, `
		SELECT `+passColumns+`
		FROM gate_passes gp
		JOIN students s ON s.id = gp.student_id
		WHERE gp.id = $1
	`, id), &p)
	if err != nil {
		return nil, translateErr(err)
	}

	passes := []models.GatePass{p}
	if err := r.loadChildren(ctx, passes); err != nil {
		return nil, err
	}
	return &passes[0], nil
}

// UpdateStatus is the conditional transition used by the approval state
// machine: the update applies only when the current status equals from, so
// concurrent transitions cannot both win.
func (r *GatePassRepository) UpdateStatus(ctx context.Context, id int, from, to string, approvedBy *int, approvedAt *time.Time) (bool, error) {
	query := `
		UPDATE gate_passes
		SET status = $3, approved_by = $4, approved_at = $5, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.DB.Exec(ctx, query, id, from, to, approvedBy, approvedAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *GatePassRepository) SetStatus(ctx context.Context, id int, status string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE gate_passes SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GatePassRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM gate_passes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GatePassRepository) ListByStatus(ctx context.Context, status string) ([]models.GatePass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM gate_passes gp
		JOIN students s ON s.id = gp.student_id
	`
	var args []any
	if status != "" {
		query += ` WHERE gp.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY gp.created_at DESC`

	return r.list(ctx, query, args...)
}

func (r *GatePassRepository) ListForTutor(ctx context.Context, tutorID int, status string) ([]models.GatePass, error) {
	return r.list(ctx, `
		SELECT `+passColumns+`
		FROM gate_passes gp
		JOIN students s ON s.id = gp.student_id
		WHERE s.tutor_id = $1 AND gp.status = $2
		ORDER BY gp.created_at DESC
	`, tutorID, status)
}

func (r *GatePassRepository) ListForStudent(ctx context.Context, studentID int, admissionNo, status string) ([]models.GatePass, error) {
	query := `
		SELECT ` + passColumns + `
		FROM gate_passes gp
		JOIN students s ON s.id = gp.student_id
		WHERE (gp.student_id = $1 OR EXISTS (
			SELECT 1 FROM gate_pass_members m
			WHERE m.gate_pass_id = gp.id AND m.admission_no = $2
		))
	`
	args := []any{studentID, admissionNo}
	if status != "" {
		query += ` AND gp.status = $3`
		args = append(args, status)
	}
	query += ` ORDER BY gp.created_at DESC`

	return r.list(ctx, query, args...)
}

func (r *GatePassRepository) ListApprovedWithReturnTime(ctx context.Context) ([]models.GatePass, error) {
	return r.list(ctx, `
		SELECT `+passColumns+`
		FROM gate_passes gp
		JOIN students s ON s.id = gp.student_id
		WHERE gp.status = 'approved' AND gp.return_time IS NOT NULL
		ORDER BY gp.outing_date
	`)
}

func (r *GatePassRepository) FindOpenApprovedForMember(ctx context.Context, studentID int, admissionNo string) (*models.GatePass, error) {
	var p models.GatePass
	err := scanPass(r.DB.QueryRow(ctx, `
		SELECT `+passColumns+`
		FROM gate_passes gp
		JOIN students s ON s.id = gp.student_id
		WHERE gp.status = 'approved' AND (gp.student_id = $1 OR EXISTS (
			SELECT 1 FROM gate_pass_members m
			WHERE m.gate_pass_id = gp.id AND m.admission_no = $2
		))
		ORDER BY gp.created_at DESC
		LIMIT 1
	`, studentID, admissionNo), &p)
	if err != nil {
		return nil, translateErr(err)
	}

	passes := []models.GatePass{p}
	if err := r.loadChildren(ctx, passes); err != nil {
		return nil, err
	}
	return &passes[0], nil
}

// AppendReturn inserts a ledger entry. The partial unique indexes on
// (gate_pass_id, student_id) and (gate_pass_id, admission_no) make the insert
// a no-op when the member is already marked; false is returned in that case.
func (r *GatePassRepository) AppendReturn(ctx context.Context, e *models.ReturnEntry) (bool, error) {
	query := `
		INSERT INTO gate_pass_returns (gate_pass_id, student_id, admission_no, name, is_guest, returned_at, returned_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
	`

	tag, err := r.DB.Exec(ctx, query,
		e.GatePassID, e.StudentID, e.AdmissionNo, e.Name, e.IsGuest, e.ReturnedAt, e.ReturnedBy)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *GatePassRepository) SetAllReturned(ctx context.Context, id int, v bool) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE gate_passes SET all_returned = $2, updated_at = NOW() WHERE id = $1`, id, v)
	return err
}

func (r *GatePassRepository) ListWithReturnsSince(ctx context.Context, since time.Time) ([]models.GatePass, error) {
	return r.list(ctx, `
		SELECT `+passColumns+`
		FROM gate_passes gp
		JOIN students s ON s.id = gp.student_id
		WHERE gp.status = 'approved' AND EXISTS (
			SELECT 1 FROM gate_pass_returns ret
			WHERE ret.gate_pass_id = gp.id AND ret.returned_at >= $1
		)
		ORDER BY gp.updated_at DESC
	`, since)
}

func (r *GatePassRepository) list(ctx context.Context, query string, args ...any) ([]models.GatePass, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passes []models.GatePass
	for rows.Next() {
		var p models.GatePass
		if err := scanPass(rows, &p); err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, passes); err != nil {
		return nil, err
	}
	return passes, nil
}

// loadChildren batch-fetches member rosters and return ledgers for a page of
// passes in two queries.
func (r *GatePassRepository) loadChildren(ctx context.Context, passes []models.GatePass) error {
	if len(passes) == 0 {
		return nil
	}

	ids := make([]int, len(passes))
	byID := make(map[int]*models.GatePass, len(passes))
	for i := range passes {
		ids[i] = passes[i].ID
		byID[passes[i].ID] = &passes[i]
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, gate_pass_id, student_id, name, admission_no, department, semester, position
		FROM gate_pass_members
		WHERE gate_pass_id = ANY($1)
		ORDER BY gate_pass_id, position
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GatePassID, &m.StudentID, &m.Name,
			&m.AdmissionNo, &m.Department, &m.Semester, &m.Position); err != nil {
			return err
		}
		if p, ok := byID[m.GatePassID]; ok {
			p.Members = append(p.Members, m)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	retRows, err := r.DB.Query(ctx, `
		SELECT id, gate_pass_id, student_id, admission_no, name, is_guest, returned_at, returned_by
		FROM gate_pass_returns
		WHERE gate_pass_id = ANY($1)
		ORDER BY gate_pass_id, returned_at
	`, ids)
	if err != nil {
		return err
	}
	defer retRows.Close()

	for retRows.Next() {
		var e models.ReturnEntry
		if err := retRows.Scan(&e.ID, &e.GatePassID, &e.StudentID, &e.AdmissionNo,
			&e.Name, &e.IsGuest, &e.ReturnedAt, &e.ReturnedBy); err != nil {
			return err
		}
		if p, ok := byID[e.GatePassID]; ok {
			p.Returns = append(p.Returns, e)
		}
	}
	return retRows.Err()
}
