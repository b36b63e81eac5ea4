package database

import (
	"context"
	"fmt"
)

const staffColumns = `id, pin_hash, name, email, role, permissions, is_active, last_login, created_by, created_at`

func scanStaff(row interface{ Scan(dest ...any) error }) (Staff, error) {
	var s Staff
	err := row.Scan(
		&s.ID, &s.PinHash, &s.Name, &s.Email, &s.Role,
		&s.Permissions, &s.IsActive, &s.LastLogin, &s.CreatedBy, &s.CreatedAt,
	)
	return s, err
}

// ListActiveStaff returns all staff with is_active = true. PIN matching
// happens in the auth service since hashes cannot be compared in SQL.
func (q *Queries) ListActiveStaff(ctx context.Context) ([]Staff, error) {
	rows, err := q.db.Query(ctx, `SELECT `+staffColumns+` FROM staff WHERE is_active = true`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// ListStaff returns every staff member, newest first.
func (q *Queries) ListStaff(ctx context.Context) ([]Staff, error) {
	rows, err := q.db.Query(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

// GetStaffByID returns one staff member by primary key.
func (q *Queries) GetStaffByID(ctx context.Context, id int64) (Staff, error) {
	return scanStaff(q.db.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
}

// UpdateLastLogin stamps the staff member's last successful login.
func (q *Queries) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, `UPDATE staff SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	return nil
}

// CreateStaffParams holds the fields for a new staff member.
type CreateStaffParams struct {
	PinHash     string
	Name        string
	Email       string
	Role        string
	Permissions map[string]bool
	CreatedBy   int64
}

// CreateStaff inserts a staff member and returns the stored row.
func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (Staff, error) {
	var email any
	if arg.Email != "" {
		email = arg.Email
	}
	return scanStaff(q.db.QueryRow(ctx, `
		INSERT INTO staff (pin_hash, name, email, role, permissions, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+staffColumns,
		arg.PinHash, arg.Name, email, arg.Role, arg.Permissions, arg.CreatedBy,
	))
}

// UpdateStaffParams holds the mutable fields of a staff member.
type UpdateStaffParams struct {
	ID          int64
	Name        string
	Email       string
	Role        string
	Permissions map[string]bool
	IsActive    bool
}

// UpdateStaff updates profile, role, permissions and active flag. Staff are
// deactivated here rather than deleted.
func (q *Queries) UpdateStaff(ctx context.Context, arg UpdateStaffParams) (Staff, error) {
	var email any
	if arg.Email != "" {
		email = arg.Email
	}
	return scanStaff(q.db.QueryRow(ctx, `
		UPDATE staff
		SET name = $2, email = $3, role = $4, permissions = $5, is_active = $6
		WHERE id = $1
		RETURNING `+staffColumns,
		arg.ID, arg.Name, email, arg.Role, arg.Permissions, arg.IsActive,
	))
}

// ResetPin replaces the staff member's PIN hash.
func (q *Queries) ResetPin(ctx context.Context, id int64, pinHash string) error {
	tag, err := q.db.Exec(ctx, `UPDATE staff SET pin_hash = $2 WHERE id = $1`, id, pinHash)
	if err != nil {
		return fmt.Errorf("reset pin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reset pin: staff %d not found", id)
	}
	return nil
}
