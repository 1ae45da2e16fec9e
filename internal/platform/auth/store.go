package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uint64) (*User, error)
	Create(ctx context.Context, u *User) (uint64, error)
	MarkVerified(ctx context.Context, id uint64, at time.Time) (int64, error)
	SetStatus(ctx context.Context, id uint64, status string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) UserStore {
	return &Store{db: db}
}

const userColumns = `id, name, email, password_hash, role, employee_id, department, phone, status, email_verified_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var employeeID, department, phone sql.NullString
	var verifiedAt sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&employeeID, &department, &phone, &u.Status, &verifiedAt, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if employeeID.Valid {
		u.EmployeeID = &employeeID.String
	}
	if department.Valid {
		u.Department = &department.String
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	if verifiedAt.Valid {
		u.EmailVerifiedAt = &verifiedAt.Time
	}
	return &u, nil
}

// GetByEmail は該当なしで (nil, nil)
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`
	return scanUser(s.db.QueryRowContext(ctx, q, email))
}

func (s *Store) GetByID(ctx context.Context, id uint64) (*User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`
	return scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *Store) Create(ctx context.Context, u *User) (uint64, error) {
	const q = `
INSERT INTO users (name, email, password_hash, role, employee_id, department, phone, status, email_verified_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	res, err := s.db.ExecContext(ctx, q, u.Name, u.Email, u.PasswordHash, u.Role,
		u.EmployeeID, u.Department, u.Phone, u.Status, u.EmailVerifiedAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (s *Store) MarkVerified(ctx context.Context, id uint64, at time.Time) (int64, error) {
	const q = `UPDATE users SET email_verified_at = COALESCE(email_verified_at, ?) WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, at, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) SetStatus(ctx context.Context, id uint64, status string) (int64, error) {
	const q = `UPDATE users SET status = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
