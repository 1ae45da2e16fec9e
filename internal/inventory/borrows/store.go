package borrows

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SIMAPRO-backend/internal/inventory/assets"
	"SIMAPRO-backend/internal/platform/auth"
	"SIMAPRO-backend/internal/platform/db"
	"SIMAPRO-backend/internal/platform/httpx"
)

// TransitionFunc は行ロック済みの申請と資産の状態を受け取り、書き換え内容を返す
type TransitionFunc func(cur *BorrowRequest, asset assets.Status) (*Change, error)

type RequestStore interface {
	AssetExists(ctx context.Context, id uint64) (bool, error)
	Create(ctx context.Context, r *BorrowRequest) (uint64, string, error)
	GetByID(ctx context.Context, id uint64) (*BorrowRequest, error)
	GetByToken(ctx context.Context, token string) (*BorrowRequest, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]BorrowRequest, error)
	List(ctx context.Context, f ListFilter, p httpx.Page) ([]BorrowRequest, int64, error)
	Transition(ctx context.Context, id uint64, fn TransitionFunc) (*BorrowRequest, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const requestColumns = `
	br.id, br.request_code, br.tracking_token, br.asset_id, br.borrower_name, br.borrower_employee_id,
	br.borrower_phone, br.borrower_email, br.borrower_department, br.purpose, br.requested_start_date,
	br.requested_end_date, br.status, br.notes, br.processed_by, br.processed_at, br.rejection_reason,
	br.actual_start_date, br.actual_end_date, br.created_at, br.updated_at`

const joinedColumns = requestColumns + `,
	a.asset_code, a.name, a.status, c.id, c.name, u.name, u.email`

const joinedFrom = `
	FROM borrow_requests br
	JOIN assets a ON a.id = br.asset_id
	JOIN categories c ON c.id = a.category_id
	LEFT JOIN users u ON u.id = br.processed_by`

type scanner interface{ Scan(...any) error }

func scanRequest(row scanner, joined bool) (*BorrowRequest, error) {
	var (
		r                                   BorrowRequest
		email, department, notes, reason    sql.NullString
		processedBy                         sql.NullInt64
		processedAt, actualStart, actualEnd sql.NullTime
		asset                               assets.Summary
		category                            assets.Ref
		processorName, processorEmail       sql.NullString
	)
	dest := []any{
		&r.ID, &r.RequestCode, &r.TrackingToken, &r.AssetID, &r.BorrowerName, &r.BorrowerEmployeeID,
		&r.BorrowerPhone, &email, &department, &r.Purpose, &r.RequestedStartDate,
		&r.RequestedEndDate, &r.Status, &notes, &processedBy, &processedAt, &reason,
		&actualStart, &actualEnd, &r.CreatedAt, &r.UpdatedAt,
	}
	if joined {
		dest = append(dest, &asset.AssetCode, &asset.Name, &asset.Status, &category.ID, &category.Name,
			&processorName, &processorEmail)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	r.BorrowerEmail = nullStr(email)
	r.BorrowerDepartment = nullStr(department)
	r.Notes = nullStr(notes)
	r.RejectionReason = nullStr(reason)
	r.ProcessedAt = nullTime(processedAt)
	r.ActualStartDate = nullTime(actualStart)
	r.ActualEndDate = nullTime(actualEnd)
	if processedBy.Valid {
		id := uint64(processedBy.Int64)
		r.ProcessedBy = &id
		if joined && processorName.Valid {
			r.Processor = &auth.Summary{ID: id, Name: processorName.String, Email: processorEmail.String}
		}
	}
	if joined {
		asset.ID = r.AssetID
		asset.Category = &category
		r.Asset = &asset
	}
	return &r, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func (s *Store) AssetExists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets WHERE id = ?`, id).Scan(&n)
	return n > 0, err
}

// Create は仮コードで INSERT → 同じ Tx で REQ+連番 に確定し、確定コードを返す
func (s *Store) Create(ctx context.Context, r *BorrowRequest) (uint64, string, error) {
	var (
		id   uint64
		code string
	)
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		tmp := db.TempCode()
		const ins = `
	INSERT INTO borrow_requests
	(request_code, tracking_token, asset_id, borrower_name, borrower_employee_id, borrower_phone,
	 borrower_email, borrower_department, purpose, requested_start_date, requested_end_date, status, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, ins, tmp, r.TrackingToken, r.AssetID, r.BorrowerName, r.BorrowerEmployeeID,
			r.BorrowerPhone, r.BorrowerEmail, r.BorrowerDepartment, r.Purpose, r.RequestedStartDate.UTC(),
			r.RequestedEndDate.UTC(), StatusPending, r.Notes)
		if err != nil {
			return err
		}
		lastID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = uint64(lastID)
		if err := assets.FinalizeCode(ctx, tx, "borrow_requests", "request_code", "REQ", id, tmp); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, `SELECT request_code FROM borrow_requests WHERE id = ?`, id).Scan(&code)
	})
	if err != nil {
		return 0, "", err
	}
	return id, code, nil
}

// GetByID は該当なしで sql.ErrNoRows
func (s *Store) GetByID(ctx context.Context, id uint64) (*BorrowRequest, error) {
	q := `SELECT` + joinedColumns + joinedFrom + ` WHERE br.id = ?`
	return scanRequest(s.db.QueryRowContext(ctx, q, id), true)
}

func (s *Store) GetByToken(ctx context.Context, token string) (*BorrowRequest, error) {
	q := `SELECT` + joinedColumns + joinedFrom + ` WHERE br.tracking_token = ?`
	return scanRequest(s.db.QueryRowContext(ctx, q, token), true)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]BorrowRequest, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []BorrowRequest{}
	for rows.Next() {
		r, err := scanRequest(rows, true)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]BorrowRequest, error) {
	q := `SELECT` + joinedColumns + joinedFrom + `
	WHERE br.borrower_employee_id = ?
	ORDER BY br.created_at DESC, br.id DESC`
	return s.query(ctx, q, employeeID)
}

func listWhere(f ListFilter) (string, []any) {
	var sb strings.Builder
	args := []any{}
	sb.WriteString(" WHERE 1=1")
	if f.Status != nil {
		sb.WriteString(" AND br.status = ?")
		args = append(args, *f.Status)
	}
	if f.EmployeeID != nil {
		sb.WriteString(" AND br.borrower_employee_id = ?")
		args = append(args, *f.EmployeeID)
	}
	if f.AssetID != nil {
		sb.WriteString(" AND br.asset_id = ?")
		args = append(args, *f.AssetID)
	}
	if f.ActiveOnly {
		sb.WriteString(" AND " + ActiveClause("br"))
	}
	return sb.String(), args
}

func (s *Store) List(ctx context.Context, f ListFilter, p httpx.Page) ([]BorrowRequest, int64, error) {
	where, args := listWhere(f)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM borrow_requests br`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if p.Order == "asc" {
		order = "ASC"
	}
	q := `SELECT` + joinedColumns + joinedFrom + where +
		fmt.Sprintf(` ORDER BY br.created_at %s, br.id %s LIMIT ? OFFSET ?`, order, order)
	items, err := s.query(ctx, q, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Transition は申請と資産の行を FOR UPDATE でロックして fn を呼び、
// 返された Change を遷移元の段階を条件にした UPDATE で適用する
func (s *Store) Transition(ctx context.Context, id uint64, fn TransitionFunc) (*BorrowRequest, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		q := `SELECT` + requestColumns + ` FROM borrow_requests br WHERE br.id = ? FOR UPDATE`
		cur, err := scanRequest(tx.QueryRowContext(ctx, q, id), false)
		if err != nil {
			return err
		}
		assetStatus, err := assets.LockStatus(ctx, tx, cur.AssetID)
		if err != nil {
			return fmt.Errorf("lock asset %d: %w", cur.AssetID, err)
		}

		ch, err := fn(cur, assetStatus)
		if err != nil {
			return err
		}

		upd := `
	UPDATE borrow_requests SET
		status = ?,
		processed_by = COALESCE(?, processed_by),
		processed_at = COALESCE(?, processed_at),
		rejection_reason = COALESCE(?, rejection_reason),
		actual_start_date = COALESCE(?, actual_start_date),
		actual_end_date = COALESCE(?, actual_end_date)
	WHERE id = ? AND ` + ch.From.Predicate("")
		res, err := tx.ExecContext(ctx, upd, ch.To.Status(), ch.ProcessedBy, utcPtr(ch.ProcessedAt),
			ch.RejectionReason, utcPtr(ch.ActualStartDate), utcPtr(ch.ActualEndDate), id)
		if err != nil {
			return err
		}
		if aff, _ := res.RowsAffected(); aff != 1 {
			return &TransitionError{From: cur.Stage(), Event: ch.Event}
		}

		if ch.AssetStatus != "" {
			return assets.SetStatus(ctx, tx, cur.AssetID, ch.AssetStatus)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
