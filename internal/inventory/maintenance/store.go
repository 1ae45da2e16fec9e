package maintenance

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SIMAPRO-backend/internal/inventory/assets"
	"SIMAPRO-backend/internal/platform/db"
	"SIMAPRO-backend/internal/platform/httpx"
)

type UpdateFunc func(cur *Report, asset assets.Status) (*Change, error)

type ReportStore interface {
	AssetExists(ctx context.Context, id uint64) (bool, error)
	Create(ctx context.Context, r *Report) (uint64, error)
	GetByID(ctx context.Context, id uint64) (*Report, error)
	List(ctx context.Context, f ListFilter, p httpx.Page) ([]Report, int64, error)
	Update(ctx context.Context, id uint64, fn UpdateFunc) (*Report, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const reportColumns = `
	m.id, m.asset_id, m.type, m.description, m.severity, m.cost, m.scheduled_date, m.completed_date,
	m.status, m.reporter_name, m.reporter_type, m.reported_by, m.assigned_to, m.work_performed,
	m.created_at, m.updated_at`

const joinedFrom = `
	FROM maintenance_reports m
	JOIN assets a ON a.id = m.asset_id`

type scanner interface{ Scan(...any) error }

func scanReport(row scanner, joined bool) (*Report, error) {
	var (
		r                      Report
		cost, work             sql.NullString
		scheduled, completed   sql.NullTime
		reportedBy, assignedTo sql.NullInt64
		asset                  assets.Summary
	)
	dest := []any{
		&r.ID, &r.AssetID, &r.Type, &r.Description, &r.Severity, &cost, &scheduled, &completed,
		&r.Status, &r.ReporterName, &r.ReporterType, &reportedBy, &assignedTo, &work,
		&r.CreatedAt, &r.UpdatedAt,
	}
	if joined {
		dest = append(dest, &asset.AssetCode, &asset.Name, &asset.Status)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if cost.Valid {
		r.Cost = &cost.String
	}
	if work.Valid {
		r.WorkPerformed = &work.String
	}
	if scheduled.Valid {
		r.ScheduledDate = &scheduled.Time
	}
	if completed.Valid {
		r.CompletedDate = &completed.Time
	}
	if reportedBy.Valid {
		v := uint64(reportedBy.Int64)
		r.ReportedBy = &v
	}
	if assignedTo.Valid {
		v := uint64(assignedTo.Int64)
		r.AssignedTo = &v
	}
	if joined {
		asset.ID = r.AssetID
		r.Asset = &asset
	}
	return &r, nil
}

func (s *Store) AssetExists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets WHERE id = ?`, id).Scan(&n)
	return n > 0, err
}

func (s *Store) Create(ctx context.Context, r *Report) (uint64, error) {
	const ins = `
	INSERT INTO maintenance_reports
	(asset_id, type, description, severity, scheduled_date, status, reporter_name, reporter_type, reported_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, ins, r.AssetID, r.Type, r.Description, r.Severity, dateOnly(r.ScheduledDate),
		StatusPending, r.ReporterName, r.ReporterType, r.ReportedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID は該当なしで sql.ErrNoRows
func (s *Store) GetByID(ctx context.Context, id uint64) (*Report, error) {
	q := `SELECT` + reportColumns + `, a.asset_code, a.name, a.status` + joinedFrom + ` WHERE m.id = ?`
	return scanReport(s.db.QueryRowContext(ctx, q, id), true)
}

func (s *Store) List(ctx context.Context, f ListFilter, p httpx.Page) ([]Report, int64, error) {
	var sb strings.Builder
	args := []any{}
	sb.WriteString(" WHERE 1=1")
	if f.Status != nil {
		sb.WriteString(" AND m.status = ?")
		args = append(args, *f.Status)
	}
	if f.AssetID != nil {
		sb.WriteString(" AND m.asset_id = ?")
		args = append(args, *f.AssetID)
	}
	where := sb.String()

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM maintenance_reports m`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if p.Order == "asc" {
		order = "ASC"
	}
	q := `SELECT` + reportColumns + `, a.asset_code, a.name, a.status` + joinedFrom + where +
		fmt.Sprintf(` ORDER BY m.created_at %s, m.id %s LIMIT ? OFFSET ?`, order, order)
	rows, err := s.db.QueryContext(ctx, q, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []Report{}
	for rows.Next() {
		r, err := scanReport(rows, true)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *r)
	}
	return items, total, rows.Err()
}

// Update は報告と資産の行をロックして fn を呼び、status = From を条件に書き換える
func (s *Store) Update(ctx context.Context, id uint64, fn UpdateFunc) (*Report, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		q := `SELECT` + reportColumns + ` FROM maintenance_reports m WHERE m.id = ? FOR UPDATE`
		cur, err := scanReport(tx.QueryRowContext(ctx, q, id), false)
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

		const upd = `
	UPDATE maintenance_reports SET
		status = ?,
		assigned_to = COALESCE(?, assigned_to),
		completed_date = COALESCE(?, completed_date),
		work_performed = COALESCE(?, work_performed),
		cost = COALESCE(?, cost)
	WHERE id = ? AND status = ?`
		res, err := tx.ExecContext(ctx, upd, ch.To, ch.AssignedTo, dateOnly(ch.CompletedDate), ch.WorkPerformed,
			ch.Cost, id, ch.From)
		if err != nil {
			return err
		}
		if aff, _ := res.RowsAffected(); aff != 1 {
			return &TransitionError{From: cur.Status, To: ch.To}
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

// DATE 列には日付部分だけを渡す
func dateOnly(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.DateOnly)
}
