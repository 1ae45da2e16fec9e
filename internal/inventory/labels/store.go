package labels

import (
	"context"
	"database/sql"
	"strings"

	"SIMAPRO-backend/internal/inventory/assets"
)

type LabelStore interface {
	Rows(ctx context.Context, f Filter) ([]Row, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

// Rows は廃棄済みを除いた資産をコード順に返す
func (s *Store) Rows(ctx context.Context, f Filter) ([]Row, error) {
	var sb strings.Builder
	args := []any{assets.StatusDeleted}
	sb.WriteString(`
	SELECT a.asset_code, a.name, c.name, l.name, a.status
	FROM assets a
	JOIN categories c ON c.id = a.category_id
	JOIN locations l ON l.id = a.location_id
	WHERE a.status <> ?`)
	if f.CategoryID != nil {
		sb.WriteString(" AND a.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.LocationID != nil {
		sb.WriteString(" AND a.location_id = ?")
		args = append(args, *f.LocationID)
	}
	sb.WriteString(" ORDER BY a.asset_code ASC")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Row{}
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.AssetCode, &r.Name, &r.Category, &r.Location, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
