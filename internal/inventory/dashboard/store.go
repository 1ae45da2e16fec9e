package dashboard

import (
	"context"
	"database/sql"

	"SIMAPRO-backend/internal/inventory/assets"
	"SIMAPRO-backend/internal/inventory/borrows"
	"SIMAPRO-backend/internal/platform/db"
)

type Stats struct {
	TotalAssets       int64 `json:"total_assets"`
	AvailableAssets   int64 `json:"available_assets"`
	BorrowedAssets    int64 `json:"borrowed_assets"`
	UnderRepairAssets int64 `json:"under_repair_assets"`
	PendingRequests   int64 `json:"pending_requests"`
	ActiveBorrowings  int64 `json:"active_borrowings"`
}

type StatsStore interface {
	Stats(ctx context.Context) (Stats, error)
}

type Store struct{ db *sql.DB }

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const assetCountsQuery = `
	SELECT COUNT(*),
	       COALESCE(SUM(status = ?), 0),
	       COALESCE(SUM(status = ?), 0),
	       COALESCE(SUM(status = ?), 0)
	FROM assets`

// 貸出中の判定は台帳と同じ ActiveClause を使う
var requestCountsQuery = `
	SELECT COALESCE(SUM(br.status = ?), 0),
	       COALESCE(SUM(` + borrows.ActiveClause("br") + `), 0)
	FROM borrow_requests br`

// Stats は全件数を同じスナップショットから取る
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, assetCountsQuery,
			assets.StatusAvailable, assets.StatusBorrowed, assets.StatusUnderRepair,
		).Scan(&st.TotalAssets, &st.AvailableAssets, &st.BorrowedAssets, &st.UnderRepairAssets); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, requestCountsQuery, borrows.StatusPending).
			Scan(&st.PendingRequests, &st.ActiveBorrowings)
	})
	return st, err
}
