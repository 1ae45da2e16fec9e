package dashboard

import (
	"context"

	"SIMAPRO-backend/internal/inventory/borrows"
	"SIMAPRO-backend/internal/inventory/maintenance"
	"SIMAPRO-backend/internal/platform/access"
)

const recentLimit = 5

type RecentRequests interface {
	Recent(ctx context.Context, limit int) ([]borrows.BorrowRequest, error)
}

type PendingMaintenance interface {
	ListPending(ctx context.Context, limit int) ([]maintenance.Report, error)
}

type Recent struct {
	RecentRequests     []borrows.BorrowRequest `json:"recent_requests"`
	PendingMaintenance []maintenance.Report    `json:"pending_maintenance"`
}

// View の *Recent は dashboard/recent 権限があるときだけ埋まる
type View struct {
	Stats    Stats  `json:"stats"`
	UserRole string `json:"user_role"`
	*Recent
}

type Service struct {
	stats       StatsStore
	requests    RecentRequests
	maintenance PendingMaintenance
	access      access.Checker
}

func NewService(stats StatsStore, requests RecentRequests, m PendingMaintenance, ck access.Checker) *Service {
	return &Service{stats: stats, requests: requests, maintenance: m, access: ck}
}

func (s *Service) Build(ctx context.Context, role string) (*View, error) {
	st, err := s.stats.Stats(ctx)
	if err != nil {
		return nil, err
	}
	v := &View{Stats: st, UserRole: role}
	if !s.access.Can(role, access.ObjDashboard, access.ActRecent) {
		return v, nil
	}

	rec := &Recent{}
	if rec.RecentRequests, err = s.requests.Recent(ctx, recentLimit); err != nil {
		return nil, err
	}
	if rec.PendingMaintenance, err = s.maintenance.ListPending(ctx, recentLimit); err != nil {
		return nil, err
	}
	// 空でも null ではなく [] を返す
	if rec.RecentRequests == nil {
		rec.RecentRequests = []borrows.BorrowRequest{}
	}
	if rec.PendingMaintenance == nil {
		rec.PendingMaintenance = []maintenance.Report{}
	}
	v.Recent = rec
	return v, nil
}
