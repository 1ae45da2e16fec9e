package maintenance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"SIMAPRO-backend/internal/inventory/assets"
	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/auth"
	"SIMAPRO-backend/internal/platform/db"
	"SIMAPRO-backend/internal/platform/httpx"
	"SIMAPRO-backend/internal/platform/sanitize"
	"SIMAPRO-backend/internal/platform/validation"
)

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("maintenance report is %s, cannot move to %s", e.From, e.To)
}

// Reporter はログイン済みの報告者。ポータルからの報告では nil
type Reporter struct {
	UserID uint64
	Role   string
}

type Service struct {
	store ReportStore
	clock Clock
	loc   *time.Location
}

func NewService(store ReportStore, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, clock: realClock{}, loc: loc}
}

func (s *Service) WithClock(c Clock) *Service { s.clock = c; return s }

var reportMessages = validation.Messages{
	"asset_id.required":      "Please select the affected asset.",
	"type":                   "Please choose the kind of report.",
	"description.required":   "Please describe the problem.",
	"severity":               "Severity must be low, medium, high or critical.",
	"reporter_name.required": "Your name is required.",
}

func (s *Service) Report(ctx context.Context, in ReportRequest, by *Reporter) (*Report, error) {
	in.Description = sanitize.Text(in.Description)
	in.ReporterName = strings.TrimSpace(in.ReporterName)
	in.Severity = sanitize.Trimmed(in.Severity)

	fields := validation.Struct(in, reportMessages)
	if fields == nil {
		fields = map[string]string{}
	}
	if _, bad := fields["asset_id"]; !bad {
		ok, err := s.store.AssetExists(ctx, in.AssetID)
		if err != nil {
			return nil, err
		}
		if !ok {
			fields["asset_id"] = "The selected asset does not exist."
		}
	}
	var scheduled *time.Time
	if v := sanitize.Trimmed(in.ScheduledDate); v != nil {
		t, err := time.ParseInLocation(time.DateOnly, *v, s.loc)
		if err != nil {
			fields["scheduled_date"] = "The scheduled date is not a valid date."
		} else {
			scheduled = &t
		}
	}
	if err := apierr.ErrValidation(fields); err != nil {
		return nil, err
	}

	r := &Report{
		AssetID:       in.AssetID,
		Type:          in.Type,
		Description:   in.Description,
		Severity:      SeverityMedium,
		ScheduledDate: scheduled,
		Status:        StatusPending,
		ReporterName:  in.ReporterName,
		ReporterType:  ReporterUser,
	}
	if in.Severity != nil {
		r.Severity = Severity(*in.Severity)
	}
	if by != nil {
		r.ReportedBy = &by.UserID
		r.ReporterType = ReporterStaff
		if by.Role == auth.RoleAdmin {
			r.ReporterType = ReporterAdmin
		}
	}

	id, err := s.store.Create(ctx, r)
	if err != nil {
		if db.ErrorNumber(err) == db.ErNoReferenced {
			return nil, apierr.ErrValidation(map[string]string{"asset_id": "The selected asset does not exist."})
		}
		return nil, err
	}
	slog.Info("maintenance report filed", "report_id", id, "asset_id", r.AssetID, "severity", r.Severity)
	return s.Get(ctx, id)
}

// Start は pending → in_progress。資産は同じ Tx で under_repair になる
func (s *Service) Start(ctx context.Context, id, staffID uint64, assignee *uint64) (*Report, error) {
	if assignee == nil {
		assignee = &staffID
	}
	return s.update(ctx, id, func(cur *Report, asset assets.Status) (*Change, error) {
		if cur.Status != StatusPending {
			return nil, &TransitionError{From: cur.Status, To: StatusInProgress}
		}
		switch asset {
		case assets.StatusBorrowed:
			return nil, apierr.ErrInvalidTransition("asset is on loan; record the return first")
		case assets.StatusDeleted:
			return nil, apierr.ErrInvalidTransition("asset has been retired")
		}
		return &Change{From: StatusPending, To: StatusInProgress, AssignedTo: assignee, AssetStatus: assets.StatusUnderRepair}, nil
	})
}

// Complete は in_progress → completed。廃棄済みでなければ資産を available に戻す
func (s *Service) Complete(ctx context.Context, id uint64, in CompleteRequest) (*Report, error) {
	in.WorkPerformed = sanitize.Text(in.WorkPerformed)
	in.Cost = sanitize.Trimmed(in.Cost)
	if err := apierr.ErrValidation(validation.Struct(in, validation.Messages{
		"work_performed.required": "Please describe the work performed.",
		"cost":                    "Cost must be a number.",
	})); err != nil {
		return nil, err
	}

	now := s.clock.Now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return s.update(ctx, id, func(cur *Report, asset assets.Status) (*Change, error) {
		if cur.Status != StatusInProgress {
			return nil, &TransitionError{From: cur.Status, To: StatusCompleted}
		}
		ch := &Change{
			From:          StatusInProgress,
			To:            StatusCompleted,
			CompletedDate: &today,
			WorkPerformed: &in.WorkPerformed,
			Cost:          in.Cost,
		}
		// 修理状態のときだけ戻す。borrowed は台帳、deleted は廃棄のまま
		switch asset {
		case assets.StatusUnderRepair, assets.StatusDamaged:
			ch.AssetStatus = assets.StatusAvailable
		}
		return ch, nil
	})
}

func (s *Service) update(ctx context.Context, id uint64, fn UpdateFunc) (*Report, error) {
	r, err := s.store.Update(ctx, id, fn)
	if err != nil {
		var te *TransitionError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, apierr.ErrNotFound("maintenance report not found")
		case errors.As(err, &te):
			return nil, apierr.ErrInvalidTransition(te.Error())
		case db.ErrorNumber(err) == db.ErNoReferenced:
			return nil, apierr.ErrValidation(map[string]string{"assigned_to": "The selected user does not exist."})
		}
		return nil, err
	}
	slog.Info("maintenance report updated", "report_id", id, "status", r.Status)
	return r, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*Report, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("maintenance report not found")
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, f ListFilter, p httpx.Page) ([]Report, int64, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, apierr.ErrInvalid("unknown status")
	}
	return s.store.List(ctx, f, p)
}

// ListPending は新しい順に最大 limit 件
func (s *Service) ListPending(ctx context.Context, limit int) ([]Report, error) {
	st := StatusPending
	items, _, err := s.store.List(ctx, ListFilter{Status: &st}, httpx.Page{Limit: limit, Order: "desc"})
	return items, err
}
