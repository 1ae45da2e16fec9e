package borrows

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"SIMAPRO-backend/internal/inventory/assets"
	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/db"
	"SIMAPRO-backend/internal/platform/httpx"
	"SIMAPRO-backend/internal/platform/notify"
	"SIMAPRO-backend/internal/platform/sanitize"
	"SIMAPRO-backend/internal/platform/validation"
)

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// TokenGen は追跡トークンを発行する。前後のトークンから推測できないこと
type TokenGen interface{ New(t time.Time) string }

type ulidTokens struct{}

func (ulidTokens) New(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

type Notifier interface {
	SendDecision(ctx context.Context, to string, d notify.Decision) error
}

// notifyTimeout は通知 1 通あたりの上限
const notifyTimeout = 30 * time.Second

type Service struct {
	store    RequestStore
	notifier Notifier
	clock    Clock
	tokens   TokenGen
	loc      *time.Location
	mails    sync.WaitGroup
}

func NewService(store RequestStore, notifier Notifier, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, notifier: notifier, clock: realClock{}, tokens: ulidTokens{}, loc: loc}
}

// WithClock / WithTokens はテスト用
func (s *Service) WithClock(c Clock) *Service     { s.clock = c; return s }
func (s *Service) WithTokens(t TokenGen) *Service { s.tokens = t; return s }

var submitMessages = validation.Messages{
	"asset_id.required":             "Please select an asset to borrow.",
	"borrower_name.required":        "Your name is required.",
	"borrower_employee_id.required": "Your employee ID is required.",
	"borrower_phone.required":       "Your phone number is required.",
	"borrower_email.email":          "Please provide a valid email address.",
	"purpose.required":              "Please describe the purpose of borrowing.",
	"requested_start_date.required": "Please select a start date.",
	"requested_end_date.required":   "Please select an end date.",
}

const (
	msgAssetMissing = "The selected asset is not available."
	msgStartPast    = "Start date cannot be in the past."
	msgEndOrder     = "End date must be after the start date."
)

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"}

// parseDate はタイムゾーンの無い入力をポータルの地域時刻として読む
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func normalizeSubmit(in *SubmitRequest) {
	in.BorrowerName = strings.TrimSpace(in.BorrowerName)
	in.BorrowerEmployeeID = strings.TrimSpace(in.BorrowerEmployeeID)
	in.BorrowerPhone = strings.TrimSpace(in.BorrowerPhone)
	in.BorrowerEmail = sanitize.Trimmed(in.BorrowerEmail)
	in.BorrowerDepartment = sanitize.Trimmed(in.BorrowerDepartment)
	in.Purpose = sanitize.Text(in.Purpose)
	in.Notes = sanitize.OptionalText(in.Notes)
}

// Submit は申請を pending で作成する。資産の状態は変えない
func (s *Service) Submit(ctx context.Context, in SubmitRequest) (*SubmitResult, error) {
	normalizeSubmit(&in)
	now := s.clock.Now().In(s.loc)

	fields := validation.Struct(in, submitMessages)
	if fields == nil {
		fields = map[string]string{}
	}

	if _, bad := fields["asset_id"]; !bad {
		ok, err := s.store.AssetExists(ctx, in.AssetID)
		if err != nil {
			return nil, err
		}
		if !ok {
			fields["asset_id"] = msgAssetMissing
		}
	}

	var start, end time.Time
	_, startBad := fields["requested_start_date"]
	_, endBad := fields["requested_end_date"]
	if !startBad {
		var ok bool
		if start, ok = parseDate(in.RequestedStartDate, s.loc); !ok {
			fields["requested_start_date"] = "The requested start date is not a valid date."
			startBad = true
		} else {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
			if start.Before(today) {
				fields["requested_start_date"] = msgStartPast
			}
		}
	}
	if !endBad {
		var ok bool
		if end, ok = parseDate(in.RequestedEndDate, s.loc); !ok {
			fields["requested_end_date"] = "The requested end date is not a valid date."
		} else if !startBad && !end.After(start) {
			fields["requested_end_date"] = msgEndOrder
		}
	}
	if err := apierr.ErrValidation(fields); err != nil {
		return nil, err
	}

	r := &BorrowRequest{
		TrackingToken:      s.tokens.New(now),
		AssetID:            in.AssetID,
		BorrowerName:       in.BorrowerName,
		BorrowerEmployeeID: in.BorrowerEmployeeID,
		BorrowerPhone:      in.BorrowerPhone,
		BorrowerEmail:      in.BorrowerEmail,
		BorrowerDepartment: in.BorrowerDepartment,
		Purpose:            in.Purpose,
		RequestedStartDate: start,
		RequestedEndDate:   end,
		Status:             StatusPending,
		Notes:              in.Notes,
	}
	id, code, err := s.store.Create(ctx, r)
	if err != nil {
		switch db.ErrorNumber(err) {
		case db.ErNoReferenced:
			// 存在確認の後に資産が消えた
			return nil, apierr.ErrValidation(map[string]string{"asset_id": msgAssetMissing})
		case db.ErDupEntry:
			return nil, apierr.ErrConflict("request code already exists")
		}
		return nil, err
	}

	slog.Info("borrow request submitted", "request_id", id, "request_code", code, "asset_id", in.AssetID)
	return &SubmitResult{
		ID:            id,
		RequestCode:   code,
		TrackingToken: r.TrackingToken,
		Status:        StatusPending,
		Message:       "Loan request submitted successfully! Request ID: " + code,
	}, nil
}

func (s *Service) Approve(ctx context.Context, id, staffID uint64) (*BorrowRequest, error) {
	now := s.clock.Now()
	r, err := s.transition(ctx, id, EventApprove, func(cur *BorrowRequest, _ assets.Status) (*Change, error) {
		return &Change{ProcessedBy: &staffID, ProcessedAt: &now}, nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(r)
	return r, nil
}

// Reject の理由は空白以外そのまま保存する
func (s *Service) Reject(ctx context.Context, id, staffID uint64, reason string) (*BorrowRequest, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apierr.ErrValidation(map[string]string{"reason": "Please provide a reason for rejecting this request."})
	}
	now := s.clock.Now()
	r, err := s.transition(ctx, id, EventReject, func(cur *BorrowRequest, _ assets.Status) (*Change, error) {
		return &Change{ProcessedBy: &staffID, ProcessedAt: &now, RejectionReason: &reason}, nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(r)
	return r, nil
}

// RecordHandover は貸出を記録し、同じ Tx で資産を borrowed にする
func (s *Service) RecordHandover(ctx context.Context, id uint64) (*BorrowRequest, error) {
	now := s.clock.Now()
	return s.transition(ctx, id, EventHandover, func(cur *BorrowRequest, asset assets.Status) (*Change, error) {
		if asset != assets.StatusAvailable {
			return nil, apierr.ErrInvalidTransition(fmt.Sprintf("asset is %s, not available", asset))
		}
		return &Change{ActualStartDate: &now, AssetStatus: assets.StatusBorrowed}, nil
	})
}

// RecordReturn は返却を記録して完了にし、資産を available に戻す
func (s *Service) RecordReturn(ctx context.Context, id uint64) (*BorrowRequest, error) {
	now := s.clock.Now()
	return s.transition(ctx, id, EventReturn, func(cur *BorrowRequest, asset assets.Status) (*Change, error) {
		ch := &Change{ActualEndDate: &now}
		// 貸出中に廃棄扱いになった資産は戻さない
		if asset != assets.StatusDeleted {
			ch.AssetStatus = assets.StatusAvailable
		}
		return ch, nil
	})
}

// transition は Next で遷移先を決めてから build で書き換え内容を作る
func (s *Service) transition(ctx context.Context, id uint64, ev Event, build TransitionFunc) (*BorrowRequest, error) {
	r, err := s.store.Transition(ctx, id, func(cur *BorrowRequest, asset assets.Status) (*Change, error) {
		from := cur.Stage()
		to, err := Next(from, ev)
		if err != nil {
			return nil, err
		}
		ch, err := build(cur, asset)
		if err != nil {
			return nil, err
		}
		ch.Event, ch.From, ch.To = ev, from, to
		return ch, nil
	})
	if err != nil {
		var te *TransitionError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, apierr.ErrNotFound("borrow request not found")
		case errors.As(err, &te):
			return nil, apierr.ErrInvalidTransition(te.Error())
		}
		return nil, err
	}
	slog.Info("borrow request transitioned", "request_id", id, "event", ev, "stage", r.Stage())
	return r, nil
}

// Wait は送信中の通知が終わるまで待つ
func (s *Service) Wait() { s.mails.Wait() }

// notify はバックグラウンドで送る。失敗は操作を失敗させない
func (s *Service) notify(r *BorrowRequest) {
	if s.notifier == nil || r.BorrowerEmail == nil {
		return
	}
	d := notify.Decision{
		RequestCode:   r.RequestCode,
		TrackingToken: r.TrackingToken,
		BorrowerName:  r.BorrowerName,
		Approved:      r.Status == StatusApproved,
		StartDate:     r.RequestedStartDate.In(s.loc),
		EndDate:       r.RequestedEndDate.In(s.loc),
	}
	if r.Asset != nil {
		d.AssetName = r.Asset.Name
	}
	if r.RejectionReason != nil {
		d.Reason = *r.RejectionReason
	}
	to := *r.BorrowerEmail
	s.mails.Add(1)
	go func() {
		defer s.mails.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendDecision(ctx, to, d); err != nil {
			slog.Warn("decision email failed", "request_code", d.RequestCode, "error", err)
		}
	}()
}

// ListByEmployeeID は社員IDの完全一致で新しい順に返す
func (s *Service) ListByEmployeeID(ctx context.Context, employeeID string) ([]BorrowRequest, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, apierr.ErrInvalid("employee_id is required")
	}
	return s.store.ListByEmployee(ctx, employeeID)
}

func (s *Service) Track(ctx context.Context, token string) (*TrackView, error) {
	if _, err := ulid.ParseStrict(token); err != nil {
		return nil, apierr.ErrNotFound("borrow request not found")
	}
	r, err := s.store.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("borrow request not found")
		}
		return nil, err
	}
	return trackViewOf(r), nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*BorrowRequest, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("borrow request not found")
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, f ListFilter, p httpx.Page) ([]BorrowRequest, int64, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, apierr.ErrInvalid("unknown status")
	}
	return s.store.List(ctx, f, p)
}

// Recent はダッシュボード用の直近の申請
func (s *Service) Recent(ctx context.Context, limit int) ([]BorrowRequest, error) {
	items, _, err := s.store.List(ctx, ListFilter{}, httpx.Page{Limit: limit, Order: "desc"})
	return items, err
}
