package assets

import (
	"context"
	"database/sql"
	"errors"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/db"
	"SIMAPRO-backend/internal/platform/httpx"
	"SIMAPRO-backend/internal/platform/sanitize"
	"SIMAPRO-backend/internal/platform/validation"
)

type Service struct {
	store AssetStore
}

func NewService(store AssetStore) *Service { return &Service{store: store} }

// Browse は利用可能な資産のカタログ。絞り込み用のカテゴリ・場所一覧も返す
func (s *Service) Browse(ctx context.Context, q BrowseQuery) (*BrowseResult, error) {
	page, offset := httpx.PageOffset(q.Page, PerPage)
	f := BrowseFilters{
		Search:     sanitize.Search(q.Search),
		CategoryID: q.CategoryID,
		LocationID: q.LocationID,
	}

	items, total, err := s.store.Browse(ctx, f, PerPage, offset)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := s.store.Locations(ctx)
	if err != nil {
		return nil, err
	}

	// フィルタ表示は利用者の入力そのまま
	f.Search = q.Search
	return &BrowseResult{
		Data:       items,
		Meta:       NewMeta(page, total, PerPage),
		Categories: categories,
		Locations:  locations,
		Filters:    f,
	}, nil
}

// Show returns an asset in any status.
func (s *Service) Show(ctx context.Context, id uint64) (*Asset, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("asset not found")
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, in CreateAssetRequest) (*Asset, error) {
	in.Description = sanitize.OptionalText(in.Description)
	in.Specifications = sanitize.OptionalText(in.Specifications)
	in.Brand = sanitize.Trimmed(in.Brand)
	in.SerialNumber = sanitize.Trimmed(in.SerialNumber)

	fields := validation.Struct(in, nil)
	if in.Status != "" && (!in.Status.Valid() || in.Status == StatusBorrowed) {
		if fields == nil {
			fields = map[string]string{}
		}
		fields["status"] = "The selected status is invalid."
	}
	if err := apierr.ErrValidation(fields); err != nil {
		return nil, err
	}

	id, err := s.store.Create(ctx, in)
	if err != nil {
		switch db.ErrorNumber(err) {
		case db.ErDupEntry:
			return nil, apierr.ErrConflict("asset_code already exists")
		case db.ErNoReferenced:
			return nil, apierr.ErrInvalid("invalid category_id, location_id or supplier_id")
		}
		return nil, err
	}
	return s.Show(ctx, id)
}

// UpdateStatus は手動の状態変更。borrowed への変更と borrowed からの変更は
// 貸出・返却の記録でのみ行う
func (s *Service) UpdateStatus(ctx context.Context, id uint64, to Status) (*Asset, error) {
	if !to.Valid() {
		return nil, apierr.ErrValidation(map[string]string{"status": "The selected status is invalid."})
	}
	if to == StatusBorrowed {
		return nil, apierr.ErrInvalidTransition("assets become borrowed only through a recorded handover")
	}

	err := s.store.ChangeStatus(ctx, id, to, func(cur Status) error {
		if cur == StatusBorrowed {
			return apierr.ErrInvalidTransition("asset is on loan; record the return first")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierr.ErrNotFound("asset not found")
		}
		return nil, err
	}
	return s.Show(ctx, id)
}
