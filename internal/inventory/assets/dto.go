package assets

import "time"

const PerPage = 12

// BrowseQuery はポータルのカタログ検索条件。Search は生の入力
type BrowseQuery struct {
	Search     string
	CategoryID *uint64
	LocationID *uint64
	Page       int
}

type Meta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	Total       int64 `json:"total"`
	PerPage     int   `json:"per_page"`
}

func NewMeta(page int, total int64, perPage int) Meta {
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}
	return Meta{CurrentPage: page, LastPage: last, Total: total, PerPage: perPage}
}

type BrowseFilters struct {
	Search     string  `json:"search"`
	CategoryID *uint64 `json:"category"`
	LocationID *uint64 `json:"location"`
}

type BrowseResult struct {
	Data       []Asset       `json:"data"`
	Meta       Meta          `json:"meta"`
	Categories []Ref         `json:"categories"`
	Locations  []Ref         `json:"locations"`
	Filters    BrowseFilters `json:"filters"`
}

type CreateAssetRequest struct {
	Name           string     `json:"name" validate:"required,max=255"`
	Description    *string    `json:"description,omitempty"`
	Photos         []string   `json:"photos,omitempty" validate:"omitempty,dive,max=255"`
	CategoryID     uint64     `json:"category_id" validate:"required"`
	Brand          *string    `json:"brand,omitempty" validate:"omitempty,max=255"`
	SerialNumber   *string    `json:"serial_number,omitempty" validate:"omitempty,max=255"`
	Specifications *string    `json:"specifications,omitempty"`
	LocationID     uint64     `json:"location_id" validate:"required"`
	SupplierID     *uint64    `json:"supplier_id,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	PurchasePrice  *string    `json:"purchase_price,omitempty" validate:"omitempty,numeric"`
	Status         Status     `json:"status,omitempty"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}
