package assets

import "time"

type Status string

const (
	StatusAvailable   Status = "available"
	StatusBorrowed    Status = "borrowed"
	StatusUnderRepair Status = "under_repair"
	StatusDamaged     Status = "damaged"
	StatusDeleted     Status = "deleted"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusUnderRepair, StatusDamaged, StatusDeleted:
		return true
	}
	return false
}

// Ref は categories / locations / suppliers の参照
type Ref struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type Asset struct {
	ID             uint64     `json:"id"`
	AssetCode      string     `json:"asset_code"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	Photos         []string   `json:"photos,omitempty"`
	CategoryID     uint64     `json:"category_id"`
	Brand          *string    `json:"brand,omitempty"`
	SerialNumber   *string    `json:"serial_number,omitempty"`
	Specifications *string    `json:"specifications,omitempty"`
	LocationID     uint64     `json:"location_id"`
	SupplierID     *uint64    `json:"supplier_id,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	PurchasePrice  *string    `json:"purchase_price,omitempty"`
	Status         Status     `json:"status"`
	QRCodePath     *string    `json:"qr_code_path,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Category *Ref `json:"category,omitempty"`
	Location *Ref `json:"location,omitempty"`
	Supplier *Ref `json:"supplier,omitempty"`
}

// Summary は申請・報告に埋め込む資産情報
type Summary struct {
	ID        uint64 `json:"id"`
	AssetCode string `json:"asset_code"`
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Category  *Ref   `json:"category,omitempty"`
}
