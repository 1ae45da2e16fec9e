package borrows

import (
	"time"

	"SIMAPRO-backend/internal/inventory/assets"
	"SIMAPRO-backend/internal/platform/auth"
)

type BorrowRequest struct {
	ID                 uint64     `json:"id"`
	RequestCode        string     `json:"request_code"`
	TrackingToken      string     `json:"-"`
	AssetID            uint64     `json:"asset_id"`
	BorrowerName       string     `json:"borrower_name"`
	BorrowerEmployeeID string     `json:"borrower_employee_id"`
	BorrowerPhone      string     `json:"borrower_phone"`
	BorrowerEmail      *string    `json:"borrower_email,omitempty"`
	BorrowerDepartment *string    `json:"borrower_department,omitempty"`
	Purpose            string     `json:"purpose"`
	RequestedStartDate time.Time  `json:"requested_start_date"`
	RequestedEndDate   time.Time  `json:"requested_end_date"`
	Status             Status     `json:"status"`
	Notes              *string    `json:"notes,omitempty"`
	ProcessedBy        *uint64    `json:"processed_by,omitempty"`
	ProcessedAt        *time.Time `json:"processed_at,omitempty"`
	RejectionReason    *string    `json:"rejection_reason,omitempty"`
	ActualStartDate    *time.Time `json:"actual_start_date,omitempty"`
	ActualEndDate      *time.Time `json:"actual_end_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	Asset     *assets.Summary `json:"asset,omitempty"`
	Processor *auth.Summary   `json:"processed_by_user,omitempty"`
}

// IsActive は ActiveClause と同じ条件
func (r *BorrowRequest) IsActive() bool {
	return r.Status == StatusApproved && r.ActualStartDate != nil && r.ActualEndDate == nil
}

func (r *BorrowRequest) Stage() Stage {
	if r.Status != StatusApproved {
		return Stage(r.Status)
	}
	switch {
	case r.ActualStartDate == nil:
		return StageApproved
	case r.ActualEndDate == nil:
		return StageOnLoan
	default:
		return StageCompleted
	}
}

// Change は遷移で書き換える列。nil の項目は変更しない
type Change struct {
	Event           Event
	From            Stage
	To              Stage
	ProcessedBy     *uint64
	ProcessedAt     *time.Time
	RejectionReason *string
	ActualStartDate *time.Time
	ActualEndDate   *time.Time
	// AssetStatus が空でなければ同じ Tx で資産の状態も変える
	AssetStatus assets.Status
}
