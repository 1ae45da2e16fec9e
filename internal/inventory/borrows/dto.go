package borrows

import "time"

// SubmitRequest はポータルの申請フォーム。JSON とフォームの両方で受ける
type SubmitRequest struct {
	AssetID            uint64  `json:"asset_id" form:"asset_id" validate:"required"`
	BorrowerName       string  `json:"borrower_name" form:"borrower_name" validate:"required,max=255"`
	BorrowerEmployeeID string  `json:"borrower_employee_id" form:"borrower_employee_id" validate:"required,max=255"`
	BorrowerPhone      string  `json:"borrower_phone" form:"borrower_phone" validate:"required,max=20"`
	BorrowerEmail      *string `json:"borrower_email,omitempty" form:"borrower_email" validate:"omitempty,email,max=255"`
	BorrowerDepartment *string `json:"borrower_department,omitempty" form:"borrower_department" validate:"omitempty,max=255"`
	Purpose            string  `json:"purpose" form:"purpose" validate:"required"`
	RequestedStartDate string  `json:"requested_start_date" form:"requested_start_date" validate:"required"`
	RequestedEndDate   string  `json:"requested_end_date" form:"requested_end_date" validate:"required"`
	Notes              *string `json:"notes,omitempty" form:"notes"`
}

type SubmitResult struct {
	ID            uint64 `json:"id"`
	RequestCode   string `json:"request_code"`
	TrackingToken string `json:"tracking_token"`
	Status        Status `json:"status"`
	Message       string `json:"message"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type ListFilter struct {
	Status     *Status
	EmployeeID *string
	AssetID    *uint64
	ActiveOnly bool
}

// TrackView は追跡トークンで見せる申請。借用者の連絡先は出さない
type TrackView struct {
	RequestCode        string     `json:"request_code"`
	Status             Status     `json:"status"`
	Stage              Stage      `json:"stage"`
	AssetCode          string     `json:"asset_code"`
	AssetName          string     `json:"asset_name"`
	RequestedStartDate time.Time  `json:"requested_start_date"`
	RequestedEndDate   time.Time  `json:"requested_end_date"`
	ProcessedAt        *time.Time `json:"processed_at,omitempty"`
	RejectionReason    *string    `json:"rejection_reason,omitempty"`
	ActualStartDate    *time.Time `json:"actual_start_date,omitempty"`
	ActualEndDate      *time.Time `json:"actual_end_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

func trackViewOf(r *BorrowRequest) *TrackView {
	v := &TrackView{
		RequestCode:        r.RequestCode,
		Status:             r.Status,
		Stage:              r.Stage(),
		RequestedStartDate: r.RequestedStartDate,
		RequestedEndDate:   r.RequestedEndDate,
		ProcessedAt:        r.ProcessedAt,
		RejectionReason:    r.RejectionReason,
		ActualStartDate:    r.ActualStartDate,
		ActualEndDate:      r.ActualEndDate,
		CreatedAt:          r.CreatedAt,
	}
	if r.Asset != nil {
		v.AssetCode = r.Asset.AssetCode
		v.AssetName = r.Asset.Name
	}
	return v
}
