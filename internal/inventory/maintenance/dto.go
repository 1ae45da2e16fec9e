package maintenance

type ReportRequest struct {
	AssetID       uint64  `json:"asset_id" validate:"required"`
	Type          Type    `json:"type" validate:"required,oneof=damage_report routine_maintenance repair"`
	Description   string  `json:"description" validate:"required"`
	Severity      *string `json:"severity,omitempty" validate:"omitempty,oneof=low medium high critical"`
	ReporterName  string  `json:"reporter_name" validate:"required,max=255"`
	ScheduledDate *string `json:"scheduled_date,omitempty"`
}

type StartRequest struct {
	// 省略時は操作したスタッフを担当にする
	AssignedTo *uint64 `json:"assigned_to,omitempty"`
}

type CompleteRequest struct {
	WorkPerformed string  `json:"work_performed" validate:"required"`
	Cost          *string `json:"cost,omitempty" validate:"omitempty,numeric"`
}

type ListFilter struct {
	Status  *Status
	AssetID *uint64
}
