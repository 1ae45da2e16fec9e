package maintenance

import (
	"time"

	"SIMAPRO-backend/internal/inventory/assets"
)

type Type string

const (
	TypeDamageReport       Type = "damage_report"
	TypeRoutineMaintenance Type = "routine_maintenance"
	TypeRepair             Type = "repair"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDamageReport, TypeRoutineMaintenance, TypeRepair:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ReporterType: ポータルからは user、ログイン済みなら role に応じて staff/admin
type ReporterType string

const (
	ReporterUser  ReporterType = "user"
	ReporterStaff ReporterType = "staff"
	ReporterAdmin ReporterType = "admin"
)

type Report struct {
	ID            uint64       `json:"id"`
	AssetID       uint64       `json:"asset_id"`
	Type          Type         `json:"type"`
	Description   string       `json:"description"`
	Severity      Severity     `json:"severity"`
	Cost          *string      `json:"cost,omitempty"`
	ScheduledDate *time.Time   `json:"scheduled_date,omitempty"`
	CompletedDate *time.Time   `json:"completed_date,omitempty"`
	Status        Status       `json:"status"`
	ReporterName  string       `json:"reporter_name"`
	ReporterType  ReporterType `json:"reporter_type"`
	ReportedBy    *uint64      `json:"reported_by,omitempty"`
	AssignedTo    *uint64      `json:"assigned_to,omitempty"`
	WorkPerformed *string      `json:"work_performed,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	Asset *assets.Summary `json:"asset,omitempty"`
}

// Change は Start/Complete で書き換える列。nil は変更しない
type Change struct {
	From          Status
	To            Status
	AssignedTo    *uint64
	CompletedDate *time.Time
	WorkPerformed *string
	Cost          *string
	AssetStatus   assets.Status
}
