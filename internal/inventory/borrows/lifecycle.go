package borrows

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Stage は status と貸出・返却の記録から導く申請の段階。
// approved は「承認済み・未貸出」、on_loan は「貸出中」（status は approved のまま）
type Stage string

const (
	StagePending   Stage = "pending"
	StageApproved  Stage = "approved"
	StageOnLoan    Stage = "on_loan"
	StageRejected  Stage = "rejected"
	StageCompleted Stage = "completed"
)

type Event string

const (
	EventApprove  Event = "approve"
	EventReject   Event = "reject"
	EventHandover Event = "handover"
	EventReturn   Event = "return"
)

type edge struct {
	from  Stage
	event Event
}

// 許可される遷移はこれだけ。rejected / completed は終端
var transitions = map[edge]Stage{
	{StagePending, EventApprove}:   StageApproved,
	{StagePending, EventReject}:    StageRejected,
	{StageApproved, EventHandover}: StageOnLoan,
	{StageOnLoan, EventReturn}:     StageCompleted,
}

// TransitionError は現在の段階で受け付けないイベント
type TransitionError struct {
	From  Stage
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a request that is %s", e.Event, e.From)
}

func Next(from Stage, ev Event) (Stage, error) {
	to, ok := transitions[edge{from, ev}]
	if !ok {
		return from, &TransitionError{From: from, Event: ev}
	}
	return to, nil
}

// Status は段階を保存される status 列の値に戻す
func (s Stage) Status() Status {
	switch s {
	case StageApproved, StageOnLoan:
		return StatusApproved
	default:
		return Status(s)
	}
}

// Predicate は alias の行がこの段階にあるときだけ真になる SQL 条件。
// 条件付き UPDATE の WHERE に使う
func (s Stage) Predicate(alias string) string {
	col := func(c string) string {
		if alias == "" {
			return c
		}
		return alias + "." + c
	}
	switch s {
	case StageApproved:
		return fmt.Sprintf("%s = 'approved' AND %s IS NULL", col("status"), col("actual_start_date"))
	case StageOnLoan:
		return ActiveClause(alias)
	default:
		return fmt.Sprintf("%s = '%s'", col("status"), s)
	}
}

// ActiveClause は「貸出中」の唯一の定義。台帳とダッシュボードの双方が使う
func ActiveClause(alias string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	return fmt.Sprintf("%[1]sstatus = 'approved' AND %[1]sactual_start_date IS NOT NULL AND %[1]sactual_end_date IS NULL", p)
}
