package borrows

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextAllowedEdges(t *testing.T) {
	cases := []struct {
		from Stage
		ev   Event
		want Stage
	}{
		{StagePending, EventApprove, StageApproved},
		{StagePending, EventReject, StageRejected},
		{StageApproved, EventHandover, StageOnLoan},
		{StageOnLoan, EventReturn, StageCompleted},
	}
	for _, tc := range cases {
		got, err := Next(tc.from, tc.ev)
		require.NoError(t, err, "%s/%s", tc.from, tc.ev)
		assert.Equal(t, tc.want, got)
	}
}

func TestNextRejectsEverythingElse(t *testing.T) {
	stages := []Stage{StagePending, StageApproved, StageOnLoan, StageRejected, StageCompleted}
	events := []Event{EventApprove, EventReject, EventHandover, EventReturn}
	allowed := 0
	for _, s := range stages {
		for _, e := range events {
			got, err := Next(s, e)
			if err == nil {
				allowed++
				continue
			}
			var te *TransitionError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, s, got, "stage must not change on a rejected event")
		}
	}
	assert.Equal(t, 4, allowed)

	for _, terminal := range []Stage{StageRejected, StageCompleted} {
		for _, e := range events {
			_, err := Next(terminal, e)
			assert.Error(t, err)
		}
	}
}

func TestStageStatus(t *testing.T) {
	assert.Equal(t, StatusApproved, StageOnLoan.Status())
	assert.Equal(t, StatusApproved, StageApproved.Status())
	assert.Equal(t, StatusCompleted, StageCompleted.Status())
	assert.Equal(t, StatusPending, StagePending.Status())
}

func TestStageOfMatchesIsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	later := now.Add(48 * time.Hour)

	cases := []struct {
		r    BorrowRequest
		want Stage
	}{
		{BorrowRequest{Status: StatusPending}, StagePending},
		{BorrowRequest{Status: StatusRejected}, StageRejected},
		{BorrowRequest{Status: StatusApproved}, StageApproved},
		{BorrowRequest{Status: StatusApproved, ActualStartDate: &now}, StageOnLoan},
		{BorrowRequest{Status: StatusCompleted, ActualStartDate: &now, ActualEndDate: &later}, StageCompleted},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.r.Stage())
		assert.Equal(t, tc.want == StageOnLoan, tc.r.IsActive())
	}
}

func TestPredicates(t *testing.T) {
	assert.Equal(t,
		"br.status = 'approved' AND br.actual_start_date IS NOT NULL AND br.actual_end_date IS NULL",
		ActiveClause("br"))
	assert.Equal(t, ActiveClause(""), StageOnLoan.Predicate(""))
	assert.Equal(t, "status = 'approved' AND actual_start_date IS NULL", StageApproved.Predicate(""))
	assert.Equal(t, "br.status = 'pending'", StagePending.Predicate("br"))
}
