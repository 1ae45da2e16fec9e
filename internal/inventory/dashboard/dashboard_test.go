package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SIMAPRO-backend/internal/inventory/borrows"
	"SIMAPRO-backend/internal/inventory/maintenance"
	"SIMAPRO-backend/internal/platform/access"
	"SIMAPRO-backend/internal/platform/auth"
)

type fakeStats struct {
	st  Stats
	err error
}

func (f fakeStats) Stats(context.Context) (Stats, error) { return f.st, f.err }

type fakeRecent struct {
	items []borrows.BorrowRequest
	asked int
}

func (f *fakeRecent) Recent(_ context.Context, limit int) ([]borrows.BorrowRequest, error) {
	f.asked = limit
	if len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

type fakePending struct{ asked int }

func (f *fakePending) ListPending(_ context.Context, limit int) ([]maintenance.Report, error) {
	f.asked = limit
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *fakeRecent, *fakePending) {
	t.Helper()
	ck, err := access.NewEnforcer()
	require.NoError(t, err)
	rec := &fakeRecent{}
	for i := 0; i < 8; i++ {
		rec.items = append(rec.items, borrows.BorrowRequest{ID: uint64(i + 1)})
	}
	pm := &fakePending{}
	st := fakeStats{st: Stats{TotalAssets: 10, AvailableAssets: 6, BorrowedAssets: 2, UnderRepairAssets: 1, PendingRequests: 3, ActiveBorrowings: 2}}
	return NewService(st, rec, pm, ck), rec, pm
}

func TestBuildByRole(t *testing.T) {
	svc, rec, pm := newTestService(t)

	v, err := svc.Build(context.Background(), auth.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "user", v.UserRole)
	assert.EqualValues(t, 2, v.Stats.ActiveBorrowings)
	assert.Nil(t, v.Recent)
	assert.Zero(t, rec.asked, "user role never loads recent requests")

	for _, role := range []string{auth.RolePetugas, auth.RoleAdmin} {
		v, err = svc.Build(context.Background(), role)
		require.NoError(t, err)
		require.NotNil(t, v.Recent, role)
		assert.Len(t, v.RecentRequests, 5, role)
		assert.NotNil(t, v.PendingMaintenance, role)
		assert.Equal(t, 5, rec.asked)
		assert.Equal(t, 5, pm.asked)
	}
}

func TestBuildPropagatesStoreErrors(t *testing.T) {
	ck, err := access.NewEnforcer()
	require.NoError(t, err)
	svc := NewService(fakeStats{err: errors.New("db down")}, &fakeRecent{}, &fakePending{}, ck)
	_, err = svc.Build(context.Background(), auth.RoleAdmin)
	assert.Error(t, err)
}

// 集計と台帳が同じ「貸出中」の定義を使っていること
func TestActiveCountSharesLedgerPredicate(t *testing.T) {
	assert.Contains(t, requestCountsQuery, borrows.ActiveClause("br"))

	now := time.Now()
	reqs := []borrows.BorrowRequest{
		{Status: borrows.StatusPending},
		{Status: borrows.StatusApproved},
		{Status: borrows.StatusApproved, ActualStartDate: &now},
		{Status: borrows.StatusCompleted, ActualStartDate: &now, ActualEndDate: &now},
		{Status: borrows.StatusRejected},
	}
	active := 0
	for _, r := range reqs {
		if r.IsActive() {
			active++
			assert.Equal(t, borrows.StageOnLoan, r.Stage())
		}
	}
	assert.Equal(t, 1, active)
}

func TestHandlerIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService(t)
	r := gin.New()
	g := r.Group("/dashboard", func(c *gin.Context) {
		c.Set(auth.CtxRoleKey, c.GetHeader("X-Test-Role"))
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(g)

	get := func(role string) map[string]json.RawMessage {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("X-Test-Role", role)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body
	}

	body := get("user")
	assert.Contains(t, body, "stats")
	assert.NotContains(t, body, "recent_requests")
	assert.True(t, strings.Contains(string(body["stats"]), `"pending_requests":3`))

	body = get("petugas")
	assert.Contains(t, body, "recent_requests")
	assert.Equal(t, "[]", string(body["pending_maintenance"]))
	assert.Equal(t, `"petugas"`, string(body["user_role"]))
}
