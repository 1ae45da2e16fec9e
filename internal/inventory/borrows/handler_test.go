package borrows

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SIMAPRO-backend/internal/inventory/assets"
	"SIMAPRO-backend/internal/platform/auth"
)

func passthrough(c *gin.Context) { c.Next() }

func newTestRouter(t *testing.T, allowLookup bool) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := newMemStore()
	m.addAsset(7, "Projector", assets.StatusAvailable)
	svc, _ := newTestService(m, nil)
	h := NewHandler(svc, allowLookup)

	r := gin.New()
	h.RegisterPortalRoutes(r.Group("/portal"), passthrough, passthrough)
	staff := r.Group("/staff", func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(auth.CtxUserIDKey, id)
		}
		c.Next()
	})
	h.RegisterStaffRoutes(staff)
	return r, m
}

const submitJSON = `{"asset_id":7,"borrower_name":"Siti Rahma","borrower_employee_id":"EMP-0042",
"borrower_phone":"0812","purpose":"Client presentation",
"requested_start_date":"2025-06-01","requested_end_date":"2025-06-05"}`

func TestHandlerSubmitJSON(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/portal/borrow", strings.NewReader(submitJSON))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "REQ000001", res.RequestCode)
	assert.Contains(t, res.Message, "REQ000001")
	assert.Equal(t, "/portal/track/"+res.TrackingToken, w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portal/track/"+res.TrackingToken, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stage":"pending"`)
	assert.NotContains(t, w.Body.String(), "0812")
}

func TestHandlerSubmitFormRedirects(t *testing.T) {
	form := url.Values{
		"asset_id":             {"7"},
		"borrower_name":        {"Siti Rahma"},
		"borrower_employee_id": {"EMP-0042"},
		"borrower_phone":       {"0812"},
		"purpose":              {"Client presentation"},
		"requested_start_date": {"2025-06-01"},
		"requested_end_date":   {"2025-06-05"},
	}
	post := func(r *gin.Engine) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/portal/borrow", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.ServeHTTP(w, req)
		return w
	}

	r, _ := newTestRouter(t, true)
	w := post(r)
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/portal/my-borrowings", loc.Path)
	assert.Equal(t, "EMP-0042", loc.Query().Get("employee_id"))
	assert.Equal(t, "REQ000001", loc.Query().Get("submitted"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, loc.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success  string          `json:"success"`
		Requests []BorrowRequest `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Loan request submitted successfully! Request ID: REQ000001", body.Success)
	require.Len(t, body.Requests, 1)

	// 社員ID照会を止めている場合は追跡ページへ
	r, _ = newTestRouter(t, false)
	w = post(r)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/portal/track/"))
}

func TestHandlerSubmitValidation(t *testing.T) {
	r, m := newTestRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/portal/borrow",
		strings.NewReader(`{"asset_id":99,"requested_start_date":"2025-06-05","requested_end_date":"2025-06-01"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	assert.Equal(t, "The selected asset is not available.", body.Error.Fields["asset_id"])
	assert.Equal(t, "End date must be after the start date.", body.Error.Fields["requested_end_date"])
	assert.Contains(t, body.Error.Fields, "borrower_name")
	assert.Empty(t, m.requests)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/portal/borrow", strings.NewReader(`{"asset_id":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerMyBorrowings(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portal/my-borrowings", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"prompt"`)
	assert.Contains(t, w.Body.String(), `"requests":[]`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portal/my-borrowings?employee_id=NOBODY", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"requests":[]`)

	r, _ = newTestRouter(t, false)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portal/my-borrowings?employee_id=EMP-0042", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandlerStaffFlow(t *testing.T) {
	r, m := newTestRouter(t, true)
	svc, _ := newTestService(m, nil)
	res, err := svc.Submit(context.Background(), validSubmit())
	require.NoError(t, err)
	base := "/staff/borrow-requests/" + strconv.FormatUint(res.ID, 10)

	do := func(method, path, user, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, base+"/approve", "", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(http.MethodPost, base+"/reject", "5", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(http.MethodPost, base+"/reject", "5", `{"reason":" "}`).Code)

	w := do(http.MethodPost, base+"/approve", "5", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"approved"`)

	w = do(http.MethodPost, base+"/reject", "5", `{"reason":"Asset needed elsewhere"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TRANSITION")

	assert.Equal(t, http.StatusOK, do(http.MethodPost, base+"/handover", "5", "").Code)
	assert.Equal(t, assets.StatusBorrowed, m.assets[7].Status)

	w = do(http.MethodGet, "/staff/borrow-requests?active=true", "5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	assert.Equal(t, http.StatusOK, do(http.MethodPost, base+"/return", "5", "").Code)
	assert.Equal(t, assets.StatusAvailable, m.assets[7].Status)

	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/staff/borrow-requests/999", "5", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/staff/borrow-requests?status=lost", "5", "").Code)
}
