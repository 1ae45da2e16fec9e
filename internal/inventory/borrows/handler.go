package borrows

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/auth"
	"SIMAPRO-backend/internal/platform/httpx"
)

type Handler struct {
	svc *Service
	// false のとき社員IDでの照会を止め、追跡トークンのみで確認させる
	allowEmployeeLookup bool
}

func NewHandler(svc *Service, allowEmployeeLookup bool) *Handler {
	return &Handler{svc: svc, allowEmployeeLookup: allowEmployeeLookup}
}

// RegisterPortalRoutes mounts the unauthenticated routes. submitLimit and
// lookupLimit are rate-limit middlewares.
func (h *Handler) RegisterPortalRoutes(r gin.IRoutes, submitLimit, lookupLimit gin.HandlerFunc) {
	r.POST("/borrow", submitLimit, h.Submit)
	r.GET("/my-borrowings", lookupLimit, h.MyBorrowings)
	r.GET("/track/:token", lookupLimit, h.Track)
}

// RegisterStaffRoutes expects r to be guarded by the requests/process capability.
func (h *Handler) RegisterStaffRoutes(r gin.IRoutes) {
	r.GET("/borrow-requests", h.List)
	r.GET("/borrow-requests/:id", h.Get)
	r.POST("/borrow-requests/:id/approve", h.Approve)
	r.POST("/borrow-requests/:id/reject", h.Reject)
	r.POST("/borrow-requests/:id/handover", h.Handover)
	r.POST("/borrow-requests/:id/return", h.Return)
}

func isForm(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == binding.MIMEPOSTForm || ct == binding.MIMEMultipartPOSTForm
}

// Submit godoc
// @Summary  借用申請
// @Tags     portal
// @Accept   json,x-www-form-urlencoded
// @Produce  json
// @Param    body body SubmitRequest true "borrow request"
// @Success  201 {object} SubmitResult
// @Success  303 "form post: redirect to my-borrowings"
// @Failure  422 {object} map[string]any
// @Router   /portal/borrow [post]
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid request body"))
		return
	}
	res, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	trackURL := "/portal/track/" + res.TrackingToken
	if isForm(c) {
		target := trackURL + "?" + url.Values{"submitted": {res.RequestCode}}.Encode()
		if h.allowEmployeeLookup {
			target = "/portal/my-borrowings?" + url.Values{
				"employee_id": {req.BorrowerEmployeeID},
				"submitted":   {res.RequestCode},
			}.Encode()
		}
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	c.Header("Location", trackURL)
	c.JSON(http.StatusCreated, res)
}

// MyBorrowings godoc
// @Summary  社員IDで申請を照会
// @Tags     portal
// @Produce  json
// @Param    employee_id query string false "employee id"
// @Success  200 {object} map[string]any
// @Router   /portal/my-borrowings [get]
func (h *Handler) MyBorrowings(c *gin.Context) {
	if !h.allowEmployeeLookup {
		apierr.Respond(c, apierr.ErrForbidden("lookup by employee id is disabled; use your tracking link"))
		return
	}
	resp := gin.H{}
	if code := c.Query("submitted"); code != "" {
		resp["success"] = "Loan request submitted successfully! Request ID: " + code
	}

	employeeID := c.Query("employee_id")
	if employeeID == "" {
		resp["prompt"] = "Enter your employee ID to view your borrowing requests."
		resp["requests"] = []BorrowRequest{}
		c.JSON(http.StatusOK, resp)
		return
	}
	items, err := h.svc.ListByEmployeeID(c.Request.Context(), employeeID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	resp["employee_id"] = employeeID
	resp["requests"] = items
	c.JSON(http.StatusOK, resp)
}

// Track godoc
// @Summary  追跡トークンで申請を確認
// @Tags     portal
// @Produce  json
// @Param    token path string true "tracking token"
// @Success  200 {object} TrackView
// @Failure  404 {object} map[string]any
// @Router   /portal/track/{token} [get]
func (h *Handler) Track(c *gin.Context) {
	res, err := h.svc.Track(c.Request.Context(), c.Param("token"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if v := c.Query("status"); v != "" {
		st := Status(v)
		f.Status = &st
	}
	if v := c.Query("employee_id"); v != "" {
		f.EmployeeID = &v
	}
	f.AssetID = httpx.OptionalID(c.Query("asset_id"))
	f.ActiveOnly, _ = strconv.ParseBool(c.Query("active"))

	p := httpx.PageFrom(c, 50)
	items, total, err := h.svc.List(c.Request.Context(), f, p)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "next_offset": httpx.NextOffset(total, p)})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func staffID(c *gin.Context) (uint64, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		apierr.Respond(c, apierr.ErrUnauthorized("missing acting user"))
	}
	return id, ok
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	staff, ok := staffID(c)
	if !ok {
		return
	}
	res, err := h.svc.Approve(c.Request.Context(), id, staff)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	staff, ok := staffID(c)
	if !ok {
		return
	}
	// 本文なしは理由なしとして扱う（サービス側で 422）
	var req RejectRequest
	if c.Request.ContentLength != 0 && !httpx.BindJSON(c, &req) {
		return
	}
	res, err := h.svc.Reject(c.Request.Context(), id, staff, req.Reason)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Handover(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.RecordHandover(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Return(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.RecordReturn(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
