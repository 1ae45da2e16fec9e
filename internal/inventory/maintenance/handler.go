package maintenance

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/auth"
	"SIMAPRO-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterPortalRoutes(r gin.IRoutes, limit gin.HandlerFunc) {
	r.POST("/maintenance-reports", limit, h.PortalReport)
}

// RegisterStaffRoutes expects r to be guarded by the maintenance/process capability.
func (h *Handler) RegisterStaffRoutes(r gin.IRoutes) {
	r.GET("/maintenance-reports", h.List)
	r.POST("/maintenance-reports", h.StaffReport)
	r.GET("/maintenance-reports/:id", h.Get)
	r.POST("/maintenance-reports/:id/start", h.Start)
	r.POST("/maintenance-reports/:id/complete", h.Complete)
}

// PortalReport godoc
// @Summary  破損・不具合の報告
// @Tags     portal
// @Accept   json
// @Produce  json
// @Param    body body ReportRequest true "report"
// @Success  201 {object} Report
// @Failure  422 {object} map[string]any
// @Router   /portal/maintenance-reports [post]
func (h *Handler) PortalReport(c *gin.Context) { h.report(c, nil) }

func (h *Handler) StaffReport(c *gin.Context) {
	id, ok := auth.UserID(c)
	if !ok {
		apierr.Respond(c, apierr.ErrUnauthorized("missing acting user"))
		return
	}
	h.report(c, &Reporter{UserID: id, Role: auth.Role(c)})
}

func (h *Handler) report(c *gin.Context, by *Reporter) {
	var req ReportRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	res, err := h.svc.Report(c.Request.Context(), req, by)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// List godoc
// @Summary  メンテナンス報告一覧
// @Tags     staff
// @Produce  json
// @Param    status   query string false "pending | in_progress | completed"
// @Param    asset_id query int    false "asset id"
// @Param    limit    query int    false "limit"
// @Param    offset   query int    false "offset"
// @Security BearerAuth
// @Router   /staff/maintenance-reports [get]
func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if v := c.Query("status"); v != "" {
		st := Status(v)
		f.Status = &st
	}
	f.AssetID = httpx.OptionalID(c.Query("asset_id"))
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

func (h *Handler) Start(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	staff, ok := auth.UserID(c)
	if !ok {
		apierr.Respond(c, apierr.ErrUnauthorized("missing acting user"))
		return
	}
	var req StartRequest
	if c.Request.ContentLength != 0 && !httpx.BindJSON(c, &req) {
		return
	}
	res, err := h.svc.Start(c.Request.Context(), id, staff, req.AssignedTo)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	var req CompleteRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	res, err := h.svc.Complete(c.Request.Context(), id, req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
