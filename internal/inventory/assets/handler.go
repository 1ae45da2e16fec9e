package assets

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterPortalRoutes は未認証のカタログ閲覧
func (h *Handler) RegisterPortalRoutes(r gin.IRoutes) {
	r.GET("/assets", h.Browse)
	r.GET("/assets/:asset_id", h.Show)
}

// RegisterStaffRoutes expects r to be guarded by the assets/manage capability.
func (h *Handler) RegisterStaffRoutes(r gin.IRoutes) {
	r.POST("/assets", h.Create)
	r.GET("/assets/:asset_id", h.Show)
	r.PATCH("/assets/:asset_id/status", h.UpdateStatus)
}

// Browse godoc
// @Summary  利用可能な資産の一覧
// @Tags     portal
// @Produce  json
// @Param    search   query string false "name / asset_code / brand"
// @Param    category query int    false "category id"
// @Param    location query int    false "location id"
// @Param    page     query int    false "page (12 per page)"
// @Success  200 {object} BrowseResult
// @Router   /portal/assets [get]
func (h *Handler) Browse(c *gin.Context) {
	q := BrowseQuery{
		Search:     c.Query("search"),
		CategoryID: httpx.OptionalID(c.Query("category")),
		LocationID: httpx.OptionalID(c.Query("location")),
		Page:       httpx.AtoiDef(c.Query("page"), 1),
	}
	res, err := h.svc.Browse(c.Request.Context(), q)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Show godoc
// @Summary  資産の詳細
// @Tags     portal
// @Produce  json
// @Param    asset_id path int true "asset id"
// @Success  200 {object} Asset
// @Failure  404 {object} map[string]any
// @Router   /portal/assets/{asset_id} [get]
func (h *Handler) Show(c *gin.Context) {
	id, ok := httpx.PathID(c, "asset_id")
	if !ok {
		return
	}
	res, err := h.svc.Show(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateAssetRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	res, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/staff/assets/"+strconv.FormatUint(res.ID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := httpx.PathID(c, "asset_id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	res, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
