package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes expects r to be behind RequireAuth and RequireVerified.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("", h.Index)
}

// Index godoc
// @Summary  ダッシュボード
// @Tags     dashboard
// @Produce  json
// @Success  200 {object} View
// @Failure  401 {object} map[string]any
// @Failure  403 {object} map[string]any
// @Security BearerAuth
// @Router   /dashboard [get]
func (h *Handler) Index(c *gin.Context) {
	v, err := h.svc.Build(c.Request.Context(), auth.Role(c))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
