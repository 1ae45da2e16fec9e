package auth

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"SIMAPRO-backend/internal/platform/apierr"
	"SIMAPRO-backend/internal/platform/httpx"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterPublicRoutes mounts /login under r.
func (h *Handler) RegisterPublicRoutes(r gin.IRoutes) {
	r.POST("/login", h.Login)
}

// RegisterAdminRoutes mounts user management; r carries the admin guard.
func (h *Handler) RegisterAdminRoutes(r gin.IRoutes) {
	r.POST("/users", h.Register)
	r.GET("/users/:id", h.GetUser)
	r.PATCH("/users/:id/verify", h.Verify)
	r.PATCH("/users/:id/status", h.SetStatus)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary  スタッフログイン
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} LoginResult
// @Failure  401 {object} map[string]any
// @Router   /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
		"user":       res.User,
		"message":    "Login successful",
	})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	u, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.Header("Location", "/staff/users/"+strconv.FormatUint(u.ID, 10))
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Verify(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	u, err := h.svc.Verify(c.Request.Context(), id)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := httpx.PathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !httpx.BindJSON(c, &req) {
		return
	}
	u, err := h.svc.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
