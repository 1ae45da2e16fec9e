package auth

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"SIMAPRO-backend/internal/platform/access"
	"SIMAPRO-backend/internal/platform/apierr"
)

const (
	CtxUserIDKey   = "user_id"
	CtxRoleKey     = "role"
	CtxVerifiedKey = "verified"
)

// RequireAuth: Authorization: Bearer <token> を検証して context に sub/role/verified を詰める
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			apierr.Abort(c, apierr.ErrUnauthorized("missing Authorization header"))
			return
		}
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			apierr.Abort(c, apierr.ErrUnauthorized("invalid Authorization header"))
			return
		}

		claims, err := ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			apierr.Abort(c, apierr.ErrUnauthorized(err.Error()))
			return
		}

		c.Set(CtxUserIDKey, strconv.FormatUint(claims.UserID, 10))
		c.Set(CtxRoleKey, claims.Role)
		c.Set(CtxVerifiedKey, claims.Verified)
		c.Next()
	}
}

// UserLookup は RequireActive が参照するアカウント取得
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*User, error)
}

// RequireActive は RequireAuth の後に置く。アカウントを引き直し、
// 無効化されていれば拒否し、role/verified を DB の値で上書きする
func RequireActive(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			apierr.Abort(c, apierr.ErrUnauthorized("unauthorized"))
			return
		}
		u, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		if u == nil {
			apierr.Abort(c, apierr.ErrUnauthorized("account not found"))
			return
		}
		if u.Status != StatusActive {
			apierr.Abort(c, apierr.ErrForbidden("account disabled"))
			return
		}
		c.Set(CtxRoleKey, u.Role)
		c.Set(CtxVerifiedKey, u.Verified())
		c.Next()
	}
}

// RequireVerified はメール確認済みのアカウントだけを通す
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxVerifiedKey) {
			apierr.Abort(c, apierr.ErrForbidden("email address is not verified"))
			return
		}
		c.Next()
	}
}

// RequireCapability は role が obj/act の権限を持つ場合だけ通す
func RequireCapability(ck access.Checker, obj, act string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ck.Can(Role(c), obj, act) {
			apierr.Abort(c, apierr.ErrForbidden("forbidden"))
			return
		}
		c.Next()
	}
}

func Role(c *gin.Context) string { return c.GetString(CtxRoleKey) }

// UserID は RequireAuth 通過後にのみ意味を持つ
func UserID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.GetString(CtxUserIDKey), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
