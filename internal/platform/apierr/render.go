package apierr

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
)

type errDTO struct {
	Error struct {
		Code    Code              `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

func Body(code Code, msg string) errDTO {
	var e errDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// BodyFrom は内部エラーの詳細をクライアントに出さない
func BodyFrom(err error) errDTO {
	var api *APIError
	if errors.As(err, &api) {
		e := Body(api.Code, api.Message)
		e.Error.Fields = api.Fields
		return e
	}
	return Body(CodeInternal, "internal error")
}

// Respond writes err as JSON and logs it according to its class.
func Respond(c *gin.Context, err error) {
	status := ToHTTPStatus(err)
	switch {
	case status >= 500:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	case Is(err, CodeInvalidTransition):
		slog.Warn("invalid transition", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, BodyFrom(err))
}

// Abort is Respond for middleware.
func Abort(c *gin.Context, err error) {
	Respond(c, err)
	c.Abort()
}
