package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeValidation        Code = "VALIDATION_FAILED"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeConflict          Code = "CONFLICT"
	CodeTooManyRequests   Code = "TOO_MANY_REQUESTS"
	CodeInternal          Code = "INTERNAL"
)

// APIError はサービス層が返すエラー。Fields はバリデーション時のみ（フィールド名→メッセージ）
type APIError struct {
	Code    Code
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(parts, ", "))
}

func ErrInvalid(msg string) *APIError      { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrUnauthorized(msg string) *APIError { return &APIError{Code: CodeUnauthorized, Message: msg} }
func ErrForbidden(msg string) *APIError    { return &APIError{Code: CodeForbidden, Message: msg} }
func ErrNotFound(msg string) *APIError     { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError     { return &APIError{Code: CodeConflict, Message: msg} }
func ErrTooMany(msg string) *APIError      { return &APIError{Code: CodeTooManyRequests, Message: msg} }
func ErrInternal(msg string) *APIError     { return &APIError{Code: CodeInternal, Message: msg} }

func ErrInvalidTransition(msg string) *APIError {
	return &APIError{Code: CodeInvalidTransition, Message: msg}
}

// ErrValidation は fields が空なら nil を返す。呼び出し側は
//
//	if err := apierr.ErrValidation(fields); err != nil { ... }
//
// の形で使う
func ErrValidation(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &APIError{Code: CodeValidation, Message: "The given data was invalid.", Fields: fields}
}

// Is reports whether err is an *APIError with the given code.
func Is(err error, code Code) bool {
	var api *APIError
	return errors.As(err, &api) && api.Code == code
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeValidation:
			return http.StatusUnprocessableEntity
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		case CodeNotFound:
			return http.StatusNotFound
		case CodeInvalidTransition, CodeConflict:
			return http.StatusConflict
		case CodeTooManyRequests:
			return http.StatusTooManyRequests
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
