package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// エラーのフィールド名は json タグ名で返す
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// Messages は "field.tag" または "field" をキーにしたカスタムメッセージ
type Messages map[string]string

// Struct validates s and returns field→message for each failure (first
// failure per field wins). A nil map means s is valid.
func Struct(s any, msgs Messages) map[string]string {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(fe, msgs)
	}
	return out
}

func message(fe validator.FieldError, msgs Messages) string {
	field := fe.Field()
	if m, ok := msgs[field+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[field]; ok {
		return m
	}
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	default:
		return fmt.Sprintf("The %s is invalid.", label)
	}
}
