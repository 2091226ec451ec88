package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	validator "github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator. Field names in errors use json tags.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// DecodeJSON decodes the request body into dst and validates it.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return NewAppError("BAD_REQUEST", "request body required", http.StatusBadRequest, nil)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewAppError("BAD_REQUEST", "invalid request payload", http.StatusBadRequest, err)
	}
	return ValidateStruct(dst)
}

// ValidateStruct runs validator rules on v and maps failures to a 422 AppError.
func ValidateStruct(v any) error {
	if err := Validator().Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return Invalid("validation failed", fields)
		}
		return NewAppError("BAD_REQUEST", "invalid request payload", http.StatusBadRequest, err)
	}
	return nil
}
