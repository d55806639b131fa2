package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"innovation-portal/internal/domain/idea"
	"innovation-portal/internal/domain/review"
	"innovation-portal/internal/domain/user"
	"innovation-portal/pkg/id"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Field   string       `json:"field,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report json names so details match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	// public ids = 32-char lowercase hex
	_ = v.RegisterValidation("hex32", func(fl validator.FieldLevel) bool {
		return id.Valid32(fl.Field().String())
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := user.ParseRole(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("stage", func(fl validator.FieldLevel) bool {
		_, err := review.ParseStage(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("reviewstatus", func(fl validator.FieldLevel) bool {
		_, err := review.ParseStatus(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("terminalstatus", func(fl validator.FieldLevel) bool {
		s, err := idea.ParseStatus(fl.Field().String())
		return err == nil && s.IsTerminal()
	})

	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := e.Field()
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "email":
			out = append(out, FieldError{Field: field, Message: "must be a valid e-mail address"})
		case "hex32":
			out = append(out, FieldError{Field: field, Message: "must be 32-char lowercase hex"})
		case "role":
			out = append(out, FieldError{Field: field, Message: "must be one of APPLICANT, REVIEWER, ADMIN"})
		case "stage":
			out = append(out, FieldError{Field: field, Message: "must be one of FLR, SLR, PF"})
		case "reviewstatus":
			out = append(out, FieldError{Field: field, Message: "must be one of PENDING, APPROVED, REJECTED"})
		case "terminalstatus":
			out = append(out, FieldError{Field: field, Message: "must be REJECTED or PATENTED"})
		case "min":
			out = append(out, FieldError{Field: field, Message: "must be at least " + e.Param() + " characters"})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		case "gte":
			out = append(out, FieldError{Field: field, Message: "must be greater than or equal to " + e.Param()})
		case "lte":
			out = append(out, FieldError{Field: field, Message: "must be less than or equal to " + e.Param()})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}
