package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/CSD-2025/coursehub-service/internal/models"
)

// Validator handles request and business rule validation.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with the domain rules registered.
func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerBusinessRules()
	return v
}

// Validate validates struct tags on any request struct.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateRoleSet enforces the user role-set invariant: non-empty, no
// duplicates, super_admin/professor only ever alone.
func (v *Validator) ValidateRoleSet(roles []models.Role) error {
	if models.ValidRoleSet(roles) {
		return nil
	}
	return ValidationErrors{{
		Field:   "roles",
		Message: fmt.Sprintf("invalid role set %v: super_admin and professor are exclusive; others must be a subset of {student, ta}", roles),
		Rule:    "role_set",
	}}
}

func (v *Validator) registerBusinessRules() {
	// course codes are short uppercase identifiers like CS-F211
	v.validate.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		code := strings.TrimSpace(fl.Field().String())
		return len(code) >= 1 && len(code) <= 50 && !strings.ContainsAny(code, " \t\n")
	})

	v.validate.RegisterValidation("exam_type", func(fl validator.FieldLevel) bool {
		return models.ExamType(fl.Field().String()).Valid()
	})

	v.validate.RegisterValidation("member_type", func(fl validator.FieldLevel) bool {
		return models.MemberType(fl.Field().String()).Valid()
	})
}

// ValidationError is one field-level validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = fmt.Sprintf("%s: %s", ve.Field, ve.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ToValidationErrors converts go-playground field errors into the domain
// error shape.
func ToValidationErrors(err error) ValidationErrors {
	var out ValidationErrors
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			out = append(out, ValidationError{
				Field:   strings.ToLower(fe.Field()),
				Message: fmt.Sprintf("failed on the %q rule", fe.Tag()),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return out
	}
	return ValidationErrors{{Field: "request", Message: err.Error()}}
}
