package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Sam8709/repair-track-25-08/pkg/util"
)

// phonePattern accepts a 10-digit Indian mobile number with or without
// the +91 prefix. Normalization to full international form happens in
// the notify package, not here.
var phonePattern = regexp.MustCompile(`^(\+91)?[6-9]\d{9}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
		s := strings.Join(strings.Fields(fl.Field().String()), "")
		return phonePattern.MatchString(s)
	})
	return v
}

// validateStruct converts validator failures into the service error
// vocabulary with per-field details.
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := map[string]any{}
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		return apperrors.NewValidationError("invalid input", details)
	}
	return apperrors.NewValidationError("invalid input", nil)
}
