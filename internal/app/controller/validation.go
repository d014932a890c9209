package controller

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	registerOnce sync.Once
)

// RegisterValidators installs the custom binding rules and reports fields by
// their json or form name. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})

		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})

		// the address is checked with surrounding whitespace trimmed
		_ = v.RegisterValidation("trimmed_email", func(fl validator.FieldLevel) bool {
			return v.Var(strings.TrimSpace(fl.Field().String()), "required,email") == nil
		})
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email", "trimmed_email":
		return "must be a valid email"
	case "uuid":
		return "must be a valid UUID"
	case "slug":
		return "must contain only lowercase letters, digits and hyphens"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return "is invalid"
}

// respondBindError answers a failed ShouldBind* call with per-field messages
// when the validator produced them
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		apperrors.RespondWithValidationError(c, fields)
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Malformed request body")
}
