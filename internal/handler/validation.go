package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kube-rca/userauth/internal/apperr"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

	registerOnce sync.Once
	registerErr  error
)

type normalizer interface {
	Normalize()
}

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() error {
	registerOnce.Do(func() { registerErr = registerValidators() })
	return registerErr
}

func registerValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	if err := v.RegisterValidation("password", validatePassword); err != nil {
		return err
	}
	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

func validatePassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if len(pw) < minPasswordLen || len(pw) > maxPasswordLen {
		return false
	}

	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// bindJSON decodes the body into dst, normalizes it, then validates the
// normalized values. An empty body is accepted when required is false.
func bindJSON(c *gin.Context, dst normalizer, required bool) error {
	body, err := c.GetRawData()
	if err != nil {
		return apperr.Validation("Invalid request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if required {
			return apperr.Validation("Request body is required")
		}
	} else if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("Invalid request body")
	}

	dst.Normalize()

	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Validation failed")
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}
	return apperr.Validation("Validation failed", fields...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please provide a valid email"
	case "password":
		return "Password must be 8-72 characters and contain at least one uppercase letter, one lowercase letter, and one number"
	case "username":
		return "Username must be 3-30 characters and contain only letters, numbers, and underscores"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
