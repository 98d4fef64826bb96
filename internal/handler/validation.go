package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/GoArmGo/Foodgram/internal/domain"
	"github.com/go-playground/validator/v10"
)

// NewValidator создаёт валидатор, который называет поля по json-тегам.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest проверяет DTO и возвращает первую ошибку как domain.Error.
func validateRequest(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(field, field+" field is required")
	case "email":
		return domain.NewValidationError(field, "enter a valid email address")
	case "hexcolor":
		return domain.NewValidationError(field, "color must be a hex string like #49B64E")
	case "max":
		return domain.NewValidationError(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
	case "min":
		return domain.NewValidationError(field, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
	}
	return domain.NewValidationError(field, fmt.Sprintf("%s is invalid", field))
}
