package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bugtracker/backend/app/models"

	validator "github.com/go-playground/validator/v10"
)

// EnumValidateTag turns a set of allowed values into a "oneof=" expression.
func EnumValidateTag(values ...string) string {
	return fmt.Sprintf("oneof=%s", strings.Join(values, " "))
}

func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterAlias("enum_role", EnumValidateTag(models.RoleDeveloper, models.RoleManager))
	validate.RegisterAlias("enum_severity", EnumValidateTag(models.Severities...))
	validate.RegisterAlias("enum_status", EnumValidateTag(models.Statuses...))
	return validate
}

// ValidationDetail renders validation errors as one human readable line.
func ValidationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s is not a valid email address", fe.Field()))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		case "enum_role", "enum_severity", "enum_status", "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.TrimPrefix(enumOf(fe), "oneof=")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}

func enumOf(fe validator.FieldError) string {
	switch fe.Tag() {
	case "enum_role":
		return strings.Join([]string{models.RoleDeveloper, models.RoleManager}, " ")
	case "enum_severity":
		return strings.Join(models.Severities, " ")
	case "enum_status":
		return strings.Join(models.Statuses, " ")
	}
	return fe.Param()
}
