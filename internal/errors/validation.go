package errors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// ByField groups messages by field, the shape clients expect under "errors".
func (ve ValidationErrors) ByField() map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, e := range ve {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewValidationErrorWithRule creates a new validation error with rule
func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    rule,
	}
}

// ToValidationErrors converts validator.ValidationErrors to our custom type
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	if validatorErr, ok := err.(validator.ValidationErrors); ok {
		for _, err := range validatorErr {
			errors = append(errors, ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

// getErrorMessage returns user-friendly error messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		return fmt.Sprintf("debe ser al menos %s", err.Param())
	case "max":
		return fmt.Sprintf("no puede ser mayor que %s", err.Param())
	case "gte":
		return fmt.Sprintf("debe ser mayor o igual a %s", err.Param())
	case "lte":
		return fmt.Sprintf("debe ser menor o igual a %s", err.Param())
	case "gtfield":
		return fmt.Sprintf("debe ser posterior a %s", err.Param())
	case "len":
		return fmt.Sprintf("debe tener exactamente %s caracteres", err.Param())
	case "email":
		return "debe ser un correo electrónico válido"
	case "url":
		return "debe ser una URL válida"
	case "numeric":
		return "debe ser un número"
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", err.Param())
	case "dive":
		return "contiene elementos inválidos"

	// Custom validators
	case "course_level":
		return "debe ser principiante, intermedio o avanzado"
	case "course_status":
		return "debe ser activo, inactivo o borrador"
	case "course_access":
		return "debe ser gratis, pago o codigo"
	case "enrollment_status":
		return "debe ser activo, completado, cancelado o en_progreso"
	case "resource_type":
		return "debe ser libro, articulo, video, enlace, documento, presentacion, audio o imagen"
	case "resource_status":
		return "debe ser activo, inactivo o borrador"
	case "media_type":
		return "debe ser video, audio, documento o imagen"
	case "media_status":
		return "debe ser activo o inactivo"
	case "user_role":
		return "debe ser un rol válido (student, teacher, admin)"
	case "strong_password":
		return "debe contener al menos una minúscula, una mayúscula y un número"

	default:
		return fmt.Sprintf("no cumple la regla '%s'", err.Tag())
	}
}
