package validator

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinSearchTermLength = 2
	MaxSearchTermLength = 100
)

// BusinessValidator checks rules that span several fields.
type BusinessValidator struct {
	now func() time.Time
}

func NewBusinessValidator() *BusinessValidator {
	return &BusinessValidator{now: time.Now}
}

// WithClock fixes the reference time for date rules.
func (b *BusinessValidator) WithClock(now func() time.Time) *BusinessValidator {
	b.now = now
	return b
}

func (b *BusinessValidator) Now() time.Time {
	return b.now()
}

// ValidateRange reports max < min for optional bounds.
func (b *BusinessValidator) ValidateRange(field string, min, max *float64) ValidationErrors {
	if min != nil && max != nil && *max < *min {
		return ValidationErrors{{
			Field:   field,
			Message: fmt.Sprintf("debe ser mayor o igual a %v", *min),
			Value:   *max,
			Rule:    "range",
		}}
	}
	return nil
}

// ValidateDateRange requires from <= to and from not in the future.
func (b *BusinessValidator) ValidateDateRange(fromField, toField string, from, to *time.Time) ValidationErrors {
	var errs ValidationErrors
	if from != nil && from.After(b.now()) {
		errs = append(errs, ValidationError{
			Field:   fromField,
			Message: "no puede ser una fecha futura",
			Value:   from.Format(time.DateOnly),
			Rule:    "before_or_equal_today",
		})
	}
	if from != nil && to != nil && to.Before(*from) {
		errs = append(errs, ValidationError{
			Field:   toField,
			Message: fmt.Sprintf("debe ser posterior o igual a %s", fromField),
			Value:   to.Format(time.DateOnly),
			Rule:    "after_or_equal",
		})
	}
	return errs
}

// ValidateAssignmentDates requires the due date to be after the assignment date.
func (b *BusinessValidator) ValidateAssignmentDates(assignedAt, dueAt time.Time) ValidationErrors {
	if !dueAt.After(assignedAt) {
		return ValidationErrors{{
			Field:   "fecha_entrega",
			Message: "debe ser posterior a fecha_asignacion",
			Value:   dueAt.Format(time.RFC3339),
			Rule:    "after",
		}}
	}
	return nil
}

// ValidateSearchTerm bounds the trimmed term length.
func (b *BusinessValidator) ValidateSearchTerm(term string) ValidationErrors {
	n := utf8.RuneCountInString(strings.TrimSpace(term))
	if n < MinSearchTermLength || n > MaxSearchTermLength {
		return ValidationErrors{{
			Field:   "termino",
			Message: fmt.Sprintf("debe tener entre %d y %d caracteres", MinSearchTermLength, MaxSearchTermLength),
			Value:   term,
			Rule:    "between",
		}}
	}
	return nil
}
