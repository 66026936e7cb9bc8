package validator

import (
	"strings"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

var (
	sortFields     = []string{"titulo", "precio", "duracion", "created_at", "updated_at"}
	sortDirections = []string{"asc", "desc"}
)

// CourseValidator handles course-specific validation
type CourseValidator struct {
	business *BusinessValidator
}

func NewCourseValidator(business *BusinessValidator) *CourseValidator {
	return &CourseValidator{business: business}
}

// ValidateFilters checks catalog filters after sanitizing them in place.
func (v *CourseValidator) ValidateFilters(filters *repositories.CourseFilters) ValidationErrors {
	v.SanitizeFilters(filters)

	var errs ValidationErrors
	if filters.Level != nil && !isOneOf(string(*filters.Level),
		string(models.LevelBeginner), string(models.LevelIntermediate), string(models.LevelAdvanced)) {
		errs = append(errs, ValidationError{Field: "nivel", Message: "debe ser principiante, intermedio o avanzado", Value: *filters.Level, Rule: "course_level"})
	}
	if filters.PriceMin != nil && *filters.PriceMin < 0 {
		errs = append(errs, ValidationError{Field: "precio_minimo", Message: "debe ser mayor o igual a 0", Value: *filters.PriceMin, Rule: "gte"})
	}
	errs = append(errs, v.business.ValidateRange("precio_maximo", filters.PriceMin, filters.PriceMax)...)

	if filters.DurationMin != nil && filters.DurationMax != nil && *filters.DurationMax < *filters.DurationMin {
		errs = append(errs, ValidationError{Field: "duracion_maxima", Message: "debe ser mayor o igual a duracion_minima", Value: *filters.DurationMax, Rule: "range"})
	}
	errs = append(errs, v.business.ValidateDateRange("fecha_desde", "fecha_hasta", filters.DateFrom, filters.DateTo)...)

	if filters.SortBy != "" && !isOneOf(filters.SortBy, sortFields...) {
		errs = append(errs, ValidationError{Field: "orden", Message: "debe ser uno de: " + strings.Join(sortFields, ", "), Value: filters.SortBy, Rule: "oneof"})
	}
	if filters.SortOrder != "" && !isOneOf(filters.SortOrder, sortDirections...) {
		errs = append(errs, ValidationError{Field: "direccion", Message: "debe ser asc o desc", Value: filters.SortOrder, Rule: "oneof"})
	}
	return errs
}

// SanitizeFilters trims and lower-cases enum-like values.
func (v *CourseValidator) SanitizeFilters(filters *repositories.CourseFilters) {
	if filters.Level != nil {
		level := models.CourseLevel(normalize(string(*filters.Level)))
		if level == "" {
			filters.Level = nil
		} else {
			filters.Level = &level
		}
	}
	filters.SortBy = normalize(filters.SortBy)
	filters.SortOrder = normalize(filters.SortOrder)
}

// SanitizeCourse normalizes enum columns before persistence.
func (v *CourseValidator) SanitizeCourse(course *models.Course) {
	course.Title = strings.TrimSpace(course.Title)
	course.Level = models.CourseLevel(normalize(string(course.Level)))
	course.Status = models.CourseStatus(normalize(string(course.Status)))
	course.AccessType = models.CourseAccessType(normalize(string(course.AccessType)))
	if course.Status == "" {
		course.Status = models.CourseDraft
	}
	if course.AccessType == "" {
		course.AccessType = models.AccessFree
	}
}

func (v *CourseValidator) ValidateSearchTerm(term string) ValidationErrors {
	return v.business.ValidateSearchTerm(term)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isOneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
