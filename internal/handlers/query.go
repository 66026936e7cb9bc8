package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/gin-gonic/gin"
)

// queryParser reads optional query parameters and collects the ones that fail to parse.
type queryParser struct {
	c    *gin.Context
	errs services.ValidationErrors
}

func newQueryParser(c *gin.Context) *queryParser {
	return &queryParser{c: c}
}

func (p *queryParser) fail(key, message, raw string) {
	p.errs = append(p.errs, services.NewValidationError(key, message, raw)...)
}

func (p *queryParser) str(key string) *string {
	raw := strings.TrimSpace(p.c.Query(key))
	if raw == "" {
		return nil
	}
	return &raw
}

func (p *queryParser) uintParam(key string) *uint {
	raw := p.str(key)
	if raw == nil {
		return nil
	}
	v, err := strconv.ParseUint(*raw, 10, 64)
	if err != nil {
		p.fail(key, "debe ser un número entero", *raw)
		return nil
	}
	u := uint(v)
	return &u
}

func (p *queryParser) intParam(key string) *int {
	raw := p.str(key)
	if raw == nil {
		return nil
	}
	v, err := strconv.Atoi(*raw)
	if err != nil {
		p.fail(key, "debe ser un número entero", *raw)
		return nil
	}
	return &v
}

func (p *queryParser) floatParam(key string) *float64 {
	raw := p.str(key)
	if raw == nil {
		return nil
	}
	v, err := strconv.ParseFloat(*raw, 64)
	if err != nil {
		p.fail(key, "debe ser un número", *raw)
		return nil
	}
	return &v
}

// date accepts YYYY-MM-DD or RFC3339.
func (p *queryParser) date(key string) *time.Time {
	raw := p.str(key)
	if raw == nil {
		return nil
	}
	if t, err := time.Parse("2006-01-02", *raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, *raw); err == nil {
		return &t
	}
	p.fail(key, "debe ser una fecha válida", *raw)
	return nil
}

func (p *queryParser) page() (int, int) {
	return queryInt(p.c, "page", 1), queryInt(p.c, "per_page", 0)
}

func (p *queryParser) err() error {
	if len(p.errs) == 0 {
		return nil
	}
	return p.errs
}

func enumPtr[T ~string](raw *string) *T {
	if raw == nil {
		return nil
	}
	v := T(*raw)
	return &v
}

func parseCourseFilters(c *gin.Context) (repositories.CourseFilters, error) {
	p := newQueryParser(c)
	f := repositories.CourseFilters{
		Level:        enumPtr[models.CourseLevel](p.str("nivel")),
		Status:       enumPtr[models.CourseStatus](p.str("estado")),
		InstructorID: p.uintParam("instructor_id"),
		PriceMin:     p.floatParam("precio_minimo"),
		PriceMax:     p.floatParam("precio_maximo"),
		DurationMin:  p.intParam("duracion_minima"),
		DurationMax:  p.intParam("duracion_maxima"),
		DateFrom:     p.date("fecha_desde"),
		DateTo:       p.date("fecha_hasta"),
		SortBy:       c.Query("orden"),
		SortOrder:    c.Query("direccion"),
	}
	f.Page, f.PerPage = p.page()
	return f, p.err()
}

func parseGradeFilters(c *gin.Context) (repositories.GradeFilters, error) {
	p := newQueryParser(c)
	f := repositories.GradeFilters{
		StudentID:      p.uintParam("estudiante_id"),
		CourseID:       p.uintParam("curso_id"),
		EvaluationType: enumPtr[models.EvaluationType](p.str("tipo_evaluacion")),
		Status:         enumPtr[models.GradeStatus](p.str("estado")),
	}
	f.Page, f.PerPage = p.page()
	return f, p.err()
}

func parseAttendanceFilters(c *gin.Context) (repositories.AttendanceFilters, error) {
	p := newQueryParser(c)
	f := repositories.AttendanceFilters{
		StudentID: p.uintParam("estudiante_id"),
		CourseID:  p.uintParam("curso_id"),
		Status:    enumPtr[models.AttendanceStatus](p.str("estado")),
		DateFrom:  p.date("fecha_desde"),
		DateTo:    p.date("fecha_hasta"),
	}
	f.Page, f.PerPage = p.page()
	return f, p.err()
}

func parseUserFilters(c *gin.Context) (repositories.UserFilters, error) {
	p := newQueryParser(c)
	f := repositories.UserFilters{
		Role:   enumPtr[models.UserRole](p.str("role")),
		Search: c.Query("search"),
	}
	f.Page, f.PerPage = p.page()
	return f, p.err()
}

func parseResourceQuery(c *gin.Context) (services.ResourceQuery, error) {
	p := newQueryParser(c)
	q := services.ResourceQuery{
		CourseID: p.uintParam("curso_id"),
		Type:     enumPtr[models.ResourceType](p.str("tipo")),
		Status:   enumPtr[models.ResourceStatus](p.str("estado")),
		Term:     c.Query("q"),
	}
	q.Page, q.PerPage = p.page()
	return q, p.err()
}

// boolParam accepts true/false and 1/0.
func (p *queryParser) boolParam(key string) *bool {
	raw := p.str(key)
	if raw == nil {
		return nil
	}
	v, err := strconv.ParseBool(*raw)
	if err != nil {
		p.fail(key, "debe ser verdadero o falso", *raw)
		return nil
	}
	return &v
}
