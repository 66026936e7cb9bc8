package validator

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	businessValidator *BusinessValidator
	courseValidator   *CourseValidator
}

// RuleChecker is implemented by requests that carry cross-field rules.
type RuleChecker interface {
	CheckRules(b *BusinessValidator) ValidationErrors
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	business := NewBusinessValidator()
	return &Validator{
		structValidator:   structValidator,
		businessValidator: business,
		courseValidator:   NewCourseValidator(business),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate runs struct tags first, then the request's own rules. Failures
// come back as ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}

	if checker, ok := s.(RuleChecker); ok {
		if errs := checker.CheckRules(v.businessValidator); len(errs) > 0 {
			return errs
		}
	}
	return nil
}

// Course returns the course validator
func (v *Validator) Course() *CourseValidator {
	return v.courseValidator
}

// Business returns the business validator
func (v *Validator) Business() *BusinessValidator {
	return v.businessValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("course_level", oneOfValues(
		models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced,
	))
	validate.RegisterValidation("course_status", oneOfValues(
		models.CourseActive, models.CourseInactive, models.CourseDraft,
	))
	validate.RegisterValidation("course_access", oneOfValues(
		models.AccessFree, models.AccessPaid, models.AccessCode,
	))
	validate.RegisterValidation("enrollment_status", oneOfValues(
		models.EnrollmentActive, models.EnrollmentCompleted, models.EnrollmentCancelled, models.EnrollmentInProgress,
	))
	validate.RegisterValidation("resource_type", oneOfValues(models.ResourceTypes...))
	validate.RegisterValidation("resource_status", oneOfValues(
		models.ResourceActive, models.ResourceInactive, models.ResourceDraft,
	))
	validate.RegisterValidation("media_type", oneOfValues(
		models.MediaVideo, models.MediaAudio, models.MediaDocument, models.MediaImage,
	))
	validate.RegisterValidation("media_status", oneOfValues(models.MediaActive, models.MediaInactive))
	validate.RegisterValidation("user_role", oneOfValues(models.ValidRoles...))
	validate.RegisterValidation("strong_password", validateStrongPassword)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// oneOfValues accepts a string-kinded field whose value is in allowed.
// Empty values pass so the tag composes with omitempty and required.
func oneOfValues[T ~string](allowed ...T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		for _, a := range allowed {
			if string(a) == value {
				return true
			}
		}
		return false
	}
}

// validateStrongPassword requires a lower-case letter, an upper-case letter and a digit.
func validateStrongPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
