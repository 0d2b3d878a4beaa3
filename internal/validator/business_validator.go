package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/student-service/internal/models"
)

var courseCodePattern = regexp.MustCompile(`^[A-Z]{2,5}[0-9]{2,4}$`)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateGrade checks a grade value against the allowed scale.
func (bv *BusinessValidator) ValidateGrade(grade float64) ValidationErrors {
	if grade < models.GradeMin || grade > models.GradeMax {
		return ValidationErrors{{
			Field:   "grade",
			Rule:    "grade_range",
			Message: "must be between 0.0 and 10.0",
		}}
	}
	return nil
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		return courseCodePattern.MatchString(fl.Field().String())
	})

	bv.validate.RegisterValidation("grade_range", func(fl validator.FieldLevel) bool {
		grade := fl.Field().Float()
		return grade >= models.GradeMin && grade <= models.GradeMax
	})
}
