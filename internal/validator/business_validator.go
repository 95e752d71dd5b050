package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
)

const (
	minYear = 1300
	maxYear = 1500
)

var nationalIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{3,20}$`)

// ValidationError represents a business validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

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

// AsError returns nil for an empty list so callers can return it directly.
func (ve ValidationErrors) AsError() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates struct tags of any request
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	var out ValidationErrors
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Namespace(),
			Message: bv.getErrorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// ValidateAssessment checks the rules an assessment must satisfy before it
// is stored.
func (bv *BusinessValidator) ValidateAssessment(a *models.Assessment) ValidationErrors {
	var errs ValidationErrors
	if !models.IsValidMonth(a.Month) {
		errs = append(errs, ValidationError{Field: "month", Message: "must be a calendar month name", Value: a.Month, Rule: "persian_month"})
	}
	if a.Year < minYear || a.Year > maxYear {
		errs = append(errs, ValidationError{Field: "year", Message: fmt.Sprintf("must be between %d and %d", minYear, maxYear), Value: a.Year, Rule: "year"})
	}
	if (a.MinScore == nil) != (a.MaxScore == nil) {
		errs = append(errs, ValidationError{Field: "minScore", Message: "minScore and maxScore must be set together", Rule: "score_bounds"})
	} else if a.MinScore != nil && *a.MinScore > *a.MaxScore {
		errs = append(errs, ValidationError{Field: "minScore", Message: "must not exceed maxScore", Value: *a.MinScore, Rule: "score_bounds"})
	}
	for i, c := range a.SkillCategories {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("skillCategories[%d].name", i), Message: "is required", Rule: "required"})
		}
	}
	return errs
}

func (bv *BusinessValidator) ValidatePeriod(month string, year int) ValidationErrors {
	var errs ValidationErrors
	if !models.IsValidMonth(month) {
		errs = append(errs, ValidationError{Field: "month", Message: "must be a calendar month name", Value: month, Rule: "persian_month"})
	}
	if year < minYear || year > maxYear {
		errs = append(errs, ValidationError{Field: "year", Message: fmt.Sprintf("must be between %d and %d", minYear, maxYear), Value: year, Rule: "year"})
	}
	return errs
}

func (bv *BusinessValidator) ValidateChecklistTemplate(tpl *models.ChecklistTemplate) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(tpl.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "is required", Rule: "required"})
	}
	if tpl.MinScore > tpl.MaxScore {
		errs = append(errs, ValidationError{Field: "minScore", Message: "must not exceed maxScore", Value: tpl.MinScore, Rule: "score_bounds"})
	}
	return errs
}

func (bv *BusinessValidator) ValidateExamTemplate(tpl *models.ExamTemplate) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(tpl.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "is required", Rule: "required"})
	}
	for i, q := range tpl.Questions {
		field := fmt.Sprintf("questions[%d]", i)
		switch q.Type {
		case models.QuestionMultipleChoice:
			if len(q.Options) < 2 {
				errs = append(errs, ValidationError{Field: field + ".options", Message: "must have at least 2 options", Value: len(q.Options), Rule: "min"})
			}
			if q.CorrectAnswer != "" && !contains(q.Options, q.CorrectAnswer) {
				errs = append(errs, ValidationError{Field: field + ".correctAnswer", Message: "must be one of the options", Value: q.CorrectAnswer, Rule: "oneof"})
			}
		case models.QuestionDescriptive:
		default:
			errs = append(errs, ValidationError{Field: field + ".type", Message: "unsupported question type", Value: q.Type, Rule: "question_type"})
		}
	}
	return errs
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("persian_month", func(fl validator.FieldLevel) bool {
		return models.IsValidMonth(fl.Field().String())
	})

	bv.validate.RegisterValidation("national_id", func(fl validator.FieldLevel) bool {
		return nationalIDPattern.MatchString(fl.Field().String())
	})

	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		switch models.QuestionType(fl.Field().String()) {
		case models.QuestionMultipleChoice, models.QuestionDescriptive:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("chat_sender", func(fl validator.FieldLevel) bool {
		switch models.ChatSender(fl.Field().String()) {
		case models.SenderPatient, models.SenderManager:
			return true
		}
		return false
	})
}

// getErrorMessage returns user-friendly error messages
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "persian_month":
		return "must be a calendar month name"
	case "national_id":
		return "must be 3 to 20 letters or digits"
	case "question_type":
		return "must be multiple-choice or descriptive"
	case "chat_sender":
		return "must be patient or manager"
	default:
		return fmt.Sprintf("failed validation: %s", err.Tag())
	}
}

// Validator bundles the validators used by services and handlers.
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Struct validates request struct tags and returns nil or ValidationErrors.
func (v *Validator) Struct(s interface{}) error {
	return v.business.Validate(s).AsError()
}
