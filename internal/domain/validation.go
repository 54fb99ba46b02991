package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateAnswerInOptions, Question{})
	return v
}

// validateAnswerInOptions enforces that the answer matches exactly one option.
func validateAnswerInOptions(sl validator.StructLevel) {
	q := sl.Current().Interface().(Question)
	if q.Answer == "" {
		return
	}
	matches := 0
	for _, opt := range q.Options {
		if opt == q.Answer {
			matches++
		}
	}
	if matches != 1 {
		sl.ReportError(q.Answer, "answer", "Answer", "answer_in_options", "")
	}
}

// Validate checks struct tags on s and returns ValidationErrors on failure.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return out
}

// ValidateQuestions checks a question sequence before an attempt can start.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidQuestionSet)
	}
	for i, q := range questions {
		if err := Validate(q); err != nil {
			return fmt.Errorf("%w: question %d: %w", ErrInvalidQuestionSet, i+1, err)
		}
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.IndexByte(ns, '.'); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must have exactly %s items", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	case "answer_in_options":
		return "must match exactly one option"
	default:
		return fmt.Sprintf("failed rule '%s'", fe.Tag())
	}
}
