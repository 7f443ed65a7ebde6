package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/referral-portal/referral-service/internal/models"
)

// DeadlineLayouts are the accepted wire formats for job deadlines
var DeadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates tag rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateJobCreate validates struct tags and returns the parsed deadline
func (bv *BusinessValidator) ValidateJobCreate(req *JobCreateRequest) (time.Time, ValidationErrors) {
	errs := bv.Validate(req)
	if len(errs) > 0 {
		return time.Time{}, errs
	}

	deadline, err := ParseDeadline(req.Deadline)
	if err != nil {
		return time.Time{}, ValidationErrors{{
			Field:   "deadline",
			Message: "must be a date (YYYY-MM-DD or RFC 3339)",
			Value:   req.Deadline,
			Rule:    "deadline",
		}}
	}

	for i, skill := range req.Skills {
		if strings.TrimSpace(skill) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("skills[%d]", i),
				Message: "skill cannot be empty",
				Value:   skill,
				Rule:    "business_logic",
			})
		}
	}
	return deadline, errs
}

// ValidateStatusTransition checks the referral lifecycle
func (bv *BusinessValidator) ValidateStatusTransition(current, next models.ReferralStatus) ValidationErrors {
	if current.CanTransitionTo(next) {
		return nil
	}
	return ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
		Value:   next,
		Rule:    "status_transition",
	}}
}

// ParseDeadline accepts RFC 3339 timestamps and plain dates. A plain date
// means the end of that day in UTC.
func ParseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range DeadlineLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if layout == "2006-01-02" {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable deadline %q", raw)
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Rejects whitespace-only input that "required" lets through
	bv.validate.RegisterValidation("required_trimmed", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	bv.validate.RegisterValidation("referral_status", func(fl validator.FieldLevel) bool {
		return models.ReferralStatus(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("deadline", func(fl validator.FieldLevel) bool {
		_, err := ParseDeadline(fl.Field().String())
		return err == nil
	})
}
