package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
)

// ExclusionMode decides what happens to candidates that are the requester
// or are already connected to them.
type ExclusionMode string

const (
	// ExclusionDrop removes excluded candidates from the result.
	ExclusionDrop ExclusionMode = "drop"
	// ExclusionFlag keeps them with IsSelf / AlreadyConnected set.
	ExclusionFlag ExclusionMode = "flag"
)

// MatchQuery describes a person about to be created.
type MatchQuery struct {
	FirstName   string           `json:"first_name" validate:"required,max=100"`
	MiddleName  string           `json:"middle_name,omitempty" validate:"max=100"`
	LastName    string           `json:"last_name" validate:"required,max=100"`
	Gender      Gender           `json:"gender" validate:"required,oneof=male female unknown"`
	DateOfBirth time.Time        `json:"date_of_birth" validate:"required"`
	Address     AddressCriteria  `json:"address"`
	Religion    ReligionCriteria `json:"religion"`
	RequesterID id.UserID        `json:"-" validate:"-"`
	Mode        ExclusionMode    `json:"exclusion_mode,omitempty" validate:"omitempty,oneof=drop flag"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate trims the address and religion criteria in place, then checks
// mandatory fields. now bounds the date of birth.
func (q *MatchQuery) Validate(now time.Time) error {
	if q == nil {
		return dErrors.New(dErrors.CodeValidation, "match query is required")
	}
	q.Address = q.Address.Trimmed()
	q.Religion = q.Religion.Trimmed()
	if err := validate.Struct(q); err != nil {
		return dErrors.New(dErrors.CodeValidation, validationMessage(err))
	}
	if strings.TrimSpace(q.FirstName) == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name is required")
	}
	if strings.TrimSpace(q.LastName) == "" {
		return dErrors.New(dErrors.CodeValidation, "last_name is required")
	}
	if CalendarDate(q.DateOfBirth).After(CalendarDate(now)) {
		return dErrors.New(dErrors.CodeValidation, "date_of_birth must not be in the future")
	}
	if q.RequesterID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "requester is required")
	}
	return nil
}

// ExclusionModeOrDefault returns Mode, or ExclusionDrop when unset.
func (q *MatchQuery) ExclusionModeOrDefault() ExclusionMode {
	if q.Mode == "" {
		return ExclusionDrop
	}
	return q.Mode
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid match query"
	}
	fe := verrs[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
