package models

import (
	"strings"

	dErrors "kinship/pkg/domain-errors"
)

// Gender of a person as recorded on the person record.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

var validGenders = map[Gender]bool{
	GenderMale:    true,
	GenderFemale:  true,
	GenderUnknown: true,
}

// ParseGender accepts male, female or unknown in any case.
// An empty string is treated as unknown.
func ParseGender(s string) (Gender, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return GenderUnknown, nil
	}
	g := Gender(s)
	if !validGenders[g] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid gender: "+s)
	}
	return g, nil
}

func (g Gender) IsValid() bool { return validGenders[g] }

func (g Gender) String() string { return string(g) }
