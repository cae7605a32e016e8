package handler

import (
	"strings"
	"time"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// MatchRequest is the HTTP request body for POST /family/matches.
type MatchRequest struct {
	FirstName     string                  `json:"first_name"`
	MiddleName    string                  `json:"middle_name"`
	LastName      string                  `json:"last_name"`
	Gender        string                  `json:"gender"`
	DateOfBirth   string                  `json:"date_of_birth"`
	Address       models.AddressCriteria  `json:"address"`
	Religion      models.ReligionCriteria `json:"religion"`
	ExclusionMode string                  `json:"exclusion_mode"`

	// Parsed values (populated by Validate)
	parsedGender      models.Gender
	parsedDateOfBirth time.Time
}

// Validate checks the request shape and parses typed fields.
// The match criteria themselves are checked by the matching service.
func (r *MatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Gender = strings.TrimSpace(r.Gender)
	if r.Gender == "" {
		return dErrors.New(dErrors.CodeValidation, "gender is required")
	}
	gender, err := models.ParseGender(r.Gender)
	if err != nil {
		return err
	}
	r.parsedGender = gender

	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	if r.DateOfBirth == "" {
		return dErrors.New(dErrors.CodeValidation, "date_of_birth is required")
	}
	dob, err := time.Parse(dateLayout, r.DateOfBirth)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "date_of_birth must be formatted as YYYY-MM-DD")
	}
	r.parsedDateOfBirth = dob

	r.ExclusionMode = strings.ToLower(strings.TrimSpace(r.ExclusionMode))
	return nil
}

// Query builds the domain query on behalf of requester.
func (r *MatchRequest) Query(requester id.UserID) *models.MatchQuery {
	return &models.MatchQuery{
		FirstName:   r.FirstName,
		MiddleName:  r.MiddleName,
		LastName:    r.LastName,
		Gender:      r.parsedGender,
		DateOfBirth: r.parsedDateOfBirth,
		Address:     r.Address,
		Religion:    r.Religion,
		RequesterID: requester,
		Mode:        models.ExclusionMode(r.ExclusionMode),
	}
}
