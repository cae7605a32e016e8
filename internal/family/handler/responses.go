package handler

import (
	"kinship/internal/family/models"
)

// PersonResponse is the public view of a person record.
type PersonResponse struct {
	ID          string `json:"id"`
	GivenName   string `json:"given_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	FamilyName  string `json:"family_name"`
	FullName    string `json:"full_name"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	DateOfDeath string `json:"date_of_death,omitempty"`
}

// DiscoveryResponse is one suggested relationship.
type DiscoveryResponse struct {
	Person         PersonResponse `json:"person"`
	InferredType   string         `json:"inferred_type"`
	Label          string         `json:"label"`
	ConnectionPath string         `json:"connection_path"`
	Proximity      int            `json:"proximity"`
	Priority       int            `json:"priority"`
}

// MatchCandidateResponse is one possible duplicate.
type MatchCandidateResponse struct {
	Person           PersonResponse `json:"person"`
	Score            float64        `json:"score"`
	NameScore        float64        `json:"name_score"`
	HighConfidence   bool           `json:"high_confidence"`
	AlreadyConnected bool           `json:"already_connected"`
	IsSelf           bool           `json:"is_self"`
}

// MatchResponse is the HTTP response for POST /family/matches. Blocking is
// set when any candidate is high confidence.
type MatchResponse struct {
	Candidates []MatchCandidateResponse `json:"candidates"`
	Blocking   bool                     `json:"blocking"`
}

func FromPerson(p *models.Person) PersonResponse {
	resp := PersonResponse{
		ID:          p.ID.String(),
		GivenName:   p.GivenName,
		MiddleName:  p.MiddleName,
		FamilyName:  p.FamilyName,
		FullName:    p.FullName(),
		Gender:      string(p.Gender),
		DateOfBirth: p.DateOfBirth.Format(dateLayout),
	}
	if p.DateOfDeath != nil {
		resp.DateOfDeath = p.DateOfDeath.Format(dateLayout)
	}
	return resp
}

// FromDiscoveryResults converts results; an empty input yields an empty array.
func FromDiscoveryResults(results []models.DiscoveryResult) []DiscoveryResponse {
	out := make([]DiscoveryResponse, 0, len(results))
	for _, r := range results {
		out = append(out, DiscoveryResponse{
			Person:         FromPerson(r.Person),
			InferredType:   string(r.InferredType),
			Label:          r.Label,
			ConnectionPath: r.ConnectionPath,
			Proximity:      r.Proximity,
			Priority:       r.Priority,
		})
	}
	return out
}

func FromMatchCandidates(candidates []models.MatchCandidate) *MatchResponse {
	resp := &MatchResponse{Candidates: make([]MatchCandidateResponse, 0, len(candidates))}
	for _, c := range candidates {
		resp.Candidates = append(resp.Candidates, MatchCandidateResponse{
			Person:           FromPerson(c.Person),
			Score:            c.Score,
			NameScore:        c.NameScore,
			HighConfidence:   c.HighConfidence,
			AlreadyConnected: c.AlreadyConnected,
			IsSelf:           c.IsSelf,
		})
		if c.HighConfidence {
			resp.Blocking = true
		}
	}
	return resp
}
