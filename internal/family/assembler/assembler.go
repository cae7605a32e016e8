// Package assembler projects engine intermediates into the result types
// returned to callers. It holds no business rules beyond those projections.
package assembler

import (
	"fmt"

	"kinship/internal/family/models"
)

// HighConfidenceScore is the minimum score for a candidate to block creation,
// together with an exact date-of-birth match.
const HighConfidenceScore = 90.0

// Flags carries the requester-exclusion outcome for a candidate.
type Flags struct {
	IsSelf           bool
	AlreadyConnected bool
}

// Label is the display label for a relationship type.
func Label(t models.RelationshipType) string {
	return t.Label()
}

// ConnectionPath explains which of the anchor's relatives a suggestion came
// through. via is the kind of the anchor's edge to that relative.
func ConnectionPath(via models.RelationshipKind, name string) string {
	var role string
	switch via {
	case models.KindSpouse:
		role = "spouse"
	case models.KindParent:
		role = "parent"
	case models.KindChild:
		role = "child"
	default:
		role = "relative"
	}
	return fmt.Sprintf("Connected to your %s %s.", role, name)
}

// DiscoveryResult builds a suggestion for person, reached through
// intermediate along an anchor edge of kind via.
func DiscoveryResult(person *models.Person, inferred models.RelationshipType, intermediate *models.Person, via models.RelationshipKind, proximity int) models.DiscoveryResult {
	return models.DiscoveryResult{
		Person:         person,
		InferredType:   inferred,
		Label:          Label(inferred),
		ConnectionPath: ConnectionPath(via, intermediate.FullName()),
		Proximity:      proximity,
		Priority:       inferred.Priority(),
	}
}

// MatchCandidate builds a duplicate candidate. The combined score is the name
// score.
func MatchCandidate(person *models.Person, nameScore float64, q *models.MatchQuery, flags Flags) models.MatchCandidate {
	return models.MatchCandidate{
		Person:           person,
		NameScore:        nameScore,
		Score:            nameScore,
		IsSelf:           flags.IsSelf,
		AlreadyConnected: flags.AlreadyConnected,
		HighConfidence:   nameScore >= HighConfidenceScore && models.SameCalendarDate(person.DateOfBirth, q.DateOfBirth),
	}
}
