package models

import (
	"time"

	id "kinship/pkg/domain"
)

// Relationship is a stored, directed edge: RelatedPersonID is PersonID's Type.
type Relationship struct {
	ID              id.RelationshipID
	PersonID        id.PersonID
	RelatedPersonID id.PersonID
	Type            RelationshipType
	IsActive        bool
	CreatedAt       time.Time
}

// Edge is a relationship seen from one anchor person:
// OtherPersonID is the anchor's Type.
type Edge struct {
	RelationshipID id.RelationshipID
	OtherPersonID  id.PersonID
	Type           RelationshipType
	// Direct is false when the edge was synthesized from the stored inverse.
	Direct bool
}

// EdgesFor normalizes rels around anchor. Inactive edges and edges not
// touching anchor are ignored. genderOf resolves the gender of the person
// on the far end of an inverted edge. Repeated (other, type) pairs collapse
// to one edge, preferring the stored direction.
func EdgesFor(anchor id.PersonID, rels []*Relationship, genderOf func(id.PersonID) Gender) []Edge {
	type key struct {
		other id.PersonID
		typ   RelationshipType
	}
	seen := make(map[key]int, len(rels))
	edges := make([]Edge, 0, len(rels))

	for _, rel := range rels {
		if rel == nil || !rel.IsActive {
			continue
		}
		var e Edge
		switch anchor {
		case rel.PersonID:
			e = Edge{RelationshipID: rel.ID, OtherPersonID: rel.RelatedPersonID, Type: rel.Type, Direct: true}
		case rel.RelatedPersonID:
			e = Edge{RelationshipID: rel.ID, OtherPersonID: rel.PersonID, Type: rel.Type.Inverse(genderOf(rel.PersonID))}
		default:
			continue
		}
		if e.Type == "" || e.OtherPersonID == anchor {
			continue
		}
		k := key{e.OtherPersonID, e.Type}
		if i, dup := seen[k]; dup {
			if e.Direct && !edges[i].Direct {
				edges[i] = e
			}
			continue
		}
		seen[k] = len(edges)
		edges = append(edges, e)
	}
	return edges
}

// ConnectedIDs returns the set of persons the edges point at.
func ConnectedIDs(edges []Edge) PersonIDSet {
	out := make(PersonIDSet, len(edges))
	for _, e := range edges {
		out.Add(e.OtherPersonID)
	}
	return out
}
