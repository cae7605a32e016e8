package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "kinship/pkg/domain"
)

func TestEdgesFor(t *testing.T) {
	anchor := id.NewPersonID()
	wife := id.NewPersonID()
	daughter := id.NewPersonID()
	father := id.NewPersonID()
	stranger := id.NewPersonID()

	genders := map[id.PersonID]Gender{
		anchor:   GenderMale,
		wife:     GenderFemale,
		daughter: GenderFemale,
		father:   GenderMale,
	}
	genderOf := func(p id.PersonID) Gender {
		if g, ok := genders[p]; ok {
			return g
		}
		return GenderUnknown
	}

	rels := []*Relationship{
		// stored from the anchor's side
		{ID: id.NewRelationshipID(), PersonID: anchor, RelatedPersonID: wife, Type: RelationshipWife, IsActive: true},
		// stored from the daughter's side: anchor is her father
		{ID: id.NewRelationshipID(), PersonID: daughter, RelatedPersonID: anchor, Type: RelationshipFather, IsActive: true},
		// both directions persisted for the father link
		{ID: id.NewRelationshipID(), PersonID: anchor, RelatedPersonID: father, Type: RelationshipFather, IsActive: true},
		{ID: id.NewRelationshipID(), PersonID: father, RelatedPersonID: anchor, Type: RelationshipSon, IsActive: true},
		// inactive edges are invisible
		{ID: id.NewRelationshipID(), PersonID: anchor, RelatedPersonID: stranger, Type: RelationshipSpouse, IsActive: false},
		// not touching the anchor
		{ID: id.NewRelationshipID(), PersonID: wife, RelatedPersonID: daughter, Type: RelationshipDaughter, IsActive: true},
		nil,
	}

	edges := EdgesFor(anchor, rels, genderOf)

	byOther := map[id.PersonID]Edge{}
	for _, e := range edges {
		byOther[e.OtherPersonID] = e
	}
	assert.Len(t, edges, 3)
	assert.Equal(t, RelationshipWife, byOther[wife].Type)
	assert.True(t, byOther[wife].Direct)

	assert.Equal(t, RelationshipDaughter, byOther[daughter].Type, "inverse of Father read from the father, for a female child")
	assert.False(t, byOther[daughter].Direct)

	assert.Equal(t, RelationshipFather, byOther[father].Type)
	assert.True(t, byOther[father].Direct, "stored direction wins over synthesized duplicate")

	_, sawStranger := byOther[stranger]
	assert.False(t, sawStranger)

	connected := ConnectedIDs(edges)
	assert.Len(t, connected, 3)
}
