package models

import (
	"strings"

	dErrors "kinship/pkg/domain-errors"
)

// RelationshipType is the closed set of family relationship kinds.
// An edge (P, R, T) reads "R is P's T".
type RelationshipType string

const (
	RelationshipFather   RelationshipType = "Father"
	RelationshipMother   RelationshipType = "Mother"
	RelationshipSon      RelationshipType = "Son"
	RelationshipDaughter RelationshipType = "Daughter"
	RelationshipWife     RelationshipType = "Wife"
	RelationshipHusband  RelationshipType = "Husband"
	RelationshipSpouse   RelationshipType = "Spouse"
)

// RelationshipKind groups gendered variants of the same role.
type RelationshipKind int

const (
	KindParent RelationshipKind = iota + 1
	KindChild
	KindSpouse
)

func (k RelationshipKind) String() string {
	switch k {
	case KindParent:
		return "parent"
	case KindChild:
		return "child"
	case KindSpouse:
		return "spouse"
	default:
		return "unknown"
	}
}

// Unknown gender resolves to these forms. Kept as an explicit policy so
// callers can see where the default comes from.
const (
	DefaultChildType  = RelationshipSon
	DefaultParentType = RelationshipFather
	DefaultSpouseType = RelationshipSpouse
)

type relationshipDef struct {
	label    string
	priority int
	kind     RelationshipKind
}

// relationshipDefs is the single table describing every relationship type.
// Lower priority sorts first.
var relationshipDefs = map[RelationshipType]relationshipDef{
	RelationshipSon:      {label: "Son", priority: 1, kind: KindChild},
	RelationshipDaughter: {label: "Daughter", priority: 1, kind: KindChild},
	RelationshipFather:   {label: "Father", priority: 2, kind: KindParent},
	RelationshipMother:   {label: "Mother", priority: 2, kind: KindParent},
	RelationshipSpouse:   {label: "Spouse", priority: 3, kind: KindSpouse},
	RelationshipWife:     {label: "Wife", priority: 3, kind: KindSpouse},
	RelationshipHusband:  {label: "Husband", priority: 3, kind: KindSpouse},
}

type genderedForms struct {
	male, female, unknown RelationshipType
}

var kindForms = map[RelationshipKind]genderedForms{
	KindParent: {male: RelationshipFather, female: RelationshipMother, unknown: DefaultParentType},
	KindChild:  {male: RelationshipSon, female: RelationshipDaughter, unknown: DefaultChildType},
	KindSpouse: {male: RelationshipHusband, female: RelationshipWife, unknown: DefaultSpouseType},
}

var inverseKind = map[RelationshipKind]RelationshipKind{
	KindParent: KindChild,
	KindChild:  KindParent,
	KindSpouse: KindSpouse,
}

// ParseRelationshipType validates external input, case-insensitively.
func ParseRelationshipType(s string) (RelationshipType, error) {
	s = strings.TrimSpace(s)
	for t := range relationshipDefs {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid relationship type: "+s)
}

// AllRelationshipTypes lists the types in priority order.
func AllRelationshipTypes() []RelationshipType {
	return []RelationshipType{
		RelationshipSon, RelationshipDaughter,
		RelationshipFather, RelationshipMother,
		RelationshipSpouse, RelationshipWife, RelationshipHusband,
	}
}

func (t RelationshipType) IsValid() bool {
	_, ok := relationshipDefs[t]
	return ok
}

func (t RelationshipType) String() string { return string(t) }

// Label is the display name of the type.
func (t RelationshipType) Label() string {
	if def, ok := relationshipDefs[t]; ok {
		return def.label
	}
	return string(t)
}

// Priority ranks types for sorting; unknown types sort last.
func (t RelationshipType) Priority() int {
	if def, ok := relationshipDefs[t]; ok {
		return def.priority
	}
	return len(relationshipDefs) + 1
}

func (t RelationshipType) Kind() RelationshipKind {
	return relationshipDefs[t].kind
}

// Is reports whether t belongs to one of the given kinds.
func (t RelationshipType) Is(kinds ...RelationshipKind) bool {
	k := t.Kind()
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// ForGender picks the gendered variant of kind k.
func (k RelationshipKind) ForGender(g Gender) RelationshipType {
	forms, ok := kindForms[k]
	if !ok {
		return ""
	}
	switch g {
	case GenderMale:
		return forms.male
	case GenderFemale:
		return forms.female
	default:
		return forms.unknown
	}
}

// Inverse returns the type of the edge read from the far end.
// g is the gender of the person who becomes the related one: for
// "R is P's Father", Inverse(GenderOf(P)) gives what P is to R.
func (t RelationshipType) Inverse(g Gender) RelationshipType {
	def, ok := relationshipDefs[t]
	if !ok {
		return ""
	}
	return inverseKind[def.kind].ForGender(g)
}
