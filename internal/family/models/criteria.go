package models

import "strings"

// AddressCriteria is a partial address; every non-empty field must match.
type AddressCriteria struct {
	Country     string `json:"country" validate:"required,max=64"`
	State       string `json:"state,omitempty" validate:"max=64"`
	District    string `json:"district,omitempty" validate:"max=64"`
	SubDistrict string `json:"sub_district,omitempty" validate:"max=64"`
	Locality    string `json:"locality,omitempty" validate:"max=64"`
}

// Trimmed strips surrounding whitespace from every field, so a blank
// optional field no longer narrows the match.
func (c AddressCriteria) Trimmed() AddressCriteria {
	return AddressCriteria{
		Country:     strings.TrimSpace(c.Country),
		State:       strings.TrimSpace(c.State),
		District:    strings.TrimSpace(c.District),
		SubDistrict: strings.TrimSpace(c.SubDistrict),
		Locality:    strings.TrimSpace(c.Locality),
	}
}

// Matches reports whether a satisfies every non-empty criteria field.
func (c AddressCriteria) Matches(a Address) bool {
	return fieldMatches(c.Country, a.Country) &&
		fieldMatches(c.State, a.State) &&
		fieldMatches(c.District, a.District) &&
		fieldMatches(c.SubDistrict, a.SubDistrict) &&
		fieldMatches(c.Locality, a.Locality)
}

// ReligionCriteria is a partial religion tuple; every non-empty field must match.
type ReligionCriteria struct {
	Religion    string `json:"religion" validate:"required,max=64"`
	Category    string `json:"category,omitempty" validate:"max=64"`
	SubCategory string `json:"sub_category,omitempty" validate:"max=64"`
}

func (c ReligionCriteria) Trimmed() ReligionCriteria {
	return ReligionCriteria{
		Religion:    strings.TrimSpace(c.Religion),
		Category:    strings.TrimSpace(c.Category),
		SubCategory: strings.TrimSpace(c.SubCategory),
	}
}

func (c ReligionCriteria) Matches(r Religion) bool {
	return fieldMatches(c.Religion, r.Religion) &&
		fieldMatches(c.Category, r.Category) &&
		fieldMatches(c.SubCategory, r.SubCategory)
}

// AnyAddress reports whether any of the person's addresses match.
func (c AddressCriteria) AnyAddress(addrs []Address) bool {
	for _, a := range addrs {
		if c.Matches(a) {
			return true
		}
	}
	return false
}

func (c ReligionCriteria) AnyReligion(rels []Religion) bool {
	for _, r := range rels {
		if c.Matches(r) {
			return true
		}
	}
	return false
}

func fieldMatches(want, got string) bool {
	return want == "" || want == got
}
