package models

import (
	"time"

	id "kinship/pkg/domain"
	pkgstrings "kinship/pkg/platform/strings"
)

// Person is an identity record in the family graph, independent of any account.
type Person struct {
	ID          id.PersonID
	AccountID   *id.UserID
	GivenName   string
	MiddleName  string
	FamilyName  string
	Gender      Gender
	DateOfBirth time.Time
	DateOfDeath *time.Time
	Addresses   []Address
	Religions   []Religion
	CreatedAt   time.Time
}

// Address is a chain of reference-data codes, most general first.
type Address struct {
	Country     string `json:"country" yaml:"country"`
	State       string `json:"state,omitempty" yaml:"state"`
	District    string `json:"district,omitempty" yaml:"district"`
	SubDistrict string `json:"sub_district,omitempty" yaml:"sub_district"`
	Locality    string `json:"locality,omitempty" yaml:"locality"`
}

// Religion is a religion code with optional refinements.
type Religion struct {
	Religion    string `json:"religion" yaml:"religion"`
	Category    string `json:"category,omitempty" yaml:"category"`
	SubCategory string `json:"sub_category,omitempty" yaml:"sub_category"`
}

// FullName joins the non-empty name parts.
func (p *Person) FullName() string {
	return pkgstrings.JoinNonEmpty(p.GivenName, p.MiddleName, p.FamilyName)
}

// IsLinkedTo reports whether the person is the given account's own record.
func (p *Person) IsLinkedTo(userID id.UserID) bool {
	return p.AccountID != nil && *p.AccountID == userID
}

// CalendarDate drops the clock and zone, keeping the calendar day as UTC midnight.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameCalendarDate compares two instants by calendar day only.
func SameCalendarDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
