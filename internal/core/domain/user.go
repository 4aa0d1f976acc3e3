package domain

import (
	"strings"
	"time"
)

// Gender is the gender label reported by the user source.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// UserRecord is one synthetic person profile. Values are never modified
// after they leave the user source.
type UserRecord struct {
	Title       string
	First       string
	Last        string
	Gender      Gender
	StreetName  string
	City        string
	State       string
	DateOfBirth time.Time
	PictureURL  string
}

// FullName joins title, first and last name with single spaces.
func (u UserRecord) FullName() string {
	return u.Title + " " + u.First + " " + u.Last
}

// Address composes the display address as "street, city, state".
func (u UserRecord) Address() string {
	return u.StreetName + ", " + u.City + ", " + u.State
}

// Matches reports whether the lowercased query is contained in the
// lowercased full name or address. The empty query matches everything.
func (u UserRecord) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(u.FullName()), q) ||
		strings.Contains(strings.ToLower(u.Address()), q)
}

// Filter returns the records matching query in input order. The input slice
// is never modified; the result is always a fresh slice.
func Filter(records []UserRecord, query string) []UserRecord {
	matched := make([]UserRecord, 0, len(records))
	for _, record := range records {
		if record.Matches(query) {
			matched = append(matched, record)
		}
	}
	return matched
}
