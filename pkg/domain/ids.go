// Package domain holds identifier types shared across packages.
package domain

import (
	"github.com/google/uuid"

	dErrors "donorprofile/pkg/domain-errors"
)

// canonicalUUIDLen is the length of the 8-4-4-4-12 textual form.
const canonicalUUIDLen = 36

// ProfileID identifies a public donor profile.
type ProfileID uuid.UUID

// ParseProfileID accepts only the canonical hyphenated UUID form, in either case.
// Braced, URN and unhyphenated forms that uuid.Parse would tolerate are rejected.
func ParseProfileID(s string) (ProfileID, error) {
	if len(s) != canonicalUUIDLen {
		return ProfileID{}, dErrors.New(dErrors.CodeInvalidInput, "profile id must be a canonical UUID")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return ProfileID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "profile id must be a canonical UUID")
	}
	return ProfileID(parsed), nil
}

// String renders the lowercase canonical form.
func (id ProfileID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether the id was never set.
func (id ProfileID) IsZero() bool {
	return id == ProfileID{}
}
