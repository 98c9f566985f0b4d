package model

import "github.com/google/uuid"

// IsCanonicalUUID reports whether s is an 8-4-4-4-12 hex UUID. URN and
// braced forms are rejected.
func IsCanonicalUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
