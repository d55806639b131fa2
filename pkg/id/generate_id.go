package id

import (
	"encoding/hex"
	"regexp"

	"github.com/google/uuid"
)

var reID32 = regexp.MustCompile(`^[a-f0-9]{32}$`)

// NewID32 returns a random (v4) UUID as exactly 32 lowercase hex characters.
func NewID32() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// Valid32 reports whether s has the shape NewID32 produces.
func Valid32(s string) bool { return reID32.MatchString(s) }
