package models

import (
	"strings"

	"github.com/google/uuid"
)

// LocalIDPrefix tags identifiers generated on the device before the
// remote store has issued a real one. Remote identifiers are plain
// UUIDs, so the prefix guarantees the two can never collide.
const LocalIDPrefix = "local-"

// NewLocalID returns a fresh placeholder identifier.
func NewLocalID() string {
	return LocalIDPrefix + uuid.NewString()
}

// IsLocalID reports whether id is a device-generated placeholder that
// has never existed in the remote store.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}
