package session

import (
	"github.com/google/uuid"
)

// NewID returns a random (version 4) UUID string.
func NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", NewSessionGenerationError(err)
	}
	return id.String(), nil
}

// ValidateID checks that sessionID is a UUID in canonical form. Session IDs
// must be visible ASCII, which the canonical form guarantees.
func ValidateID(sessionID string) error {
	if sessionID == "" {
		return NewSessionInvalidError("empty session ID")
	}
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return NewSessionInvalidError("malformed session ID")
	}
	if id.String() != sessionID {
		return NewSessionInvalidError("session ID is not in canonical form")
	}
	return nil
}
