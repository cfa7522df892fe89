package utils

import "github.com/google/uuid"

// GenerateID returns a random UUID string. Every entity id in the system is
// one of these.
func GenerateID() string {
	return uuid.NewString()
}

// IsValidUUID reports whether id parses as a UUID. Path parameters are
// checked before they reach a query so a garbled id is a 400, not a
// database cast error.
func IsValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
