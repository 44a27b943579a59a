package task

import (
	"strings"
	"time"
)

// User is a registered chat participant. Identity is the addressable
// endpoint used to deliver messages.
type User struct {
	Identity     int64     `json:"identity"`
	Handle       string    `json:"handle"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// NormalizeHandle trims whitespace, strips a leading "@" and lower-cases the
// handle so "@Bob" and "bob" compare equal.
func NormalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return strings.ToLower(strings.TrimSpace(handle))
}
