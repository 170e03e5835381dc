package machine

import "github.com/google/uuid"

// TokenGenerator produces session tokens for boot-session correlation.
// Every diagnostic record from a session carries its token, so a fault
// in session N and the restarted session N+1 can be tied together in
// post-mortem logs.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session tokens.
// Sorting tokens sorts sessions by start time, which is convenient when
// grepping multi-reboot logs.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
