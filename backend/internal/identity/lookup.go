package identity

import (
	"context"
	"strings"
	"sync"

	"tgosint/backend/internal/constants"
)

// Lookup fetches the public username of a user from an external directory.
// An empty handle with a nil error means the user exists but has no username.
type Lookup interface {
	LookupHandle(ctx context.Context, userID int64) (string, error)
}

// FormatHandle normalizes a bare username into the "@name" form stored in the cache
func FormatHandle(username string) string {
	username = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(username), constants.HandlePrefix))
	if username == "" {
		return ""
	}
	return constants.HandlePrefix + username
}

// StaticLookup answers from fixed maps. It backs offline runs and tests.
type StaticLookup struct {
	Handles map[int64]string
	Errors  map[int64]error

	mu    sync.Mutex
	calls []int64
}

// NewStaticLookup creates a lookup that knows the given usernames
func NewStaticLookup(handles map[int64]string) *StaticLookup {
	return &StaticLookup{
		Handles: handles,
		Errors:  map[int64]error{},
	}
}

// LookupHandle implements Lookup
func (s *StaticLookup) LookupHandle(ctx context.Context, userID int64) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, userID)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err, ok := s.Errors[userID]; ok {
		return "", err
	}
	return s.Handles[userID], nil
}

// Calls returns the ids looked up so far, in call order
func (s *StaticLookup) Calls() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int64, len(s.calls))
	copy(out, s.calls)
	return out
}
