package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry is the process-wide session store. Tokens are opaque random
// values mapped to user IDs; nothing is persisted, so a restart logs
// everyone out.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]int
	logger   zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]int),
		logger:   logger,
	}
}

// Create issues a new token for the given user and registers it.
func (r *Registry) Create(userID int) string {
	token := uuid.NewString()

	r.mu.Lock()
	r.sessions[token] = userID
	r.mu.Unlock()

	r.logger.Debug().Int("user_id", userID).Msg("Session created")
	return token
}

// Resolve returns the user ID behind a token. Unknown or empty tokens
// resolve to anonymous.
func (r *Registry) Resolve(token string) (int, bool) {
	if token == "" {
		return 0, false
	}

	r.mu.RLock()
	userID, ok := r.sessions[token]
	r.mu.RUnlock()
	return userID, ok
}

// Revoke drops the token. Revoking an unknown token is a no-op.
func (r *Registry) Revoke(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
