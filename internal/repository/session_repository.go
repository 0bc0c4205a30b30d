package repository

import (
	"sort"
	"time"

	"github.com/NUVersee/AdmissionOfficer-Chatbot/internal/models"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// SessionRepository keeps per-session conversation memories in an in-process
// TTL cache. A session expires after the configured idle period; any access
// refreshes it.
type SessionRepository struct {
	store  *cache.Cache
	logger *zap.Logger
}

// ActiveSession describes one live session for the listing endpoint.
type ActiveSession struct {
	ID     string
	Turns  int
	Window int
}

func NewSessionRepository(ttl, cleanupInterval time.Duration, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{
		store:  cache.New(ttl, cleanupInterval),
		logger: logger,
	}
}

// GetOrCreate returns the memory owned by a session, creating it on first
// use.
func (r *SessionRepository) GetOrCreate(sessionID string) *models.ConversationMemory {
	if v, found := r.store.Get(sessionID); found {
		mem := v.(*models.ConversationMemory)
		r.store.Set(sessionID, mem, cache.DefaultExpiration)
		return mem
	}

	mem := models.NewConversationMemory()
	if err := r.store.Add(sessionID, mem, cache.DefaultExpiration); err != nil {
		// Lost the race to another request; use the winner's memory
		if v, found := r.store.Get(sessionID); found {
			return v.(*models.ConversationMemory)
		}
	}
	r.logger.Debug("Session created", zap.String("session_id", sessionID))
	return mem
}

// Get returns the memory for a session without creating one.
func (r *SessionRepository) Get(sessionID string) (*models.ConversationMemory, bool) {
	v, found := r.store.Get(sessionID)
	if !found {
		return nil, false
	}
	return v.(*models.ConversationMemory), true
}

// Delete removes a session entirely and reports whether it existed.
func (r *SessionRepository) Delete(sessionID string) bool {
	if _, found := r.store.Get(sessionID); !found {
		return false
	}
	r.store.Delete(sessionID)
	return true
}

// List returns the live sessions sorted by id.
func (r *SessionRepository) List() []ActiveSession {
	items := r.store.Items()
	sessions := make([]ActiveSession, 0, len(items))
	for id, item := range items {
		mem, ok := item.Object.(*models.ConversationMemory)
		if !ok {
			continue
		}
		sessions = append(sessions, ActiveSession{
			ID:     id,
			Turns:  mem.Len(),
			Window: mem.Cap(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions
}

// Count reports the number of live sessions.
func (r *SessionRepository) Count() int {
	return r.store.ItemCount()
}
