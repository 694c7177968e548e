package memory

import (
	"sync"
	"time"

	"rag-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionStore keeps per-session conversational state in process memory.
// Entries expire after the configured idle timeout; every touch refreshes the
// TTL. Appends are atomic per session, and sessions lock independently so
// requests against different sessions never contend.
type SessionStore struct {
	cache      *cache.Cache
	maxHistory int

	// guards lazy creation of entries only
	mu sync.Mutex
}

type sessionEntry struct {
	mu  sync.Mutex
	ctx store.SessionContext
}

// SessionPatch is a partial update merged into a session's context.
type SessionPatch struct {
	CurrentTopic     *string
	ContextVariables map[string]interface{}
}

func NewSessionStore(idleTimeout, cleanupInterval time.Duration, maxHistory int) *SessionStore {
	return &SessionStore{
		cache:      cache.New(idleTimeout, cleanupInterval),
		maxHistory: maxHistory,
	}
}

func (s *SessionStore) entry(sessionID string) *sessionEntry {
	if x, found := s.cache.Get(sessionID); found {
		return x.(*sessionEntry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// re-check under the lock, another request may have created it
	if x, found := s.cache.Get(sessionID); found {
		return x.(*sessionEntry)
	}

	now := time.Now()
	e := &sessionEntry{
		ctx: store.SessionContext{
			ID:                  sessionID,
			ConversationHistory: []store.Turn{},
			ContextVariables:    map[string]interface{}{},
			CreatedAt:           now,
			LastActivity:        now,
		},
	}
	s.cache.Set(sessionID, e, cache.DefaultExpiration)
	return e
}

// Get returns a snapshot of the session context, creating an empty session if
// none exists. Absence is not an error.
func (s *SessionStore) Get(sessionID string) store.SessionContext {
	e := s.entry(sessionID)

	e.mu.Lock()
	defer e.mu.Unlock()
	return copyContext(e.ctx)
}

// Update merges the patch into the session and refreshes the activity time.
func (s *SessionStore) Update(sessionID string, patch SessionPatch) {
	e := s.entry(sessionID)

	e.mu.Lock()
	if patch.CurrentTopic != nil {
		e.ctx.CurrentTopic = *patch.CurrentTopic
	}
	for k, v := range patch.ContextVariables {
		e.ctx.ContextVariables[k] = v
	}
	e.ctx.LastActivity = time.Now()
	e.mu.Unlock()

	s.cache.Set(sessionID, e, cache.DefaultExpiration)
}

// AppendTurn adds a timestamped turn and truncates the history to the
// configured cap, oldest first.
func (s *SessionStore) AppendTurn(sessionID, role, content string) {
	e := s.entry(sessionID)

	e.mu.Lock()
	now := time.Now()
	e.ctx.ConversationHistory = append(e.ctx.ConversationHistory, store.Turn{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	if len(e.ctx.ConversationHistory) > s.maxHistory {
		overflow := len(e.ctx.ConversationHistory) - s.maxHistory
		e.ctx.ConversationHistory = e.ctx.ConversationHistory[overflow:]
	}
	e.ctx.LastActivity = now
	e.mu.Unlock()

	s.cache.Set(sessionID, e, cache.DefaultExpiration)
}

// Clear removes all state for the session.
func (s *SessionStore) Clear(sessionID string) {
	s.cache.Delete(sessionID)
}

// EvictExpired removes sessions idle longer than timeout and returns how many
// were evicted.
func (s *SessionStore) EvictExpired(now time.Time, timeout time.Duration) int {
	evicted := 0
	for id, item := range s.cache.Items() {
		e := item.Object.(*sessionEntry)
		e.mu.Lock()
		idle := now.Sub(e.ctx.LastActivity)
		e.mu.Unlock()
		if idle > timeout {
			s.cache.Delete(id)
			evicted++
		}
	}
	return evicted
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}

func copyContext(ctx store.SessionContext) store.SessionContext {
	out := ctx
	out.ConversationHistory = make([]store.Turn, len(ctx.ConversationHistory))
	copy(out.ConversationHistory, ctx.ConversationHistory)
	out.ContextVariables = make(map[string]interface{}, len(ctx.ContextVariables))
	for k, v := range ctx.ContextVariables {
		out.ContextVariables[k] = v
	}
	return out
}
