package memory

import (
	"context"
	"sync"

	"rag-assistant-be/internal/pkg/logger"
	sessionmem "rag-assistant-be/internal/repository/memory"
	"rag-assistant-be/pkg/store"
)

// Composer assembles the per-request memory Context from every tier. The
// independent fetches run concurrently and each one fails soft: a tier that
// errors is logged and left nil, never aborting the compose. A request with
// only session memory is still a valid (partial) context.
type Composer struct {
	sessions      *sessionmem.SessionStore
	shortTerm     *ShortTermStore
	longTerm      *LongTermStore
	conversations *ConversationMemory

	maxInteractions int
	maxHistory      int
	recallLimit     int
	logger          logger.ILogger
}

func NewComposer(
	sessions *sessionmem.SessionStore,
	shortTerm *ShortTermStore,
	longTerm *LongTermStore,
	conversations *ConversationMemory,
	maxInteractions int,
	maxHistory int,
	recallLimit int,
	log logger.ILogger,
) *Composer {
	return &Composer{
		sessions:        sessions,
		shortTerm:       shortTerm,
		longTerm:        longTerm,
		conversations:   conversations,
		maxInteractions: maxInteractions,
		maxHistory:      maxHistory,
		recallLimit:     recallLimit,
		logger:          log,
	}
}

// Compose reads all memory tiers for the request. The session tier is read
// synchronously (it also creates the session on first contact). The
// short-term tier is keyed by the external user id directly, so it runs
// regardless of whether the relational user lookup succeeds; only the
// long-term and recall tiers need the resolved user row.
func (c *Composer) Compose(ctx context.Context, userExternalID, sessionID, query string) *Context {
	sessionCtx := c.sessions.Get(sessionID)
	composed := &Context{SessionMemory: &sessionCtx}

	// User-keyed tiers only apply to identified requests.
	if userExternalID == "" {
		return composed
	}

	var wg sync.WaitGroup
	var shortTerm *ShortTerm
	var longTerm *LongTerm
	var recalled []store.Document

	wg.Add(1)
	go func() {
		defer wg.Done()
		shortTerm = &ShortTerm{
			RecentInteractions: c.shortTerm.RecentInteractions(ctx, userExternalID, c.maxInteractions),
			Preferences:        c.shortTerm.GetPreferences(ctx, userExternalID),
		}
	}()

	user, err := c.longTerm.GetOrCreateUser(ctx, userExternalID)
	if err != nil {
		c.logger.Warn("memory_composer", "User resolution failed, composing partial context", map[string]interface{}{
			"user_id":    userExternalID,
			"session_id": sessionID,
			"error":      err.Error(),
		})
	} else {
		wg.Add(2)
		go func() {
			defer wg.Done()
			history, err := c.longTerm.ConversationHistory(ctx, user.Id, c.maxHistory)
			if err != nil {
				c.logger.Warn("memory_composer", "Conversation history fetch failed", map[string]interface{}{
					"user_id": userExternalID,
					"error":   err.Error(),
				})
				history = nil
			}
			longTerm = &LongTerm{
				UserProfile:         user,
				ConversationHistory: history,
			}
		}()
		go func() {
			defer wg.Done()
			recalled = c.conversations.Recall(ctx, user.Id, query, c.recallLimit)
		}()
	}
	wg.Wait()

	composed.ShortTermMemory = shortTerm
	composed.LongTermMemory = longTerm
	composed.ConversationMemory = recalled
	return composed
}
