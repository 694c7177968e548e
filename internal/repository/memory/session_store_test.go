package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestStore(maxHistory int) *SessionStore {
	return NewSessionStore(time.Hour, time.Hour, maxHistory)
}

func TestGetCreatesEmptySession(t *testing.T) {
	s := newTestStore(50)

	ctx := s.Get("session-1")

	assert.Equal(t, "session-1", ctx.ID)
	assert.Empty(t, ctx.ConversationHistory)
	assert.NotNil(t, ctx.ContextVariables)
	assert.False(t, ctx.CreatedAt.IsZero())
	assert.Equal(t, 1, s.Count())
}

func TestAppendTurnRoundTrip(t *testing.T) {
	s := newTestStore(50)

	s.AppendTurn("session-1", "user", "hello")
	s.AppendTurn("session-1", "assistant", "hi there")

	ctx := s.Get("session-1")
	assert.Len(t, ctx.ConversationHistory, 2)
	assert.Equal(t, "user", ctx.ConversationHistory[0].Role)
	assert.Equal(t, "hello", ctx.ConversationHistory[0].Content)
	assert.Equal(t, "assistant", ctx.ConversationHistory[1].Role)
	assert.Equal(t, "hi there", ctx.ConversationHistory[1].Content)
	assert.False(t, ctx.ConversationHistory[0].Timestamp.After(ctx.ConversationHistory[1].Timestamp))
}

func TestAppendTurnEvictsOldestAtCap(t *testing.T) {
	s := newTestStore(5)

	for i := 0; i < 12; i++ {
		s.AppendTurn("session-1", "user", fmt.Sprintf("turn %d", i))
	}

	ctx := s.Get("session-1")
	assert.Len(t, ctx.ConversationHistory, 5)
	assert.Equal(t, "turn 7", ctx.ConversationHistory[0].Content)
	assert.Equal(t, "turn 11", ctx.ConversationHistory[4].Content)
}

func TestUpdateMergesPatch(t *testing.T) {
	s := newTestStore(50)
	s.Update("session-1", SessionPatch{
		ContextVariables: map[string]interface{}{"lang": "en"},
	})

	topic := "weather"
	s.Update("session-1", SessionPatch{
		CurrentTopic:     &topic,
		ContextVariables: map[string]interface{}{"unit": "celsius"},
	})

	ctx := s.Get("session-1")
	assert.Equal(t, "weather", ctx.CurrentTopic)
	assert.Equal(t, "en", ctx.ContextVariables["lang"])
	assert.Equal(t, "celsius", ctx.ContextVariables["unit"])
}

func TestClearRemovesSession(t *testing.T) {
	s := newTestStore(50)
	s.AppendTurn("session-1", "user", "hello")

	s.Clear("session-1")

	assert.Equal(t, 0, s.Count())
	ctx := s.Get("session-1")
	assert.Empty(t, ctx.ConversationHistory)
}

func TestEvictExpiredRemovesIdleSessions(t *testing.T) {
	s := newTestStore(50)
	s.AppendTurn("idle", "user", "old message")
	time.Sleep(20 * time.Millisecond)
	s.AppendTurn("active", "user", "fresh message")

	evicted := s.EvictExpired(time.Now(), 15*time.Millisecond)

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, s.Count())
	assert.Len(t, s.Get("active").ConversationHistory, 1)
	assert.Empty(t, s.Get("idle").ConversationHistory)
}

func TestGetReturnsSnapshot(t *testing.T) {
	s := newTestStore(50)
	s.AppendTurn("session-1", "user", "hello")

	ctx := s.Get("session-1")
	ctx.ConversationHistory[0].Content = "mutated"
	ctx.ContextVariables["injected"] = true

	fresh := s.Get("session-1")
	assert.Equal(t, "hello", fresh.ConversationHistory[0].Content)
	assert.NotContains(t, fresh.ContextVariables, "injected")
}

func TestConcurrentAppendsStayWithinCap(t *testing.T) {
	s := newTestStore(20)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.AppendTurn("shared", "user", fmt.Sprintf("w%d-%d", worker, j))
			}
		}(i)
	}
	wg.Wait()

	ctx := s.Get("shared")
	assert.Len(t, ctx.ConversationHistory, 20)
}

func TestSessionsAreIndependent(t *testing.T) {
	s := newTestStore(50)

	s.AppendTurn("a", "user", "for a")
	s.AppendTurn("b", "user", "for b")

	assert.Equal(t, "for a", s.Get("a").ConversationHistory[0].Content)
	assert.Equal(t, "for b", s.Get("b").ConversationHistory[0].Content)
	assert.Equal(t, 2, s.Count())
}
