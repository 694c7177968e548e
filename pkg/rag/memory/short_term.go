package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/store"

	"github.com/redis/go-redis/v9"
)

// ShortTermStore keeps a capped ring of recent interactions and a transient
// preferences blob per user in a shared Redis instance. Every call that
// touches Redis fails soft: connection errors are logged and read as "no
// data", they never propagate to the caller.
type ShortTermStore struct {
	client          *redis.Client
	ttl             time.Duration
	maxInteractions int
	logger          logger.ILogger
}

func NewShortTermStore(client *redis.Client, ttl time.Duration, maxInteractions int, log logger.ILogger) *ShortTermStore {
	return &ShortTermStore{
		client:          client,
		ttl:             ttl,
		maxInteractions: maxInteractions,
		logger:          log,
	}
}

func interactionKey(userID string) string {
	return fmt.Sprintf("short_term:%s", userID)
}

func preferencesKey(userID string) string {
	return fmt.Sprintf("preferences:%s", userID)
}

// StoreInteraction prepends the interaction to the user's ring, trims it to
// the cap and refreshes the TTL.
func (s *ShortTermStore) StoreInteraction(ctx context.Context, userID string, interaction store.Interaction) {
	if s.client == nil {
		return
	}

	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now()
	}

	payload, err := json.Marshal(interaction)
	if err != nil {
		s.logger.Error("short_term_memory", "Failed to marshal interaction", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	key := interactionKey(userID)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, int64(s.maxInteractions-1))
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Error("short_term_memory", "Failed to store interaction", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

// RecentInteractions returns up to limit most recent interactions, newest
// first. Unreachable store or absent key reads as an empty list.
func (s *ShortTermStore) RecentInteractions(ctx context.Context, userID string, limit int) []store.Interaction {
	if s.client == nil {
		return nil
	}
	if limit <= 0 || limit > s.maxInteractions {
		limit = s.maxInteractions
	}

	raw, err := s.client.LRange(ctx, interactionKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		s.logger.Error("short_term_memory", "Failed to get recent interactions", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil
	}

	interactions := make([]store.Interaction, 0, len(raw))
	for _, item := range raw {
		var interaction store.Interaction
		if err := json.Unmarshal([]byte(item), &interaction); err != nil {
			continue
		}
		interactions = append(interactions, interaction)
	}
	return interactions
}

// StorePreferences overwrites the transient preferences blob with a fresh TTL.
func (s *ShortTermStore) StorePreferences(ctx context.Context, userID string, preferences map[string]interface{}) {
	if s.client == nil {
		return
	}

	payload, err := json.Marshal(preferences)
	if err != nil {
		s.logger.Error("short_term_memory", "Failed to marshal preferences", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return
	}

	if err := s.client.SetEx(ctx, preferencesKey(userID), payload, s.ttl).Err(); err != nil {
		s.logger.Error("short_term_memory", "Failed to store preferences", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

// GetPreferences reads the preferences blob; missing or unreachable reads as
// an empty map.
func (s *ShortTermStore) GetPreferences(ctx context.Context, userID string) map[string]interface{} {
	if s.client == nil {
		return map[string]interface{}{}
	}

	raw, err := s.client.Get(ctx, preferencesKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Error("short_term_memory", "Failed to get preferences", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
		return map[string]interface{}{}
	}

	var preferences map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &preferences); err != nil {
		return map[string]interface{}{}
	}
	return preferences
}
