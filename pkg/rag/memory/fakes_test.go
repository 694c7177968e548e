package memory

import (
	"context"
	"sort"
	"time"

	"rag-assistant-be/internal/entity"
	"rag-assistant-be/internal/repository/contract"
	"rag-assistant-be/internal/repository/specification"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/pkg/embedding"

	"github.com/google/uuid"
)

// In-memory repository doubles backing the long-term store tests.

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()
	r.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, user := range r.users {
		if userMatches(user, specs) {
			return user, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var out []*entity.User
	for _, user := range r.users {
		if userMatches(user, specs) {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	users, _ := r.FindAll(ctx, specs...)
	return int64(len(users)), nil
}

func (r *fakeUserRepo) UpdatePreferences(ctx context.Context, id uuid.UUID, preferences map[string]interface{}) error {
	if user, ok := r.users[id]; ok {
		user.Preferences = preferences
		user.UpdatedAt = time.Now()
	}
	return nil
}

func userMatches(user *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if user.Id != s.ID {
				return false
			}
		case specification.ByExternalID:
			if user.ExternalId != s.ExternalID {
				return false
			}
		}
	}
	return true
}

type fakeConversationRepo struct {
	conversations map[uuid.UUID]*entity.Conversation
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now
	stored := *conversation
	stored.Messages = nil
	r.conversations[conversation.Id] = &stored
	return nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	conversation.UpdatedAt = time.Now()
	r.conversations[conversation.Id] = conversation
	return nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.conversations, id)
	return nil
}

func (r *fakeConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var out []*entity.Conversation
	limit := 0
	for _, conversation := range r.conversations {
		if conversationMatches(conversation, specs) {
			copied := *conversation
			out = append(out, &copied)
		}
	}
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			desc := s.Desc
			sort.Slice(out, func(i, j int) bool {
				if desc {
					return out[i].UpdatedAt.After(out[j].UpdatedAt)
				}
				return out[i].UpdatedAt.Before(out[j].UpdatedAt)
			})
		case specification.Limit:
			limit = s.Limit
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeConversationRepo) Touch(ctx context.Context, id uuid.UUID) error {
	if conversation, ok := r.conversations[id]; ok {
		conversation.UpdatedAt = time.Now()
	}
	return nil
}

func conversationMatches(conversation *entity.Conversation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByUserID:
			if conversation.UserId != s.UserID {
				return false
			}
		case specification.BySessionID:
			if conversation.SessionId != s.SessionID {
				return false
			}
		}
	}
	return true
}

type fakeMessageRepo struct {
	messages []*entity.Message
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	message.CreatedAt = time.Now()
	r.messages = append(r.messages, message)
	return nil
}

func (r *fakeMessageRepo) CreateBulk(ctx context.Context, messages []*entity.Message) error {
	for _, message := range messages {
		if err := r.Create(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	var out []*entity.Message
	for _, message := range r.messages {
		if messageMatches(message, specs) {
			out = append(out, message)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeMessageRepo) DeleteByConversationId(ctx context.Context, conversationId uuid.UUID) error {
	var kept []*entity.Message
	for _, message := range r.messages {
		if message.ConversationId != conversationId {
			kept = append(kept, message)
		}
	}
	r.messages = kept
	return nil
}

func messageMatches(message *entity.Message, specs []specification.Specification) bool {
	for _, spec := range specs {
		if s, ok := spec.(specification.ByConversationID); ok {
			if message.ConversationId != s.ConversationID {
				return false
			}
		}
	}
	return true
}

type fakeChunkRepo struct {
	chunks  []*entity.DocumentChunk
	similar []*contract.ScoredDocumentChunk
}

func (r *fakeChunkRepo) Create(ctx context.Context, chunk *entity.DocumentChunk) error {
	r.chunks = append(r.chunks, chunk)
	return nil
}

func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId string) error { return nil }
func (r *fakeChunkRepo) DeleteByUserId(ctx context.Context, userId uuid.UUID) error      { return nil }

func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return r.chunks, nil
}

func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.chunks)), nil
}

func (r *fakeChunkRepo) SearchSimilar(ctx context.Context, emb []float32, corpusId string, limit int, maxDistance float64, userId *uuid.UUID) ([]*contract.ScoredDocumentChunk, error) {
	return r.similar, nil
}

func (r *fakeChunkRepo) SearchKeyword(ctx context.Context, query string, corpusId string, limit int, userId *uuid.UUID) ([]*contract.ScoredDocumentChunk, error) {
	return nil, nil
}

// fakeUnitOfWork satisfies the unit-of-work contract without transactions.
type fakeUnitOfWork struct {
	users         *fakeUserRepo
	conversations *fakeConversationRepo
	messages      *fakeMessageRepo
	chunks        *fakeChunkRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository { return u.users }
func (u *fakeUnitOfWork) ConversationRepository() contract.ConversationRepository {
	return u.conversations
}
func (u *fakeUnitOfWork) MessageRepository() contract.MessageRepository { return u.messages }
func (u *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return u.chunks
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		uow: &fakeUnitOfWork{
			users:         &fakeUserRepo{users: map[uuid.UUID]*entity.User{}},
			conversations: &fakeConversationRepo{conversations: map[uuid.UUID]*entity.Conversation{}},
			messages:      &fakeMessageRepo{},
			chunks:        &fakeChunkRepo{},
		},
	}
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func scoredFromStored(r *fakeChunkRepo) []*contract.ScoredDocumentChunk {
	out := make([]*contract.ScoredDocumentChunk, 0, len(r.chunks))
	for _, chunk := range r.chunks {
		out = append(out, &contract.ScoredDocumentChunk{Chunk: chunk, Distance: 0.1})
	}
	return out
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.5, 0.5}},
	}, nil
}
