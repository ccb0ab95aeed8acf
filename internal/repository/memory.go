package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"messenger/chat-service/internal/models"
	"messenger/chat-service/pkg/apperr"
)

// MemoryRepository is an in-process MessengerRepository that mirrors
// the store's observable behavior: partition-local clustering order on
// reads, insert-as-upsert on the per-user index, and an atomic counter
// cell. It backs the service and handler tests; nothing in the serving
// path uses it.
type MemoryRepository struct {
	mu            sync.Mutex
	users         map[int64]*models.User
	conversations map[int64]*models.Conversation
	indexRows     map[indexKey]*models.Conversation
	messages      map[int64][]*models.Message
	counters      map[string]int64
}

type indexKey struct {
	viewerID       int64
	lastMessageAt  time.Time
	conversationID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[int64]*models.User),
		conversations: make(map[int64]*models.Conversation),
		indexRows:     make(map[indexKey]*models.Conversation),
		messages:      make(map[int64][]*models.Message),
		counters:      make(map[string]int64),
	}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := *user
	r.users[u.UserID] = &u
	return nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, apperr.NotFoundf("user with ID %d not found", userID)
	}
	u := *user
	return &u, nil
}

func (r *MemoryRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.users[userID]
	return ok, nil
}

func (r *MemoryRepository) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *conv
	r.conversations[c.ConversationID] = &c
	return nil
}

func (r *MemoryRepository) GetConversation(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[conversationID]
	if !ok {
		return nil, apperr.NotFoundf("conversation with ID %d not found", conversationID)
	}
	c := *conv
	return &c, nil
}

func (r *MemoryRepository) GetConversationByUsers(ctx context.Context, user1ID, user2ID int64) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Full scan, same access pattern as the ALLOW FILTERING query.
	var found *models.Conversation
	for _, conv := range r.conversations {
		if conv.User1ID == user1ID && conv.User2ID == user2ID {
			if found == nil || conv.ConversationID < found.ConversationID {
				found = conv
			}
		}
	}
	if found == nil {
		return nil, apperr.NotFoundf("conversation between users %d and %d not found", user1ID, user2ID)
	}
	c := *found
	return &c, nil
}

func (r *MemoryRepository) UpdateConversationLastMessage(ctx context.Context, conversationID int64, at time.Time, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[conversationID]
	if !ok {
		// Cassandra UPDATE is an upsert; a missing row gets created.
		conv = &models.Conversation{ConversationID: conversationID}
		r.conversations[conversationID] = conv
	}
	conv.LastMessageAt = at
	conv.LastMessageContent = content
	return nil
}

func (r *MemoryRepository) UpsertUserConversation(ctx context.Context, viewerID int64, conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *conv
	key := indexKey{viewerID: viewerID, lastMessageAt: c.LastMessageAt, conversationID: c.ConversationID}
	r.indexRows[key] = &c
	return nil
}

func (r *MemoryRepository) CountUserConversations(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for key := range r.indexRows {
		if key.viewerID == userID {
			total++
		}
	}
	return total, nil
}

func (r *MemoryRepository) FetchUserConversations(ctx context.Context, userID int64, limit int) ([]*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []*models.Conversation
	for key, conv := range r.indexRows {
		if key.viewerID == userID {
			c := *conv
			rows = append(rows, &c)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].LastMessageAt.Equal(rows[j].LastMessageAt) {
			return rows[i].LastMessageAt.After(rows[j].LastMessageAt)
		}
		return rows[i].ConversationID < rows[j].ConversationID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *MemoryRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := *msg
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], &m)
	return nil
}

func (r *MemoryRepository) CountMessages(ctx context.Context, conversationID int64, before *time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	for _, msg := range r.messages[conversationID] {
		if before == nil || msg.CreatedAt.Before(*before) {
			total++
		}
	}
	return total, nil
}

func (r *MemoryRepository) FetchMessages(ctx context.Context, conversationID int64, limit int, before *time.Time) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []*models.Message
	for _, msg := range r.messages[conversationID] {
		if before == nil || msg.CreatedAt.Before(*before) {
			m := *msg
			rows = append(rows, &m)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].MessageID < rows[j].MessageID
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *MemoryRepository) IncrementCounter(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[name]++
	return nil
}

func (r *MemoryRepository) ReadCounter(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.counters[name], nil
}

// CounterValue reads a counter without going through the repository
// contract; test assertions use it to show a sequence was untouched.
func (r *MemoryRepository) CounterValue(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.counters[name]
}
