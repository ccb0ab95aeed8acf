package repository

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	"messenger/chat-service/internal/models"
	"messenger/chat-service/pkg/apperr"
)

// MessengerRepository is the storage contract for the denormalized
// tables. Every method is a single store round trip; callers compose
// them with no cross-call atomicity.
type MessengerRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UserExists(ctx context.Context, userID int64) (bool, error)

	CreateConversation(ctx context.Context, conv *models.Conversation) error
	GetConversation(ctx context.Context, conversationID int64) (*models.Conversation, error)
	GetConversationByUsers(ctx context.Context, user1ID, user2ID int64) (*models.Conversation, error)
	UpdateConversationLastMessage(ctx context.Context, conversationID int64, at time.Time, content string) error

	UpsertUserConversation(ctx context.Context, viewerID int64, conv *models.Conversation) error
	CountUserConversations(ctx context.Context, userID int64) (int64, error)
	FetchUserConversations(ctx context.Context, userID int64, limit int) ([]*models.Conversation, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	CountMessages(ctx context.Context, conversationID int64, before *time.Time) (int64, error)
	FetchMessages(ctx context.Context, conversationID int64, limit int, before *time.Time) ([]*models.Message, error)

	IncrementCounter(ctx context.Context, name string) error
	ReadCounter(ctx context.Context, name string) (int64, error)
}

type cassandraRepository struct {
	session *gocql.Session
}

func NewCassandraRepository(session *gocql.Session) MessengerRepository {
	return &cassandraRepository{
		session: session,
	}
}

func (r *cassandraRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
	INSERT INTO users (user_id, username, created_at)
	VALUES (?, ?, ?)
	`

	if err := r.session.Query(query, user.UserID, user.Username, user.CreatedAt).
		WithContext(ctx).Exec(); err != nil {
		return apperr.Unavailable("insert user", err)
	}
	return nil
}

func (r *cassandraRepository) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	query := `
	SELECT user_id, username, created_at
	FROM users
	WHERE user_id = ?
	`

	var user models.User
	err := r.session.Query(query, userID).WithContext(ctx).
		Scan(&user.UserID, &user.Username, &user.CreatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, apperr.NotFoundf("user with ID %d not found", userID)
		}
		return nil, apperr.Unavailable("read user", err)
	}

	return &user, nil
}

func (r *cassandraRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	query := `
	SELECT user_id
	FROM users
	WHERE user_id = ?
	`

	var id int64
	err := r.session.Query(query, userID).WithContext(ctx).Scan(&id)
	if err != nil {
		if err == gocql.ErrNotFound {
			return false, nil
		}
		return false, apperr.Unavailable("read user", err)
	}

	return true, nil
}

func (r *cassandraRepository) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	query := `
	INSERT INTO conversations (conversation_id, user1_id, user2_id, last_message_at, last_message_content)
	VALUES (?, ?, ?, ?, ?)
	`

	if err := r.session.Query(query,
		conv.ConversationID, conv.User1ID, conv.User2ID, conv.LastMessageAt, conv.LastMessageContent,
	).WithContext(ctx).Exec(); err != nil {
		return apperr.Unavailable("insert conversation", err)
	}
	return nil
}

func (r *cassandraRepository) GetConversation(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	query := `
	SELECT conversation_id, user1_id, user2_id, last_message_at, last_message_content
	FROM conversations
	WHERE conversation_id = ?
	`

	var conv models.Conversation
	err := r.session.Query(query, conversationID).WithContext(ctx).Scan(
		&conv.ConversationID, &conv.User1ID, &conv.User2ID, &conv.LastMessageAt, &conv.LastMessageContent,
	)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, apperr.NotFoundf("conversation with ID %d not found", conversationID)
		}
		return nil, apperr.Unavailable("read conversation", err)
	}

	return &conv, nil
}

// GetConversationByUsers expects the canonical (min, max) pair. The
// conversations table is keyed by conversation_id only, so the pair
// lookup scans with ALLOW FILTERING, same as the rest of the tooling
// around these tables.
func (r *cassandraRepository) GetConversationByUsers(ctx context.Context, user1ID, user2ID int64) (*models.Conversation, error) {
	query := `
	SELECT conversation_id, user1_id, user2_id, last_message_at, last_message_content
	FROM conversations
	WHERE user1_id = ? AND user2_id = ?
	ALLOW FILTERING
	`

	var conv models.Conversation
	err := r.session.Query(query, user1ID, user2ID).WithContext(ctx).Scan(
		&conv.ConversationID, &conv.User1ID, &conv.User2ID, &conv.LastMessageAt, &conv.LastMessageContent,
	)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, apperr.NotFoundf("conversation between users %d and %d not found", user1ID, user2ID)
		}
		return nil, apperr.Unavailable("read conversation by users", err)
	}

	return &conv, nil
}

func (r *cassandraRepository) UpdateConversationLastMessage(ctx context.Context, conversationID int64, at time.Time, content string) error {
	query := `
	UPDATE conversations
	SET last_message_at = ?, last_message_content = ?
	WHERE conversation_id = ?
	`

	if err := r.session.Query(query, at, content, conversationID).
		WithContext(ctx).Exec(); err != nil {
		return apperr.Unavailable("update conversation last message", err)
	}
	return nil
}

func (r *cassandraRepository) UpsertUserConversation(ctx context.Context, viewerID int64, conv *models.Conversation) error {
	query := `
	INSERT INTO conversations_by_user (user_id, conversation_id, last_message_at, user1_id, user2_id, last_message_content)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	if err := r.session.Query(query,
		viewerID, conv.ConversationID, conv.LastMessageAt, conv.User1ID, conv.User2ID, conv.LastMessageContent,
	).WithContext(ctx).Exec(); err != nil {
		return apperr.Unavailable("upsert user conversation index", err)
	}
	return nil
}

func (r *cassandraRepository) CountUserConversations(ctx context.Context, userID int64) (int64, error) {
	query := `
	SELECT COUNT(*)
	FROM conversations_by_user
	WHERE user_id = ?
	`

	var total int64
	err := r.session.Query(query, userID).WithContext(ctx).Scan(&total)
	if err != nil {
		return 0, apperr.Unavailable("count user conversations", err)
	}

	return total, nil
}

// FetchUserConversations returns up to limit index rows in the
// partition's native clustering order (last_message_at DESC,
// conversation_id ASC). Offset windowing happens in the service.
func (r *cassandraRepository) FetchUserConversations(ctx context.Context, userID int64, limit int) ([]*models.Conversation, error) {
	query := `
	SELECT conversation_id, user1_id, user2_id, last_message_at, last_message_content
	FROM conversations_by_user
	WHERE user_id = ?
	LIMIT ?
	`

	iter := r.session.Query(query, userID, limit).WithContext(ctx).Iter()

	var convs []*models.Conversation
	var conv models.Conversation
	for iter.Scan(&conv.ConversationID, &conv.User1ID, &conv.User2ID, &conv.LastMessageAt, &conv.LastMessageContent) {
		c := conv
		convs = append(convs, &c)
	}
	if err := iter.Close(); err != nil {
		return nil, apperr.Unavailable("fetch user conversations", err)
	}

	return convs, nil
}

func (r *cassandraRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := `
	INSERT INTO messages_by_conversation (conversation_id, created_at, message_id, sender_id, receiver_id, content)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	if err := r.session.Query(query,
		msg.ConversationID, msg.CreatedAt, msg.MessageID, msg.SenderID, msg.ReceiverID, msg.Content,
	).WithContext(ctx).Exec(); err != nil {
		return apperr.Unavailable("insert message", err)
	}
	return nil
}

func (r *cassandraRepository) CountMessages(ctx context.Context, conversationID int64, before *time.Time) (int64, error) {
	var query string
	var args []interface{}

	if before != nil {
		query = `
		SELECT COUNT(*)
		FROM messages_by_conversation
		WHERE conversation_id = ? AND created_at < ?
		`
		args = []interface{}{conversationID, *before}
	} else {
		query = `
		SELECT COUNT(*)
		FROM messages_by_conversation
		WHERE conversation_id = ?
		`
		args = []interface{}{conversationID}
	}

	var total int64
	err := r.session.Query(query, args...).WithContext(ctx).Scan(&total)
	if err != nil {
		return 0, apperr.Unavailable("count messages", err)
	}

	return total, nil
}

// FetchMessages returns up to limit rows in clustering order
// (created_at DESC, message_id ASC), optionally bounded to rows
// strictly before the given timestamp.
func (r *cassandraRepository) FetchMessages(ctx context.Context, conversationID int64, limit int, before *time.Time) ([]*models.Message, error) {
	var query string
	var args []interface{}

	if before != nil {
		query = `
		SELECT message_id, conversation_id, sender_id, receiver_id, content, created_at
		FROM messages_by_conversation
		WHERE conversation_id = ? AND created_at < ?
		LIMIT ?
		`
		args = []interface{}{conversationID, *before, limit}
	} else {
		query = `
		SELECT message_id, conversation_id, sender_id, receiver_id, content, created_at
		FROM messages_by_conversation
		WHERE conversation_id = ?
		LIMIT ?
		`
		args = []interface{}{conversationID, limit}
	}

	iter := r.session.Query(query, args...).WithContext(ctx).Iter()

	var messages []*models.Message
	var msg models.Message
	for iter.Scan(&msg.MessageID, &msg.ConversationID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.CreatedAt) {
		m := msg
		messages = append(messages, &m)
	}
	if err := iter.Close(); err != nil {
		return nil, apperr.Unavailable("fetch messages", err)
	}

	return messages, nil
}

// IncrementCounter is the one storage-atomic primitive in the system.
// The add happens inside the counter cell, not as a read-modify-write
// at this caller.
func (r *cassandraRepository) IncrementCounter(ctx context.Context, name string) error {
	query := `
	UPDATE counters
	SET value = value + 1
	WHERE name = ?
	`

	if err := r.session.Query(query, name).WithContext(ctx).Exec(); err != nil {
		return apperr.Unavailable("increment counter "+name, err)
	}
	return nil
}

func (r *cassandraRepository) ReadCounter(ctx context.Context, name string) (int64, error) {
	query := `
	SELECT value
	FROM counters
	WHERE name = ?
	`

	var value int64
	err := r.session.Query(query, name).WithContext(ctx).Scan(&value)
	if err != nil {
		if err == gocql.ErrNotFound {
			return 0, apperr.NotFoundf("counter %q not found", name)
		}
		return 0, apperr.Unavailable("read counter "+name, err)
	}

	return value, nil
}
