package service

import (
	"context"
	"time"

	"messenger/chat-service/internal/counter"
	"messenger/chat-service/internal/models"
	"messenger/chat-service/internal/repository"
	"messenger/chat-service/pkg/apperr"

	"github.com/sirupsen/logrus"
)

type MessengerService interface {
	CreateUser(ctx context.Context, userID int64, username string) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetConversation(ctx context.Context, conversationID int64) (*models.Conversation, error)
	ResolveConversation(ctx context.Context, userA, userB int64) (*models.Conversation, error)
	SendMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error)
	ListConversations(ctx context.Context, userID int64, page, limit int) (*models.ConversationPage, error)
	ListMessages(ctx context.Context, conversationID int64, page, limit int, before *time.Time) (*models.MessagePage, error)
}

type messengerService struct {
	repository repository.MessengerRepository
	ids        *counter.Allocator
	logger     *logrus.Logger
}

func NewMessengerService(repo repository.MessengerRepository, ids *counter.Allocator, logger *logrus.Logger) MessengerService {
	return &messengerService{
		repository: repo,
		ids:        ids,
		logger:     logger,
	}
}

func (s *messengerService) CreateUser(ctx context.Context, userID int64, username string) (*models.User, error) {
	user := &models.User{
		UserID:    userID,
		Username:  username,
		CreatedAt: time.Now(),
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		s.logger.WithError(err).Error("Failed to create user")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  user.UserID,
		"username": user.Username,
	}).Info("User created")

	return user, nil
}

func (s *messengerService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repository.GetUser(ctx, userID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			s.logger.WithError(err).Error("Failed to get user")
		}
		return nil, err
	}

	return user, nil
}

func (s *messengerService) GetConversation(ctx context.Context, conversationID int64) (*models.Conversation, error) {
	conv, err := s.repository.GetConversation(ctx, conversationID)
	if err != nil {
		if !apperr.IsNotFound(err) {
			s.logger.WithError(err).Error("Failed to get conversation")
		}
		return nil, err
	}

	return conv, nil
}

// ResolveConversation returns the one conversation for an unordered
// pair of users, creating it on first contact. Both users must exist.
func (s *messengerService) ResolveConversation(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	for _, userID := range []int64{userA, userB} {
		exists, err := s.repository.UserExists(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFoundf("user with ID %d not found", userID)
		}
	}

	return s.resolveCanonical(ctx, userA, userB)
}

// resolveCanonical orders the pair as (min, max) and looks the
// conversation up by that exact pair; the found path never mutates the
// row. Lookup then insert is not atomic against the store: two
// concurrent first contacts for the same pair can each miss the lookup
// and create separate rows with distinct IDs.
func (s *messengerService) resolveCanonical(ctx context.Context, userA, userB int64) (*models.Conversation, error) {
	user1ID, user2ID := userA, userB
	if user1ID > user2ID {
		user1ID, user2ID = user2ID, user1ID
	}

	conv, err := s.repository.GetConversationByUsers(ctx, user1ID, user2ID)
	if err == nil {
		return conv, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	conversationID, err := s.ids.Next(ctx, counter.SeqConversationID)
	if err != nil {
		return nil, err
	}

	conv = &models.Conversation{
		ConversationID:     conversationID,
		User1ID:            user1ID,
		User2ID:            user2ID,
		LastMessageAt:      time.Now(),
		LastMessageContent: "",
	}

	if err := s.repository.CreateConversation(ctx, conv); err != nil {
		s.logger.WithError(err).Error("Failed to create conversation")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"conversation_id": conv.ConversationID,
		"user1_id":        user1ID,
		"user2_id":        user2ID,
	}).Info("Conversation created")

	return conv, nil
}

// SendMessage fans a single send out to the message log, the canonical
// conversation row, and both participants' index rows. The six store
// operations run in order with no transaction and no rollback: a
// failure partway through leaves whatever prefix succeeded in place
// and surfaces the step's error as-is.
func (s *messengerService) SendMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error) {
	exists, err := s.repository.UserExists(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFoundf("sender with ID %d not found", senderID)
	}

	exists, err = s.repository.UserExists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFoundf("receiver with ID %d not found", receiverID)
	}

	conv, err := s.resolveCanonical(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	messageID, err := s.ids.Next(ctx, counter.SeqMessageID)
	if err != nil {
		return nil, err
	}

	createdAt := time.Now()

	msg := &models.Message{
		MessageID:      messageID,
		ConversationID: conv.ConversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		CreatedAt:      createdAt,
	}

	if err := s.repository.CreateMessage(ctx, msg); err != nil {
		s.logger.WithError(err).Error("Failed to append message")
		return nil, err
	}

	if err := s.repository.UpdateConversationLastMessage(ctx, conv.ConversationID, createdAt, content); err != nil {
		s.logger.WithError(err).Error("Failed to update conversation last message")
		return nil, err
	}

	conv.LastMessageAt = createdAt
	conv.LastMessageContent = content

	for _, viewerID := range []int64{conv.User1ID, conv.User2ID} {
		if err := s.repository.UpsertUserConversation(ctx, viewerID, conv); err != nil {
			s.logger.WithError(err).WithField("user_id", viewerID).
				Error("Failed to upsert conversation index entry")
			return nil, err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"message_id":      msg.MessageID,
		"conversation_id": msg.ConversationID,
		"sender_id":       senderID,
		"receiver_id":     receiverID,
	}).Info("Message sent")

	return msg, nil
}

func (s *messengerService) ListConversations(ctx context.Context, userID int64, page, limit int) (*models.ConversationPage, error) {
	exists, err := s.repository.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFoundf("user with ID %d not found", userID)
	}

	page, limit = normalizePage(page, limit)

	total, err := s.repository.CountUserConversations(ctx, userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to count user conversations")
		return nil, err
	}

	offset := (page - 1) * limit
	rows, err := s.repository.FetchUserConversations(ctx, userID, offset+limit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch user conversations")
		return nil, err
	}

	return &models.ConversationPage{
		Total: total,
		Page:  page,
		Limit: limit,
		Data:  window(rows, offset, limit),
	}, nil
}

func (s *messengerService) ListMessages(ctx context.Context, conversationID int64, page, limit int, before *time.Time) (*models.MessagePage, error) {
	if _, err := s.repository.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)

	total, err := s.repository.CountMessages(ctx, conversationID, before)
	if err != nil {
		s.logger.WithError(err).Error("Failed to count messages")
		return nil, err
	}

	offset := (page - 1) * limit
	rows, err := s.repository.FetchMessages(ctx, conversationID, offset+limit, before)
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch messages")
		return nil, err
	}

	return &models.MessagePage{
		Total: total,
		Page:  page,
		Limit: limit,
		Data:  window(rows, offset, limit),
	}, nil
}
