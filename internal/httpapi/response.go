package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"messenger/chat-service/internal/models"
	"messenger/chat-service/pkg/apperr"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type UserResponse struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationResponse struct {
	ID                 int64     `json:"id"`
	User1ID            int64     `json:"user1_id"`
	User2ID            int64     `json:"user2_id"`
	LastMessageAt      time.Time `json:"last_message_at"`
	LastMessageContent string    `json:"last_message_content"`
}

type MessageResponse struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	ReceiverID     int64     `json:"receiver_id"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type PaginatedConversationResponse struct {
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
	Data  []ConversationResponse `json:"data"`
}

type PaginatedMessageResponse struct {
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Data  []MessageResponse `json:"data"`
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		UserID:    user.UserID,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

func toConversationResponse(conv *models.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:                 conv.ConversationID,
		User1ID:            conv.User1ID,
		User2ID:            conv.User2ID,
		LastMessageAt:      conv.LastMessageAt,
		LastMessageContent: conv.LastMessageContent,
	}
}

func toMessageResponse(msg *models.Message) MessageResponse {
	return MessageResponse{
		ID:             msg.MessageID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
}

func toConversationPage(page *models.ConversationPage) PaginatedConversationResponse {
	data := make([]ConversationResponse, len(page.Data))
	for i, conv := range page.Data {
		data[i] = toConversationResponse(conv)
	}
	return PaginatedConversationResponse{
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Data:  data,
	}
}

func toMessagePage(page *models.MessagePage) PaginatedMessageResponse {
	data := make([]MessageResponse, len(page.Data))
	for i, msg := range page.Data {
		data[i] = toMessageResponse(msg)
	}
	return PaginatedMessageResponse{
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Data:  data,
	}
}

// respondError maps core error kinds onto transport statuses:
// NOT_FOUND -> 404, UNAVAILABLE -> 503, anything else -> 500.
func respondError(c *gin.Context, err error) {
	switch apperr.CodeOf(err) {
	case apperr.CodeNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case apperr.CodeUnavailable:
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
