package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"messenger/chat-service/internal/service"
)

type MessengerHandler struct {
	service service.MessengerService
	logger  *logrus.Logger
}

func NewMessengerHandler(svc service.MessengerService, logger *logrus.Logger) *MessengerHandler {
	return &MessengerHandler{
		service: svc,
		logger:  logger,
	}
}

type CreateUserRequest struct {
	UserID   int64  `json:"user_id" binding:"required"`
	Username string `json:"username" binding:"required"`
}

type SendMessageRequest struct {
	SenderID   int64  `json:"sender_id" binding:"required"`
	ReceiverID int64  `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

func (h *MessengerHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.UserID, req.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (h *MessengerHandler) GetUser(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *MessengerHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), req.SenderID, req.ReceiverID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func (h *MessengerHandler) ListMessages(c *gin.Context) {
	conversationID, ok := pathID(c)
	if !ok {
		return
	}
	page, limit, ok := pageParams(c)
	if !ok {
		return
	}

	result, err := h.service.ListMessages(c.Request.Context(), conversationID, page, limit, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMessagePage(result))
}

func (h *MessengerHandler) ListMessagesBefore(c *gin.Context) {
	conversationID, ok := pathID(c)
	if !ok {
		return
	}
	page, limit, ok := pageParams(c)
	if !ok {
		return
	}

	raw := c.Query("before_timestamp")
	if raw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "before_timestamp is required"})
		return
	}
	before, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "before_timestamp must be RFC3339"})
		return
	}

	result, err := h.service.ListMessages(c.Request.Context(), conversationID, page, limit, &before)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMessagePage(result))
}

func (h *MessengerHandler) GetConversation(c *gin.Context) {
	conversationID, ok := pathID(c)
	if !ok {
		return
	}

	conv, err := h.service.GetConversation(c.Request.Context(), conversationID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toConversationResponse(conv))
}

func (h *MessengerHandler) ListUserConversations(c *gin.Context) {
	userID, ok := pathID(c)
	if !ok {
		return
	}
	page, limit, ok := pageParams(c)
	if !ok {
		return
	}

	result, err := h.service.ListConversations(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toConversationPage(result))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "id must be an integer"})
		return 0, false
	}
	return id, true
}

func pageParams(c *gin.Context) (int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "page must be a positive integer"})
		return 0, 0, false
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		return 0, 0, false
	}
	return page, limit, true
}
