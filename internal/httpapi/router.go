package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"messenger/chat-service/internal/service"
)

// NewRouter wires the HTTP shell. Everything here is transport
// plumbing: validation, parameter parsing, and status mapping live in
// this package; none of it reaches the service layer.
func NewRouter(svc service.MessengerService, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog(logger))

	h := NewMessengerHandler(svc, logger)

	api := router.Group("/api")
	{
		api.POST("/users", h.CreateUser)
		api.GET("/users/:id", h.GetUser)

		api.POST("/messages", h.SendMessage)
		api.GET("/messages/conversation/:id", h.ListMessages)
		api.GET("/messages/conversation/:id/before", h.ListMessagesBefore)

		api.GET("/conversations/:id", h.GetConversation)
		api.GET("/conversations/user/:id", h.ListUserConversations)
	}

	return router
}
