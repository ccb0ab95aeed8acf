package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger/chat-service/internal/counter"
	"messenger/chat-service/internal/repository"
	"messenger/chat-service/internal/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, service.MessengerService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := repository.NewMemoryRepository()
	ids := counter.NewAllocator(repo, logger)
	svc := service.NewMessengerService(repo, ids, logger)

	return NewRouter(svc, logger), svc
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateUserEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/users", gin.H{"user_id": 1, "username": "alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.UserID)
	assert.Equal(t, "alice", resp.Username)

	t.Run("missing username is rejected", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/users", gin.H{"user_id": 2})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("created user can be read back", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/users/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.UserID)
		assert.Equal(t, "alice", resp.Username)
	})

	t.Run("unknown user maps to 404", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/users/99", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "user with ID 99")
	})
}

func TestSendMessageEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, 1, "alice")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, 2, "bob")
	require.NoError(t, err)

	t.Run("creates the message", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/messages", gin.H{
			"sender_id": 1, "receiver_id": 2, "content": "hello",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp MessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "hello", resp.Content)
		assert.Equal(t, int64(1), resp.SenderID)
		assert.NotZero(t, resp.ID)
		assert.NotZero(t, resp.ConversationID)
	})

	t.Run("unknown sender maps to 404", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/messages", gin.H{
			"sender_id": 77, "receiver_id": 2, "content": "hello",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "sender with ID 77")
	})

	t.Run("missing content is rejected", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/messages", gin.H{
			"sender_id": 1, "receiver_id": 2,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListMessagesEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, 1, "alice")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, 2, "bob")
	require.NoError(t, err)

	var convID int64
	for i := 1; i <= 12; i++ {
		msg, err := svc.SendMessage(ctx, 1, 2, fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
		convID = msg.ConversationID
	}

	t.Run("returns the page envelope", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet,
			fmt.Sprintf("/api/messages/conversation/%d?page=2&limit=5", convID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp PaginatedMessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(12), resp.Total)
		assert.Equal(t, 2, resp.Page)
		assert.Equal(t, 5, resp.Limit)
		require.Len(t, resp.Data, 5)
		assert.Equal(t, "msg-7", resp.Data[0].Content)
	})

	t.Run("unknown conversation maps to 404", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/messages/conversation/9999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("non-integer id is rejected", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/messages/conversation/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad page parameter is rejected", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet,
			fmt.Sprintf("/api/messages/conversation/%d?page=zero", convID), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListMessagesBeforeEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, 1, "alice")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, 2, "bob")
	require.NoError(t, err)

	first, err := svc.SendMessage(ctx, 1, 2, "early")
	require.NoError(t, err)
	second, err := svc.SendMessage(ctx, 1, 2, "late")
	require.NoError(t, err)

	t.Run("filters strictly before the cutoff", func(t *testing.T) {
		cutoff := second.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00")
		rec := doJSON(router, http.MethodGet,
			fmt.Sprintf("/api/messages/conversation/%d/before?before_timestamp=%s", first.ConversationID, cutoff), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp PaginatedMessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "early", resp.Data[0].Content)
	})

	t.Run("missing cutoff is rejected", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet,
			fmt.Sprintf("/api/messages/conversation/%d/before", first.ConversationID), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed cutoff is rejected", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet,
			fmt.Sprintf("/api/messages/conversation/%d/before?before_timestamp=yesterday", first.ConversationID), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestConversationEndpoints(t *testing.T) {
	router, svc := newTestRouter(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, 1, "alice")
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, 2, "bob")
	require.NoError(t, err)

	sent, err := svc.SendMessage(ctx, 2, 1, "hey")
	require.NoError(t, err)

	t.Run("get by id", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet,
			fmt.Sprintf("/api/conversations/%d", sent.ConversationID), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ConversationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.User1ID)
		assert.Equal(t, int64(2), resp.User2ID)
		assert.Equal(t, "hey", resp.LastMessageContent)
	})

	t.Run("list for a user", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/conversations/user/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp PaginatedConversationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, int64(1), resp.Total)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, sent.ConversationID, resp.Data[0].ID)
	})

	t.Run("unknown user maps to 404", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/conversations/user/50", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("request id header is set", func(t *testing.T) {
		rec := doJSON(router, http.MethodGet, "/api/conversations/user/1", nil)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}
