package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"party-service/internal/mocks"
	"party-service/internal/models"
	"party-service/internal/ws"
)

func setupChatRouter(partyRepo *mocks.PartyRepositoryMock, messageRepo *mocks.MessageRepositoryMock, identity models.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewChatHandler(partyRepo, messageRepo, ws.NewHub())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("identity", identity)
		c.Next()
	})
	r.POST("/parties/:party_id/messages", handler.PostMessage)
	r.GET("/parties/:party_id/messages", handler.ListMessages)
	return r
}

func TestPostMessageSuccess(t *testing.T) {
	partyRepo := new(mocks.PartyRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupChatRouter(partyRepo, messageRepo, guestIdentity)

	stored := models.ChatMessage{
		ID:        1,
		PartyID:   "p1",
		UserID:    guestIdentity.UID,
		UserName:  guestIdentity.Name,
		Text:      "hello",
		Timestamp: time.Now(),
	}
	partyRepo.On("HasMember", mock.Anything, "p1", guestIdentity.UID).Return(true, nil).Once()
	messageRepo.On("Append", mock.Anything, "p1", guestIdentity.UID, guestIdentity.Name, "hello").Return(stored, nil).Once()

	body := bytes.NewBufferString(`{"text":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/parties/p1/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.ChatMessage
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, guestIdentity.Name, resp.UserName)
	partyRepo.AssertExpectations(t)
	messageRepo.AssertExpectations(t)
}

func TestPostMessageNonMemberForbidden(t *testing.T) {
	partyRepo := new(mocks.PartyRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupChatRouter(partyRepo, messageRepo, guestIdentity)

	partyRepo.On("HasMember", mock.Anything, "p1", guestIdentity.UID).Return(false, nil).Once()

	body := bytes.NewBufferString(`{"text":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/parties/p1/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "Append")
}

func TestPostMessageEmptyTextRejected(t *testing.T) {
	partyRepo := new(mocks.PartyRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupChatRouter(partyRepo, messageRepo, guestIdentity)

	partyRepo.On("HasMember", mock.Anything, "p1", guestIdentity.UID).Return(true, nil).Once()

	body := bytes.NewBufferString(`{}`)
	req := httptest.NewRequest(http.MethodPost, "/parties/p1/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	messageRepo.AssertNotCalled(t, "Append")
}

func TestListMessagesAscendingOrder(t *testing.T) {
	partyRepo := new(mocks.PartyRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	router := setupChatRouter(partyRepo, messageRepo, guestIdentity)

	base := time.Now().Add(-time.Minute)
	history := []models.ChatMessage{
		{ID: 1, PartyID: "p1", UserID: "host-1", UserName: "Alice", Text: "first", Timestamp: base},
		{ID: 2, PartyID: "p1", UserID: "guest-1", UserName: "Bob", Text: "second", Timestamp: base.Add(10 * time.Second)},
		{ID: 3, PartyID: "p1", UserID: "host-1", UserName: "Alice", Text: "third", Timestamp: base.Add(20 * time.Second)},
	}
	partyRepo.On("HasMember", mock.Anything, "p1", guestIdentity.UID).Return(true, nil).Once()
	messageRepo.On("List", mock.Anything, "p1").Return(history, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/parties/p1/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.ChatMessage `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Messages, 3)
	assert.Equal(t, "first", resp.Messages[0].Text)
	assert.Equal(t, "third", resp.Messages[2].Text)
	messageRepo.AssertExpectations(t)
}

func TestPostReactionSuccess(t *testing.T) {
	partyRepo := new(mocks.PartyRepositoryMock)
	reactionRepo := new(mocks.ReactionRepositoryMock)
	gin.SetMode(gin.TestMode)
	handler := NewReactionHandler(partyRepo, reactionRepo, ws.NewHub())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("identity", guestIdentity)
		c.Next()
	})
	r.POST("/parties/:party_id/reactions", handler.PostReaction)

	stored := models.Reaction{ID: 7, PartyID: "p1", Label: "🔥", Timestamp: time.Now()}
	partyRepo.On("HasMember", mock.Anything, "p1", guestIdentity.UID).Return(true, nil).Once()
	reactionRepo.On("Append", mock.Anything, "p1", "🔥").Return(stored, nil).Once()

	body := bytes.NewBufferString(`{"label":"🔥"}`)
	req := httptest.NewRequest(http.MethodPost, "/parties/p1/reactions", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.Reaction
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "🔥", resp.Label)
	reactionRepo.AssertExpectations(t)
}

func TestPostReactionNonMemberForbidden(t *testing.T) {
	partyRepo := new(mocks.PartyRepositoryMock)
	reactionRepo := new(mocks.ReactionRepositoryMock)
	gin.SetMode(gin.TestMode)
	handler := NewReactionHandler(partyRepo, reactionRepo, ws.NewHub())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("identity", guestIdentity)
		c.Next()
	})
	r.POST("/parties/:party_id/reactions", handler.PostReaction)

	partyRepo.On("HasMember", mock.Anything, "p1", guestIdentity.UID).Return(false, nil).Once()

	body := bytes.NewBufferString(`{"label":"🔥"}`)
	req := httptest.NewRequest(http.MethodPost, "/parties/p1/reactions", body)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	reactionRepo.AssertNotCalled(t, "Append")
}
