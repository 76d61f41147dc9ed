package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realty-chat-service/internal/events"
	"realty-chat-service/internal/mocks"
	"realty-chat-service/internal/models"
)

func setupBroadcastRouter(handler *BroadcastHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/internal/broadcast", handler.Broadcast)
	return r
}

func TestBroadcastTargetedRecipients(t *testing.T) {
	notifier := new(mocks.NotifierMock)
	handler := NewBroadcastHandler(notifier)
	router := setupBroadcastRouter(handler)

	notifier.On("PublishDomainEvent", mock.Anything, mock.MatchedBy(func(e events.DomainEvent) bool {
		return e.Kind == models.NotificationPayment && len(e.Recipients) == 2
	})).Return(nil).Once()

	body := bytes.NewBufferString(`{"kind":"PAYMENT","title":"Payment received","body":"Your listing fee cleared","recipients":[1,2]}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/broadcast", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	notifier.AssertExpectations(t)
}

func TestBroadcastToAllUsers(t *testing.T) {
	notifier := new(mocks.NotifierMock)
	handler := NewBroadcastHandler(notifier)
	router := setupBroadcastRouter(handler)

	// No recipients means the notifier fans out to every active user.
	notifier.On("PublishDomainEvent", mock.Anything, mock.MatchedBy(func(e events.DomainEvent) bool {
		return e.Kind == models.NotificationSystem && len(e.Recipients) == 0
	})).Return(nil).Once()

	body := bytes.NewBufferString(`{"kind":"SYSTEM","title":"Maintenance","body":"Downtime at midnight"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/broadcast", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	notifier.AssertExpectations(t)
}

func TestBroadcastUnknownKind(t *testing.T) {
	notifier := new(mocks.NotifierMock)
	handler := NewBroadcastHandler(notifier)
	router := setupBroadcastRouter(handler)

	body := bytes.NewBufferString(`{"kind":"GOSSIP","title":"t","body":"b"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/broadcast", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	notifier.AssertNotCalled(t, "PublishDomainEvent", mock.Anything, mock.Anything)
}

func TestBroadcastMissingFields(t *testing.T) {
	handler := NewBroadcastHandler(new(mocks.NotifierMock))
	router := setupBroadcastRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/internal/broadcast", bytes.NewBufferString(`{"kind":"SYSTEM"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBroadcastNotifierFailure(t *testing.T) {
	notifier := new(mocks.NotifierMock)
	handler := NewBroadcastHandler(notifier)
	router := setupBroadcastRouter(handler)

	notifier.On("PublishDomainEvent", mock.Anything, mock.Anything).
		Return(assert.AnError).Once()

	body := bytes.NewBufferString(`{"kind":"SYSTEM","title":"t","body":"b"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/broadcast", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	notifier.AssertExpectations(t)
}
