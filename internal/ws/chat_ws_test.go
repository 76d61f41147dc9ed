package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realty-chat-service/internal/auth"
	"realty-chat-service/internal/bus"
	"realty-chat-service/internal/mocks"
	"realty-chat-service/internal/models"
	"realty-chat-service/internal/repositories"
	"realty-chat-service/internal/ws"
)

type chatFixture struct {
	fabric   *bus.LocalBus
	rooms    *mocks.RoomRepositoryMock
	messages *mocks.MessageRepositoryMock
	server   *httptest.Server
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &chatFixture{
		fabric:   bus.NewLocalBus(),
		rooms:    new(mocks.RoomRepositoryMock),
		messages: new(mocks.MessageRepositoryMock),
	}

	authn := ws.NewAuthenticator(&resolverStub{identities: map[string]auth.Identity{
		"alice": auth.Authenticated(1, "Alice Dimitrova"),
		"bob":   auth.Authenticated(2, "Boris Hristov"),
	}})
	handler := ws.NewChatWebSocketHandler(f.fabric, f.rooms, f.messages, authn)

	router := gin.New()
	router.GET("/ws/rooms/:room_id", handler.Handle)
	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *chatFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	frame := make(map[string]any)
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func waitForGroupSize(t *testing.T, fabric *bus.LocalBus, group string, size int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return fabric.GroupSize(group) == size
	}, 2*time.Second, 10*time.Millisecond)
}

func TestChatHandlerInvalidRoomID(t *testing.T) {
	f := newChatFixture(t)

	resp, err := http.Get(f.server.URL + "/ws/rooms/abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatSessionAuthenticatedGreeting(t *testing.T) {
	f := newChatFixture(t)
	f.rooms.On("MarkRead", mock.Anything, 5, 1, mock.Anything).Return(nil).Once()

	conn := f.dial(t, "/ws/rooms/5?token=alice")

	frame := readFrame(t, conn)
	assert.Equal(t, "connection_established", frame["type"])
	assert.Equal(t, float64(1), frame["user_id"])
	f.rooms.AssertExpectations(t)
}

func TestChatSessionAnonymousGetsErrorFrame(t *testing.T) {
	f := newChatFixture(t)

	conn := f.dial(t, "/ws/rooms/5")

	frame := readFrame(t, conn)
	assert.Equal(t, "Authentication required", frame["error"])

	// Anonymous connections cannot post either.
	require.NoError(t, conn.WriteJSON(models.InboundChatFrame{Message: "hi"}))
	frame = readFrame(t, conn)
	assert.Equal(t, "Authentication required", frame["error"])

	f.messages.AssertNotCalled(t, "PostMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatSessionMarkReadFailure(t *testing.T) {
	f := newChatFixture(t)
	f.rooms.On("MarkRead", mock.Anything, 5, 1, mock.Anything).Return(assert.AnError).Once()

	conn := f.dial(t, "/ws/rooms/5?token=alice")

	frame := readFrame(t, conn)
	assert.Equal(t, "Internal error", frame["error"])
	f.rooms.AssertExpectations(t)
}

func TestChatSessionPostDeliveredToAllMembers(t *testing.T) {
	f := newChatFixture(t)
	f.rooms.On("MarkRead", mock.Anything, 5, mock.Anything, mock.Anything).Return(nil).Twice()

	posted := models.Message{ID: 7, RoomID: 5, SenderID: 1, Content: "hello", CreatedAt: time.Now().UTC()}
	f.messages.On("PostMessage", mock.Anything, 5, 1, "hello").Return(posted, nil).Once()

	alice := f.dial(t, "/ws/rooms/5?token=alice")
	bob := f.dial(t, "/ws/rooms/5?token=bob")

	readFrame(t, alice) // connection_established
	readFrame(t, bob)
	waitForGroupSize(t, f.fabric, ws.ChatGroup(5), 2)

	require.NoError(t, alice.WriteJSON(models.InboundChatFrame{Message: "hello"}))

	for _, conn := range []*websocket.Conn{alice, bob} {
		frame := readFrame(t, conn)
		msg, ok := frame["message"].(map[string]any)
		require.True(t, ok, "expected a message frame, got %v", frame)
		assert.Equal(t, float64(7), msg["id"])
		assert.Equal(t, "hello", msg["content"])
		assert.Equal(t, false, msg["is_read"])

		sender, ok := msg["sender"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(1), sender["id"])
		assert.Equal(t, "Alice Dimitrova", sender["full_name"])

		_, err := time.Parse(time.RFC3339, msg["created_at"].(string))
		assert.NoError(t, err)
	}

	f.rooms.AssertExpectations(t)
	f.messages.AssertExpectations(t)
}

func TestChatSessionRejectsNonMember(t *testing.T) {
	f := newChatFixture(t)
	f.rooms.On("MarkRead", mock.Anything, 5, 1, mock.Anything).Return(nil).Once()
	f.messages.On("PostMessage", mock.Anything, 5, 1, "hi").
		Return(models.Message{}, repositories.ErrNotMember).Once()

	conn := f.dial(t, "/ws/rooms/5?token=alice")
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(models.InboundChatFrame{Message: "hi"}))

	frame := readFrame(t, conn)
	assert.Equal(t, "Not allowed", frame["error"])
	f.messages.AssertExpectations(t)
}

func TestChatSessionMissingRoomLooksLikeNotAllowed(t *testing.T) {
	f := newChatFixture(t)
	f.rooms.On("MarkRead", mock.Anything, 99, 1, mock.Anything).Return(nil).Once()
	f.messages.On("PostMessage", mock.Anything, 99, 1, "hi").
		Return(models.Message{}, repositories.ErrRoomNotFound).Once()

	conn := f.dial(t, "/ws/rooms/99?token=alice")
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(models.InboundChatFrame{Message: "hi"}))

	// Indistinguishable from the non-member rejection.
	frame := readFrame(t, conn)
	assert.Equal(t, "Not allowed", frame["error"])
	f.messages.AssertExpectations(t)
}

func TestChatSessionInvalidFrames(t *testing.T) {
	f := newChatFixture(t)
	f.rooms.On("MarkRead", mock.Anything, 5, 1, mock.Anything).Return(nil).Once()

	conn := f.dial(t, "/ws/rooms/5?token=alice")
	readFrame(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	frame := readFrame(t, conn)
	assert.Equal(t, "Invalid message", frame["error"])

	require.NoError(t, conn.WriteJSON(models.InboundChatFrame{Message: ""}))
	frame = readFrame(t, conn)
	assert.Equal(t, "Invalid message", frame["error"])
	assert.Equal(t, "message is required", frame["detail"])

	f.messages.AssertNotCalled(t, "PostMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChatSessionUnsubscribesOnClose(t *testing.T) {
	f := newChatFixture(t)
	f.rooms.On("MarkRead", mock.Anything, 5, 1, mock.Anything).Return(nil).Once()

	conn := f.dial(t, "/ws/rooms/5?token=alice")
	readFrame(t, conn)
	waitForGroupSize(t, f.fabric, ws.ChatGroup(5), 1)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	waitForGroupSize(t, f.fabric, ws.ChatGroup(5), 0)
}
