package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"realty-chat-service/internal/bus"
	"realty-chat-service/internal/events"
	"realty-chat-service/internal/models"
	"realty-chat-service/internal/repositories"
	"realty-chat-service/internal/ws"
)

// RoomHandler manages the REST side of rooms: listing, direct-room
// creation, history and posting.
type RoomHandler struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	users    repositories.UserRepository
	fabric   bus.Bus
	notifier events.Publisher
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(rooms repositories.RoomRepository, messages repositories.MessageRepository, users repositories.UserRepository, fabric bus.Bus, notifier events.Publisher) *RoomHandler {
	return &RoomHandler{rooms: rooms, messages: messages, users: users, fabric: fabric, notifier: notifier}
}

// ListRooms returns the rooms the authenticated user belongs to, each with
// members, the last message and the user's unread count.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID := c.GetInt("userID")

	rooms, err := h.rooms.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	summaries := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary, err := h.summarize(c, room, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
			return
		}
		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{"rooms": summaries})
}

func (h *RoomHandler) summarize(c *gin.Context, room models.Room, userID int) (models.RoomSummary, error) {
	ctx := c.Request.Context()

	members, err := h.rooms.ListMembers(ctx, room.ID)
	if err != nil {
		return models.RoomSummary{}, err
	}

	memberIDs := make([]int, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}
	users, err := h.users.BulkUsers(ctx, memberIDs)
	if err != nil {
		return models.RoomSummary{}, err
	}
	nameByID := map[int]string{}
	for _, u := range users {
		nameByID[u.ID] = u.FullName
	}

	profiles := make([]models.MemberProfile, 0, len(members))
	for _, m := range members {
		var lastRead *time.Time
		if m.LastRead.Valid {
			t := m.LastRead.Time
			lastRead = &t
		}
		profiles = append(profiles, models.MemberProfile{
			ID:       m.UserID,
			FullName: nameByID[m.UserID],
			LastRead: lastRead,
			JoinedAt: m.JoinedAt,
		})
	}

	var lastPayload *models.MessagePayload
	last, err := h.messages.LastMessage(ctx, room.ID)
	switch {
	case err == nil:
		payload := models.NewMessagePayload(last, nameByID[last.SenderID])
		lastPayload = &payload
	case !errors.Is(err, repositories.ErrMessageNotFound):
		return models.RoomSummary{}, err
	}

	unread, err := h.rooms.UnreadCount(ctx, room.ID, userID)
	if err != nil {
		return models.RoomSummary{}, err
	}

	return models.RoomSummary{
		ID:          room.ID,
		RoomType:    room.RoomType,
		PropertyID:  room.PropertyRef(),
		CreatedAt:   room.CreatedAt,
		Members:     profiles,
		LastMessage: lastPayload,
		UnreadCount: unread,
	}, nil
}

// CreateDirectRoom creates or returns the direct room between the caller
// and another user.
func (h *RoomHandler) CreateDirectRoom(c *gin.Context) {
	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	userID := c.GetInt("userID")
	if userID == req.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}

	if _, err := h.users.GetUser(c.Request.Context(), req.UserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}

	room, err := h.rooms.CreateOrGetDirectRoom(c.Request.Context(), userID, req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}
	for _, member := range []int{userID, req.UserID} {
		if err := h.rooms.AddMember(c.Request.Context(), room.ID, member); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"room_id": room.ID, "room_type": room.RoomType})
}

// GetRoomMessages returns the full ordered history of a room and advances
// the caller's read cursor.
func (h *RoomHandler) GetRoomMessages(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	userID := c.GetInt("userID")
	member, err := h.rooms.IsMember(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		// Missing rooms and rooms the caller is not in look identical.
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	msgs, err := h.messages.ListMessages(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	senderIDs := make([]int, 0, len(msgs))
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	users, err := h.users.BulkUsers(c.Request.Context(), senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	nameByID := map[int]string{}
	for _, u := range users {
		nameByID[u.ID] = u.FullName
	}

	payloads := make([]models.MessagePayload, 0, len(msgs))
	for _, m := range msgs {
		payloads = append(payloads, models.NewMessagePayload(m, nameByID[m.SenderID]))
	}

	// Fetching the history counts as reading it.
	if err := h.rooms.MarkRead(c.Request.Context(), roomID, userID, time.Now()); err != nil {
		log.Printf("mark read failed for room %d user %d: %v", roomID, userID, err)
	}

	c.JSON(http.StatusOK, gin.H{"messages": payloads})
}

// PostRoomMessage persists a message over REST and broadcasts it to the
// room's group, same as a websocket post.
func (h *RoomHandler) PostRoomMessage(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	userID := c.GetInt("userID")
	userName := c.GetString("userName")

	msg, err := h.messages.PostMessage(c.Request.Context(), roomID, userID, req.Content)
	switch {
	case errors.Is(err, repositories.ErrNotMember) || errors.Is(err, repositories.ErrRoomNotFound):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}

	if err := ws.BroadcastMessage(c.Request.Context(), h.fabric, ws.ChatGroup(roomID), msg, userName); err != nil {
		log.Printf("broadcast failed for room %d: %v", roomID, err)
	}

	h.notifyOtherMembers(c, roomID, userID, userName)

	c.JSON(http.StatusCreated, gin.H{"message": models.NewMessagePayload(msg, userName)})
}

func (h *RoomHandler) notifyOtherMembers(c *gin.Context, roomID int, senderID int, senderName string) {
	members, err := h.rooms.ListMembers(c.Request.Context(), roomID)
	if err != nil {
		log.Printf("list members failed for room %d: %v", roomID, err)
		return
	}
	var recipients []int
	for _, m := range members {
		if m.UserID != senderID {
			recipients = append(recipients, m.UserID)
		}
	}
	if len(recipients) == 0 {
		return
	}
	if err := h.notifier.PublishDomainEvent(c.Request.Context(), events.ChatMessageEvent(senderName, roomID, recipients)); err != nil {
		log.Printf("chat notification failed for room %d: %v", roomID, err)
	}
}
