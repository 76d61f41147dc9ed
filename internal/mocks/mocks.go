package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"realty-chat-service/internal/events"
	"realty-chat-service/internal/models"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateOrGetInquiryRoom(ctx context.Context, propertyID int) (models.Room, error) {
	args := m.Called(ctx, propertyID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) CreateOrGetDirectRoom(ctx context.Context, userID int, otherID int) (models.Room, error) {
	args := m.Called(ctx, userID, otherID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) AddMember(ctx context.Context, roomID int, userID int) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) IsMember(ctx context.Context, roomID int, userID int) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) ListMembers(ctx context.Context, roomID int) ([]models.RoomMember, error) {
	args := m.Called(ctx, roomID)
	var members []models.RoomMember
	if val := args.Get(0); val != nil {
		members = val.([]models.RoomMember)
	}
	return members, args.Error(1)
}

func (m *RoomRepositoryMock) ListRoomsForUser(ctx context.Context, userID int) ([]models.Room, error) {
	args := m.Called(ctx, userID)
	var rooms []models.Room
	if val := args.Get(0); val != nil {
		rooms = val.([]models.Room)
	}
	return rooms, args.Error(1)
}

func (m *RoomRepositoryMock) MarkRead(ctx context.Context, roomID int, userID int, asOf time.Time) error {
	args := m.Called(ctx, roomID, userID, asOf)
	return args.Error(0)
}

func (m *RoomRepositoryMock) UnreadCount(ctx context.Context, roomID int, userID int) (int, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Int(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) PostMessage(ctx context.Context, roomID int, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, roomID int) ([]models.Message, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) LastMessage(ctx context.Context, roomID int) (models.Message, error) {
	args := m.Called(ctx, roomID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) ListActiveUserIDs(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	var ids []int
	if val := args.Get(0); val != nil {
		ids = val.([]int)
	}
	return ids, args.Error(1)
}

type PropertyRepositoryMock struct {
	mock.Mock
}

func (m *PropertyRepositoryMock) GetProperty(ctx context.Context, propertyID int) (models.Property, error) {
	args := m.Called(ctx, propertyID)
	var property models.Property
	if val := args.Get(0); val != nil {
		property = val.(models.Property)
	}
	return property, args.Error(1)
}

type InquiryRepositoryMock struct {
	mock.Mock
}

func (m *InquiryRepositoryMock) CreateInquiry(ctx context.Context, propertyID int, inquirerID int, subject string, message string) (models.Inquiry, error) {
	args := m.Called(ctx, propertyID, inquirerID, subject, message)
	var inquiry models.Inquiry
	if val := args.Get(0); val != nil {
		inquiry = val.(models.Inquiry)
	}
	return inquiry, args.Error(1)
}

func (m *InquiryRepositoryMock) LinkRoom(ctx context.Context, inquiryID int, roomID int) error {
	args := m.Called(ctx, inquiryID, roomID)
	return args.Error(0)
}

func (m *InquiryRepositoryMock) ListForInquirer(ctx context.Context, userID int) ([]models.Inquiry, error) {
	args := m.Called(ctx, userID)
	var inquiries []models.Inquiry
	if val := args.Get(0); val != nil {
		inquiries = val.([]models.Inquiry)
	}
	return inquiries, args.Error(1)
}

func (m *InquiryRepositoryMock) ListForOwner(ctx context.Context, ownerID int) ([]models.Inquiry, error) {
	args := m.Called(ctx, ownerID)
	var inquiries []models.Inquiry
	if val := args.Get(0); val != nil {
		inquiries = val.([]models.Inquiry)
	}
	return inquiries, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) Create(ctx context.Context, recipientID int, notificationType string, title string, body string, relatedPropertyID *int) (models.Notification, error) {
	args := m.Called(ctx, recipientID, notificationType, title, body, relatedPropertyID)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) ListForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, notificationID int, userID int) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) PublishDomainEvent(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
