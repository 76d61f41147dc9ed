package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
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
	"realty-chat-service/internal/repositories"
)

func setupInquiryRouter(handler *InquiryHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.POST("/inquiries", handler.CreateInquiry)
	r.GET("/inquiries", handler.ListInquiries)
	r.GET("/inquiries/received", handler.ListReceivedInquiries)
	return r
}

func TestCreateInquirySuccess(t *testing.T) {
	inquiryRepo := new(mocks.InquiryRepositoryMock)
	propertyRepo := new(mocks.PropertyRepositoryMock)
	roomRepo := new(mocks.RoomRepositoryMock)
	notifier := new(mocks.NotifierMock)
	handler := NewInquiryHandler(inquiryRepo, propertyRepo, roomRepo, notifier)
	router := setupInquiryRouter(handler)

	propertyRepo.On("GetProperty", mock.Anything, 8).
		Return(models.Property{ID: 8, OwnerID: 2, Title: "Sea view apartment"}, nil).Once()
	inquiryRepo.On("CreateInquiry", mock.Anything, 8, 1, "Viewing", "Is it available?").
		Return(models.Inquiry{ID: 4, PropertyID: 8, InquirerID: 1, Status: models.InquiryPending}, nil).Once()
	roomRepo.On("CreateOrGetInquiryRoom", mock.Anything, 8).
		Return(models.Room{ID: 12, RoomType: models.RoomTypeInquiry}, nil).Once()
	roomRepo.On("AddMember", mock.Anything, 12, 1).Return(nil).Once()
	roomRepo.On("AddMember", mock.Anything, 12, 2).Return(nil).Once()
	inquiryRepo.On("LinkRoom", mock.Anything, 4, 12).Return(nil).Once()
	notifier.On("PublishDomainEvent", mock.Anything, events.InquiryEvent("Sea view apartment", 8, 2)).
		Return(nil).Once()

	body := bytes.NewBufferString(`{"property_id":8,"subject":"Viewing","message":"Is it available?"}`)
	req := httptest.NewRequest(http.MethodPost, "/inquiries", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, float64(12), resp["room_id"])

	propertyRepo.AssertExpectations(t)
	inquiryRepo.AssertExpectations(t)
	roomRepo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCreateInquiryReusesExistingRoom(t *testing.T) {
	inquiryRepo := new(mocks.InquiryRepositoryMock)
	propertyRepo := new(mocks.PropertyRepositoryMock)
	roomRepo := new(mocks.RoomRepositoryMock)
	notifier := new(mocks.NotifierMock)
	handler := NewInquiryHandler(inquiryRepo, propertyRepo, roomRepo, notifier)
	router := setupInquiryRouter(handler)

	propertyRepo.On("GetProperty", mock.Anything, 8).
		Return(models.Property{ID: 8, OwnerID: 2, Title: "Sea view apartment"}, nil).Twice()
	inquiryRepo.On("CreateInquiry", mock.Anything, 8, 1, "Again", "Second question").
		Return(models.Inquiry{ID: 5, PropertyID: 8, InquirerID: 1}, nil).Twice()
	// The same listing always resolves to the same room.
	roomRepo.On("CreateOrGetInquiryRoom", mock.Anything, 8).
		Return(models.Room{ID: 12, RoomType: models.RoomTypeInquiry}, nil).Twice()
	roomRepo.On("AddMember", mock.Anything, 12, 1).Return(nil).Twice()
	roomRepo.On("AddMember", mock.Anything, 12, 2).Return(nil).Twice()
	inquiryRepo.On("LinkRoom", mock.Anything, 5, 12).Return(nil).Twice()
	notifier.On("PublishDomainEvent", mock.Anything, mock.Anything).Return(nil).Twice()

	for i := 0; i < 2; i++ {
		body := bytes.NewBufferString(`{"property_id":8,"subject":"Again","message":"Second question"}`)
		req := httptest.NewRequest(http.MethodPost, "/inquiries", body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, float64(12), resp["room_id"])
	}

	roomRepo.AssertExpectations(t)
}

func TestCreateInquiryPropertyNotFound(t *testing.T) {
	propertyRepo := new(mocks.PropertyRepositoryMock)
	handler := NewInquiryHandler(new(mocks.InquiryRepositoryMock), propertyRepo, new(mocks.RoomRepositoryMock), new(mocks.NotifierMock))
	router := setupInquiryRouter(handler)

	propertyRepo.On("GetProperty", mock.Anything, 99).
		Return(models.Property{}, repositories.ErrPropertyNotFound).Once()

	body := bytes.NewBufferString(`{"property_id":99,"subject":"s","message":"m"}`)
	req := httptest.NewRequest(http.MethodPost, "/inquiries", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	propertyRepo.AssertExpectations(t)
}

func TestCreateInquiryMissingFields(t *testing.T) {
	handler := NewInquiryHandler(new(mocks.InquiryRepositoryMock), new(mocks.PropertyRepositoryMock), new(mocks.RoomRepositoryMock), new(mocks.NotifierMock))
	router := setupInquiryRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/inquiries", bytes.NewBufferString(`{"property_id":8}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListInquiriesIncludesRoomID(t *testing.T) {
	inquiryRepo := new(mocks.InquiryRepositoryMock)
	handler := NewInquiryHandler(inquiryRepo, new(mocks.PropertyRepositoryMock), new(mocks.RoomRepositoryMock), new(mocks.NotifierMock))
	router := setupInquiryRouter(handler)

	inquiryRepo.On("ListForInquirer", mock.Anything, 1).
		Return([]models.Inquiry{{ID: 4, PropertyID: 8, InquirerID: 1, RoomID: sql.NullInt64{Int64: 12, Valid: true}}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/inquiries", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Inquiries []map[string]any `json:"inquiries"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Inquiries, 1)
	assert.Equal(t, float64(12), resp.Inquiries[0]["room_id"])
	inquiryRepo.AssertExpectations(t)
}

func TestListReceivedInquiries(t *testing.T) {
	inquiryRepo := new(mocks.InquiryRepositoryMock)
	handler := NewInquiryHandler(inquiryRepo, new(mocks.PropertyRepositoryMock), new(mocks.RoomRepositoryMock), new(mocks.NotifierMock))
	router := setupInquiryRouter(handler)

	inquiryRepo.On("ListForOwner", mock.Anything, 1).
		Return([]models.Inquiry{{ID: 6, PropertyID: 3, InquirerID: 2}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/inquiries/received", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Inquiries []map[string]any `json:"inquiries"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Inquiries, 1)
	assert.Nil(t, resp.Inquiries[0]["room_id"])
	inquiryRepo.AssertExpectations(t)
}
