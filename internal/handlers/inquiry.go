package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"realty-chat-service/internal/events"
	"realty-chat-service/internal/models"
	"realty-chat-service/internal/repositories"
)

// InquiryHandler manages property inquiries. Creating an inquiry is the
// external trigger that opens the INQUIRY room between the inquirer and
// the listing owner.
type InquiryHandler struct {
	inquiries  repositories.InquiryRepository
	properties repositories.PropertyRepository
	rooms      repositories.RoomRepository
	notifier   events.Publisher
}

// NewInquiryHandler builds an InquiryHandler.
func NewInquiryHandler(inquiries repositories.InquiryRepository, properties repositories.PropertyRepository, rooms repositories.RoomRepository, notifier events.Publisher) *InquiryHandler {
	return &InquiryHandler{inquiries: inquiries, properties: properties, rooms: rooms, notifier: notifier}
}

type inquiryResponse struct {
	models.Inquiry
	RoomID *int `json:"room_id"`
}

func toInquiryResponses(inquiries []models.Inquiry) []inquiryResponse {
	out := make([]inquiryResponse, 0, len(inquiries))
	for _, inquiry := range inquiries {
		out = append(out, inquiryResponse{Inquiry: inquiry, RoomID: inquiry.RoomRef()})
	}
	return out
}

// CreateInquiry persists the inquiry, creates or reuses the listing's
// INQUIRY room, adds both parties and notifies the owner. Repeating the
// call for the same listing reuses the existing room.
func (h *InquiryHandler) CreateInquiry(c *gin.Context) {
	var req struct {
		PropertyID int    `json:"property_id" binding:"required"`
		Subject    string `json:"subject" binding:"required"`
		Message    string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id, subject and message are required"})
		return
	}

	ctx := c.Request.Context()
	userID := c.GetInt("userID")

	property, err := h.properties.GetProperty(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, repositories.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create inquiry"})
		return
	}

	inquiry, err := h.inquiries.CreateInquiry(ctx, req.PropertyID, userID, req.Subject, req.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create inquiry"})
		return
	}

	room, err := h.rooms.CreateOrGetInquiryRoom(ctx, req.PropertyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create inquiry room"})
		return
	}
	for _, member := range []int{userID, property.OwnerID} {
		if err := h.rooms.AddMember(ctx, room.ID, member); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create inquiry room"})
			return
		}
	}

	if err := h.inquiries.LinkRoom(ctx, inquiry.ID, room.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create inquiry room"})
		return
	}

	if err := h.notifier.PublishDomainEvent(ctx, events.InquiryEvent(property.Title, property.ID, property.OwnerID)); err != nil {
		log.Printf("inquiry notification failed for property %d: %v", property.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"inquiry": inquiryResponse{Inquiry: inquiry, RoomID: &room.ID},
		"room_id": room.ID,
	})
}

// ListInquiries returns the inquiries the caller has submitted.
func (h *InquiryHandler) ListInquiries(c *gin.Context) {
	inquiries, err := h.inquiries.ListForInquirer(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inquiries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": toInquiryResponses(inquiries)})
}

// ListReceivedInquiries returns inquiries on the caller's listings.
func (h *InquiryHandler) ListReceivedInquiries(c *gin.Context) {
	inquiries, err := h.inquiries.ListForOwner(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inquiries"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": toInquiryResponses(inquiries)})
}
