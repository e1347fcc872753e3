package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shareit-market/service-booking/internal/application"
	"github.com/shareit-market/service-booking/internal/domain"
	bookingDomain "github.com/shareit-market/service-booking/internal/domain/booking"
	"github.com/shareit-market/service-booking/internal/response"
)

// SharerUserHeader carries the acting user's identifier. The gateway tier
// authenticates the caller and forwards the identity in this header.
const SharerUserHeader = "X-Sharer-User-Id"

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/api/v1/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookerBookings)
		bookings.GET("/owner", h.ListOwnerBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.DecideBooking)
	}

	items := r.Group("/api/v1/items")
	{
		items.GET("/bookings/summary", h.ListOwnerItemSummaries)
		items.GET("/:id/bookings/summary", h.GetItemBookingSummary)
		items.GET("/:id/bookings/completed", h.HasCompletedRental)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if !req.End.After(req.Start) {
		response.BadRequest(c, "end must be after start")
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// DecideBooking handles PATCH /api/v1/bookings/:id?approved=true|false.
func (h *BookingHandler) DecideBooking(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		response.BadRequest(c, "approved must be true or false")
		return
	}

	result, err := h.service.DecideBooking(c.Request.Context(), userID, bookingID, approved)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookerBookings handles GET /api/v1/bookings?state=&from=&size=.
func (h *BookingHandler) ListBookerBookings(c *gin.Context) {
	h.listBookings(c, h.service.ListBookerBookings)
}

// ListOwnerBookings handles GET /api/v1/bookings/owner?state=&from=&size=.
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	h.listBookings(c, h.service.ListOwnerBookings)
}

type listFunc func(ctx context.Context, userID uuid.UUID, category bookingDomain.Category, page *bookingDomain.Page) ([]application.BookingDTO, error)

func (h *BookingHandler) listBookings(c *gin.Context, list listFunc) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	category, page, err := parseListing(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := list(c.Request.Context(), userID, category, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetItemBookingSummary handles GET /api/v1/items/:id/bookings/summary.
func (h *BookingHandler) GetItemBookingSummary(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	result, err := h.service.GetItemBookingSummary(c.Request.Context(), userID, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOwnerItemSummaries handles GET /api/v1/items/bookings/summary.
func (h *BookingHandler) ListOwnerItemSummaries(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	result, err := h.service.ListOwnerItemSummaries(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// HasCompletedRental handles GET /api/v1/items/:id/bookings/completed.
func (h *BookingHandler) HasCompletedRental(c *gin.Context) {
	userID, ok := actorID(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid item ID")
		return
	}

	completed, err := h.service.HasCompletedRental(c.Request.Context(), userID, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"completed": completed})
}

// actorID extracts and validates the acting user from the request header.
func actorID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(SharerUserHeader)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + SharerUserHeader + " header"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + SharerUserHeader + " header"})
		return uuid.Nil, false
	}
	return userID, true
}

// parseListing extracts the state filter and page window from query params.
// A missing size means the listing is unbounded.
func parseListing(c *gin.Context) (bookingDomain.Category, *bookingDomain.Page, error) {
	category, err := bookingDomain.ParseCategory(c.Query("state"))
	if err != nil {
		return "", nil, err
	}

	sizeRaw := c.Query("size")
	if sizeRaw == "" {
		return category, nil, nil
	}

	size, err := strconv.Atoi(sizeRaw)
	if err != nil || size <= 0 {
		return "", nil, domain.NewValidationError("size must be a positive integer")
	}

	from := 0
	if fromRaw := c.Query("from"); fromRaw != "" {
		from, err = strconv.Atoi(fromRaw)
		if err != nil || from < 0 {
			return "", nil, domain.NewValidationError("from must be a non-negative integer")
		}
	}

	page := bookingDomain.NewPage(from, size)
	return category, &page, nil
}
