package booking

import (
	"errors"
	"log"
	"net/http"

	"hrdesk/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the booking endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rooms/:id/busy-slots", h.GetBusySlots)
	rg.GET("/rooms/:id/availability", h.GetRoomAvailability)

	rg.POST("/bookings/check-conflict", h.CheckConflict)
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.PUT("/bookings/:id", h.UpdateBooking)
	rg.PATCH("/bookings/:id/cancel", h.CancelBooking)

	rg.GET("/users/me/bookings", h.MyBookings)
}

// RegisterReviewRoutes mounts approve/reject; the group is expected to be
// restricted to reviewers.
func (h *Handler) RegisterReviewRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/bookings/:id/approve", h.ApproveBooking)
	rg.PATCH("/bookings/:id/reject", h.RejectBooking)
}

// CreateBooking reserves a room for the caller. The booking starts pending.
// @Summary		Create a room booking
// @Tags		Bookings
// @Security	BearerAuth
// @Param		request	body	BookingInput	true	"room_id, title and either date/start_time/end_time or start_at/end_at"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "Validation error"
// @Failure		409	{object}	map[string]interface{} "Room already booked for this time"
// @Failure		422	{object}	map[string]interface{} "Room inactive"
// @Router		/bookings [POST]
func (h *Handler) CreateBooking(c *gin.Context) {
	var req BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	var req BookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.UpdateBooking(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	b, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ApproveBooking(c *gin.Context) {
	b, err := h.service.ApproveBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) RejectBooking(c *gin.Context) {
	b, err := h.service.RejectBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// CheckConflict reports whether the interval collides with a live booking.
// @Summary		Check a booking interval
// @Tags		Bookings
// @Security	BearerAuth
// @Param		request	body	CheckConflictInput	true	"Interval to check"
// @Success		200	{object}	CheckConflictResponse
// @Failure		400	{object}	map[string]interface{} "Validation error"
// @Router		/bookings/check-conflict [POST]
func (h *Handler) CheckConflict(c *gin.Context) {
	var req CheckConflictInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	conflict, err := h.service.CheckConflict(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, CheckConflictResponse{Conflict: conflict})
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListBookings(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	list, err := h.service.ListBookings(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) MyBookings(c *gin.Context) {
	var q ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	list, err := h.service.MyBookings(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}

func (h *Handler) GetBusySlots(c *gin.Context) {
	slots, err := h.service.GetBusySlots(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"busy_slots": slots})
}

func (h *Handler) GetRoomAvailability(c *gin.Context) {
	av, err := h.service.GetRoomAvailability(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, av)
}

// fail maps service errors onto the error envelope.
func (h *Handler) fail(c *gin.Context, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking input", vErr.Fields)
	case errors.Is(err, ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrRoomUnavailable):
		response.Error(c, http.StatusUnprocessableEntity, "ROOM_UNAVAILABLE", err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "Room is already booked for the selected time")
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, ErrTransient):
		response.Error(c, http.StatusServiceUnavailable, "TRANSIENT_ERROR", "Temporary failure, please retry")
	default:
		log.Printf("booking_handler_error method=%s path=%s error=%q", c.Request.Method, c.Request.URL.Path, err.Error())
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
