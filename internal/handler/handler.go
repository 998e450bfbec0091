package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/model"
)

type BookingSvc interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (*model.Booking, error)
	Cancel(ctx context.Context, req dto.CancelBookingRequest) error
	Confirm(ctx context.Context, id string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	Get(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, q dto.ListBookingsQuery) (calendar.Page[model.Booking], error)
}

type AvailabilitySvc interface {
	AvailableSlots(ctx context.Context, q dto.AvailableSlotsQuery) ([]model.AvailableSlot, error)
}

type HoursSvc interface {
	Create(ctx context.Context, businessID string, req dto.CreateBusinessHoursRequest) (*model.BusinessHours, error)
	List(ctx context.Context, businessID string) ([]model.BusinessHours, error)
}

type StatsSvc interface {
	Statistics(ctx context.Context, q dto.StatisticsQuery) (*model.BookingStats, error)
}

type Handler struct {
	bookingService      BookingSvc
	availabilityService AvailabilitySvc
	hoursService        HoursSvc
	statsService        StatsSvc
	log                 logrus.FieldLogger
}

func NewHandler(
	bookingService BookingSvc,
	availabilityService AvailabilitySvc,
	hoursService HoursSvc,
	statsService StatsSvc,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		bookingService:      bookingService,
		availabilityService: availabilityService,
		hoursService:        hoursService,
		statsService:        statsService,
		log:                 log,
	}
}

// Bookings

func (h *Handler) CreateBooking(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, apperror.BadRequest("invalid JSON body"))
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.BookingCreatedResponse{BookingID: booking.ID.String()})
}

func (h *Handler) ListBookings(c *gin.Context) {
	var q dto.ListBookingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.handleError(c, apperror.BadRequest("invalid query parameters"))
		return
	}

	page, err := h.bookingService.List(c.Request.Context(), q)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingPage(page))
}

func (h *Handler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// CancelBooking принимает причину из query (?reason=) или из JSON-тела.
func (h *Handler) CancelBooking(c *gin.Context) {
	req := dto.CancelBookingRequest{Reason: c.Query("reason")}
	if req.Reason == "" && c.Request.ContentLength > 0 {
		var body struct {
			Reason string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			h.handleError(c, apperror.BadRequest("invalid JSON body"))
			return
		}
		req.Reason = body.Reason
	}
	req.BookingID = c.Param("id")

	if err := h.bookingService.Cancel(c.Request.Context(), req); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	booking, err := h.bookingService.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *Handler) CompleteBooking(c *gin.Context) {
	booking, err := h.bookingService.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// Availability

func (h *Handler) AvailableSlots(c *gin.Context) {
	var q dto.AvailableSlotsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.handleError(c, apperror.BadRequest("invalid query parameters"))
		return
	}
	q.BookableItemID = c.Param("id")

	slots, err := h.availabilityService.AvailableSlots(c.Request.Context(), q)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSlotResponses(slots))
}

// Business hours

func (h *Handler) ListBusinessHours(c *gin.Context) {
	rules, err := h.hoursService.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]dto.BusinessHoursResponse, 0, len(rules))
	for i := range rules {
		resp = append(resp, dto.ToBusinessHoursResponse(&rules[i]))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateBusinessHours(c *gin.Context) {
	var req dto.CreateBusinessHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, apperror.BadRequest("invalid JSON body"))
		return
	}

	rule, err := h.hoursService.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBusinessHoursResponse(rule))
}

// Statistics

func (h *Handler) Statistics(c *gin.Context) {
	var q dto.StatisticsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.handleError(c, apperror.BadRequest("invalid query parameters"))
		return
	}
	q.BusinessID = c.Param("id")

	stats, err := h.statsService.Statistics(c.Request.Context(), q)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStatisticsResponse(stats))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	c.Set("error", err.Error())

	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}

	c.JSON(status, dto.ToErrorResponse(err))
}

// StatusOf сопоставляет вид ошибки HTTP-статусу.
func StatusOf(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindBadRequest:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
