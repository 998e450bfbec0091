package service

import "github.com/Leganyst/booking-core/internal/apperror"

var (
	ErrBusinessNotFound     = apperror.NotFound("business not found")
	ErrBookableItemNotFound = apperror.NotFound("bookable item not found")
	ErrBookingNotFound      = apperror.NotFound("booking not found")

	ErrUnknownBusiness     = apperror.BadRequest("business not found")
	ErrUnknownBookableItem = apperror.BadRequest("bookable item not found")
	ErrInactiveItem        = apperror.BadRequest("bookable item is not active")
	ErrInvalidInterval     = apperror.BadRequest("end_datetime must be after start_datetime")
	ErrSlotAlreadyBooked   = apperror.BadRequest("slot already booked")
	ErrInvalidDateRange    = apperror.BadRequest("end_date must not be before start_date")
	ErrAlreadyCancelled    = apperror.BadRequest("booking is already cancelled")
	ErrCancelTooLate       = apperror.BadRequest("booking can no longer be cancelled: cancellation notice period has passed")
	ErrInvalidTransition   = apperror.BadRequest("booking status does not allow this transition")
	ErrInvalidHours        = apperror.BadRequest("end_time must be after start_time")
	ErrHoursOverlap        = apperror.BadRequest("business hours overlap an existing rule")
)
