package dto

import (
	"time"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/model"
)

type BookingCreatedResponse struct {
	BookingID string `json:"booking_id"`
}

type BookingResponse struct {
	ID                 string  `json:"id"`
	BusinessID         string  `json:"business_id"`
	BookableItemID     string  `json:"bookable_item_id"`
	StartDatetime      string  `json:"start_datetime"`
	EndDatetime        string  `json:"end_datetime"`
	Status             string  `json:"status"`
	UnitCount          int     `json:"unit_count"`
	CancellationReason string  `json:"cancellation_reason,omitempty"`
	CancelledAt        *string `json:"cancelled_at,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

type AvailableSlotResponse struct {
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
}

type BusinessHoursResponse struct {
	ID         string  `json:"id"`
	BusinessID string  `json:"business_id"`
	StaffID    *string `json:"staff_id,omitempty"`
	DayOfWeek  int     `json:"day_of_week"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
}

type StatisticsResponse struct {
	BusinessID    string           `json:"business_id"`
	StartDate     string           `json:"start_date"`
	EndDate       string           `json:"end_date"`
	TotalBookings int64            `json:"total_bookings"`
	Units         int64            `json:"units"`
	ByStatus      map[string]int64 `json:"by_status"`
	Revenue       string           `json:"revenue"`
}

type PageResponse[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
}

type ErrorResponse struct {
	ErrorCode string                `json:"error_code"`
	Message   string                `json:"message"`
	Details   []apperror.FieldError `json:"details,omitempty"`
}

func ToBookingResponse(b *model.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                 b.ID.String(),
		BusinessID:         b.BusinessID.String(),
		BookableItemID:     b.BookableItemID.String(),
		StartDatetime:      b.StartDatetime.Format(time.RFC3339),
		EndDatetime:        b.EndDatetime.Format(time.RFC3339),
		Status:             string(b.Status),
		UnitCount:          b.UnitCount,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          b.UpdatedAt.Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		s := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &s
	}
	return resp
}

func ToBookingPage(p calendar.Page[model.Booking]) PageResponse[BookingResponse] {
	items := make([]BookingResponse, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, ToBookingResponse(&p.Items[i]))
	}
	return PageResponse[BookingResponse]{
		Items:    items,
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
		HasNext:  p.HasNext,
		HasPrev:  p.HasPrev,
	}
}

func ToSlotResponses(slots []model.AvailableSlot) []AvailableSlotResponse {
	resp := make([]AvailableSlotResponse, 0, len(slots))
	for _, s := range slots {
		resp = append(resp, AvailableSlotResponse{
			StartDatetime: s.Start.Format(time.RFC3339),
			EndDatetime:   s.End.Format(time.RFC3339),
		})
	}
	return resp
}

func ToBusinessHoursResponse(h *model.BusinessHours) BusinessHoursResponse {
	resp := BusinessHoursResponse{
		ID:         h.ID.String(),
		BusinessID: h.BusinessID.String(),
		DayOfWeek:  h.DayOfWeek,
		StartTime:  model.FormatClock(h.StartTime),
		EndTime:    model.FormatClock(h.EndTime),
	}
	if h.StaffID != nil {
		s := h.StaffID.String()
		resp.StaffID = &s
	}
	return resp
}

func ToStatisticsResponse(s *model.BookingStats) StatisticsResponse {
	byStatus := make(map[string]int64, len(s.ByStatus))
	for k, v := range s.ByStatus {
		byStatus[string(k)] = v
	}
	return StatisticsResponse{
		BusinessID:    s.BusinessID.String(),
		StartDate:     s.From.Format(calendar.DateLayout),
		EndDate:       s.To.Format(calendar.DateLayout),
		TotalBookings: s.TotalBookings,
		Units:         s.Units,
		ByStatus:      byStatus,
		Revenue:       s.Revenue.StringFixed(2),
	}
}

func ToErrorResponse(err error) ErrorResponse {
	kind, msg, details := apperror.Public(err)
	return ErrorResponse{ErrorCode: string(kind), Message: msg, Details: details}
}
