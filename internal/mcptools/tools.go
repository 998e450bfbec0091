// Package mcptools публикует операции бронирования как MCP-инструменты.
// Параметры и JSON-ответы совпадают с REST.
package mcptools

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/model"
)

const (
	ToolCreateBooking        = "createBooking"
	ToolGetBookings          = "getBookings"
	ToolGetAvailableSlots    = "getAvailableSlots"
	ToolCancelBooking        = "cancelBooking"
	ToolGetBookingStatistics = "getBookingStatistics"

	serverName    = "booking-core"
	serverVersion = "0.1.0"
)

type BookingSvc interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (*model.Booking, error)
	Cancel(ctx context.Context, req dto.CancelBookingRequest) error
	List(ctx context.Context, q dto.ListBookingsQuery) (calendar.Page[model.Booking], error)
}

type AvailabilitySvc interface {
	AvailableSlots(ctx context.Context, q dto.AvailableSlotsQuery) ([]model.AvailableSlot, error)
}

type StatsSvc interface {
	Statistics(ctx context.Context, q dto.StatisticsQuery) (*model.BookingStats, error)
}

// Tools держит обработчики инструментов; реестр собирается один раз при старте.
type Tools struct {
	bookings     BookingSvc
	availability AvailabilitySvc
	stats        StatsSvc
	log          logrus.FieldLogger
}

func New(bookings BookingSvc, availability AvailabilitySvc, stats StatsSvc, log logrus.FieldLogger) *Tools {
	return &Tools{bookings: bookings, availability: availability, stats: stats, log: log}
}

// NewServer регистрирует все инструменты на новом MCP-сервере.
func (t *Tools) NewServer() *server.MCPServer {
	s := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	t.Register(s)
	return s
}

func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool(ToolCreateBooking,
		mcp.WithDescription("Create a booking for a bookable item. Returns the new booking id."),
		mcp.WithString("business_id", mcp.Required(), mcp.Description("Business UUID")),
		mcp.WithString("bookable_item_id", mcp.Required(), mcp.Description("Bookable item UUID")),
		mcp.WithString("start_datetime", mcp.Required(), mcp.Description("Start, RFC3339 or YYYY-MM-DDTHH:MM in business timezone")),
		mcp.WithString("end_datetime", mcp.Required(), mcp.Description("End, same format as start_datetime")),
		mcp.WithNumber("unit_count", mcp.Description("Number of units, default 1")),
	), t.CreateBooking)

	s.AddTool(mcp.NewTool(ToolGetBookings,
		mcp.WithDescription("List bookings with optional filters, paginated."),
		mcp.WithString("business_id", mcp.Description("Business UUID")),
		mcp.WithString("bookable_item_id", mcp.Description("Bookable item UUID")),
		mcp.WithString("status", mcp.Description("pending, confirmed, cancelled or completed")),
		mcp.WithString("start_date", mcp.Description("First day, YYYY-MM-DD")),
		mcp.WithString("end_date", mcp.Description("Last day, YYYY-MM-DD")),
		mcp.WithNumber("page", mcp.Description("Page number starting from 1")),
		mcp.WithNumber("page_size", mcp.Description("Page size, at most 200")),
	), t.GetBookings)

	s.AddTool(mcp.NewTool(ToolGetAvailableSlots,
		mcp.WithDescription("Free slots of a bookable item for each day of an inclusive date range."),
		mcp.WithString("bookable_item_id", mcp.Required(), mcp.Description("Bookable item UUID")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("First day, YYYY-MM-DD")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Last day, YYYY-MM-DD")),
	), t.GetAvailableSlots)

	s.AddTool(mcp.NewTool(ToolCancelBooking,
		mcp.WithDescription("Cancel a booking at least 24 hours before it starts."),
		mcp.WithString("booking_id", mcp.Required(), mcp.Description("Booking UUID")),
		mcp.WithString("reason", mcp.Description("Cancellation reason")),
	), t.CancelBooking)

	s.AddTool(mcp.NewTool(ToolGetBookingStatistics,
		mcp.WithDescription("Booking counts by status, units and revenue for a business over a date range."),
		mcp.WithString("business_id", mcp.Required(), mcp.Description("Business UUID")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("First day, YYYY-MM-DD")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Last day, YYYY-MM-DD")),
	), t.GetBookingStatistics)
}

func (t *Tools) CreateBooking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := dto.CreateBookingRequest{
		BusinessID:     req.GetString("business_id", ""),
		BookableItemID: req.GetString("bookable_item_id", ""),
		StartDatetime:  req.GetString("start_datetime", ""),
		EndDatetime:    req.GetString("end_datetime", ""),
	}
	n, ok, err := intArg(req, "unit_count")
	if err != nil {
		return t.toolError(req, err)
	}
	if ok {
		in.UnitCount = &n
	}

	booking, err := t.bookings.Create(ctx, in)
	if err != nil {
		return t.toolError(req, err)
	}
	return jsonResult(dto.BookingCreatedResponse{BookingID: booking.ID.String()})
}

func (t *Tools) GetBookings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := dto.ListBookingsQuery{
		BusinessID:     req.GetString("business_id", ""),
		BookableItemID: req.GetString("bookable_item_id", ""),
		Status:         req.GetString("status", ""),
		StartDate:      req.GetString("start_date", ""),
		EndDate:        req.GetString("end_date", ""),
	}
	var err error
	if q.Page, _, err = intArg(req, "page"); err != nil {
		return t.toolError(req, err)
	}
	if q.PageSize, _, err = intArg(req, "page_size"); err != nil {
		return t.toolError(req, err)
	}

	page, err := t.bookings.List(ctx, q)
	if err != nil {
		return t.toolError(req, err)
	}
	return jsonResult(dto.ToBookingPage(page))
}

func (t *Tools) GetAvailableSlots(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := dto.AvailableSlotsQuery{
		BookableItemID: req.GetString("bookable_item_id", ""),
		StartDate:      req.GetString("start_date", ""),
		EndDate:        req.GetString("end_date", ""),
	}

	slots, err := t.availability.AvailableSlots(ctx, q)
	if err != nil {
		return t.toolError(req, err)
	}
	return jsonResult(dto.ToSlotResponses(slots))
}

func (t *Tools) CancelBooking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := dto.CancelBookingRequest{
		BookingID: req.GetString("booking_id", ""),
		Reason:    req.GetString("reason", ""),
	}

	if err := t.bookings.Cancel(ctx, in); err != nil {
		return t.toolError(req, err)
	}
	return jsonResult(map[string]any{"booking_id": in.BookingID, "status": model.BookingStatusCancelled})
}

func (t *Tools) GetBookingStatistics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := dto.StatisticsQuery{
		BusinessID: req.GetString("business_id", ""),
		StartDate:  req.GetString("start_date", ""),
		EndDate:    req.GetString("end_date", ""),
	}

	stats, err := t.stats.Statistics(ctx, q)
	if err != nil {
		return t.toolError(req, err)
	}
	return jsonResult(dto.ToStatisticsResponse(stats))
}

// toolError отдаёт ошибку как результат инструмента с тем же телом, что и REST.
func (t *Tools) toolError(req mcp.CallToolRequest, err error) (*mcp.CallToolResult, error) {
	if apperror.KindOf(err) == apperror.KindServerError {
		t.log.WithError(err).WithField("tool", req.Params.Name).Error("tool call failed")
	}
	body, mErr := json.Marshal(dto.ToErrorResponse(err))
	if mErr != nil {
		return nil, mErr
	}
	return mcp.NewToolResultError(string(body)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(body)), nil
}

// intArg разбирает целый аргумент так же строго, как REST-биндинг в *int:
// дробное число или нечисловая строка дают BadRequest, присутствующий ноль
// возвращается с ok=true и дальше проверяется валидатором.
func intArg(req mcp.CallToolRequest, key string) (int, bool, error) {
	v, ok := req.GetArguments()[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false, apperror.BadRequest("invalid %s: expected integer", key)
		}
		return int(n), true, nil
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false, apperror.BadRequest("invalid %s: expected integer", key)
		}
		return int(i), true, nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false, apperror.BadRequest("invalid %s: expected integer", key)
		}
		return i, true, nil
	}
	return 0, false, apperror.BadRequest("invalid %s: expected integer", key)
}
