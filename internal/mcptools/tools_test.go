package mcptools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/handler/mocks"
	"github.com/Leganyst/booking-core/internal/logger"
	"github.com/Leganyst/booking-core/internal/model"
)

type testTools struct {
	bookings     *mocks.BookingSvc
	availability *mocks.AvailabilitySvc
	stats        *mocks.StatsSvc
	tools        *Tools
}

func setup(t *testing.T) *testTools {
	t.Helper()
	tt := &testTools{
		bookings:     mocks.NewBookingSvc(t),
		availability: mocks.NewAvailabilitySvc(t),
		stats:        mocks.NewStatsSvc(t),
	}
	tt.tools = New(tt.bookings, tt.availability, tt.stats, logger.Discard())
	return tt
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content %T", res.Content[0])
	return tc.Text
}

func TestCreateBooking(t *testing.T) {
	tt := setup(t)
	id := uuid.New()
	units := 2

	tt.bookings.On("Create", mock.Anything, dto.CreateBookingRequest{
		BusinessID:     "b",
		BookableItemID: "i",
		StartDatetime:  "2025-06-01T09:00:00Z",
		EndDatetime:    "2025-06-01T10:00:00Z",
		UnitCount:      &units,
	}).Return(&model.Booking{ID: id}, nil)

	res, err := tt.tools.CreateBooking(context.Background(), call(ToolCreateBooking, map[string]any{
		"business_id":      "b",
		"bookable_item_id": "i",
		"start_datetime":   "2025-06-01T09:00:00Z",
		"end_datetime":     "2025-06-01T10:00:00Z",
		"unit_count":       float64(2),
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"booking_id":"`+id.String()+`"}`, text(t, res))
}

func TestCreateBooking_ErrorBodyMatchesREST(t *testing.T) {
	tt := setup(t)
	tt.bookings.On("Create", mock.Anything, mock.Anything).Return(nil, apperror.BadRequest("slot already booked"))

	res, err := tt.tools.CreateBooking(context.Background(), call(ToolCreateBooking, map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &body))
	assert.Equal(t, "BAD_REQUEST", body.ErrorCode)
	assert.Equal(t, "slot already booked", body.Message)
}

func TestCreateBooking_FractionalUnitCountRejected(t *testing.T) {
	for _, v := range []any{1.5, 1.9, "2.5", "two"} {
		tt := setup(t)

		res, err := tt.tools.CreateBooking(context.Background(), call(ToolCreateBooking, map[string]any{
			"business_id": "b",
			"unit_count":  v,
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError, "unit_count %v", v)
		assert.Contains(t, text(t, res), "BAD_REQUEST")
		tt.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestCreateBooking_ZeroUnitCountReachesValidation(t *testing.T) {
	tt := setup(t)
	tt.bookings.On("Create", mock.Anything, mock.MatchedBy(func(r dto.CreateBookingRequest) bool {
		return r.UnitCount != nil && *r.UnitCount == 0
	})).Return(nil, apperror.Validation([]apperror.FieldError{{Field: "unit_count", Rule: "min", Param: "1"}}))

	res, err := tt.tools.CreateBooking(context.Background(), call(ToolCreateBooking, map[string]any{
		"unit_count": "0",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "unit_count")
}

func TestGetBookings_FractionalPageRejected(t *testing.T) {
	tt := setup(t)

	res, err := tt.tools.GetBookings(context.Background(), call(ToolGetBookings, map[string]any{"page": 2.5}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	tt.bookings.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    int
		present bool
		wantErr bool
	}{
		{"absent", map[string]any{}, 0, false, false},
		{"null", map[string]any{"n": nil}, 0, false, false},
		{"whole float", map[string]any{"n": float64(3)}, 3, true, false},
		{"zero float", map[string]any{"n": float64(0)}, 0, true, false},
		{"zero string", map[string]any{"n": "0"}, 0, true, false},
		{"numeric string", map[string]any{"n": "12"}, 12, true, false},
		{"fraction", map[string]any{"n": 1.9}, 0, false, true},
		{"bool", map[string]any{"n": true}, 0, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, ok, err := intArg(call("x", tc.args), "n")
			if tc.wantErr {
				assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
			assert.Equal(t, tc.present, ok)
		})
	}
}

func TestGetBookings(t *testing.T) {
	tt := setup(t)
	booking := model.Booking{
		ID:            uuid.New(),
		StartDatetime: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		EndDatetime:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:        model.BookingStatusConfirmed,
	}
	tt.bookings.On("List", mock.Anything, dto.ListBookingsQuery{Status: "confirmed", Page: 2, PageSize: 1}).
		Return(calendar.NewPage([]model.Booking{booking}, 2, 2, 1), nil)

	res, err := tt.tools.GetBookings(context.Background(), call(ToolGetBookings, map[string]any{
		"status":    "confirmed",
		"page":      float64(2),
		"page_size": float64(1),
	}))
	require.NoError(t, err)

	var page dto.PageResponse[dto.BookingResponse]
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, booking.ID.String(), page.Items[0].ID)
	assert.True(t, page.HasPrev)
	assert.False(t, page.HasNext)
}

func TestGetAvailableSlots(t *testing.T) {
	tt := setup(t)
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	tt.availability.On("AvailableSlots", mock.Anything, dto.AvailableSlotsQuery{
		BookableItemID: "i",
		StartDate:      "2025-06-01",
		EndDate:        "2025-06-01",
	}).Return([]model.AvailableSlot{{Start: start, End: start.Add(time.Hour)}}, nil)

	res, err := tt.tools.GetAvailableSlots(context.Background(), call(ToolGetAvailableSlots, map[string]any{
		"bookable_item_id": "i",
		"start_date":       "2025-06-01",
		"end_date":         "2025-06-01",
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"start_datetime":"2025-06-01T09:00:00Z","end_datetime":"2025-06-01T10:00:00Z"}]`, text(t, res))
}

func TestCancelBooking(t *testing.T) {
	tt := setup(t)
	tt.bookings.On("Cancel", mock.Anything, dto.CancelBookingRequest{BookingID: "x", Reason: "sick"}).Return(nil)

	res, err := tt.tools.CancelBooking(context.Background(), call(ToolCancelBooking, map[string]any{
		"booking_id": "x",
		"reason":     "sick",
	}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"booking_id":"x","status":"cancelled"}`, text(t, res))
}

func TestCancelBooking_NotFound(t *testing.T) {
	tt := setup(t)
	tt.bookings.On("Cancel", mock.Anything, mock.Anything).Return(apperror.NotFound("booking not found"))

	res, err := tt.tools.CancelBooking(context.Background(), call(ToolCancelBooking, map[string]any{"booking_id": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "NOT_FOUND")
}

func TestGetBookingStatistics(t *testing.T) {
	tt := setup(t)
	businessID := uuid.New()
	tt.stats.On("Statistics", mock.Anything, dto.StatisticsQuery{
		BusinessID: businessID.String(),
		StartDate:  "2025-06-01",
		EndDate:    "2025-06-30",
	}).Return(&model.BookingStats{
		BusinessID:    businessID,
		From:          time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:            time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		TotalBookings: 1,
		ByStatus:      map[model.BookingStatus]int64{model.BookingStatusCompleted: 1},
		Revenue:       decimal.RequireFromString("49.5"),
	}, nil)

	res, err := tt.tools.GetBookingStatistics(context.Background(), call(ToolGetBookingStatistics, map[string]any{
		"business_id": businessID.String(),
		"start_date":  "2025-06-01",
		"end_date":    "2025-06-30",
	}))
	require.NoError(t, err)

	var body dto.StatisticsResponse
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &body))
	assert.Equal(t, "49.50", body.Revenue)
	assert.Equal(t, int64(1), body.TotalBookings)
}

func TestNewServer_RegistersTools(t *testing.T) {
	tt := setup(t)
	s := tt.tools.NewServer()

	msg := s.HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`,
	))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{
		ToolCreateBooking,
		ToolGetBookings,
		ToolGetAvailableSlots,
		ToolCancelBooking,
		ToolGetBookingStatistics,
	} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}
