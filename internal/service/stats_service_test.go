package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/model"
)

func TestStatistics_RevenueOnlyForConfirmedAndCompleted(t *testing.T) {
	f := newFixture(t)
	room := seedItem(t, f.db, f.business.ID, "Room", "PT2H", "120")

	seedBooking(t, f.db, f.business.ID, f.item.ID, utc(2025, 6, 1, 9, 0), utc(2025, 6, 1, 10, 0), model.BookingStatusPending)
	seedBooking(t, f.db, f.business.ID, f.item.ID, utc(2025, 6, 1, 11, 0), utc(2025, 6, 1, 12, 0), model.BookingStatusConfirmed)
	seedBooking(t, f.db, f.business.ID, f.item.ID, utc(2025, 6, 2, 9, 0), utc(2025, 6, 2, 10, 0), model.BookingStatusCancelled)
	done := seedBooking(t, f.db, f.business.ID, room.ID, utc(2025, 6, 3, 9, 0), utc(2025, 6, 3, 11, 0), model.BookingStatusCompleted)
	require.NoError(t, f.db.Model(done).Update("unit_count", 2).Error)

	// вне периода
	seedBooking(t, f.db, f.business.ID, f.item.ID, utc(2025, 6, 4, 9, 0), utc(2025, 6, 4, 10, 0), model.BookingStatusConfirmed)

	stats, err := f.core(DefaultPolicy()).Stats.Statistics(bg, dto.StatisticsQuery{
		BusinessID: f.business.ID.String(),
		StartDate:  "2025-06-01",
		EndDate:    "2025-06-03",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalBookings)
	assert.Equal(t, int64(5), stats.Units)
	assert.Equal(t, map[model.BookingStatus]int64{
		model.BookingStatusPending:   1,
		model.BookingStatusConfirmed: 1,
		model.BookingStatusCancelled: 1,
		model.BookingStatusCompleted: 1,
	}, stats.ByStatus)
	// 50 * 1 + 120 * 2
	assert.True(t, decimal.NewFromInt(290).Equal(stats.Revenue), "revenue = %s", stats.Revenue)
	assert.True(t, stats.From.Equal(utc(2025, 6, 1, 0, 0)))
	assert.True(t, stats.To.Equal(utc(2025, 6, 3, 0, 0)))
}

func TestStatistics_EmptyPeriod(t *testing.T) {
	f := newFixture(t)

	stats, err := f.core(DefaultPolicy()).Stats.Statistics(bg, dto.StatisticsQuery{
		BusinessID: f.business.ID.String(),
		StartDate:  "2025-07-01",
		EndDate:    "2025-07-01",
	})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalBookings)
	assert.True(t, stats.Revenue.IsZero())
	assert.Len(t, stats.ByStatus, 4)
}

func TestStatistics_UsesBusinessTimezone(t *testing.T) {
	if _, err := time.LoadLocation("Asia/Tokyo"); err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	f := newFixture(t)
	require.NoError(t, f.db.Model(f.business).Update("timezone", "Asia/Tokyo").Error)

	// 2025-06-01 20:00 UTC — уже 2 июня по Токио
	seedBooking(t, f.db, f.business.ID, f.item.ID, utc(2025, 6, 1, 20, 0), utc(2025, 6, 1, 21, 0), model.BookingStatusConfirmed)

	stats, err := f.core(DefaultPolicy()).Stats.Statistics(bg, dto.StatisticsQuery{
		BusinessID: f.business.ID.String(),
		StartDate:  "2025-06-01",
		EndDate:    "2025-06-01",
	})
	require.NoError(t, err)
	assert.Zero(t, stats.TotalBookings)
}

func TestStatistics_Errors(t *testing.T) {
	f := newFixture(t)
	svc := f.core(DefaultPolicy()).Stats

	_, err := svc.Statistics(bg, dto.StatisticsQuery{
		BusinessID: uuid.NewString(),
		StartDate:  "2025-06-01",
		EndDate:    "2025-06-02",
	})
	assert.ErrorIs(t, err, ErrBusinessNotFound)

	_, err = svc.Statistics(bg, dto.StatisticsQuery{
		BusinessID: f.business.ID.String(),
		StartDate:  "2025-06-05",
		EndDate:    "2025-06-02",
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}
