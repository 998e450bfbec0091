package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/booking-core/internal/logger"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

// fixedNow — «сейчас» для всех тестов: за месяц до дней, на которые бронируем.
var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	repos    repository.Set
	business *model.Business
	item     *model.BookableItem
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// одна in-memory база на одно соединение
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(db))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	business := &model.Business{Name: "Barbershop", Timezone: "UTC"}
	require.NoError(t, db.Create(business).Error)

	item := seedItem(t, db, business.ID, "Haircut", "PT1H", "50")

	return &fixture{
		db:       db,
		repos:    repository.NewGormSet(db),
		business: business,
		item:     item,
	}
}

func seedItem(t *testing.T, db *gorm.DB, businessID uuid.UUID, name, duration, price string) *model.BookableItem {
	t.Helper()
	item := &model.BookableItem{
		BusinessID: businessID,
		Type:       model.BookableItemService,
		Name:       name,
		Duration:   duration,
		Price:      decimal.NewNullDecimal(decimal.RequireFromString(price)),
		IsActive:   true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedBooking(t *testing.T, db *gorm.DB, businessID, itemID uuid.UUID, start, end time.Time, status model.BookingStatus) *model.Booking {
	t.Helper()
	b := &model.Booking{
		BusinessID:     businessID,
		BookableItemID: itemID,
		StartDatetime:  start.UTC(),
		EndDatetime:    end.UTC(),
		Status:         status,
		UnitCount:      1,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func (f *fixture) core(policy Policy) *Core {
	return NewCore(f.repos, policy, logger.Discard(), WithClock(func() time.Time { return fixedNow }))
}

func (f *fixture) countBookings(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Booking{}).Count(&n).Error)
	return n
}

func (f *fixture) countEvents(t *testing.T, typ model.EventType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Event{}).Where("event_type = ?", typ).Count(&n).Error)
	return n
}

func utc(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func rfc(t time.Time) string {
	return t.Format(time.RFC3339)
}

var bg = context.Background()
