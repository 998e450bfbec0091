package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-core/internal/model"
)

// ErrNotFound возвращают все реализации хранилища, когда запись не найдена.
var ErrNotFound = errors.New("record not found")

// Параметры поиска пересекающихся броней.
// Пересечение проверяется по замкнутым интервалам: start <= End AND end >= Start.
type OverlapQuery struct {
	BusinessID uuid.UUID
	// nil — проверка по всему бизнесу.
	BookableItemID *uuid.UUID
	Start          time.Time
	End            time.Time
	// Пустой список — любые статусы, включая отменённые.
	Statuses []model.BookingStatus
}

// DayQuery выбирает брони, чьё начало попадает в [From, To).
type DayQuery struct {
	BusinessID     uuid.UUID
	BookableItemID *uuid.UUID
	From           time.Time
	To             time.Time
	Statuses       []model.BookingStatus
}

type BookingFilter struct {
	BusinessID     *uuid.UUID
	BookableItemID *uuid.UUID
	Status         model.BookingStatus
	// Начало брони в [From, To).
	From *time.Time
	To   *time.Time
}

// OverlapFinder нужен детектору конфликтов.
type OverlapFinder interface {
	FindOverlapping(ctx context.Context, q OverlapQuery) ([]model.Booking, error)
}

type BusinessRepository interface {
	GetByID(ctx context.Context, id string) (*model.Business, error)
}

type BookableItemRepository interface {
	GetByID(ctx context.Context, id string) (*model.BookableItem, error)
}

type BusinessHoursRepository interface {
	// Правила бизнеса (или сотрудника, если staffID != nil) на день недели.
	ListForDay(ctx context.Context, businessID uuid.UUID, staffID *uuid.UUID, day int) ([]model.BusinessHours, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.BusinessHours, error)
	Create(ctx context.Context, h *model.BusinessHours) error
}

type BookingRepository interface {
	OverlapFinder

	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// Обновить статус; reason и cancelledAt пишутся только при отмене.
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus, reason string, cancelledAt *time.Time) error
	ListStartingBetween(ctx context.Context, q DayQuery) ([]model.Booking, error)
	List(ctx context.Context, f BookingFilter, limit, offset int) ([]model.Booking, int64, error)
	TotalsByStatus(ctx context.Context, businessID uuid.UUID, from, to time.Time) ([]model.StatusTotals, error)
	RecordEvent(ctx context.Context, ev *model.Event) error

	// WithinBusinessLock выполняет fn в транзакции, удерживая блокировку записи
	// бизнеса. Все вызовы внутри fn должны идти через переданный репозиторий.
	WithinBusinessLock(ctx context.Context, businessID uuid.UUID, fn func(tx BookingRepository) error) error
}

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Set — полный набор репозиториев одного хранилища.
type Set struct {
	Businesses BusinessRepository
	Items      BookableItemRepository
	Hours      BusinessHoursRepository
	Bookings   BookingRepository
	Pinger     Pinger
	Close      func(ctx context.Context) error
}
