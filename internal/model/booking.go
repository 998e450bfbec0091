package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// ActiveStatuses — статусы, которые занимают время.
var ActiveStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// bookings — бронь позиции на полуоткрытый интервал [StartDatetime, EndDatetime).
type Booking struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID     uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_business_start,priority:1"`
	BookableItemID uuid.UUID `gorm:"type:uuid;not null;index"`

	StartDatetime time.Time `gorm:"not null;index:idx_bookings_business_start,priority:2"`
	EndDatetime   time.Time `gorm:"not null"`

	Status    BookingStatus `gorm:"type:varchar(32);not null;index"`
	UnitCount int           `gorm:"not null;default:1"`

	CancellationReason string     `gorm:"type:text"`
	CancelledAt        *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Business     *Business     `gorm:"foreignKey:BusinessID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	BookableItem *BookableItem `gorm:"foreignKey:BookableItemID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// StatusTotals: агрегат по одному статусу, как его отдаёт хранилище.
type StatusTotals struct {
	Status  BookingStatus
	Count   int64
	Units   int64
	Revenue decimal.Decimal
}

// BookingStats — сводка по бронированиям бизнеса за дни [From, To].
type BookingStats struct {
	BusinessID    uuid.UUID
	From          time.Time
	To            time.Time
	TotalBookings int64
	Units         int64
	ByStatus      map[BookingStatus]int64
	Revenue       decimal.Decimal
}
