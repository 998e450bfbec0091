package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// business_hours — недельное правило доступности бизнеса или конкретного сотрудника.
// Время хранится «настенное», без зоны: применяется таймзона бизнеса.
type BusinessHours struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	BusinessID uuid.UUID  `gorm:"type:uuid;not null;index:idx_hours_scope,priority:1"`
	StaffID    *uuid.UUID `gorm:"type:uuid;index:idx_hours_scope,priority:2"`

	// 0 — воскресенье, как у time.Weekday.
	DayOfWeek int `gorm:"not null;index:idx_hours_scope,priority:3"`

	StartTime datatypes.Time `gorm:"not null"`
	EndTime   datatypes.Time `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Business *Business `gorm:"foreignKey:BusinessID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (BusinessHours) TableName() string { return "business_hours" }

func (h *BusinessHours) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// DefaultOpening и DefaultClosing используются, когда на день нет ни одного правила.
var (
	DefaultOpening = datatypes.NewTime(9, 0, 0, 0)
	DefaultClosing = datatypes.NewTime(17, 0, 0, 0)
)

// OnDay переносит время суток на календарный день day в его таймзоне.
func OnDay(day time.Time, tod datatypes.Time) time.Time {
	d := time.Duration(tod)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	y, mo, dd := day.Date()
	return time.Date(y, mo, dd, h, m, s, 0, day.Location())
}

// ParseClock разбирает "HH:MM" или "HH:MM:SS".
func ParseClock(s string) (datatypes.Time, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// FormatClock — обратное к ParseClock, без секунд если они нулевые.
func FormatClock(t datatypes.Time) string {
	d := time.Duration(t)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if s == 0 {
		return fmt.Sprintf("%02d:%02d", h, m)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
