package model

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookableItemType string

const (
	BookableItemService  BookableItemType = "service"
	BookableItemResource BookableItemType = "resource"
	BookableItemEvent    BookableItemType = "event"
	BookableItemTeaching BookableItemType = "teaching"
	BookableItemTable    BookableItemType = "table"
	BookableItemRoom     BookableItemType = "room"
)

// bookable_items — всё, что бизнес отдаёт в бронь: услуга, ресурс, столик, комната и т.п.
type BookableItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`

	Type        BookableItemType `gorm:"type:varchar(32);not null"`
	Name        string           `gorm:"type:varchar(255);not null"`
	Description string           `gorm:"type:text"`

	// Длительность в виде строки: ISO-8601 (PT1H30M) или Go-формат (90m).
	Duration string `gorm:"type:varchar(32);not null"`

	Price decimal.NullDecimal `gorm:"type:numeric(12,2)"`

	IsActive bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Business *Business `gorm:"foreignKey:BusinessID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (i *BookableItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

var ErrInvalidDuration = errors.New("invalid duration")

// ParsedDuration разбирает поле Duration.
func (i *BookableItem) ParsedDuration() (time.Duration, error) {
	return ParseDuration(i.Duration)
}

// ParseDuration понимает ISO-8601 вида PnDTnHnMnS и строки time.ParseDuration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidDuration
	}
	if s[0] != 'P' && s[0] != 'p' {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return 0, ErrInvalidDuration
		}
		return d, nil
	}

	var (
		total  time.Duration
		inTime bool
		num    strings.Builder
	)
	for _, r := range strings.ToUpper(s[1:]) {
		switch {
		case r == 'T':
			if inTime || num.Len() > 0 {
				return 0, ErrInvalidDuration
			}
			inTime = true
		case (r >= '0' && r <= '9') || r == '.':
			num.WriteRune(r)
		default:
			if num.Len() == 0 {
				return 0, ErrInvalidDuration
			}
			v, err := strconv.ParseFloat(num.String(), 64)
			if err != nil {
				return 0, ErrInvalidDuration
			}
			num.Reset()

			var unit time.Duration
			switch {
			case r == 'D' && !inTime:
				unit = 24 * time.Hour
			case r == 'W' && !inTime:
				unit = 7 * 24 * time.Hour
			case r == 'H' && inTime:
				unit = time.Hour
			case r == 'M' && inTime:
				unit = time.Minute
			case r == 'S' && inTime:
				unit = time.Second
			default:
				return 0, ErrInvalidDuration
			}
			total += time.Duration(v * float64(unit))
		}
	}
	if num.Len() > 0 || total <= 0 {
		return 0, ErrInvalidDuration
	}
	return total, nil
}
