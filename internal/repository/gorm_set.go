package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewGormSet собирает набор репозиториев поверх одного подключения GORM.
func NewGormSet(db *gorm.DB) Set {
	return Set{
		Businesses: NewGormBusinessRepository(db),
		Items:      NewGormBookableItemRepository(db),
		Hours:      NewGormBusinessHoursRepository(db),
		Bookings:   NewGormBookingRepository(db),
		Pinger:     gormPinger{db: db},
		Close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

type gormPinger struct {
	db *gorm.DB
}

func (p gormPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// parseID: строка, не являющаяся UUID, не может ссылаться на запись.
func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return u, nil
}
