package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type GormBookableItemRepository struct {
	db *gorm.DB
}

func NewGormBookableItemRepository(db *gorm.DB) *GormBookableItemRepository {
	return &GormBookableItemRepository{db: db}
}

func (r *GormBookableItemRepository) GetByID(ctx context.Context, id string) (*model.BookableItem, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var item model.BookableItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", uid).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}
