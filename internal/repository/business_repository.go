package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type GormBusinessRepository struct {
	db *gorm.DB
}

func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

func (r *GormBusinessRepository) GetByID(ctx context.Context, id string) (*model.Business, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var b model.Business
	if err := r.db.WithContext(ctx).First(&b, "id = ?", uid).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}
