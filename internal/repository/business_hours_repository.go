package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/model"
)

type GormBusinessHoursRepository struct {
	db *gorm.DB
}

func NewGormBusinessHoursRepository(db *gorm.DB) *GormBusinessHoursRepository {
	return &GormBusinessHoursRepository{db: db}
}

func (r *GormBusinessHoursRepository) ListForDay(
	ctx context.Context,
	businessID uuid.UUID,
	staffID *uuid.UUID,
	day int,
) ([]model.BusinessHours, error) {
	q := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Where("day_of_week = ?", day)
	if staffID == nil {
		q = q.Where("staff_id IS NULL")
	} else {
		q = q.Where("staff_id = ?", *staffID)
	}

	var hours []model.BusinessHours
	if err := q.Order("start_time ASC").Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *GormBusinessHoursRepository) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.BusinessHours, error) {
	var hours []model.BusinessHours
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("day_of_week ASC").
		Order("start_time ASC").
		Find(&hours).Error
	if err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *GormBusinessHoursRepository) Create(ctx context.Context, h *model.BusinessHours) error {
	return r.db.WithContext(ctx).Create(h).Error
}
