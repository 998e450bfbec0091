package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Leganyst/booking-core/internal/model"
)

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	booking.StartDatetime = booking.StartDatetime.UTC()
	booking.EndDatetime = booking.EndDatetime.UTC()
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", uid).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *GormBookingRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status model.BookingStatus,
	reason string,
	cancelledAt *time.Time,
) error {
	update := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if cancelledAt != nil {
		update["cancelled_at"] = cancelledAt.UTC()
		update["cancellation_reason"] = reason
	}
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Updates(update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormBookingRepository) FindOverlapping(ctx context.Context, q OverlapQuery) ([]model.Booking, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("business_id = ?", q.BusinessID).
		Where("start_datetime <= ? AND end_datetime >= ?", q.End.UTC(), q.Start.UTC())

	if q.BookableItemID != nil {
		tx = tx.Where("bookable_item_id = ?", *q.BookableItemID)
	}
	if len(q.Statuses) > 0 {
		tx = tx.Where("status IN ?", q.Statuses)
	}

	var bookings []model.Booking
	if err := tx.Order("start_datetime ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) ListStartingBetween(ctx context.Context, q DayQuery) ([]model.Booking, error) {
	tx := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("business_id = ?", q.BusinessID).
		Where("start_datetime >= ? AND start_datetime < ?", q.From.UTC(), q.To.UTC())

	if q.BookableItemID != nil {
		tx = tx.Where("bookable_item_id = ?", *q.BookableItemID)
	}
	if len(q.Statuses) > 0 {
		tx = tx.Where("status IN ?", q.Statuses)
	}

	var bookings []model.Booking
	if err := tx.Order("start_datetime ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *GormBookingRepository) List(
	ctx context.Context,
	f BookingFilter,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	q := r.db.WithContext(ctx).Model(&model.Booking{})
	if f.BusinessID != nil {
		q = q.Where("business_id = ?", *f.BusinessID)
	}
	if f.BookableItemID != nil {
		q = q.Where("bookable_item_id = ?", *f.BookableItemID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("start_datetime >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("start_datetime < ?", f.To.UTC())
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("start_datetime ASC").Order("id ASC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

func (r *GormBookingRepository) TotalsByStatus(
	ctx context.Context,
	businessID uuid.UUID,
	from, to time.Time,
) ([]model.StatusTotals, error) {
	var totals []model.StatusTotals
	err := r.db.WithContext(ctx).
		Table("bookings").
		Select(`bookings.status AS status,
			COUNT(*) AS count,
			COALESCE(SUM(bookings.unit_count), 0) AS units,
			COALESCE(SUM(bookable_items.price * bookings.unit_count), 0) AS revenue`).
		Joins("JOIN bookable_items ON bookable_items.id = bookings.bookable_item_id").
		Where("bookings.business_id = ?", businessID).
		Where("bookings.start_datetime >= ? AND bookings.start_datetime < ?", from.UTC(), to.UTC()).
		Group("bookings.status").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *GormBookingRepository) RecordEvent(ctx context.Context, ev *model.Event) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *GormBookingRepository) WithinBusinessLock(
	ctx context.Context,
	businessID uuid.UUID,
	fn func(tx BookingRepository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SELECT ... FOR UPDATE по строке бизнеса сериализует создание броней
		// между процессами; SQLite блокировку строк игнорирует.
		var b model.Business
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&b, "id = ?", businessID).Error
		if err != nil {
			return translate(err)
		}
		return fn(&GormBookingRepository{db: tx})
	})
}
