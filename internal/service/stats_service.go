package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/obs"
	"github.com/Leganyst/booking-core/internal/repository"
	"github.com/Leganyst/booking-core/internal/validation"
)

// StatsService собирает сводку по броням бизнеса за период.
type StatsService struct {
	businesses repository.BusinessRepository
	bookings   repository.BookingRepository

	log logrus.FieldLogger
}

func NewStatsService(repos repository.Set, log logrus.FieldLogger) *StatsService {
	return &StatsService{
		businesses: repos.Businesses,
		bookings:   repos.Bookings,
		log:        log,
	}
}

// Statistics считает брони, чьё начало попадает в [start_date, end_date].
// Выручка считается только по confirmed и completed.
func (s *StatsService) Statistics(ctx context.Context, q dto.StatisticsQuery) (*model.BookingStats, error) {
	ctx, span := obs.Tracer().Start(ctx, "StatsService.Statistics")
	defer span.End()

	if err := validation.Struct(q); err != nil {
		return nil, err
	}

	business, err := s.businesses.GetByID(ctx, q.BusinessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, apperror.Internal("get business", err)
	}

	from, to, err := parseDateRange(q.StartDate, q.EndDate, business.Location(), 0)
	if err != nil {
		return nil, err
	}
	until := calendar.NextDay(to)

	totals, err := s.bookings.TotalsByStatus(ctx, business.ID, from, until)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Internal("aggregate bookings", err)
	}

	stats := &model.BookingStats{
		BusinessID: business.ID,
		From:       from,
		To:         to,
		ByStatus: map[model.BookingStatus]int64{
			model.BookingStatusPending:   0,
			model.BookingStatusConfirmed: 0,
			model.BookingStatusCancelled: 0,
			model.BookingStatusCompleted: 0,
		},
		Revenue: decimal.Zero,
	}
	for _, t := range totals {
		stats.TotalBookings += t.Count
		stats.Units += t.Units
		stats.ByStatus[t.Status] += t.Count
		if t.Status == model.BookingStatusConfirmed || t.Status == model.BookingStatusCompleted {
			stats.Revenue = stats.Revenue.Add(t.Revenue)
		}
	}

	s.log.WithFields(logrus.Fields{
		"business_id": business.ID,
		"from":        q.StartDate,
		"to":          q.EndDate,
		"total":       stats.TotalBookings,
	}).Debug("statistics computed")

	return stats, nil
}
