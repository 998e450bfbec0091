package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
	"github.com/Leganyst/booking-core/internal/validation"
)

// HoursService ведёт недельные правила работы бизнеса и сотрудников.
type HoursService struct {
	businesses repository.BusinessRepository
	hours      repository.BusinessHoursRepository

	locks *keyedMutex
	log   logrus.FieldLogger
}

func NewHoursService(repos repository.Set, log logrus.FieldLogger) *HoursService {
	return &HoursService{
		businesses: repos.Businesses,
		hours:      repos.Hours,
		locks:      newKeyedMutex(),
		log:        log,
	}
}

// Create добавляет правило; пересечение с правилом той же области и дня запрещено,
// касание концами допустимо.
func (s *HoursService) Create(
	ctx context.Context,
	businessID string,
	req dto.CreateBusinessHoursRequest,
) (*model.BusinessHours, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	business, err := s.getBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	start, err := model.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperror.BadRequest("invalid start_time: expected HH:MM")
	}
	end, err := model.ParseClock(req.EndTime)
	if err != nil {
		return nil, apperror.BadRequest("invalid end_time: expected HH:MM")
	}
	if end <= start {
		return nil, ErrInvalidHours
	}

	var staffID *uuid.UUID
	if req.StaffID != "" {
		id := uuid.MustParse(req.StaffID)
		staffID = &id
	}

	rule := &model.BusinessHours{
		BusinessID: business.ID,
		StaffID:    staffID,
		DayOfWeek:  *req.DayOfWeek,
		StartTime:  start,
		EndTime:    end,
	}

	unlock := s.locks.Lock(business.ID)
	defer unlock()

	existing, err := s.hours.ListForDay(ctx, business.ID, staffID, rule.DayOfWeek)
	if err != nil {
		return nil, apperror.Internal("list business hours", err)
	}
	if overlapsAny(rule, existing) {
		return nil, ErrHoursOverlap
	}

	if err := s.hours.Create(ctx, rule); err != nil {
		return nil, apperror.Internal("create business hours", err)
	}

	s.log.WithFields(logrus.Fields{
		"business_id": business.ID,
		"day_of_week": rule.DayOfWeek,
		"start_time":  model.FormatClock(rule.StartTime),
		"end_time":    model.FormatClock(rule.EndTime),
	}).Info("business hours created")

	return rule, nil
}

// List возвращает правила бизнеса по дню недели и началу.
func (s *HoursService) List(ctx context.Context, businessID string) ([]model.BusinessHours, error) {
	business, err := s.getBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	rules, err := s.hours.ListByBusiness(ctx, business.ID)
	if err != nil {
		return nil, apperror.Internal("list business hours", err)
	}
	return rules, nil
}

func (s *HoursService) getBusiness(ctx context.Context, id string) (*model.Business, error) {
	business, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, apperror.Internal("get business", err)
	}
	return business, nil
}

// overlapsAny — полуоткрытая проверка на условном общем дне.
func overlapsAny(rule *model.BusinessHours, existing []model.BusinessHours) bool {
	day := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	tr := calendar.TimeRange{Start: model.OnDay(day, rule.StartTime), End: model.OnDay(day, rule.EndTime)}
	ranges := make([]calendar.TimeRange, 0, len(existing))
	for _, h := range existing {
		ranges = append(ranges, calendar.TimeRange{Start: model.OnDay(day, h.StartTime), End: model.OnDay(day, h.EndTime)})
	}
	overlap, _ := calendar.HasOverlap(tr, ranges, false)
	return overlap
}
