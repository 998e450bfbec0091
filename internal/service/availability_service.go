package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/obs"
	"github.com/Leganyst/booking-core/internal/repository"
	"github.com/Leganyst/booking-core/internal/validation"
)

// AvailabilityService считает свободные слоты позиции по дням.
type AvailabilityService struct {
	businesses repository.BusinessRepository
	items      repository.BookableItemRepository
	hours      repository.BusinessHoursRepository
	bookings   repository.BookingRepository

	policy Policy
	log    logrus.FieldLogger
}

func NewAvailabilityService(repos repository.Set, policy Policy, log logrus.FieldLogger) *AvailabilityService {
	return &AvailabilityService{
		businesses: repos.Businesses,
		items:      repos.Items,
		hours:      repos.Hours,
		bookings:   repos.Bookings,
		policy:     policy,
		log:        log,
	}
}

// AvailableSlots возвращает свободные слоты за дни [start_date, end_date]
// в таймзоне бизнеса, в хронологическом порядке.
func (s *AvailabilityService) AvailableSlots(
	ctx context.Context,
	q dto.AvailableSlotsQuery,
) ([]model.AvailableSlot, error) {
	ctx, span := obs.Tracer().Start(ctx, "AvailabilityService.AvailableSlots")
	defer span.End()
	span.SetAttributes(attribute.String("bookable_item_id", q.BookableItemID))

	if err := validation.Struct(q); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, q.BookableItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookableItemNotFound
		}
		return nil, apperror.Internal("get bookable item", err)
	}

	business, err := s.businesses.GetByID(ctx, item.BusinessID.String())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, apperror.Internal("get business", err)
	}
	loc := business.Location()

	from, to, err := parseDateRange(q.StartDate, q.EndDate, loc, s.policy.MaxRangeDays)
	if err != nil {
		return nil, err
	}

	width := s.policy.SlotWidth
	if s.policy.ItemSlotWidth {
		d, err := item.ParsedDuration()
		if err != nil {
			return nil, apperror.Internal("bookable item duration", err)
		}
		width = d
	}

	slots := make([]model.AvailableSlot, 0)
	for _, day := range calendar.DaysBetween(from, to) {
		daySlots, err := s.slotsForDay(ctx, business, item, day, width)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		slots = append(slots, daySlots...)
	}

	s.log.WithFields(logrus.Fields{
		"bookable_item_id": item.ID,
		"start_date":       q.StartDate,
		"end_date":         q.EndDate,
		"slots":            len(slots),
	}).Debug("available slots computed")

	return slots, nil
}

func (s *AvailabilityService) slotsForDay(
	ctx context.Context,
	business *model.Business,
	item *model.BookableItem,
	day time.Time,
	width time.Duration,
) ([]model.AvailableSlot, error) {
	windows, err := s.windowsForDay(ctx, business, day)
	if err != nil {
		return nil, err
	}

	dq := repository.DayQuery{
		BusinessID: business.ID,
		From:       day,
		To:         calendar.NextDay(day),
		Statuses:   s.policy.blockingStatuses(),
	}
	if s.policy.ItemScope {
		dq.BookableItemID = &item.ID
	}
	booked, err := s.bookings.ListStartingBetween(ctx, dq)
	if err != nil {
		return nil, apperror.Internal("list bookings for day", err)
	}

	busy := make([]calendar.TimeRange, 0, len(booked))
	for _, b := range booked {
		busy = append(busy, calendar.TimeRange{Start: b.StartDatetime, End: b.EndDatetime})
	}

	var out []model.AvailableSlot
	for _, w := range windows {
		candidates, err := calendar.SplitToTimeSlots(w, width, 0)
		if err != nil {
			return nil, apperror.Internal("split window", err)
		}
		for _, c := range candidates {
			if taken, _ := calendar.HasOverlap(c, busy, false); taken {
				continue
			}
			out = append(out, model.AvailableSlot{Start: c.Start, End: c.End})
		}
	}
	return out, nil
}

// windowsForDay строит окна работы бизнеса на день; без правил — 09:00–17:00.
func (s *AvailabilityService) windowsForDay(
	ctx context.Context,
	business *model.Business,
	day time.Time,
) ([]calendar.TimeRange, error) {
	rules, err := s.hours.ListForDay(ctx, business.ID, nil, int(day.Weekday()))
	if err != nil {
		return nil, apperror.Internal("list business hours", err)
	}

	if len(rules) == 0 {
		return []calendar.TimeRange{{
			Start: model.OnDay(day, model.DefaultOpening),
			End:   model.OnDay(day, model.DefaultClosing),
		}}, nil
	}

	windows := make([]calendar.TimeRange, 0, len(rules))
	for _, r := range rules {
		tr, err := calendar.NewTimeRange(model.OnDay(day, r.StartTime), model.OnDay(day, r.EndTime))
		if err != nil {
			// битое правило пропускаем, остальные окна дня остаются
			s.log.WithField("business_hours_id", r.ID).Warn("skip invalid business hours rule")
			continue
		}
		windows = append(windows, tr)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })
	return windows, nil
}

// parseDateRange разбирает включительный диапазон дат в loc.
func parseDateRange(startDate, endDate string, loc *time.Location, maxDays int) (time.Time, time.Time, error) {
	from, err := calendar.ParseDate(startDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.BadRequest("invalid start_date: expected YYYY-MM-DD")
	}
	to, err := calendar.ParseDate(endDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.BadRequest("invalid end_date: expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if maxDays > 0 && to.After(from.AddDate(0, 0, maxDays-1)) {
		return time.Time{}, time.Time{}, apperror.BadRequest("date range must not exceed %d days", maxDays)
	}
	return from, to, nil
}
