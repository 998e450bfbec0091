package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/events"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/obs"
	"github.com/Leganyst/booking-core/internal/repository"
	"github.com/Leganyst/booking-core/internal/validation"
)

// BookingService управляет жизненным циклом брони:
// pending → confirmed → completed, pending|confirmed → cancelled.
type BookingService struct {
	businesses repository.BusinessRepository
	items      repository.BookableItemRepository
	bookings   repository.BookingRepository

	detector  *ConflictDetector
	policy    Policy
	publisher events.Publisher
	log       logrus.FieldLogger

	locks *keyedMutex
	now   func() time.Time
}

type BookingOption func(*BookingService)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

func WithPublisher(p events.Publisher) BookingOption {
	return func(s *BookingService) { s.publisher = p }
}

func NewBookingService(
	repos repository.Set,
	policy Policy,
	log logrus.FieldLogger,
	opts ...BookingOption,
) *BookingService {
	s := &BookingService{
		businesses: repos.Businesses,
		items:      repos.Items,
		bookings:   repos.Bookings,
		detector:   NewConflictDetector(policy),
		policy:     policy,
		publisher:  events.NewLogPublisher(log),
		log:        log,
		locks:      newKeyedMutex(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create проверяет запрос и атомарно (проверка конфликта + вставка) создаёт бронь.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest) (*model.Booking, error) {
	ctx, span := obs.Tracer().Start(ctx, "BookingService.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("business_id", req.BusinessID),
		attribute.String("bookable_item_id", req.BookableItemID),
	)

	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	business, err := s.businesses.GetByID(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownBusiness
		}
		return nil, apperror.Internal("get business", err)
	}

	item, err := s.items.GetByID(ctx, req.BookableItemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownBookableItem
		}
		return nil, apperror.Internal("get bookable item", err)
	}
	if item.BusinessID != business.ID {
		return nil, ErrUnknownBookableItem
	}
	if !item.IsActive {
		return nil, ErrInactiveItem
	}

	loc := business.Location()
	start, err := calendar.ParseDateTime(req.StartDatetime, loc)
	if err != nil {
		return nil, apperror.BadRequest("invalid start_datetime: expected RFC3339")
	}
	end, err := calendar.ParseDateTime(req.EndDatetime, loc)
	if err != nil {
		return nil, apperror.BadRequest("invalid end_datetime: expected RFC3339")
	}
	tr, err := calendar.NewTimeRange(start.UTC().Truncate(time.Second), end.UTC().Truncate(time.Second))
	if err != nil {
		return nil, ErrInvalidInterval
	}

	units := 1
	if req.UnitCount != nil {
		units = *req.UnitCount
	}

	booking := &model.Booking{
		ID:             uuid.New(),
		BusinessID:     business.ID,
		BookableItemID: item.ID,
		StartDatetime:  tr.Start,
		EndDatetime:    tr.End,
		Status:         model.BookingStatusPending,
		UnitCount:      units,
	}

	unlock := s.locks.Lock(business.ID)
	defer unlock()

	err = s.bookings.WithinBusinessLock(ctx, business.ID, func(tx repository.BookingRepository) error {
		conflict, err := s.detector.HasConflict(ctx, tx, business.ID, item.ID, tr)
		if err != nil {
			return err
		}
		if conflict {
			return ErrSlotAlreadyBooked
		}
		if err := tx.Create(ctx, booking); err != nil {
			return err
		}
		ev, err := newEvent(model.EventTypeBookingCreated, booking, nil)
		if err != nil {
			return err
		}
		return tx.RecordEvent(ctx, ev)
	})
	if err != nil {
		span.RecordError(err)
		var appErr *apperror.Error
		switch {
		case errors.As(err, &appErr):
			return nil, appErr
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUnknownBusiness
		default:
			return nil, apperror.Internal("create booking", err)
		}
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":       booking.ID,
		"business_id":      booking.BusinessID,
		"bookable_item_id": booking.BookableItemID,
		"start":            booking.StartDatetime,
		"end":              booking.EndDatetime,
	}).Info("booking created")

	s.publish(ctx, events.KeyBookingCreated, booking)
	return booking, nil
}

// Cancel отменяет бронь не позже чем за CancelNotice до начала.
func (s *BookingService) Cancel(ctx context.Context, req dto.CancelBookingRequest) error {
	ctx, span := obs.Tracer().Start(ctx, "BookingService.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("booking_id", req.BookingID))

	if err := validation.Struct(req); err != nil {
		return err
	}

	booking, err := s.getBooking(ctx, req.BookingID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	err = s.bookings.WithinBusinessLock(ctx, booking.BusinessID, func(tx repository.BookingRepository) error {
		// перечитываем под блокировкой: статус мог смениться
		current, err := tx.GetByID(ctx, booking.ID.String())
		if err != nil {
			return err
		}
		switch current.Status {
		case model.BookingStatusCancelled:
			return ErrAlreadyCancelled
		case model.BookingStatusCompleted:
			return ErrInvalidTransition
		}
		if current.StartDatetime.Sub(now) < s.policy.CancelNotice {
			return ErrCancelTooLate
		}

		if err := tx.UpdateStatus(ctx, current.ID, model.BookingStatusCancelled, req.Reason, &now); err != nil {
			return err
		}
		current.Status = model.BookingStatusCancelled
		current.CancellationReason = req.Reason
		current.CancelledAt = &now
		*booking = *current

		ev, err := newEvent(model.EventTypeBookingCancelled, current, map[string]any{
			"reason": req.Reason,
		})
		if err != nil {
			return err
		}
		return tx.RecordEvent(ctx, ev)
	})
	if err != nil {
		span.RecordError(err)
		return s.lifecycleError("cancel booking", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"business_id": booking.BusinessID,
		"reason":      req.Reason,
	}).Info("booking cancelled")

	s.publish(ctx, events.KeyBookingCancelled, booking)
	return nil
}

// Confirm переводит pending → confirmed.
func (s *BookingService) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusPending, model.BookingStatusConfirmed, events.KeyBookingConfirmed)
}

// Complete переводит confirmed → completed.
func (s *BookingService) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusConfirmed, model.BookingStatusCompleted, events.KeyBookingCompleted)
}

func (s *BookingService) transition(
	ctx context.Context,
	id string,
	from, to model.BookingStatus,
	key string,
) (*model.Booking, error) {
	ctx, span := obs.Tracer().Start(ctx, "BookingService.Transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("booking_id", id),
		attribute.String("to", string(to)),
	)

	booking, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.bookings.WithinBusinessLock(ctx, booking.BusinessID, func(tx repository.BookingRepository) error {
		current, err := tx.GetByID(ctx, booking.ID.String())
		if err != nil {
			return err
		}
		if current.Status != from {
			return ErrInvalidTransition
		}
		if err := tx.UpdateStatus(ctx, current.ID, to, "", nil); err != nil {
			return err
		}
		current.Status = to
		*booking = *current

		ev, err := newEvent(model.EventTypeBookingUpdated, current, map[string]any{
			"from": from,
			"to":   to,
		})
		if err != nil {
			return err
		}
		return tx.RecordEvent(ctx, ev)
	})
	if err != nil {
		span.RecordError(err)
		return nil, s.lifecycleError("update booking status", err)
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"from":       from,
		"to":         to,
	}).Info("booking status changed")

	s.publish(ctx, key, booking)
	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*model.Booking, error) {
	return s.getBooking(ctx, id)
}

// List возвращает страницу броней по фильтру, упорядоченную по началу.
func (s *BookingService) List(ctx context.Context, q dto.ListBookingsQuery) (calendar.Page[model.Booking], error) {
	if err := validation.Struct(q); err != nil {
		return calendar.Page[model.Booking]{}, err
	}

	var (
		f   repository.BookingFilter
		loc = time.UTC
	)
	if q.BusinessID != "" {
		business, err := s.businesses.GetByID(ctx, q.BusinessID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return calendar.Page[model.Booking]{}, ErrBusinessNotFound
			}
			return calendar.Page[model.Booking]{}, apperror.Internal("get business", err)
		}
		f.BusinessID = &business.ID
		loc = business.Location()
	}
	if q.BookableItemID != "" {
		id := uuid.MustParse(q.BookableItemID)
		f.BookableItemID = &id
	}
	f.Status = model.BookingStatus(q.Status)

	if q.StartDate != "" {
		from, err := calendar.ParseDate(q.StartDate, loc)
		if err != nil {
			return calendar.Page[model.Booking]{}, apperror.BadRequest("invalid start_date: expected YYYY-MM-DD")
		}
		f.From = &from
	}
	if q.EndDate != "" {
		to, err := calendar.ParseDate(q.EndDate, loc)
		if err != nil {
			return calendar.Page[model.Booking]{}, apperror.BadRequest("invalid end_date: expected YYYY-MM-DD")
		}
		next := calendar.NextDay(to)
		f.To = &next
	}
	if f.From != nil && f.To != nil && !f.To.After(*f.From) {
		return calendar.Page[model.Booking]{}, ErrInvalidDateRange
	}

	page, size, offset := calendar.NormalizePage(q.Page, q.PageSize)
	items, total, err := s.bookings.List(ctx, f, size, offset)
	if err != nil {
		return calendar.Page[model.Booking]{}, apperror.Internal("list bookings", err)
	}
	return calendar.NewPage(items, total, page, size), nil
}

func (s *BookingService) getBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, apperror.Internal("get booking", err)
	}
	return booking, nil
}

func (s *BookingService) lifecycleError(op string, err error) error {
	var appErr *apperror.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrNotFound):
		return ErrBookingNotFound
	default:
		return apperror.Internal(op, err)
	}
}

// publish не влияет на результат операции: ошибка брокера только логируется.
func (s *BookingService) publish(ctx context.Context, key string, b *model.Booking) {
	ev := events.BookingEvent{
		BookingID:      b.ID.String(),
		BusinessID:     b.BusinessID.String(),
		BookableItemID: b.BookableItemID.String(),
		Status:         string(b.Status),
		StartDatetime:  b.StartDatetime,
		EndDatetime:    b.EndDatetime,
		Reason:         b.CancellationReason,
		OccurredAt:     s.now().UTC(),
	}
	if err := s.publisher.PublishJSON(ctx, key, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":      key,
			"booking_id": b.ID,
		}).Warn("publish booking event failed")
	}
}

func newEvent(t model.EventType, b *model.Booking, extra map[string]any) (*model.Event, error) {
	details := map[string]any{
		"business_id":      b.BusinessID,
		"bookable_item_id": b.BookableItemID,
		"start_datetime":   b.StartDatetime,
		"end_datetime":     b.EndDatetime,
		"status":           b.Status,
		"unit_count":       b.UnitCount,
	}
	for k, v := range extra {
		details[k] = v
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode %s event details: %w", t, err)
	}

	id := b.ID
	return &model.Event{
		EventType: t,
		BookingID: &id,
		Details:   datatypes.JSON(raw),
	}, nil
}
