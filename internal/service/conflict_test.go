package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

type stubFinder struct {
	found []model.Booking
	err   error
	got   repository.OverlapQuery
}

func (s *stubFinder) FindOverlapping(_ context.Context, q repository.OverlapQuery) ([]model.Booking, error) {
	s.got = q
	return s.found, s.err
}

func TestConflictDetector_InclusiveBoundaries(t *testing.T) {
	existing := model.Booking{StartDatetime: utc(2025, 6, 1, 9, 0), EndDatetime: utc(2025, 6, 1, 10, 0)}
	d := NewConflictDetector(DefaultPolicy())

	tests := []struct {
		name  string
		tr    calendar.TimeRange
		clash bool
	}{
		{"inside", calendar.TimeRange{Start: utc(2025, 6, 1, 9, 15), End: utc(2025, 6, 1, 9, 45)}, true},
		{"touches end", calendar.TimeRange{Start: utc(2025, 6, 1, 10, 0), End: utc(2025, 6, 1, 11, 0)}, true},
		{"touches start", calendar.TimeRange{Start: utc(2025, 6, 1, 8, 0), End: utc(2025, 6, 1, 9, 0)}, true},
		{"after", calendar.TimeRange{Start: utc(2025, 6, 1, 10, 1), End: utc(2025, 6, 1, 11, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder := &stubFinder{found: []model.Booking{existing}}
			got, err := d.HasConflict(bg, finder, uuid.New(), uuid.New(), tt.tr)
			require.NoError(t, err)
			assert.Equal(t, tt.clash, got)
		})
	}
}

func TestConflictDetector_QueryFollowsPolicy(t *testing.T) {
	businessID, itemID := uuid.New(), uuid.New()
	tr := calendar.TimeRange{Start: utc(2025, 6, 1, 9, 0), End: utc(2025, 6, 1, 10, 0)}

	finder := &stubFinder{}
	_, err := NewConflictDetector(DefaultPolicy()).HasConflict(bg, finder, businessID, itemID, tr)
	require.NoError(t, err)
	assert.Equal(t, businessID, finder.got.BusinessID)
	assert.Nil(t, finder.got.BookableItemID)
	assert.Empty(t, finder.got.Statuses)

	policy := DefaultPolicy()
	policy.ItemScope = true
	policy.IgnoreCancelled = true
	_, err = NewConflictDetector(policy).HasConflict(bg, finder, businessID, itemID, tr)
	require.NoError(t, err)
	require.NotNil(t, finder.got.BookableItemID)
	assert.Equal(t, itemID, *finder.got.BookableItemID)
	assert.NotContains(t, finder.got.Statuses, model.BookingStatusCancelled)
	assert.Contains(t, finder.got.Statuses, model.BookingStatusPending)
}

func TestConflictDetector_FinderError(t *testing.T) {
	boom := errors.New("db down")
	finder := &stubFinder{err: boom}
	tr := calendar.TimeRange{Start: time.Now(), End: time.Now().Add(time.Hour)}

	_, err := NewConflictDetector(DefaultPolicy()).HasConflict(bg, finder, uuid.New(), uuid.New(), tr)
	assert.ErrorIs(t, err, boom)
}
