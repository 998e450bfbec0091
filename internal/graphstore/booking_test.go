package graphstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

type runCall struct {
	cypher string
	params map[string]any
}

// stubRunner запоминает запросы и отдаёт заготовленные ответы по порядку.
type stubRunner struct {
	calls   []runCall
	results [][]*neo4j.Record
	err     error
}

func (s *stubRunner) run(_ context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	s.calls = append(s.calls, runCall{cypher: cypher, params: params})
	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) == 0 {
		return nil, nil
	}
	recs := s.results[0]
	s.results = s.results[1:]
	return recs, nil
}

func record(keys []string, values ...any) *neo4j.Record {
	return &neo4j.Record{Keys: keys, Values: values}
}

func bookingRecord(id, business, item uuid.UUID, start time.Time, status string) *neo4j.Record {
	return record([]string{"bk"}, neo4j.Node{Props: map[string]any{
		"id":               id.String(),
		"business_id":      business.String(),
		"bookable_item_id": item.String(),
		"start_datetime":   start,
		"end_datetime":     start.Add(time.Hour),
		"status":           status,
		"unit_count":       int64(1),
	}})
}

func TestFindOverlapping_BusinessScopeAnyStatus(t *testing.T) {
	business, item, id := uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.FixedZone("MSK", 3*3600))
	stub := &stubRunner{results: [][]*neo4j.Record{{bookingRecord(id, business, item, start, "cancelled")}}}
	repo := &bookingRepo{r: stub}

	found, err := repo.FindOverlapping(context.Background(), repository.OverlapQuery{
		BusinessID: business,
		Start:      start,
		End:        start.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)
	assert.Equal(t, model.BookingStatusCancelled, found[0].Status)

	require.Len(t, stub.calls, 1)
	params := stub.calls[0].params
	assert.Equal(t, business.String(), params["business_id"])
	assert.Nil(t, params["item_id"])
	assert.NotNil(t, params["statuses"])
	assert.Empty(t, params["statuses"])
	assert.Equal(t, time.UTC, params["start"].(time.Time).Location())
}

func TestFindOverlapping_ItemScopeBlockingStatuses(t *testing.T) {
	business, item := uuid.New(), uuid.New()
	start := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	stub := &stubRunner{}
	repo := &bookingRepo{r: stub}

	found, err := repo.FindOverlapping(context.Background(), repository.OverlapQuery{
		BusinessID:     business,
		BookableItemID: &item,
		Start:          start,
		End:            start.Add(time.Hour),
		Statuses:       []model.BookingStatus{model.BookingStatusPending, model.BookingStatusConfirmed},
	})
	require.NoError(t, err)
	assert.Empty(t, found)

	require.Len(t, stub.calls, 1)
	params := stub.calls[0].params
	assert.Equal(t, item.String(), params["item_id"])
	assert.Equal(t, []string{"pending", "confirmed"}, params["statuses"])
}

func TestLockedIn_LocksBeforeCallback(t *testing.T) {
	business, bookingID := uuid.New(), uuid.New()
	stub := &stubRunner{results: [][]*neo4j.Record{
		{record([]string{"id"}, business.String())},
	}}
	repo := &bookingRepo{}

	var called bool
	err := repo.lockedIn(context.Background(), stub, business, func(tx repository.BookingRepository) error {
		called = true
		require.Len(t, stub.calls, 1)
		assert.Equal(t, lockBusinessCypher, stub.calls[0].cypher)
		assert.Equal(t, business.String(), stub.calls[0].params["id"])

		inner, ok := tx.(*bookingRepo)
		require.True(t, ok)
		assert.Same(t, stub, inner.r)

		return tx.RecordEvent(context.Background(), &model.Event{
			EventType: model.EventTypeBookingCreated,
			BookingID: &bookingID,
		})
	})
	require.NoError(t, err)
	assert.True(t, called)

	require.Len(t, stub.calls, 2)
	assert.Contains(t, stub.calls[1].cypher, "BookingEvent")
	assert.Equal(t, bookingID.String(), stub.calls[1].params["booking_id"])
}

func TestLockedIn_UnknownBusiness(t *testing.T) {
	stub := &stubRunner{}
	repo := &bookingRepo{}

	err := repo.lockedIn(context.Background(), stub, uuid.New(), func(repository.BookingRepository) error {
		t.Fatal("callback must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Len(t, stub.calls, 1)
}

func TestLockedIn_RunError(t *testing.T) {
	boom := errors.New("connection reset")
	stub := &stubRunner{err: boom}
	repo := &bookingRepo{}

	err := repo.lockedIn(context.Background(), stub, uuid.New(), func(repository.BookingRepository) error {
		t.Fatal("callback must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "lock business")
}

func TestTotalsByStatus(t *testing.T) {
	business := uuid.New()
	keys := []string{"status", "units", "price"}
	stub := &stubRunner{results: [][]*neo4j.Record{{
		record(keys, "confirmed", int64(2), "10.50"),
		record(keys, "pending", int64(1), nil),
		record(keys, "confirmed", int64(1), "10.50"),
	}}}
	repo := &bookingRepo{r: stub}

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	totals, err := repo.TotalsByStatus(context.Background(), business, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, model.BookingStatusConfirmed, totals[0].Status)
	assert.Equal(t, int64(2), totals[0].Count)
	assert.Equal(t, int64(3), totals[0].Units)
	assert.True(t, decimal.RequireFromString("31.50").Equal(totals[0].Revenue), totals[0].Revenue.String())

	assert.Equal(t, model.BookingStatusPending, totals[1].Status)
	assert.Equal(t, int64(1), totals[1].Count)
	assert.True(t, totals[1].Revenue.IsZero())

	require.Len(t, stub.calls, 1)
	assert.Equal(t, business.String(), stub.calls[0].params["business_id"])
}
