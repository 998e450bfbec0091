package graphstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

type bookingRepo struct {
	r     runner
	store *Store
}

func (b *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	now := time.Now().UTC()
	booking.CreatedAt, booking.UpdatedAt = now, now
	booking.StartDatetime = booking.StartDatetime.UTC()
	booking.EndDatetime = booking.EndDatetime.UTC()

	const q = `
MATCH (b:Business {id: $business_id}), (i:BookableItem {id: $item_id})
CREATE (bk:Booking {
	id: $id,
	business_id: $business_id,
	bookable_item_id: $item_id,
	start_datetime: $start,
	end_datetime: $end,
	status: $status,
	unit_count: $units,
	cancellation_reason: '',
	created_at: $now,
	updated_at: $now
})
CREATE (bk)-[:AT]->(b), (bk)-[:FOR_ITEM]->(i)
RETURN bk.id AS id`
	recs, err := b.r.run(ctx, q, map[string]any{
		"id":          booking.ID.String(),
		"business_id": booking.BusinessID.String(),
		"item_id":     booking.BookableItemID.String(),
		"start":       booking.StartDatetime,
		"end":         booking.EndDatetime,
		"status":      string(booking.Status),
		"units":       int64(booking.UnitCount),
		"now":         now,
	})
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (b *bookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	bookings, err := b.list(ctx, "MATCH (bk:Booking {id: $id}) RETURN bk", map[string]any{"id": uid.String()})
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, repository.ErrNotFound
	}
	return &bookings[0], nil
}

func (b *bookingRepo) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status model.BookingStatus,
	reason string,
	cancelledAt *time.Time,
) error {
	q := `
MATCH (bk:Booking {id: $id})
SET bk.status = $status, bk.updated_at = $now`
	params := map[string]any{
		"id":     id.String(),
		"status": string(status),
		"now":    time.Now().UTC(),
	}
	if cancelledAt != nil {
		q += ", bk.cancellation_reason = $reason, bk.cancelled_at = $cancelled_at"
		params["reason"] = reason
		params["cancelled_at"] = cancelledAt.UTC()
	}
	q += "\nRETURN bk.id AS id"

	recs, err := b.r.run(ctx, q, params)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (b *bookingRepo) FindOverlapping(ctx context.Context, oq repository.OverlapQuery) ([]model.Booking, error) {
	const q = `
MATCH (bk:Booking {business_id: $business_id})
WHERE bk.start_datetime <= $end AND bk.end_datetime >= $start
  AND ($item_id IS NULL OR bk.bookable_item_id = $item_id)
  AND (size($statuses) = 0 OR bk.status IN $statuses)
RETURN bk
ORDER BY bk.start_datetime`
	return b.list(ctx, q, map[string]any{
		"business_id": oq.BusinessID.String(),
		"start":       oq.Start.UTC(),
		"end":         oq.End.UTC(),
		"item_id":     optString(oq.BookableItemID),
		"statuses":    statusStrings(oq.Statuses),
	})
}

func (b *bookingRepo) ListStartingBetween(ctx context.Context, dq repository.DayQuery) ([]model.Booking, error) {
	const q = `
MATCH (bk:Booking {business_id: $business_id})
WHERE bk.start_datetime >= $from AND bk.start_datetime < $to
  AND ($item_id IS NULL OR bk.bookable_item_id = $item_id)
  AND (size($statuses) = 0 OR bk.status IN $statuses)
RETURN bk
ORDER BY bk.start_datetime`
	return b.list(ctx, q, map[string]any{
		"business_id": dq.BusinessID.String(),
		"from":        dq.From.UTC(),
		"to":          dq.To.UTC(),
		"item_id":     optString(dq.BookableItemID),
		"statuses":    statusStrings(dq.Statuses),
	})
}

// filterClause собирает MATCH/WHERE для BookingFilter.
func filterClause(f repository.BookingFilter) (string, map[string]any) {
	var (
		conds  []string
		params = map[string]any{}
	)
	if f.BusinessID != nil {
		conds = append(conds, "bk.business_id = $business_id")
		params["business_id"] = f.BusinessID.String()
	}
	if f.BookableItemID != nil {
		conds = append(conds, "bk.bookable_item_id = $item_id")
		params["item_id"] = f.BookableItemID.String()
	}
	if f.Status != "" {
		conds = append(conds, "bk.status = $status")
		params["status"] = string(f.Status)
	}
	if f.From != nil {
		conds = append(conds, "bk.start_datetime >= $from")
		params["from"] = f.From.UTC()
	}
	if f.To != nil {
		conds = append(conds, "bk.start_datetime < $to")
		params["to"] = f.To.UTC()
	}

	q := "MATCH (bk:Booking)"
	if len(conds) > 0 {
		q += "\nWHERE " + strings.Join(conds, " AND ")
	}
	return q, params
}

func (b *bookingRepo) List(
	ctx context.Context,
	f repository.BookingFilter,
	limit, offset int,
) ([]model.Booking, int64, error) {
	match, params := filterClause(f)

	recs, err := b.r.run(ctx, match+"\nRETURN count(bk) AS total", params)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if len(recs) > 0 {
		total, _, err = neo4j.GetRecordValue[int64](recs[0], "total")
		if err != nil {
			return nil, 0, err
		}
	}

	q := match + "\nRETURN bk\nORDER BY bk.start_datetime, bk.id"
	if limit > 0 {
		q += "\nSKIP $offset LIMIT $limit"
		params["offset"] = int64(offset)
		params["limit"] = int64(limit)
	}
	bookings, err := b.list(ctx, q, params)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// TotalsByStatus агрегирует в Go: цена хранится строкой, чтобы не терять точность.
func (b *bookingRepo) TotalsByStatus(
	ctx context.Context,
	businessID uuid.UUID,
	from, to time.Time,
) ([]model.StatusTotals, error) {
	const q = `
MATCH (bk:Booking {business_id: $business_id})-[:FOR_ITEM]->(i:BookableItem)
WHERE bk.start_datetime >= $from AND bk.start_datetime < $to
RETURN bk.status AS status, bk.unit_count AS units, i.price AS price`
	recs, err := b.r.run(ctx, q, map[string]any{
		"business_id": businessID.String(),
		"from":        from.UTC(),
		"to":          to.UTC(),
	})
	if err != nil {
		return nil, err
	}

	byStatus := map[model.BookingStatus]*model.StatusTotals{}
	var order []model.BookingStatus
	for _, rec := range recs {
		p := props(rec.AsMap())
		status := model.BookingStatus(p.str("status"))
		t, ok := byStatus[status]
		if !ok {
			t = &model.StatusTotals{Status: status, Revenue: decimal.Zero}
			byStatus[status] = t
			order = append(order, status)
		}
		units := p.int("units")
		t.Count++
		t.Units += units
		if price := p.decimal("price"); price.Valid {
			t.Revenue = t.Revenue.Add(price.Decimal.Mul(decimal.NewFromInt(units)))
		}
	}

	out := make([]model.StatusTotals, 0, len(order))
	for _, s := range order {
		out = append(out, *byStatus[s])
	}
	return out, nil
}

func (b *bookingRepo) RecordEvent(ctx context.Context, ev *model.Event) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	ev.CreatedAt = time.Now().UTC()

	params := map[string]any{
		"id":         ev.ID.String(),
		"event_type": string(ev.EventType),
		"created_at": ev.CreatedAt,
		"details":    string(ev.Details),
	}

	q := "CREATE (e:BookingEvent {id: $id, event_type: $event_type, created_at: $created_at, details: $details})"
	if ev.BookingID != nil {
		q = `
MATCH (bk:Booking {id: $booking_id})
CREATE (e:BookingEvent {id: $id, event_type: $event_type, created_at: $created_at, details: $details, booking_id: $booking_id})-[:ABOUT]->(bk)`
		params["booking_id"] = ev.BookingID.String()
	}
	_, err := b.r.run(ctx, q, params)
	return err
}

// WithinBusinessLock: запись свойства узла бизнеса берёт на него write-lock,
// который держится до конца транзакции.
func (b *bookingRepo) WithinBusinessLock(
	ctx context.Context,
	businessID uuid.UUID,
	fn func(tx repository.BookingRepository) error,
) error {
	session := b.store.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: b.store.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, b.lockedIn(ctx, txRunner{tx: tx}, businessID, fn)
	})
	return err
}

const lockBusinessCypher = "MATCH (b:Business {id: $id}) SET b.locked_at = timestamp() RETURN b.id AS id"

// lockedIn блокирует узел бизнеса в транзакции r и выполняет fn в ней же.
func (b *bookingRepo) lockedIn(
	ctx context.Context,
	r runner,
	businessID uuid.UUID,
	fn func(tx repository.BookingRepository) error,
) error {
	recs, err := r.run(ctx, lockBusinessCypher, map[string]any{"id": businessID.String()})
	if err != nil {
		return fmt.Errorf("lock business: %w", err)
	}
	if len(recs) == 0 {
		return repository.ErrNotFound
	}
	return fn(&bookingRepo{r: r, store: b.store})
}

func (b *bookingRepo) list(ctx context.Context, q string, params map[string]any) ([]model.Booking, error) {
	recs, err := b.r.run(ctx, q, params)
	if err != nil {
		return nil, err
	}
	out := make([]model.Booking, 0, len(recs))
	for _, rec := range recs {
		p, err := nodeProps(rec, "bk")
		if err != nil {
			return nil, err
		}
		out = append(out, toBooking(p))
	}
	return out, nil
}
