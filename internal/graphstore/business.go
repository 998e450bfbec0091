package graphstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

type businessRepo struct {
	r runner
}

func (b *businessRepo) GetByID(ctx context.Context, id string) (*model.Business, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	recs, err := b.r.run(ctx, "MATCH (b:Business {id: $id}) RETURN b", map[string]any{"id": uid.String()})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, repository.ErrNotFound
	}
	p, err := nodeProps(recs[0], "b")
	if err != nil {
		return nil, err
	}
	return toBusiness(p), nil
}

type itemRepo struct {
	r runner
}

func (i *itemRepo) GetByID(ctx context.Context, id string) (*model.BookableItem, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	recs, err := i.r.run(ctx, "MATCH (i:BookableItem {id: $id}) RETURN i", map[string]any{"id": uid.String()})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, repository.ErrNotFound
	}
	p, err := nodeProps(recs[0], "i")
	if err != nil {
		return nil, err
	}
	return toItem(p), nil
}

type hoursRepo struct {
	r runner
}

func (h *hoursRepo) ListForDay(
	ctx context.Context,
	businessID uuid.UUID,
	staffID *uuid.UUID,
	day int,
) ([]model.BusinessHours, error) {
	const q = `
MATCH (h:BusinessHours {business_id: $business_id, day_of_week: $day})
WHERE ($staff_id IS NULL AND h.staff_id IS NULL) OR h.staff_id = $staff_id
RETURN h
ORDER BY h.start_seconds`
	return h.list(ctx, q, map[string]any{
		"business_id": businessID.String(),
		"day":         int64(day),
		"staff_id":    optString(staffID),
	})
}

func (h *hoursRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.BusinessHours, error) {
	const q = `
MATCH (h:BusinessHours {business_id: $business_id})
RETURN h
ORDER BY h.day_of_week, h.start_seconds`
	return h.list(ctx, q, map[string]any{"business_id": businessID.String()})
}

func (h *hoursRepo) list(ctx context.Context, q string, params map[string]any) ([]model.BusinessHours, error) {
	recs, err := h.r.run(ctx, q, params)
	if err != nil {
		return nil, err
	}
	out := make([]model.BusinessHours, 0, len(recs))
	for _, rec := range recs {
		p, err := nodeProps(rec, "h")
		if err != nil {
			return nil, err
		}
		out = append(out, toHours(p))
	}
	return out, nil
}

func (h *hoursRepo) Create(ctx context.Context, rule *model.BusinessHours) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	now := time.Now().UTC()
	rule.CreatedAt, rule.UpdatedAt = now, now

	const q = `
MATCH (b:Business {id: $business_id})
CREATE (b)-[:HAS_HOURS]->(h:BusinessHours {
	id: $id,
	business_id: $business_id,
	staff_id: $staff_id,
	day_of_week: $day,
	start_seconds: $start,
	end_seconds: $end,
	created_at: $now,
	updated_at: $now
})
RETURN h.id AS id`
	recs, err := h.r.run(ctx, q, map[string]any{
		"id":          rule.ID.String(),
		"business_id": rule.BusinessID.String(),
		"staff_id":    optString(rule.StaffID),
		"day":         int64(rule.DayOfWeek),
		"start":       clockSeconds(rule.StartTime),
		"end":         clockSeconds(rule.EndTime),
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
