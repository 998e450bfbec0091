package graphstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
)

type props map[string]any

func nodeProps(rec *neo4j.Record, key string) (props, error) {
	node, _, err := neo4j.GetRecordValue[neo4j.Node](rec, key)
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", key, err)
	}
	return props(node.Props), nil
}

func (p props) str(key string) string {
	s, _ := p[key].(string)
	return s
}

func (p props) id(key string) uuid.UUID {
	u, _ := uuid.Parse(p.str(key))
	return u
}

func (p props) optID(key string) *uuid.UUID {
	s := p.str(key)
	if s == "" {
		return nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &u
}

func (p props) int(key string) int64 {
	switch v := p[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func (p props) bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

func (p props) time(key string) time.Time {
	switch v := p[key].(type) {
	case time.Time:
		return v.UTC()
	case neo4j.LocalDateTime:
		return time.Time(v).UTC()
	}
	return time.Time{}
}

func (p props) optTime(key string) *time.Time {
	t := p.time(key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func (p props) decimal(key string) decimal.NullDecimal {
	s := p.str(key)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func toBusiness(p props) *model.Business {
	return &model.Business{
		ID:        p.id("id"),
		Name:      p.str("name"),
		Timezone:  p.str("timezone"),
		CreatedAt: p.time("created_at"),
		UpdatedAt: p.time("updated_at"),
	}
}

func toItem(p props) *model.BookableItem {
	return &model.BookableItem{
		ID:          p.id("id"),
		BusinessID:  p.id("business_id"),
		Type:        model.BookableItemType(p.str("type")),
		Name:        p.str("name"),
		Description: p.str("description"),
		Duration:    p.str("duration"),
		Price:       p.decimal("price"),
		IsActive:    p.bool("is_active"),
		CreatedAt:   p.time("created_at"),
		UpdatedAt:   p.time("updated_at"),
	}
}

// Время суток хранится секундами от полуночи.
func toHours(p props) model.BusinessHours {
	return model.BusinessHours{
		ID:         p.id("id"),
		BusinessID: p.id("business_id"),
		StaffID:    p.optID("staff_id"),
		DayOfWeek:  int(p.int("day_of_week")),
		StartTime:  datatypes.Time(time.Duration(p.int("start_seconds")) * time.Second),
		EndTime:    datatypes.Time(time.Duration(p.int("end_seconds")) * time.Second),
		CreatedAt:  p.time("created_at"),
		UpdatedAt:  p.time("updated_at"),
	}
}

func toBooking(p props) model.Booking {
	return model.Booking{
		ID:                 p.id("id"),
		BusinessID:         p.id("business_id"),
		BookableItemID:     p.id("bookable_item_id"),
		StartDatetime:      p.time("start_datetime"),
		EndDatetime:        p.time("end_datetime"),
		Status:             model.BookingStatus(p.str("status")),
		UnitCount:          int(p.int("unit_count")),
		CancellationReason: p.str("cancellation_reason"),
		CancelledAt:        p.optTime("cancelled_at"),
		CreatedAt:          p.time("created_at"),
		UpdatedAt:          p.time("updated_at"),
	}
}

func clockSeconds(t datatypes.Time) int64 {
	return int64(time.Duration(t) / time.Second)
}

func statusStrings(statuses []model.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func optString(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

// parseID: строка, не являющаяся UUID, не может ссылаться на узел.
func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, repository.ErrNotFound
	}
	return u, nil
}
