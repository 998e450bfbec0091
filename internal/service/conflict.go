package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/repository"
)

// ConflictDetector решает, пересекается ли интервал с уже существующими бронями.
// Проверка включительная: брони, касающиеся концами, тоже конфликтуют.
type ConflictDetector struct {
	policy Policy
}

func NewConflictDetector(policy Policy) *ConflictDetector {
	return &ConflictDetector{policy: policy}
}

// HasConflict ищет пересечения через finder. Внутри создания брони finder —
// репозиторий транзакции, чтобы проверка и вставка шли одним соединением.
func (d *ConflictDetector) HasConflict(
	ctx context.Context,
	finder repository.OverlapFinder,
	businessID, itemID uuid.UUID,
	tr calendar.TimeRange,
) (bool, error) {
	q := repository.OverlapQuery{
		BusinessID: businessID,
		Start:      tr.Start,
		End:        tr.End,
		Statuses:   d.policy.blockingStatuses(),
	}
	if d.policy.ItemScope {
		q.BookableItemID = &itemID
	}

	found, err := finder.FindOverlapping(ctx, q)
	if err != nil {
		return false, fmt.Errorf("find overlapping bookings: %w", err)
	}

	existing := make([]calendar.TimeRange, 0, len(found))
	for _, b := range found {
		existing = append(existing, calendar.TimeRange{Start: b.StartDatetime, End: b.EndDatetime})
	}

	conflict, _ := calendar.HasOverlap(tr, existing, true)
	return conflict, nil
}
