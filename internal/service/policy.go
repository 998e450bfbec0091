package service

import (
	"time"

	"github.com/Leganyst/booking-core/internal/config"
	"github.com/Leganyst/booking-core/internal/model"
)

type Policy struct {
	// Конфликт ищется только среди броней той же позиции.
	ItemScope bool
	// Отменённые брони не занимают время.
	IgnoreCancelled bool
	// Ширина слота равна длительности позиции, иначе SlotWidth.
	ItemSlotWidth bool
	SlotWidth     time.Duration
	MaxRangeDays  int
	CancelNotice  time.Duration
}

// DefaultPolicy: конфликт по всему бизнесу, отменённые учитываются,
// слоты по часу, отмена не позже чем за сутки.
func DefaultPolicy() Policy {
	return Policy{
		SlotWidth:    time.Hour,
		MaxRangeDays: 92,
		CancelNotice: 24 * time.Hour,
	}
}

func PolicyFromConfig(cfg config.BookingConfig) Policy {
	p := DefaultPolicy()
	p.ItemScope = cfg.ConflictScope == config.ConflictScopeItem
	p.IgnoreCancelled = cfg.ConflictIgnoreCancelled
	p.ItemSlotWidth = cfg.SlotWidthMode == config.SlotWidthItem
	if cfg.SlotWidth > 0 {
		p.SlotWidth = cfg.SlotWidth
	}
	if cfg.MaxRangeDays > 0 {
		p.MaxRangeDays = cfg.MaxRangeDays
	}
	if cfg.CancelNotice > 0 {
		p.CancelNotice = cfg.CancelNotice
	}
	return p
}

// blockingStatuses: nil означает «любой статус».
func (p Policy) blockingStatuses() []model.BookingStatus {
	if p.IgnoreCancelled {
		return model.ActiveStatuses
	}
	return nil
}
