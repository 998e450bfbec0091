package service

import (
	"github.com/sirupsen/logrus"

	"github.com/Leganyst/booking-core/internal/repository"
)

// Core — все прикладные сервисы поверх одного набора репозиториев.
// Его используют и REST, и MCP.
type Core struct {
	Bookings     *BookingService
	Availability *AvailabilityService
	Hours        *HoursService
	Stats        *StatsService
}

func NewCore(repos repository.Set, policy Policy, log logrus.FieldLogger, opts ...BookingOption) *Core {
	return &Core{
		Bookings:     NewBookingService(repos, policy, log, opts...),
		Availability: NewAvailabilityService(repos, policy, log),
		Hours:        NewHoursService(repos, log),
		Stats:        NewStatsService(repos, log),
	}
}
