// Package mocks — testify-моки сервисов для тестов HTTP- и MCP-слоя.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Leganyst/booking-core/internal/calendar"
	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/model"
)

type cleanuper interface {
	mock.TestingT
	Cleanup(func())
}

type BookingSvc struct{ mock.Mock }

func NewBookingSvc(t cleanuper) *BookingSvc {
	m := &BookingSvc{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *BookingSvc) Create(ctx context.Context, req dto.CreateBookingRequest) (*model.Booking, error) {
	args := m.Called(ctx, req)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *BookingSvc) Cancel(ctx context.Context, req dto.CancelBookingRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *BookingSvc) Confirm(ctx context.Context, id string) (*model.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *BookingSvc) Complete(ctx context.Context, id string) (*model.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *BookingSvc) Get(ctx context.Context, id string) (*model.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *BookingSvc) List(ctx context.Context, q dto.ListBookingsQuery) (calendar.Page[model.Booking], error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(calendar.Page[model.Booking])
	return p, args.Error(1)
}

type AvailabilitySvc struct{ mock.Mock }

func NewAvailabilitySvc(t cleanuper) *AvailabilitySvc {
	m := &AvailabilitySvc{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *AvailabilitySvc) AvailableSlots(ctx context.Context, q dto.AvailableSlotsQuery) ([]model.AvailableSlot, error) {
	args := m.Called(ctx, q)
	s, _ := args.Get(0).([]model.AvailableSlot)
	return s, args.Error(1)
}

type HoursSvc struct{ mock.Mock }

func NewHoursSvc(t cleanuper) *HoursSvc {
	m := &HoursSvc{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *HoursSvc) Create(ctx context.Context, businessID string, req dto.CreateBusinessHoursRequest) (*model.BusinessHours, error) {
	args := m.Called(ctx, businessID, req)
	h, _ := args.Get(0).(*model.BusinessHours)
	return h, args.Error(1)
}

func (m *HoursSvc) List(ctx context.Context, businessID string) ([]model.BusinessHours, error) {
	args := m.Called(ctx, businessID)
	h, _ := args.Get(0).([]model.BusinessHours)
	return h, args.Error(1)
}

type StatsSvc struct{ mock.Mock }

func NewStatsSvc(t cleanuper) *StatsSvc {
	m := &StatsSvc{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StatsSvc) Statistics(ctx context.Context, q dto.StatisticsQuery) (*model.BookingStats, error) {
	args := m.Called(ctx, q)
	s, _ := args.Get(0).(*model.BookingStats)
	return s, args.Error(1)
}
