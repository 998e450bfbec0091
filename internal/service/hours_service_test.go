package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/booking-core/internal/apperror"
	"github.com/Leganyst/booking-core/internal/dto"
	"github.com/Leganyst/booking-core/internal/model"
)

func hoursReq(day int, start, end string) dto.CreateBusinessHoursRequest {
	return dto.CreateBusinessHoursRequest{DayOfWeek: &day, StartTime: start, EndTime: end}
}

func TestHoursCreate_OverlapRejectedTouchingAllowed(t *testing.T) {
	f := newFixture(t)
	svc := f.core(DefaultPolicy()).Hours
	id := f.business.ID.String()

	rule, err := svc.Create(bg, id, hoursReq(1, "09:00", "13:00"))
	require.NoError(t, err)
	assert.Equal(t, "09:00", model.FormatClock(rule.StartTime))
	assert.Nil(t, rule.StaffID)

	_, err = svc.Create(bg, id, hoursReq(1, "12:00", "15:00"))
	assert.ErrorIs(t, err, ErrHoursOverlap)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	_, err = svc.Create(bg, id, hoursReq(1, "13:00", "18:00"))
	assert.NoError(t, err)

	// другой день недели независим
	_, err = svc.Create(bg, id, hoursReq(2, "10:00", "12:00"))
	assert.NoError(t, err)

	rules, err := svc.List(bg, id)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, 1, rules[0].DayOfWeek)
	assert.Equal(t, "09:00", model.FormatClock(rules[0].StartTime))
	assert.Equal(t, "13:00", model.FormatClock(rules[1].StartTime))
	assert.Equal(t, 2, rules[2].DayOfWeek)
}

func TestHoursCreate_StaffScopeIsSeparate(t *testing.T) {
	f := newFixture(t)
	svc := f.core(DefaultPolicy()).Hours
	id := f.business.ID.String()

	_, err := svc.Create(bg, id, hoursReq(3, "09:00", "17:00"))
	require.NoError(t, err)

	req := hoursReq(3, "10:00", "12:00")
	req.StaffID = uuid.NewString()
	staffRule, err := svc.Create(bg, id, req)
	require.NoError(t, err)
	require.NotNil(t, staffRule.StaffID)

	_, err = svc.Create(bg, id, req)
	assert.ErrorIs(t, err, ErrHoursOverlap)
}

func TestHoursCreate_Errors(t *testing.T) {
	f := newFixture(t)
	svc := f.core(DefaultPolicy()).Hours

	_, err := svc.Create(bg, uuid.NewString(), hoursReq(1, "09:00", "10:00"))
	assert.ErrorIs(t, err, ErrBusinessNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.Create(bg, f.business.ID.String(), hoursReq(1, "10:00", "10:00"))
	assert.ErrorIs(t, err, ErrInvalidHours)

	_, err = svc.Create(bg, f.business.ID.String(), hoursReq(1, "18:00", "09:00"))
	assert.ErrorIs(t, err, ErrInvalidHours)

	_, err = svc.Create(bg, f.business.ID.String(), hoursReq(7, "09:00", "10:00"))
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	_, err = svc.Create(bg, f.business.ID.String(), hoursReq(1, "9am", "10:00"))
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))

	_, err = svc.List(bg, "nope")
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}
