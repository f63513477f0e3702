package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icelook/pkg/timeutil"
)

func mustRange(t *testing.T, s string) timeutil.TimeRange {
	t.Helper()
	r, err := timeutil.ParseRange(s)
	require.NoError(t, err)
	return r
}

func mustTime(t *testing.T, s string) timeutil.TimeOfDay {
	t.Helper()
	tod, err := timeutil.Parse(s)
	require.NoError(t, err)
	return tod
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCheckWorkingHours(t *testing.T) {
	day := date(2026, 3, 2)
	days := []WorkingDay{
		{
			ID:           1,
			BeautyPageID: 10,
			Date:         day,
			Range:        mustRange(t, "09:00-18:00"),
			Breaks:       []timeutil.TimeRange{mustRange(t, "13:00-14:00")},
		},
	}

	tests := []struct {
		name       string
		date       time.Time
		start, end string
		wantErr    error
	}{
		{"внутри рабочих часов", day, "14:00", "15:00", nil},
		{"начало рабочего дня", day, "09:00", "10:00", nil},
		{"впритык к перерыву слева", day, "12:00", "13:00", nil},
		{"впритык к перерыву справа", day, "14:00", "14:30", nil},
		{"до начала рабочего дня", day, "08:00", "09:00", ErrOutsideWorkingHours},
		{"выход за конец дня", day, "17:30", "18:30", ErrOutsideWorkingHours},
		{"пересекает перерыв", day, "12:30", "13:30", ErrBreakConflict},
		{"целиком в перерыве", day, "13:15", "13:45", ErrBreakConflict},
		{"нерабочий день", date(2026, 3, 3), "10:00", "11:00", ErrNotWorkingDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckWorkingHours(tt.date, mustTime(t, tt.start), mustTime(t, tt.end), days)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCheckWorkingHoursOrder(t *testing.T) {
	// Кандидат одновременно вне рабочих часов и в перерыве другого дня невозможен,
	// но при пересечении границы дня и перерыва приоритет у проверки границ.
	day := date(2026, 3, 2)
	days := []WorkingDay{
		{
			Date:   day,
			Range:  mustRange(t, "09:00-13:30"),
			Breaks: []timeutil.TimeRange{mustRange(t, "13:00-13:30")},
		},
	}

	err := CheckWorkingHours(day, mustTime(t, "13:00"), mustTime(t, "14:00"), days)
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)
}

func TestSameDate(t *testing.T) {
	assert.True(t, SameDate(
		time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
	))
	assert.False(t, SameDate(date(2026, 3, 2), date(2026, 3, 3)))
}
