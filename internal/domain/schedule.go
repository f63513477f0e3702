package domain

import (
	"time"

	"icelook/pkg/timeutil"
)

// WorkingDay — объявленная мастером доступность на конкретную дату:
// рабочий интервал и перерывы внутри него.
type WorkingDay struct {
	ID           int64                `json:"id"`
	BeautyPageID int64                `json:"beauty_page_id"`
	Date         time.Time            `json:"date"`
	Range        timeutil.TimeRange   `json:"range"`
	Breaks       []timeutil.TimeRange `json:"breaks"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Allows проверяет, что [start, end) целиком внутри рабочих часов и не задевает перерывы.
func (w *WorkingDay) Allows(start, end timeutil.TimeOfDay) error {
	if start < w.Range.Start || end > w.Range.End {
		return ErrOutsideWorkingHours
	}

	for _, br := range w.Breaks {
		if timeutil.Overlaps(start, end, br.Start, br.End) {
			return ErrBreakConflict
		}
	}

	return nil
}

// CheckWorkingHours ищет рабочий день на дату date и проверяет размещение [start, end).
// Порядок проверок фиксирован: нет рабочего дня → вне рабочих часов → перерыв.
func CheckWorkingHours(date time.Time, start, end timeutil.TimeOfDay, days []WorkingDay) error {
	for i := range days {
		if SameDate(days[i].Date, date) {
			return days[i].Allows(start, end)
		}
	}
	return ErrNotWorkingDay
}

// SameDate сравнивает только календарные даты, без времени.
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

type CreateWorkingDayDTO struct {
	Date      string   `json:"date" binding:"required"`
	StartTime string   `json:"start_time" binding:"required"`
	EndTime   string   `json:"end_time" binding:"required"`
	Breaks    []string `json:"breaks,omitempty"`
}

type UpdateWorkingDayDTO struct {
	StartTime *string   `json:"start_time,omitempty"`
	EndTime   *string   `json:"end_time,omitempty"`
	Breaks    *[]string `json:"breaks,omitempty"`
}

type WorkingDayFilter struct {
	BeautyPageID *int64     `json:"beauty_page_id"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Limit        int        `json:"limit"`
	Offset       int        `json:"offset"`
}
