package domain

import (
	"time"

	"icelook/pkg/timeutil"
)

// FindConflict ищет активную запись, пересекающуюся с кандидатом [start, end) на дату date.
// Отменённые записи и неявки пропускаются; excludeID исключает перемещаемую запись.
// Возвращается первая найденная — вызывающему важно знать, что конфликт есть и с кем.
func FindConflict(date time.Time, start, end timeutil.TimeOfDay, appointments []Appointment, excludeID *int64) *Appointment {
	for i := range appointments {
		appt := &appointments[i]

		if excludeID != nil && appt.ID == *excludeID {
			continue
		}
		if !appt.IsActive() {
			continue
		}
		if !SameDate(appt.Date, date) {
			continue
		}
		if timeutil.Overlaps(start, end, appt.Start, appt.End) {
			return appt
		}
	}

	return nil
}

// PlacementResult — результат проверки размещения записи.
type PlacementResult struct {
	Valid bool `json:"valid"`
	// Reason — ошибка бизнес-правила при Valid == false.
	Reason error `json:"-"`
	// ConflictWith заполняется, когда причина — пересечение с другой записью.
	ConflictWith *Appointment `json:"conflict_with,omitempty"`
}

// ValidatePlacement проверяет кандидата (date, [start, end)) против рабочего графика
// и существующих записей. Порядок проверок фиксирован: сначала доступность
// (более конкретное сообщение), затем конфликты. Первая неудача завершает проверку,
// чтобы сообщение пользователю было детерминированным.
func ValidatePlacement(
	date time.Time,
	start, end timeutil.TimeOfDay,
	appointments []Appointment,
	workingDays []WorkingDay,
	excludeID *int64,
) PlacementResult {
	// Вырожденный или перевёрнутый интервал не пересекается ни с чем
	// и прошёл бы остальные проверки, поэтому отклоняется сразу.
	if start >= end {
		return PlacementResult{Valid: false, Reason: ErrBelowMinDuration}
	}

	if err := CheckWorkingHours(date, start, end, workingDays); err != nil {
		return PlacementResult{Valid: false, Reason: err}
	}

	if conflict := FindConflict(date, start, end, appointments, excludeID); conflict != nil {
		return PlacementResult{Valid: false, Reason: ErrTimeConflict, ConflictWith: conflict}
	}

	return PlacementResult{Valid: true}
}
