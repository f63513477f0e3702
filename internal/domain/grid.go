package domain

import (
	"icelook/pkg/timeutil"
)

// DefaultSnapIntervalMinutes — шаг сетки календаря по умолчанию.
const DefaultSnapIntervalMinutes = 15

// DefaultMinDurationMinutes — минимальная длительность записи при изменении размеров.
const DefaultMinDurationMinutes = 15

// CalendarGrid описывает геометрию видимой сетки календаря:
// вертикаль — часы [StartHour, EndHour), горизонталь — DayCount дней.
type CalendarGrid struct {
	StartHour    int
	EndHour      int
	HeightPx     float64
	DayCount     int
	WidthPx      float64
	SnapInterval int
}

func (g CalendarGrid) snapInterval() int {
	if g.SnapInterval > 0 {
		return g.SnapInterval
	}
	return DefaultSnapIntervalMinutes
}

func (g CalendarGrid) startMinute() int { return g.StartHour * 60 }
func (g CalendarGrid) endMinute() int   { return g.EndHour * 60 }

func (g CalendarGrid) minutesPerPixel() float64 {
	if g.HeightPx <= 0 {
		return 0
	}
	return float64(g.endMinute()-g.startMinute()) / g.HeightPx
}

// TimeAtY переводит вертикальную координату указателя в время суток:
// линейное отображение на минуты, привязка к шагу сетки, ограничение границами сетки.
func (g CalendarGrid) TimeAtY(y float64) timeutil.TimeOfDay {
	minutes := g.startMinute()
	if g.HeightPx > 0 {
		minutes += int(y / g.HeightPx * float64(g.endMinute()-g.startMinute()))
	}

	minutes = timeutil.Snap(minutes, g.snapInterval())
	minutes = timeutil.Clamp(minutes, g.startMinute(), g.endMinute())

	return timeutil.TimeOfDay(minutes)
}

// TimeByDelta переводит приращение координаты в новое время от исходного начала.
// Перетаскивание должно считаться от исходного значения, а не от текущего
// промежуточного, иначе накопленное округление уводит запись от указателя.
func (g CalendarGrid) TimeByDelta(origin timeutil.TimeOfDay, deltaY float64) timeutil.TimeOfDay {
	minutes := origin.Minutes() + int(deltaY*g.minutesPerPixel())

	minutes = timeutil.Snap(minutes, g.snapInterval())
	minutes = timeutil.Clamp(minutes, g.startMinute(), g.endMinute())

	return timeutil.TimeOfDay(minutes)
}

// DayIndexAtX переводит горизонтальную координату в индекс дня [0, DayCount-1].
func (g CalendarGrid) DayIndexAtX(x float64) int {
	if g.DayCount <= 0 || g.WidthPx <= 0 {
		return 0
	}

	idx := int(x / g.WidthPx * float64(g.DayCount))
	if idx < 0 {
		return 0
	}
	if idx >= g.DayCount {
		return g.DayCount - 1
	}
	return idx
}

// MoveTimes сдвигает запись на новое начало, сохраняя исходную длительность.
func MoveTimes(oldStart, oldEnd, newStart timeutil.TimeOfDay) (timeutil.TimeOfDay, timeutil.TimeOfDay) {
	return newStart, newStart + (oldEnd - oldStart)
}

// ResizeStart двигает верхнюю границу записи. Запись короче minDuration не допускается:
// вместо вырожденного интервала возвращается ошибка.
func ResizeStart(newStart, end timeutil.TimeOfDay, minDuration int) (timeutil.TimeRange, error) {
	if minDuration <= 0 {
		minDuration = DefaultMinDurationMinutes
	}
	if int(end-newStart) < minDuration {
		return timeutil.TimeRange{}, ErrBelowMinDuration
	}
	return timeutil.TimeRange{Start: newStart, End: end}, nil
}

// ResizeEnd двигает нижнюю границу записи с тем же ограничением минимальной длительности.
func ResizeEnd(start, newEnd timeutil.TimeOfDay, minDuration int) (timeutil.TimeRange, error) {
	if minDuration <= 0 {
		minDuration = DefaultMinDurationMinutes
	}
	if int(newEnd-start) < minDuration {
		return timeutil.TimeRange{}, ErrBelowMinDuration
	}
	return timeutil.TimeRange{Start: start, End: newEnd}, nil
}
