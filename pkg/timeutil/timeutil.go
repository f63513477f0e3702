package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 24 * 60

var ErrInvalidFormat = errors.New("неверный формат времени, ожидается HH:MM или HH:MM:SS")

// TimeOfDay — время суток в минутах от полуночи. Всегда в диапазоне [0, 1440).
type TimeOfDay int

// Parse разбирает строку вида "HH:MM" или "HH:MM:SS".
// Секунды допускаются на входе, но отбрасываются: расписание работает с точностью до минуты.
func Parse(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
	}

	return TimeOfDay(hours*60 + minutes), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

// Add возвращает время, сдвинутое на minutes минут. Результат не нормализуется
// по границе суток — вызывающий проверяет Valid, если это важно.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

// Overlaps проверяет пересечение полуинтервалов [aStart, aEnd) и [bStart, bEnd).
// Интервалы, соприкасающиеся границами, не пересекаются.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}

// Snap округляет minutes до ближайшего кратного interval.
// Ровно посередине округляет вверх.
func Snap(minutes, interval int) int {
	if interval <= 0 {
		return minutes
	}
	remainder := minutes % interval
	if remainder*2 >= interval {
		return minutes - remainder + interval
	}
	return minutes - remainder
}

// Clamp ограничивает minutes диапазоном [min, max].
func Clamp(minutes, min, max int) int {
	if minutes < min {
		return min
	}
	if minutes > max {
		return max
	}
	return minutes
}

// TimeRange — полуинтервал [Start, End) внутри одних суток.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// ParseRange разбирает строку вида "HH:MM-HH:MM".
func ParseRange(s string) (TimeRange, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	start, err := Parse(parts[0])
	if err != nil {
		return TimeRange{}, err
	}

	end, err := Parse(parts[1])
	if err != nil {
		return TimeRange{}, err
	}

	if start >= end {
		return TimeRange{}, fmt.Errorf("%w: начало интервала должно быть раньше конца (%q)", ErrInvalidFormat, s)
	}

	return TimeRange{Start: start, End: end}, nil
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

func (r TimeRange) Valid() bool {
	return r.Start.Valid() && r.End.Valid() && r.Start < r.End
}

func (r TimeRange) Duration() int {
	return int(r.End - r.Start)
}

func (r TimeRange) Overlaps(other TimeRange) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

// Contains проверяет, что other целиком лежит внутри r.
func (r TimeRange) Contains(other TimeRange) bool {
	return other.Start >= r.Start && other.End <= r.End
}
