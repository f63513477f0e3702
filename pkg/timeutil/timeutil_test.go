package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"9:05", 545, false},
		{"23:59", 1439, false},
		{"13:30:00", 810, false},
		{"13:30:59", 810, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12:30:60", 0, true},
		{"-01:00", 0, true},
		{"12", 0, true},
		{"12:30:00:00", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "00:00", TimeOfDay(0).String())
	assert.Equal(t, "09:05", TimeOfDay(545).String())
	assert.Equal(t, "23:59", TimeOfDay(1439).String())
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd TimeOfDay
		want                       bool
	}{
		{"идентичные интервалы", 600, 660, 600, 660, true},
		{"частичное пересечение", 600, 660, 630, 690, true},
		{"вложенный интервал", 600, 720, 630, 660, true},
		{"соприкасаются концами", 600, 660, 660, 720, false},
		{"соприкасаются в обратном порядке", 660, 720, 600, 660, false},
		{"не пересекаются", 600, 660, 720, 780, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			assert.Equal(t, tt.want, got)
			// Пересечение симметрично
			assert.Equal(t, got, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		minutes, interval, want int
	}{
		{600, 15, 600},
		{607, 15, 600},
		{608, 15, 615},
		{613, 15, 615},
		{602, 5, 600},
		{0, 15, 0},
		{7, 15, 0},
		{8, 15, 15},
		{30, 60, 60}, // ровно середина — вверх
		{600, 0, 600},
	}

	for _, tt := range tests {
		got := Snap(tt.minutes, tt.interval)
		assert.Equal(t, tt.want, got, "Snap(%d, %d)", tt.minutes, tt.interval)
		// Идемпотентность
		assert.Equal(t, got, Snap(got, tt.interval))
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 540, Clamp(500, 540, 1080))
	assert.Equal(t, 1080, Clamp(1100, 540, 1080))
	assert.Equal(t, 600, Clamp(600, 540, 1080))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("13:00-14:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(780), r.Start)
	assert.Equal(t, TimeOfDay(840), r.End)
	assert.Equal(t, 60, r.Duration())
	assert.Equal(t, "13:00-14:00", r.String())

	_, err = ParseRange("14:00-13:00")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ParseRange("14:00")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTimeRangeContains(t *testing.T) {
	day := TimeRange{Start: 540, End: 1080} // 09:00-18:00

	assert.True(t, day.Contains(TimeRange{Start: 540, End: 600}))
	assert.True(t, day.Contains(TimeRange{Start: 1020, End: 1080}))
	assert.False(t, day.Contains(TimeRange{Start: 480, End: 600}))
	assert.False(t, day.Contains(TimeRange{Start: 1020, End: 1140}))
}
