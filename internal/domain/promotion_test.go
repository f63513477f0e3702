package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromotionAppliesTo(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) // понедельник
	bookingDate := date(2026, 3, 4)                     // среда
	start := mustTime(t, "10:00")

	t.Run("sale внутри окна", func(t *testing.T) {
		from := date(2026, 3, 1)
		to := date(2026, 3, 10)
		p := Promotion{
			Type:   PromotionTypeSale,
			Status: PromotionStatusActive,
			Sale:   &SalePromotionData{StartsAt: &from, EndsAt: &to},
		}
		assert.True(t, p.AppliesTo(bookingDate, start, now))
	})

	t.Run("sale без границ действует всегда", func(t *testing.T) {
		p := Promotion{Type: PromotionTypeSale, Status: PromotionStatusActive, Sale: &SalePromotionData{}}
		assert.True(t, p.AppliesTo(bookingDate, start, now))
	})

	t.Run("sale вне окна", func(t *testing.T) {
		to := date(2026, 3, 3)
		p := Promotion{
			Type:   PromotionTypeSale,
			Status: PromotionStatusActive,
			Sale:   &SalePromotionData{EndsAt: &to},
		}
		assert.False(t, p.AppliesTo(bookingDate, start, now))
	})

	t.Run("slot требует точного совпадения даты и времени", func(t *testing.T) {
		p := Promotion{
			Type:   PromotionTypeSlot,
			Status: PromotionStatusActive,
			Slot: &SlotPromotionData{
				SlotDate:  bookingDate,
				SlotStart: start,
				SlotEnd:   mustTime(t, "11:00"),
			},
		}
		assert.True(t, p.AppliesTo(bookingDate, start, now))
		assert.False(t, p.AppliesTo(bookingDate, mustTime(t, "10:15"), now))
		assert.False(t, p.AppliesTo(bookingDate.AddDate(0, 0, 1), start, now))
	})

	t.Run("забронированный slot не применяется", func(t *testing.T) {
		p := Promotion{
			Type:   PromotionTypeSlot,
			Status: PromotionStatusBooked,
			Slot:   &SlotPromotionData{SlotDate: bookingDate, SlotStart: start},
		}
		assert.False(t, p.AppliesTo(bookingDate, start, now))
	})

	t.Run("time по дню недели", func(t *testing.T) {
		p := Promotion{
			Type:   PromotionTypeTime,
			Status: PromotionStatusActive,
			TimeWindow: &TimePromotionData{
				StartTime: start,
				Days:      []time.Weekday{time.Wednesday, time.Friday},
			},
		}
		assert.True(t, p.AppliesTo(bookingDate, start, now))
		// четверг не входит в перечень
		assert.False(t, p.AppliesTo(date(2026, 3, 5), start, now))
		// другое время начала
		assert.False(t, p.AppliesTo(bookingDate, mustTime(t, "11:00"), now))
	})

	t.Run("time без дней действует каждый день", func(t *testing.T) {
		p := Promotion{
			Type:       PromotionTypeTime,
			Status:     PromotionStatusActive,
			TimeWindow: &TimePromotionData{StartTime: start},
		}
		assert.True(t, p.AppliesTo(date(2026, 3, 5), start, now))
	})

	t.Run("истёкший time не применяется", func(t *testing.T) {
		until := date(2026, 3, 1)
		p := Promotion{
			Type:       PromotionTypeTime,
			Status:     PromotionStatusActive,
			TimeWindow: &TimePromotionData{StartTime: start, ValidUntil: &until},
		}
		assert.False(t, p.AppliesTo(bookingDate, start, now))
		assert.Equal(t, PromotionStatusExpired, p.EffectiveStatus(now))
	})
}

func TestBestPromotion(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	bookingDate := date(2026, 3, 4)
	start := mustTime(t, "10:00")

	sale20 := Promotion{
		ID:                 1,
		Type:               PromotionTypeSale,
		Status:             PromotionStatusActive,
		DiscountPercentage: 20,
		Sale:               &SalePromotionData{},
	}
	time15 := Promotion{
		ID:                 2,
		Type:               PromotionTypeTime,
		Status:             PromotionStatusActive,
		DiscountPercentage: 15,
		TimeWindow:         &TimePromotionData{StartTime: start},
	}

	t.Run("выбирается большая скидка", func(t *testing.T) {
		best := BestPromotion([]Promotion{time15, sale20}, bookingDate, start, now)
		require.NotNil(t, best)
		assert.Equal(t, int64(1), best.ID)
		assert.Equal(t, 20, best.DiscountPercentage)
	})

	t.Run("при равной скидке выбирается меньший id", func(t *testing.T) {
		sale15 := sale20
		sale15.ID = 5
		sale15.DiscountPercentage = 15

		best := BestPromotion([]Promotion{sale15, time15}, bookingDate, start, now)
		require.NotNil(t, best)
		assert.Equal(t, int64(2), best.ID)
	})

	t.Run("забронированный slot никогда не возвращается", func(t *testing.T) {
		booked := Promotion{
			ID:                 3,
			Type:               PromotionTypeSlot,
			Status:             PromotionStatusBooked,
			DiscountPercentage: 50,
			Slot:               &SlotPromotionData{SlotDate: bookingDate, SlotStart: start},
		}

		best := BestPromotion([]Promotion{booked, time15}, bookingDate, start, now)
		require.NotNil(t, best)
		assert.Equal(t, int64(2), best.ID)
	})

	t.Run("без применимых акций nil", func(t *testing.T) {
		assert.Nil(t, BestPromotion([]Promotion{time15}, bookingDate, mustTime(t, "09:00"), now))
		assert.Nil(t, BestPromotion(nil, bookingDate, start, now))
	})
}
