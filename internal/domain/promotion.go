package domain

import (
	"time"

	"icelook/pkg/timeutil"
)

type PromotionType string

const (
	PromotionTypeSale PromotionType = "sale"
	PromotionTypeSlot PromotionType = "slot"
	PromotionTypeTime PromotionType = "time"
)

type PromotionStatus string

const (
	PromotionStatusActive   PromotionStatus = "active"
	PromotionStatusBooked   PromotionStatus = "booked"
	PromotionStatusExpired  PromotionStatus = "expired"
	PromotionStatusInactive PromotionStatus = "inactive"
)

// SalePromotionData — акция, действующая в абсолютном окне дат.
// Нулевые границы означают отсутствие ограничения с соответствующей стороны.
type SalePromotionData struct {
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

// SlotPromotionData — скидка ровно на один конкретный слот записи.
type SlotPromotionData struct {
	SlotDate  time.Time          `json:"slot_date"`
	SlotStart timeutil.TimeOfDay `json:"slot_start"`
	SlotEnd   timeutil.TimeOfDay `json:"slot_end"`
}

// TimePromotionData — повторяющаяся скидка на время суток.
// Days == nil означает каждый день.
type TimePromotionData struct {
	StartTime  timeutil.TimeOfDay `json:"start_time"`
	Days       []time.Weekday     `json:"days,omitempty"`
	ValidUntil *time.Time         `json:"valid_until,omitempty"`
}

// Promotion — скидка на услугу. Тип определяет, какое из полей данных заполнено:
// ровно одно из Sale/Slot/TimeWindow не равно nil.
type Promotion struct {
	ID                   int64           `json:"id"`
	BeautyPageID         int64           `json:"beauty_page_id"`
	ServiceID            int64           `json:"service_id"`
	Type                 PromotionType   `json:"type"`
	DiscountPercentage   int             `json:"discount_percentage"`
	OriginalPriceCents   int64           `json:"original_price_cents"`
	DiscountedPriceCents int64           `json:"discounted_price_cents"`
	Status               PromotionStatus `json:"status"`

	Sale       *SalePromotionData `json:"sale,omitempty"`
	Slot       *SlotPromotionData `json:"slot,omitempty"`
	TimeWindow *TimePromotionData `json:"time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveStatus возвращает статус с учётом истечения: expired вычисляется,
// а не хранится.
func (p *Promotion) EffectiveStatus(now time.Time) PromotionStatus {
	if p.Status != PromotionStatusActive {
		return p.Status
	}

	switch p.Type {
	case PromotionTypeSale:
		if p.Sale != nil && p.Sale.EndsAt != nil && p.Sale.EndsAt.Before(startOfDay(now)) {
			return PromotionStatusExpired
		}
	case PromotionTypeSlot:
		if p.Slot != nil && p.Slot.SlotDate.Before(startOfDay(now)) {
			return PromotionStatusExpired
		}
	case PromotionTypeTime:
		if p.TimeWindow != nil && p.TimeWindow.ValidUntil != nil && p.TimeWindow.ValidUntil.Before(startOfDay(now)) {
			return PromotionStatusExpired
		}
	}

	return PromotionStatusActive
}

// AppliesTo проверяет применимость акции к кандидату (дата, время начала).
func (p *Promotion) AppliesTo(bookingDate time.Time, start timeutil.TimeOfDay, now time.Time) bool {
	if p.EffectiveStatus(now) != PromotionStatusActive {
		return false
	}

	switch p.Type {
	case PromotionTypeSale:
		if p.Sale == nil {
			return false
		}
		if p.Sale.StartsAt != nil && p.Sale.StartsAt.After(bookingDate) {
			return false
		}
		if p.Sale.EndsAt != nil && p.Sale.EndsAt.Before(bookingDate) {
			return false
		}
		return true

	case PromotionTypeSlot:
		if p.Slot == nil {
			return false
		}
		return SameDate(p.Slot.SlotDate, bookingDate) && p.Slot.SlotStart == start

	case PromotionTypeTime:
		if p.TimeWindow == nil {
			return false
		}
		if p.TimeWindow.StartTime != start {
			return false
		}
		if p.TimeWindow.ValidUntil != nil && p.TimeWindow.ValidUntil.Before(startOfDay(now)) {
			return false
		}
		if p.TimeWindow.Days == nil {
			return true
		}
		weekday := bookingDate.Weekday()
		for _, d := range p.TimeWindow.Days {
			if d == weekday {
				return true
			}
		}
		return false
	}

	return false
}

// BestPromotion выбирает среди применимых акций ту, у которой скидка строго больше.
// Равные скидки разрешаются по меньшему ID: порядок обхода хранилища не гарантирован,
// поэтому ничья фиксируется явно, а не порядком вставки.
func BestPromotion(promotions []Promotion, bookingDate time.Time, start timeutil.TimeOfDay, now time.Time) *Promotion {
	var best *Promotion
	for i := range promotions {
		p := &promotions[i]
		if !p.AppliesTo(bookingDate, start, now) {
			continue
		}
		if best == nil ||
			p.DiscountPercentage > best.DiscountPercentage ||
			(p.DiscountPercentage == best.DiscountPercentage && p.ID < best.ID) {
			best = p
		}
	}
	return best
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type CreatePromotionDTO struct {
	ServiceID          int64         `json:"service_id" binding:"required"`
	Type               PromotionType `json:"type" binding:"required,oneof=sale slot time"`
	DiscountPercentage int           `json:"discount_percentage" binding:"required,min=1,max=99"`

	StartsAt *string `json:"starts_at"`
	EndsAt   *string `json:"ends_at"`

	SlotDate  *string `json:"slot_date"`
	SlotStart *string `json:"slot_start"`
	SlotEnd   *string `json:"slot_end"`

	StartTime  *string `json:"start_time"`
	Days       []int   `json:"days" binding:"omitempty,dive,min=0,max=6"`
	ValidUntil *string `json:"valid_until"`
}

type PromotionFilter struct {
	BeautyPageID *int64           `json:"beauty_page_id"`
	ServiceID    *int64           `json:"service_id"`
	Status       *PromotionStatus `json:"status"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
}
