package domain

import (
	"time"
)

// CancellationPolicy — правила отмены для страницы мастера.
type CancellationPolicy struct {
	BeautyPageID      int64     `json:"beauty_page_id"`
	IsEnabled         bool      `json:"is_enabled"`
	NoticeHours       int       `json:"notice_hours"`
	MaxCancellations  int       `json:"max_cancellations"`
	PeriodDays        int       `json:"period_days"`
	BlockDurationDays int       `json:"block_duration_days"`
	NoShowMultiplier  float64   `json:"no_show_multiplier"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CanCancel проверяет, что до начала записи осталось не меньше окна уведомления.
// Проверка независима от допустимости перехода статуса: обе должны пройти.
func (p *CancellationPolicy) CanCancel(appointmentStart, now time.Time) bool {
	if !p.IsEnabled || p.NoticeHours <= 0 {
		return true
	}
	return appointmentStart.Sub(now) >= time.Duration(p.NoticeHours)*time.Hour
}

// CancellationRecord — одна отмена или неявка клиента в истории страницы.
type CancellationRecord struct {
	OccurredAt time.Time `json:"occurred_at"`
	WasNoShow  bool      `json:"was_no_show"`
}

// BlockDecision — решение движка о блокировке. Это не ошибка, а данные,
// по которым вызывающий создаёт запись BlockedClient.
type BlockDecision struct {
	ShouldBlock   bool       `json:"should_block"`
	WeightedCount float64    `json:"weighted_count"`
	BlockedUntil  *time.Time `json:"blocked_until,omitempty"`
}

// EvaluateBlockTrigger считает взвешенное число отмен клиента в скользящем окне
// PeriodDays: неявка весит NoShowMultiplier отмен. Взвешенная сумма сравнивается
// с порогом без округления — дробная сумма блокирует, как только она достигает порога.
func EvaluateBlockTrigger(history []CancellationRecord, policy CancellationPolicy, now time.Time) BlockDecision {
	if !policy.IsEnabled || policy.MaxCancellations <= 0 {
		return BlockDecision{}
	}

	windowStart := now.AddDate(0, 0, -policy.PeriodDays)

	var weighted float64
	for _, rec := range history {
		if rec.OccurredAt.Before(windowStart) {
			continue
		}
		if rec.WasNoShow {
			weighted += policy.NoShowMultiplier
		} else {
			weighted++
		}
	}

	decision := BlockDecision{WeightedCount: weighted}
	if weighted >= float64(policy.MaxCancellations) {
		decision.ShouldBlock = true
		if policy.BlockDurationDays > 0 {
			until := now.AddDate(0, 0, policy.BlockDurationDays)
			decision.BlockedUntil = &until
		}
	}

	return decision
}

// BlockedClient — блокировка клиента на странице мастера.
// Клиент идентифицируется userID для авторизованных или телефоном для гостей.
// BlockedUntil == nil означает бессрочную блокировку.
type BlockedClient struct {
	ID           int64      `json:"id"`
	BeautyPageID int64      `json:"beauty_page_id"`
	UserID       *int64     `json:"user_id,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	IsManual     bool       `json:"is_manual"`
	NoShowCount  int        `json:"no_show_count"`
	BlockedAt    time.Time  `json:"blocked_at"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
}

// IsActiveAt — действует ли блокировка в момент now.
func (b *BlockedClient) IsActiveAt(now time.Time) bool {
	return b.BlockedUntil == nil || now.Before(*b.BlockedUntil)
}

type UpdateCancellationPolicyDTO struct {
	IsEnabled         *bool    `json:"is_enabled"`
	NoticeHours       *int     `json:"notice_hours" binding:"omitempty,min=0,max=168"`
	MaxCancellations  *int     `json:"max_cancellations" binding:"omitempty,min=1"`
	PeriodDays        *int     `json:"period_days" binding:"omitempty,min=1,max=365"`
	BlockDurationDays *int     `json:"block_duration_days" binding:"omitempty,min=0,max=365"`
	NoShowMultiplier  *float64 `json:"no_show_multiplier" binding:"omitempty,min=1"`
}

type BlockClientDTO struct {
	UserID       *int64 `json:"user_id"`
	Phone        string `json:"phone"`
	DurationDays *int   `json:"duration_days" binding:"omitempty,min=1"`
}
