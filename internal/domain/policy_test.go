package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanCancel(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	policy := CancellationPolicy{IsEnabled: true, NoticeHours: 24}

	t.Run("за 25 часов можно", func(t *testing.T) {
		assert.True(t, policy.CanCancel(now.Add(25*time.Hour), now))
	})

	t.Run("ровно за 24 часа можно", func(t *testing.T) {
		assert.True(t, policy.CanCancel(now.Add(24*time.Hour), now))
	})

	t.Run("за 23 часа нельзя", func(t *testing.T) {
		assert.False(t, policy.CanCancel(now.Add(23*time.Hour), now))
	})

	t.Run("выключенная политика не ограничивает", func(t *testing.T) {
		off := CancellationPolicy{IsEnabled: false, NoticeHours: 24}
		assert.True(t, off.CanCancel(now.Add(time.Hour), now))
	})
}

func TestEvaluateBlockTrigger(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	policy := CancellationPolicy{
		IsEnabled:         true,
		MaxCancellations:  3,
		PeriodDays:        30,
		BlockDurationDays: 14,
		NoShowMultiplier:  2,
	}

	t.Run("две отмены и неявка дают вес 4 и блокировку", func(t *testing.T) {
		history := []CancellationRecord{
			{OccurredAt: now.AddDate(0, 0, -5)},
			{OccurredAt: now.AddDate(0, 0, -10)},
			{OccurredAt: now.AddDate(0, 0, -15), WasNoShow: true},
		}

		decision := EvaluateBlockTrigger(history, policy, now)
		assert.True(t, decision.ShouldBlock)
		assert.Equal(t, 4.0, decision.WeightedCount)
		require.NotNil(t, decision.BlockedUntil)
		assert.Equal(t, now.AddDate(0, 0, 14), *decision.BlockedUntil)
	})

	t.Run("отмены вне окна не считаются", func(t *testing.T) {
		history := []CancellationRecord{
			{OccurredAt: now.AddDate(0, 0, -40)},
			{OccurredAt: now.AddDate(0, 0, -35), WasNoShow: true},
			{OccurredAt: now.AddDate(0, 0, -5)},
		}

		decision := EvaluateBlockTrigger(history, policy, now)
		assert.False(t, decision.ShouldBlock)
		assert.Equal(t, 1.0, decision.WeightedCount)
	})

	t.Run("дробный вес сравнивается без округления", func(t *testing.T) {
		p := policy
		p.NoShowMultiplier = 1.5

		history := []CancellationRecord{
			{OccurredAt: now.AddDate(0, 0, -1), WasNoShow: true},
			{OccurredAt: now.AddDate(0, 0, -2), WasNoShow: true},
		}

		decision := EvaluateBlockTrigger(history, p, now)
		// 1.5 + 1.5 = 3.0 >= 3 — порог достигнут
		assert.True(t, decision.ShouldBlock)
		assert.Equal(t, 3.0, decision.WeightedCount)
	})

	t.Run("выключенная политика не блокирует", func(t *testing.T) {
		p := policy
		p.IsEnabled = false

		history := []CancellationRecord{
			{OccurredAt: now.AddDate(0, 0, -1)},
			{OccurredAt: now.AddDate(0, 0, -2)},
			{OccurredAt: now.AddDate(0, 0, -3)},
			{OccurredAt: now.AddDate(0, 0, -4)},
		}

		assert.False(t, EvaluateBlockTrigger(history, p, now).ShouldBlock)
	})

	t.Run("нулевая длительность — бессрочная блокировка", func(t *testing.T) {
		p := policy
		p.BlockDurationDays = 0

		history := []CancellationRecord{
			{OccurredAt: now.AddDate(0, 0, -1)},
			{OccurredAt: now.AddDate(0, 0, -2)},
			{OccurredAt: now.AddDate(0, 0, -3)},
		}

		decision := EvaluateBlockTrigger(history, p, now)
		assert.True(t, decision.ShouldBlock)
		assert.Nil(t, decision.BlockedUntil)
	})
}

func TestBlockedClientIsActiveAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	t.Run("бессрочная блокировка действует всегда", func(t *testing.T) {
		b := BlockedClient{BlockedUntil: nil}
		assert.True(t, b.IsActiveAt(now))
		assert.True(t, b.IsActiveAt(now.AddDate(10, 0, 0)))
	})

	t.Run("временная блокировка истекает", func(t *testing.T) {
		until := now.AddDate(0, 0, 7)
		b := BlockedClient{BlockedUntil: &until}
		assert.True(t, b.IsActiveAt(now))
		assert.False(t, b.IsActiveAt(until))
		assert.False(t, b.IsActiveAt(until.Add(time.Hour)))
	})
}
