package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	t.Run("пустой выбор", func(t *testing.T) {
		_, err := ComputeTotals(nil)
		assert.ErrorIs(t, err, ErrEmptySelection)
	})

	t.Run("разные валюты", func(t *testing.T) {
		_, err := ComputeTotals([]BookingService{
			{PriceCents: 1000, DurationMinutes: 30, Currency: "USD"},
			{PriceCents: 2000, DurationMinutes: 45, Currency: "EUR"},
		})
		assert.ErrorIs(t, err, ErrMixedCurrencies)
	})

	t.Run("одна услуга", func(t *testing.T) {
		totals, err := ComputeTotals([]BookingService{
			{PriceCents: 1500, DurationMinutes: 60, Currency: "RUB"},
		})
		require.NoError(t, err)
		assert.Equal(t, BookingTotals{PriceCents: 1500, DurationMinutes: 60, Currency: "RUB"}, totals)
	})

	t.Run("сумма по нескольким услугам", func(t *testing.T) {
		totals, err := ComputeTotals([]BookingService{
			{PriceCents: 1000, DurationMinutes: 30, Currency: "USD"},
			{PriceCents: 2000, DurationMinutes: 45, Currency: "USD"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3000), totals.PriceCents)
		assert.Equal(t, 75, totals.DurationMinutes)
		assert.Equal(t, "USD", totals.Currency)
	})
}
