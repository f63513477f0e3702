package domain

// BookingTotals — итог по выбранным услугам одной записи.
type BookingTotals struct {
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
	Currency        string `json:"currency"`
}

// ComputeTotals суммирует цену и длительность по выбранным услугам.
// Пустой выбор и услуги в разных валютах — ошибка: итог в нескольких валютах
// не поддерживается осознанно, а не сводится молча к одной из них.
func ComputeTotals(services []BookingService) (BookingTotals, error) {
	if len(services) == 0 {
		return BookingTotals{}, ErrEmptySelection
	}

	totals := BookingTotals{Currency: services[0].Currency}
	for _, svc := range services {
		if svc.Currency != totals.Currency {
			return BookingTotals{}, ErrMixedCurrencies
		}
		totals.PriceCents += svc.PriceCents
		totals.DurationMinutes += svc.DurationMinutes
	}

	return totals, nil
}
