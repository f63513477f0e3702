package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"icelook/internal/domain"
	"icelook/pkg/timeutil"
)

type PromotionRepo struct {
	db *pgxpool.Pool
}

func NewPromotionRepository(db *pgxpool.Pool) *PromotionRepo {
	return &PromotionRepo{
		db: db,
	}
}

// Полезная нагрузка акции хранится в типоспецифичных nullable-колонках,
// заполненных по типу акции. Времена суток — минуты от полуночи,
// дни недели — int[] в нумерации time.Weekday.
const promotionColumns = `id, beauty_page_id, service_id, type, discount_percentage, original_price_cents, discounted_price_cents, status,
		sale_starts_at, sale_ends_at,
		slot_date, slot_start_minutes, slot_end_minutes,
		time_start_minutes, time_days, time_valid_until,
		created_at, updated_at`

func scanPromotion(row pgx.Row) (*domain.Promotion, error) {
	var (
		promo domain.Promotion

		saleStartsAt *time.Time
		saleEndsAt   *time.Time

		slotDate  *time.Time
		slotStart *int
		slotEnd   *int

		timeStart      *int
		timeDays       []int32
		timeValidUntil *time.Time
	)

	err := row.Scan(
		&promo.ID,
		&promo.BeautyPageID,
		&promo.ServiceID,
		&promo.Type,
		&promo.DiscountPercentage,
		&promo.OriginalPriceCents,
		&promo.DiscountedPriceCents,
		&promo.Status,
		&saleStartsAt,
		&saleEndsAt,
		&slotDate,
		&slotStart,
		&slotEnd,
		&timeStart,
		&timeDays,
		&timeValidUntil,
		&promo.CreatedAt,
		&promo.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	switch promo.Type {
	case domain.PromotionTypeSale:
		promo.Sale = &domain.SalePromotionData{StartsAt: saleStartsAt, EndsAt: saleEndsAt}
	case domain.PromotionTypeSlot:
		if slotDate == nil || slotStart == nil || slotEnd == nil {
			return nil, fmt.Errorf("слотовая акция %d без данных слота", promo.ID)
		}
		promo.Slot = &domain.SlotPromotionData{
			SlotDate:  *slotDate,
			SlotStart: timeutil.TimeOfDay(*slotStart),
			SlotEnd:   timeutil.TimeOfDay(*slotEnd),
		}
	case domain.PromotionTypeTime:
		if timeStart == nil {
			return nil, fmt.Errorf("временная акция %d без времени начала", promo.ID)
		}
		window := &domain.TimePromotionData{
			StartTime:  timeutil.TimeOfDay(*timeStart),
			ValidUntil: timeValidUntil,
		}
		if timeDays != nil {
			days := make([]time.Weekday, 0, len(timeDays))
			for _, d := range timeDays {
				days = append(days, time.Weekday(d))
			}
			window.Days = days
		}
		promo.TimeWindow = window
	}

	return &promo, nil
}

func (r *PromotionRepo) Create(ctx context.Context, promo domain.Promotion) (int64, error) {
	var (
		saleStartsAt *time.Time
		saleEndsAt   *time.Time

		slotDate  *time.Time
		slotStart *int
		slotEnd   *int

		timeStart      *int
		timeDays       []int32
		timeValidUntil *time.Time
	)

	switch promo.Type {
	case domain.PromotionTypeSale:
		if promo.Sale != nil {
			saleStartsAt = promo.Sale.StartsAt
			saleEndsAt = promo.Sale.EndsAt
		}
	case domain.PromotionTypeSlot:
		if promo.Slot != nil {
			d := promo.Slot.SlotDate
			s := int(promo.Slot.SlotStart)
			e := int(promo.Slot.SlotEnd)
			slotDate, slotStart, slotEnd = &d, &s, &e
		}
	case domain.PromotionTypeTime:
		if promo.TimeWindow != nil {
			s := int(promo.TimeWindow.StartTime)
			timeStart = &s
			timeValidUntil = promo.TimeWindow.ValidUntil
			if promo.TimeWindow.Days != nil {
				timeDays = make([]int32, 0, len(promo.TimeWindow.Days))
				for _, d := range promo.TimeWindow.Days {
					timeDays = append(timeDays, int32(d))
				}
			}
		}
	}

	var id int64
	query := `
		INSERT INTO promotions (beauty_page_id, service_id, type, discount_percentage, original_price_cents, discounted_price_cents, status,
			sale_starts_at, sale_ends_at, slot_date, slot_start_minutes, slot_end_minutes, time_start_minutes, time_days, time_valid_until,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		promo.BeautyPageID,
		promo.ServiceID,
		promo.Type,
		promo.DiscountPercentage,
		promo.OriginalPriceCents,
		promo.DiscountedPriceCents,
		promo.Status,
		saleStartsAt,
		saleEndsAt,
		slotDate,
		slotStart,
		slotEnd,
		timeStart,
		timeDays,
		timeValidUntil,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания акции: %w", err)
	}

	return id, nil
}

func (r *PromotionRepo) GetByID(ctx context.Context, id int64) (*domain.Promotion, error) {
	query := `SELECT ` + promotionColumns + ` FROM promotions WHERE id = $1`

	promo, err := scanPromotion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения акции: %w", err)
	}

	return promo, nil
}

func (r *PromotionRepo) List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argId := 1

	if filter.BeautyPageID != nil {
		whereClause += fmt.Sprintf(" AND beauty_page_id = $%d", argId)
		args = append(args, *filter.BeautyPageID)
		argId++
	}

	if filter.ServiceID != nil {
		whereClause += fmt.Sprintf(" AND service_id = $%d", argId)
		args = append(args, *filter.ServiceID)
		argId++
	}

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argId)
		args = append(args, *filter.Status)
		argId++
	}

	query := `SELECT ` + promotionColumns + ` FROM promotions ` + whereClause + ` ORDER BY id`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argId, argId+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса акций: %w", err)
	}
	defer rows.Close()

	var promotions []domain.Promotion
	for rows.Next() {
		promo, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения акции: %w", err)
		}
		promotions = append(promotions, *promo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return promotions, nil
}

func (r *PromotionRepo) ListActiveByService(ctx context.Context, beautyPageID, serviceID int64) ([]domain.Promotion, error) {
	query := `
		SELECT ` + promotionColumns + `
		FROM promotions
		WHERE beauty_page_id = $1 AND service_id = $2 AND status = 'active'
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, beautyPageID, serviceID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса активных акций: %w", err)
	}
	defer rows.Close()

	var promotions []domain.Promotion
	for rows.Next() {
		promo, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения акции: %w", err)
		}
		promotions = append(promotions, *promo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return promotions, nil
}

func (r *PromotionRepo) UpdateStatus(ctx context.Context, id int64, status domain.PromotionStatus) error {
	query := `
		UPDATE promotions
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса акции: %w", err)
	}

	return nil
}

// MarkSlotBooked помечает слотовую акцию занятой. Условие по статусу делает
// повторную пометку no-op, поэтому перенос записи со слота не ломает учёт.
func (r *PromotionRepo) MarkSlotBooked(ctx context.Context, id int64) error {
	query := `
		UPDATE promotions
		SET status = 'booked', updated_at = $1
		WHERE id = $2 AND type = 'slot' AND status = 'active'
	`

	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка пометки акции занятой: %w", err)
	}

	return nil
}
