package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"icelook/internal/domain"
)

type PolicyRepo struct {
	db *pgxpool.Pool
}

func NewPolicyRepository(db *pgxpool.Pool) *PolicyRepo {
	return &PolicyRepo{
		db: db,
	}
}

// GetByPage возвращает политику страницы или nil, если мастер её не настраивал.
// Значения по умолчанию подставляет сервисный слой, не репозиторий.
func (r *PolicyRepo) GetByPage(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error) {
	query := `
		SELECT beauty_page_id, is_enabled, notice_hours, max_cancellations, period_days, block_duration_days, no_show_multiplier, updated_at
		FROM cancellation_policies
		WHERE beauty_page_id = $1
	`

	var policy domain.CancellationPolicy
	err := r.db.QueryRow(ctx, query, beautyPageID).Scan(
		&policy.BeautyPageID,
		&policy.IsEnabled,
		&policy.NoticeHours,
		&policy.MaxCancellations,
		&policy.PeriodDays,
		&policy.BlockDurationDays,
		&policy.NoShowMultiplier,
		&policy.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения политики отмен: %w", err)
	}

	return &policy, nil
}

func (r *PolicyRepo) Upsert(ctx context.Context, policy domain.CancellationPolicy) error {
	query := `
		INSERT INTO cancellation_policies (beauty_page_id, is_enabled, notice_hours, max_cancellations, period_days, block_duration_days, no_show_multiplier, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (beauty_page_id) DO UPDATE SET
			is_enabled = EXCLUDED.is_enabled,
			notice_hours = EXCLUDED.notice_hours,
			max_cancellations = EXCLUDED.max_cancellations,
			period_days = EXCLUDED.period_days,
			block_duration_days = EXCLUDED.block_duration_days,
			no_show_multiplier = EXCLUDED.no_show_multiplier,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		policy.BeautyPageID,
		policy.IsEnabled,
		policy.NoticeHours,
		policy.MaxCancellations,
		policy.PeriodDays,
		policy.BlockDurationDays,
		policy.NoShowMultiplier,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения политики отмен: %w", err)
	}

	return nil
}

func (r *PolicyRepo) CreateBlock(ctx context.Context, block domain.BlockedClient) (int64, error) {
	var id int64
	query := `
		INSERT INTO blocked_clients (beauty_page_id, user_id, phone, is_manual, no_show_count, blocked_at, blocked_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		block.BeautyPageID,
		block.UserID,
		block.Phone,
		block.IsManual,
		block.NoShowCount,
		block.BlockedAt,
		block.BlockedUntil,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания блокировки: %w", err)
	}

	return id, nil
}

func (r *PolicyRepo) FindActiveBlock(ctx context.Context, beautyPageID int64, userID *int64, phone string, now time.Time) (*domain.BlockedClient, error) {
	whereClient := "phone = $3 AND phone <> ''"
	args := []interface{}{beautyPageID, now, phone}
	if userID != nil {
		whereClient = "(user_id = $3 OR (phone = $4 AND phone <> ''))"
		args = []interface{}{beautyPageID, now, *userID, phone}
	}

	query := `
		SELECT id, beauty_page_id, user_id, phone, is_manual, no_show_count, blocked_at, blocked_until
		FROM blocked_clients
		WHERE beauty_page_id = $1
			AND (blocked_until IS NULL OR blocked_until > $2)
			AND ` + whereClient + `
		ORDER BY blocked_at DESC
		LIMIT 1
	`

	var block domain.BlockedClient
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&block.ID,
		&block.BeautyPageID,
		&block.UserID,
		&block.Phone,
		&block.IsManual,
		&block.NoShowCount,
		&block.BlockedAt,
		&block.BlockedUntil,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска блокировки: %w", err)
	}

	return &block, nil
}

func (r *PolicyRepo) ListBlocks(ctx context.Context, beautyPageID int64) ([]domain.BlockedClient, error) {
	query := `
		SELECT id, beauty_page_id, user_id, phone, is_manual, no_show_count, blocked_at, blocked_until
		FROM blocked_clients
		WHERE beauty_page_id = $1
		ORDER BY blocked_at DESC
	`

	rows, err := r.db.Query(ctx, query, beautyPageID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса блокировок: %w", err)
	}
	defer rows.Close()

	var blocks []domain.BlockedClient
	for rows.Next() {
		var block domain.BlockedClient
		err := rows.Scan(
			&block.ID,
			&block.BeautyPageID,
			&block.UserID,
			&block.Phone,
			&block.IsManual,
			&block.NoShowCount,
			&block.BlockedAt,
			&block.BlockedUntil,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения блокировки: %w", err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return blocks, nil
}

func (r *PolicyRepo) DeleteBlock(ctx context.Context, id int64) error {
	query := `DELETE FROM blocked_clients WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка снятия блокировки: %w", err)
	}

	return nil
}
