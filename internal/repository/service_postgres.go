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

type ServiceRepo struct {
	db *pgxpool.Pool
}

func NewServiceRepository(db *pgxpool.Pool) *ServiceRepo {
	return &ServiceRepo{
		db: db,
	}
}

const serviceColumns = `id, beauty_page_id, name, price_cents, duration_minutes, currency, is_active, created_at, updated_at`

func (r *ServiceRepo) Create(ctx context.Context, beautyPageID int64, dto domain.CreateServiceDTO) (int64, error) {
	var id int64
	query := `
		INSERT INTO services (beauty_page_id, name, price_cents, duration_minutes, currency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, true, $6, $6)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		beautyPageID,
		dto.Name,
		dto.PriceCents,
		dto.DurationMinutes,
		dto.Currency,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания услуги: %w", err)
	}

	return id, nil
}

func (r *ServiceRepo) GetByID(ctx context.Context, id int64) (*domain.BookingService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	var svc domain.BookingService
	err := r.db.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.BeautyPageID,
		&svc.Name,
		&svc.PriceCents,
		&svc.DurationMinutes,
		&svc.Currency,
		&svc.IsActive,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения услуги: %w", err)
	}

	return &svc, nil
}

// GetByIDs возвращает активные услуги страницы в порядке переданных идентификаторов.
// Чужие и неактивные услуги молча отбрасываются, полноту проверяет вызывающий.
func (r *ServiceRepo) GetByIDs(ctx context.Context, beautyPageID int64, ids []int64) ([]domain.BookingService, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + serviceColumns + `
		FROM services
		WHERE beauty_page_id = $1 AND id = ANY($2) AND is_active = true
	`

	rows, err := r.db.Query(ctx, query, beautyPageID, ids)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса услуг: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]domain.BookingService, len(ids))
	for rows.Next() {
		var svc domain.BookingService
		err := rows.Scan(
			&svc.ID,
			&svc.BeautyPageID,
			&svc.Name,
			&svc.PriceCents,
			&svc.DurationMinutes,
			&svc.Currency,
			&svc.IsActive,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения услуги: %w", err)
		}
		byID[svc.ID] = svc
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	services := make([]domain.BookingService, 0, len(byID))
	for _, id := range ids {
		if svc, ok := byID[id]; ok {
			services = append(services, svc)
		}
	}

	return services, nil
}

func (r *ServiceRepo) ListByPage(ctx context.Context, beautyPageID int64, onlyActive bool) ([]domain.BookingService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE beauty_page_id = $1`
	if onlyActive {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(ctx, query, beautyPageID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса списка услуг: %w", err)
	}
	defer rows.Close()

	var services []domain.BookingService
	for rows.Next() {
		var svc domain.BookingService
		err := rows.Scan(
			&svc.ID,
			&svc.BeautyPageID,
			&svc.Name,
			&svc.PriceCents,
			&svc.DurationMinutes,
			&svc.Currency,
			&svc.IsActive,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения услуги: %w", err)
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return services, nil
}

func (r *ServiceRepo) Update(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error {
	setValues := []string{}
	args := []interface{}{id}
	argId := 2

	if dto.Name != nil {
		setValues = append(setValues, fmt.Sprintf("name = $%d", argId))
		args = append(args, *dto.Name)
		argId++
	}

	if dto.PriceCents != nil {
		setValues = append(setValues, fmt.Sprintf("price_cents = $%d", argId))
		args = append(args, *dto.PriceCents)
		argId++
	}

	if dto.DurationMinutes != nil {
		setValues = append(setValues, fmt.Sprintf("duration_minutes = $%d", argId))
		args = append(args, *dto.DurationMinutes)
		argId++
	}

	if dto.Currency != nil {
		setValues = append(setValues, fmt.Sprintf("currency = $%d", argId))
		args = append(args, *dto.Currency)
		argId++
	}

	if dto.IsActive != nil {
		setValues = append(setValues, fmt.Sprintf("is_active = $%d", argId))
		args = append(args, *dto.IsActive)
		argId++
	}

	if len(setValues) == 0 {
		return nil
	}

	setValues = append(setValues, fmt.Sprintf("updated_at = $%d", argId))
	args = append(args, time.Now())

	setQuery := "UPDATE services SET " + joinWithComma(setValues) + " WHERE id = $1"

	_, err := r.db.Exec(ctx, setQuery, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления услуги: %w", err)
	}

	return nil
}

func (r *ServiceRepo) Delete(ctx context.Context, id int64) error {
	query := `
		UPDATE services
		SET is_active = false, updated_at = $1
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка удаления услуги: %w", err)
	}

	return nil
}
