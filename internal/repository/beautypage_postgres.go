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

type BeautyPageRepo struct {
	db *pgxpool.Pool
}

func NewBeautyPageRepository(db *pgxpool.Pool) *BeautyPageRepo {
	return &BeautyPageRepo{
		db: db,
	}
}

const beautyPageColumns = `id, user_id, handle, display_name, description, address, timezone, slot_interval, currency, photo_url, is_published, created_at, updated_at`

func (r *BeautyPageRepo) Create(ctx context.Context, userID int64, dto domain.CreateBeautyPageDTO, slotInterval int) (int64, error) {
	var id int64
	query := `
		INSERT INTO beauty_pages (user_id, handle, display_name, description, address, timezone, slot_interval, currency, photo_url, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, '', false, $9, $9)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		userID,
		dto.Handle,
		dto.DisplayName,
		dto.Description,
		dto.Address,
		dto.Timezone,
		slotInterval,
		dto.Currency,
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания страницы: %w", err)
	}

	return id, nil
}

func (r *BeautyPageRepo) GetByID(ctx context.Context, id int64) (*domain.BeautyPage, error) {
	query := `SELECT ` + beautyPageColumns + ` FROM beauty_pages WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *BeautyPageRepo) GetByUserID(ctx context.Context, userID int64) (*domain.BeautyPage, error) {
	query := `SELECT ` + beautyPageColumns + ` FROM beauty_pages WHERE user_id = $1`
	return r.scanOne(ctx, query, userID)
}

func (r *BeautyPageRepo) GetByHandle(ctx context.Context, handle string) (*domain.BeautyPage, error) {
	query := `SELECT ` + beautyPageColumns + ` FROM beauty_pages WHERE handle = $1`
	return r.scanOne(ctx, query, handle)
}

func (r *BeautyPageRepo) scanOne(ctx context.Context, query string, arg interface{}) (*domain.BeautyPage, error) {
	var page domain.BeautyPage
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&page.ID,
		&page.UserID,
		&page.Handle,
		&page.DisplayName,
		&page.Description,
		&page.Address,
		&page.Timezone,
		&page.SlotInterval,
		&page.Currency,
		&page.PhotoURL,
		&page.IsPublished,
		&page.CreatedAt,
		&page.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения страницы: %w", err)
	}

	return &page, nil
}

func (r *BeautyPageRepo) Update(ctx context.Context, id int64, dto domain.UpdateBeautyPageDTO) error {
	setValues := []string{}
	args := []interface{}{id}
	argId := 2

	if dto.DisplayName != nil {
		setValues = append(setValues, fmt.Sprintf("display_name = $%d", argId))
		args = append(args, *dto.DisplayName)
		argId++
	}

	if dto.Description != nil {
		setValues = append(setValues, fmt.Sprintf("description = $%d", argId))
		args = append(args, *dto.Description)
		argId++
	}

	if dto.Address != nil {
		setValues = append(setValues, fmt.Sprintf("address = $%d", argId))
		args = append(args, *dto.Address)
		argId++
	}

	if dto.Timezone != nil {
		setValues = append(setValues, fmt.Sprintf("timezone = $%d", argId))
		args = append(args, *dto.Timezone)
		argId++
	}

	if dto.SlotInterval != nil {
		setValues = append(setValues, fmt.Sprintf("slot_interval = $%d", argId))
		args = append(args, *dto.SlotInterval)
		argId++
	}

	if dto.Currency != nil {
		setValues = append(setValues, fmt.Sprintf("currency = $%d", argId))
		args = append(args, *dto.Currency)
		argId++
	}

	if dto.IsPublished != nil {
		setValues = append(setValues, fmt.Sprintf("is_published = $%d", argId))
		args = append(args, *dto.IsPublished)
		argId++
	}

	if len(setValues) == 0 {
		return nil
	}

	setValues = append(setValues, fmt.Sprintf("updated_at = $%d", argId))
	args = append(args, time.Now())

	setQuery := "UPDATE beauty_pages SET " + joinWithComma(setValues) + " WHERE id = $1"

	_, err := r.db.Exec(ctx, setQuery, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления страницы: %w", err)
	}

	return nil
}

func (r *BeautyPageRepo) UpdatePhoto(ctx context.Context, id int64, photoURL string) error {
	query := `
		UPDATE beauty_pages
		SET photo_url = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(ctx, query, photoURL, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка обновления фото страницы: %w", err)
	}

	return nil
}

func (r *BeautyPageRepo) Delete(ctx context.Context, id int64) error {
	query := `
		UPDATE beauty_pages
		SET is_published = false, updated_at = $1
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("ошибка удаления страницы: %w", err)
	}

	return nil
}
