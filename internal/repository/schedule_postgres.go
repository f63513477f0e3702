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

type WorkingDayRepo struct {
	db *pgxpool.Pool
}

func NewWorkingDayRepository(db *pgxpool.Pool) *WorkingDayRepo {
	return &WorkingDayRepo{
		db: db,
	}
}

// Перерывы хранятся как text[] в формате "HH:MM-HH:MM" и разбираются
// на границе репозитория. Невалидная строка в базе — ошибка чтения, не паника.
func encodeBreaks(breaks []timeutil.TimeRange) []string {
	encoded := make([]string, 0, len(breaks))
	for _, br := range breaks {
		encoded = append(encoded, br.String())
	}
	return encoded
}

func decodeBreaks(raw []string) ([]timeutil.TimeRange, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	breaks := make([]timeutil.TimeRange, 0, len(raw))
	for _, s := range raw {
		br, err := timeutil.ParseRange(s)
		if err != nil {
			return nil, fmt.Errorf("некорректный перерыв %q в базе: %w", s, err)
		}
		breaks = append(breaks, br)
	}
	return breaks, nil
}

func (r *WorkingDayRepo) Create(ctx context.Context, day domain.WorkingDay) (int64, error) {
	var id int64
	query := `
		INSERT INTO working_days (beauty_page_id, date, start_minutes, end_minutes, breaks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id
	`

	err := r.db.QueryRow(
		ctx,
		query,
		day.BeautyPageID,
		day.Date,
		int(day.Range.Start),
		int(day.Range.End),
		encodeBreaks(day.Breaks),
		time.Now(),
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("ошибка создания рабочего дня: %w", err)
	}

	return id, nil
}

func scanWorkingDay(row pgx.Row) (*domain.WorkingDay, error) {
	var (
		day          domain.WorkingDay
		startMinutes int
		endMinutes   int
		rawBreaks    []string
	)

	err := row.Scan(
		&day.ID,
		&day.BeautyPageID,
		&day.Date,
		&startMinutes,
		&endMinutes,
		&rawBreaks,
		&day.CreatedAt,
		&day.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	day.Range = timeutil.TimeRange{Start: timeutil.TimeOfDay(startMinutes), End: timeutil.TimeOfDay(endMinutes)}
	day.Breaks, err = decodeBreaks(rawBreaks)
	if err != nil {
		return nil, err
	}

	return &day, nil
}

const workingDayColumns = `id, beauty_page_id, date, start_minutes, end_minutes, breaks, created_at, updated_at`

func (r *WorkingDayRepo) GetByID(ctx context.Context, id int64) (*domain.WorkingDay, error) {
	query := `SELECT ` + workingDayColumns + ` FROM working_days WHERE id = $1`

	day, err := scanWorkingDay(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения рабочего дня: %w", err)
	}

	return day, nil
}

func (r *WorkingDayRepo) GetByPageAndDate(ctx context.Context, beautyPageID int64, date time.Time) (*domain.WorkingDay, error) {
	query := `SELECT ` + workingDayColumns + ` FROM working_days WHERE beauty_page_id = $1 AND date = $2`

	day, err := scanWorkingDay(r.db.QueryRow(ctx, query, beautyPageID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения рабочего дня: %w", err)
	}

	return day, nil
}

func (r *WorkingDayRepo) List(ctx context.Context, filter domain.WorkingDayFilter) ([]domain.WorkingDay, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argId := 1

	if filter.BeautyPageID != nil {
		whereClause += fmt.Sprintf(" AND beauty_page_id = $%d", argId)
		args = append(args, *filter.BeautyPageID)
		argId++
	}

	if filter.StartDate != nil {
		whereClause += fmt.Sprintf(" AND date >= $%d", argId)
		args = append(args, *filter.StartDate)
		argId++
	}

	if filter.EndDate != nil {
		whereClause += fmt.Sprintf(" AND date <= $%d", argId)
		args = append(args, *filter.EndDate)
		argId++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM working_days ` + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта рабочих дней: %w", err)
	}

	query := `SELECT ` + workingDayColumns + ` FROM working_days ` + whereClause + ` ORDER BY date`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argId, argId+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка запроса рабочих дней: %w", err)
	}
	defer rows.Close()

	var days []domain.WorkingDay
	for rows.Next() {
		day, err := scanWorkingDay(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка чтения рабочего дня: %w", err)
		}
		days = append(days, *day)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return days, total, nil
}

func (r *WorkingDayRepo) Update(ctx context.Context, day domain.WorkingDay) error {
	query := `
		UPDATE working_days
		SET start_minutes = $1, end_minutes = $2, breaks = $3, updated_at = $4
		WHERE id = $5
	`

	_, err := r.db.Exec(ctx, query,
		int(day.Range.Start),
		int(day.Range.End),
		encodeBreaks(day.Breaks),
		time.Now(),
		day.ID,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления рабочего дня: %w", err)
	}

	return nil
}

func (r *WorkingDayRepo) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM working_days WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления рабочего дня: %w", err)
	}

	return nil
}
