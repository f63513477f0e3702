package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"icelook/internal/domain"
	"icelook/pkg/database"
	"icelook/pkg/timeutil"
)

type AppointmentRepo struct {
	db *pgxpool.Pool
}

func NewAppointmentRepository(db *pgxpool.Pool) *AppointmentRepo {
	return &AppointmentRepo{
		db: db,
	}
}

const appointmentColumns = `id, beauty_page_id, date, start_minutes, end_minutes, status,
		client_id, client_name, client_phone, client_notes,
		service_id, service_name, service_price_cents, service_duration_minutes, service_currency,
		cancelled_by, cancellation_reason, created_at, updated_at`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var (
		appt         domain.Appointment
		startMinutes int
		endMinutes   int
		cancelledBy  *string
		reason       *string
	)

	err := row.Scan(
		&appt.ID,
		&appt.BeautyPageID,
		&appt.Date,
		&startMinutes,
		&endMinutes,
		&appt.Status,
		&appt.ClientID,
		&appt.ClientName,
		&appt.ClientPhone,
		&appt.ClientNotes,
		&appt.ServiceID,
		&appt.ServiceName,
		&appt.ServicePriceCents,
		&appt.ServiceDurationMinutes,
		&appt.ServiceCurrency,
		&cancelledBy,
		&reason,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.Start = timeutil.TimeOfDay(startMinutes)
	appt.End = timeutil.TimeOfDay(endMinutes)
	if cancelledBy != nil {
		by := domain.Actor(*cancelledBy)
		appt.CancelledBy = &by
	}
	if reason != nil {
		r := domain.CancellationReason(*reason)
		appt.CancellationReason = &r
	}

	return &appt, nil
}

// lockDayAppointments читает активные записи дня с блокировкой строк.
// Конкурентные создатели на ту же страницу и дату сериализуются на этих строках.
func lockDayAppointments(ctx context.Context, tx pgx.Tx, beautyPageID int64, date time.Time) ([]domain.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE beauty_page_id = $1 AND date = $2 AND status NOT IN ('cancelled', 'no_show')
		ORDER BY id
		FOR UPDATE
	`

	rows, err := tx.Query(ctx, query, beautyPageID, date)
	if err != nil {
		return nil, fmt.Errorf("ошибка блокировки записей дня: %w", err)
	}
	defer rows.Close()

	var appointments []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения записи: %w", err)
		}
		appointments = append(appointments, *appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return appointments, nil
}

// CreateValidated повторяет проверку размещения на заблокированном снимке
// записей дня и вставляет запись в той же транзакции. Конфликт на этом этапе
// означает проигранную гонку за слот: предварительная проверка уже прошла.
func (r *AppointmentRepo) CreateValidated(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) (int64, error) {
	var id int64

	err := database.WithinTx(ctx, r.db, func(tx pgx.Tx) error {
		existing, err := lockDayAppointments(ctx, tx, appt.BeautyPageID, appt.Date)
		if err != nil {
			return err
		}

		result := domain.ValidatePlacement(appt.Date, appt.Start, appt.End, existing, workingDays, nil)
		if !result.Valid {
			if errors.Is(result.Reason, domain.ErrTimeConflict) {
				return domain.ErrSlotTaken
			}
			return result.Reason
		}

		query := `
			INSERT INTO appointments (beauty_page_id, date, start_minutes, end_minutes, status,
				client_id, client_name, client_phone, client_notes,
				service_id, service_name, service_price_cents, service_duration_minutes, service_currency,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
			RETURNING id
		`

		err = tx.QueryRow(ctx, query,
			appt.BeautyPageID,
			appt.Date,
			int(appt.Start),
			int(appt.End),
			appt.Status,
			appt.ClientID,
			appt.ClientName,
			appt.ClientPhone,
			appt.ClientNotes,
			appt.ServiceID,
			appt.ServiceName,
			appt.ServicePriceCents,
			appt.ServiceDurationMinutes,
			appt.ServiceCurrency,
			time.Now(),
		).Scan(&id)

		if err != nil {
			return fmt.Errorf("ошибка создания записи: %w", err)
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return id, nil
}

// UpdateTimesValidated переносит запись с той же транзакционной проверкой,
// что и создание. Сама запись исключается из поиска конфликтов.
func (r *AppointmentRepo) UpdateTimesValidated(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) error {
	return database.WithinTx(ctx, r.db, func(tx pgx.Tx) error {
		existing, err := lockDayAppointments(ctx, tx, appt.BeautyPageID, appt.Date)
		if err != nil {
			return err
		}

		excludeID := appt.ID
		result := domain.ValidatePlacement(appt.Date, appt.Start, appt.End, existing, workingDays, &excludeID)
		if !result.Valid {
			if errors.Is(result.Reason, domain.ErrTimeConflict) {
				return domain.ErrSlotTaken
			}
			return result.Reason
		}

		query := `
			UPDATE appointments
			SET date = $1, start_minutes = $2, end_minutes = $3, updated_at = $4
			WHERE id = $5
		`

		_, err = tx.Exec(ctx, query,
			appt.Date,
			int(appt.Start),
			int(appt.End),
			time.Now(),
			appt.ID,
		)
		if err != nil {
			return fmt.Errorf("ошибка переноса записи: %w", err)
		}

		return nil
	})
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения записи: %w", err)
	}

	return appt, nil
}

func (r *AppointmentRepo) ListByPageAndDate(ctx context.Context, beautyPageID int64, date time.Time) ([]domain.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE beauty_page_id = $1 AND date = $2
		ORDER BY start_minutes
	`

	rows, err := r.db.Query(ctx, query, beautyPageID, date)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса записей дня: %w", err)
	}
	defer rows.Close()

	var appointments []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения записи: %w", err)
		}
		appointments = append(appointments, *appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return appointments, nil
}

func (r *AppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argId := 1

	if filter.BeautyPageID != nil {
		whereClause += fmt.Sprintf(" AND beauty_page_id = $%d", argId)
		args = append(args, *filter.BeautyPageID)
		argId++
	}

	if filter.ClientID != nil {
		whereClause += fmt.Sprintf(" AND client_id = $%d", argId)
		args = append(args, *filter.ClientID)
		argId++
	}

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND status = $%d", argId)
		args = append(args, *filter.Status)
		argId++
	}

	if filter.Date != nil {
		whereClause += fmt.Sprintf(" AND date = $%d", argId)
		args = append(args, *filter.Date)
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
	countQuery := `SELECT COUNT(*) FROM appointments ` + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта записей: %w", err)
	}

	query := `SELECT ` + appointmentColumns + ` FROM appointments ` + whereClause + ` ORDER BY date, start_minutes`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argId, argId+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка запроса записей: %w", err)
	}
	defer rows.Close()

	var appointments []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка чтения записи: %w", err)
		}
		appointments = append(appointments, *appt)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return appointments, total, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, appt domain.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, cancelled_by = $2, cancellation_reason = $3, updated_at = $4
		WHERE id = $5
	`

	var cancelledBy, reason *string
	if appt.CancelledBy != nil {
		by := string(*appt.CancelledBy)
		cancelledBy = &by
	}
	if appt.CancellationReason != nil {
		rs := string(*appt.CancellationReason)
		reason = &rs
	}

	_, err := r.db.Exec(ctx, query, appt.Status, cancelledBy, reason, time.Now(), appt.ID)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса записи: %w", err)
	}

	return nil
}

// CancellationHistory — отмены клиентом и неявки клиента на странице начиная
// с момента since. Моментом события считается updated_at записи.
func (r *AppointmentRepo) CancellationHistory(ctx context.Context, beautyPageID int64, clientID *int64, phone string, since time.Time) ([]domain.CancellationRecord, error) {
	whereClient := "client_phone = $3"
	args := []interface{}{beautyPageID, since, phone}
	if clientID != nil {
		whereClient = "(client_id = $3 OR client_phone = $4)"
		args = []interface{}{beautyPageID, since, *clientID, phone}
	}

	query := `
		SELECT updated_at, status = 'no_show'
		FROM appointments
		WHERE beauty_page_id = $1
			AND updated_at >= $2
			AND ` + whereClient + `
			AND (status = 'no_show' OR (status = 'cancelled' AND cancelled_by = 'client'))
		ORDER BY updated_at
	`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса истории отмен: %w", err)
	}
	defer rows.Close()

	var history []domain.CancellationRecord
	for rows.Next() {
		var rec domain.CancellationRecord
		if err := rows.Scan(&rec.OccurredAt, &rec.WasNoShow); err != nil {
			return nil, fmt.Errorf("ошибка чтения истории отмен: %w", err)
		}
		history = append(history, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обработки результатов: %w", err)
	}

	return history, nil
}
