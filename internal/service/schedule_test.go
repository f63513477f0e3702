package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"icelook/internal/domain"
	"icelook/pkg/timeutil"
)

func TestParseBreaks(t *testing.T) {
	dayRange := timeutil.TimeRange{
		Start: timeutil.TimeOfDay(9 * 60),
		End:   timeutil.TimeOfDay(18 * 60),
	}

	t.Run("пустой список допустим", func(t *testing.T) {
		breaks, err := parseBreaks(nil, dayRange)
		require.NoError(t, err)
		assert.Nil(t, breaks)
	})

	t.Run("перерывы сортируются по началу", func(t *testing.T) {
		breaks, err := parseBreaks([]string{"15:00-15:30", "12:00-13:00"}, dayRange)
		require.NoError(t, err)
		require.Len(t, breaks, 2)
		assert.Equal(t, timeutil.TimeOfDay(720), breaks[0].Start)
		assert.Equal(t, timeutil.TimeOfDay(900), breaks[1].Start)
	})

	t.Run("перерыв вне рабочих часов отклоняется", func(t *testing.T) {
		_, err := parseBreaks([]string{"08:00-09:30"}, dayRange)
		assert.Error(t, err)
	})

	t.Run("пересекающиеся перерывы отклоняются", func(t *testing.T) {
		_, err := parseBreaks([]string{"12:00-13:00", "12:30-14:00"}, dayRange)
		assert.Error(t, err)
	})

	t.Run("вырожденный перерыв отклоняется", func(t *testing.T) {
		_, err := parseBreaks([]string{"13:00-12:00"}, dayRange)
		assert.Error(t, err)
	})
}

func TestFreeSlots(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	newService := func(env *appointmentTestEnv) *ScheduleServiceImpl {
		cfg := testBookingConfig()
		return NewScheduleService(env.days, env.appts, env.pages, nil, cfg, zap.NewNop())
	}

	pageWithInterval := func(interval int) func(ctx context.Context, id int64) (*domain.BeautyPage, error) {
		return func(ctx context.Context, id int64) (*domain.BeautyPage, error) {
			page := testPage()
			page.SlotInterval = interval
			return page, nil
		}
	}

	t.Run("без рабочего дня слотов нет", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = pageWithInterval(60)

		slots, err := newService(env).FreeSlots(ctx, 10, date)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("слоты идут с шагом интервала страницы", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = pageWithInterval(60)
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return &domain.WorkingDay{
				BeautyPageID: beautyPageID,
				Date:         d,
				Range: timeutil.TimeRange{
					Start: timeutil.TimeOfDay(9 * 60),
					End:   timeutil.TimeOfDay(12 * 60),
				},
			}, nil
		}

		slots, err := newService(env).FreeSlots(ctx, 10, date)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slots)
	})

	t.Run("занятое время и перерывы выпадают", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = pageWithInterval(60)
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return &domain.WorkingDay{
				BeautyPageID: beautyPageID,
				Date:         d,
				Range: timeutil.TimeRange{
					Start: timeutil.TimeOfDay(9 * 60),
					End:   timeutil.TimeOfDay(14 * 60),
				},
				Breaks: []timeutil.TimeRange{
					{Start: timeutil.TimeOfDay(12 * 60), End: timeutil.TimeOfDay(13 * 60)},
				},
			}, nil
		}
		env.appts.listByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) ([]domain.Appointment, error) {
			return []domain.Appointment{{
				ID:     1,
				Date:   d,
				Start:  timeutil.TimeOfDay(10 * 60),
				End:    timeutil.TimeOfDay(11 * 60),
				Status: domain.AppointmentStatusConfirmed,
			}}, nil
		}

		slots, err := newService(env).FreeSlots(ctx, 10, date)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "11:00", "13:00"}, slots)
	})

	t.Run("отменённая запись не занимает слот", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = pageWithInterval(60)
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return &domain.WorkingDay{
				BeautyPageID: beautyPageID,
				Date:         d,
				Range: timeutil.TimeRange{
					Start: timeutil.TimeOfDay(9 * 60),
					End:   timeutil.TimeOfDay(11 * 60),
				},
			}, nil
		}
		env.appts.listByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) ([]domain.Appointment, error) {
			return []domain.Appointment{{
				ID:     1,
				Date:   d,
				Start:  timeutil.TimeOfDay(9 * 60),
				End:    timeutil.TimeOfDay(10 * 60),
				Status: domain.AppointmentStatusCancelled,
			}}, nil
		}

		slots, err := newService(env).FreeSlots(ctx, 10, date)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00"}, slots)
	})

	t.Run("нулевой интервал страницы заменяется конфигом", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = pageWithInterval(0)
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return &domain.WorkingDay{
				BeautyPageID: beautyPageID,
				Date:         d,
				Range: timeutil.TimeRange{
					Start: timeutil.TimeOfDay(9 * 60),
					End:   timeutil.TimeOfDay(10 * 60),
				},
			}, nil
		}

		slots, err := newService(env).FreeSlots(ctx, 10, date)
		require.NoError(t, err)
		// интервал из конфига — 15 минут
		assert.Equal(t, []string{"09:00", "09:15", "09:30", "09:45"}, slots)
	})

	t.Run("прошедшие времена сегодня не предлагаются", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = pageWithInterval(60)
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return &domain.WorkingDay{
				BeautyPageID: beautyPageID,
				Date:         d,
				Range: timeutil.TimeRange{
					Start: timeutil.TimeOfDay(9 * 60),
					End:   timeutil.TimeOfDay(14 * 60),
				},
			}, nil
		}

		svc := newService(env)
		svc.now = func() time.Time {
			return time.Date(2026, 9, 14, 10, 30, 0, 0, time.UTC)
		}

		slots, err := svc.FreeSlots(ctx, 10, date)
		require.NoError(t, err)
		assert.Equal(t, []string{"11:00", "12:00", "13:00"}, slots)
	})

	t.Run("на другую дату текущее время не влияет", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = pageWithInterval(60)
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return &domain.WorkingDay{
				BeautyPageID: beautyPageID,
				Date:         d,
				Range: timeutil.TimeRange{
					Start: timeutil.TimeOfDay(9 * 60),
					End:   timeutil.TimeOfDay(12 * 60),
				},
			}, nil
		}

		svc := newService(env)
		svc.now = func() time.Time {
			return time.Date(2026, 9, 13, 23, 0, 0, 0, time.UTC)
		}

		slots, err := svc.FreeSlots(ctx, 10, date)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00", "11:00"}, slots)
	})

	t.Run("слоты подбираются под длительность услуги по умолчанию", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = pageWithInterval(60)
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return &domain.WorkingDay{
				BeautyPageID: beautyPageID,
				Date:         d,
				Range: timeutil.TimeRange{
					Start: timeutil.TimeOfDay(9 * 60),
					End:   timeutil.TimeOfDay(12 * 60),
				},
			}, nil
		}

		cfg := testBookingConfig()
		cfg.DefaultServiceDurationMinutes = 90
		svc := NewScheduleService(env.days, env.appts, env.pages, nil, cfg, zap.NewNop())

		// старт 11:00 не проходит: окно 11:00-12:30 выходит за конец дня
		slots, err := svc.FreeSlots(ctx, 10, date)
		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "10:00"}, slots)
	})
}

func TestCalendarGrid(t *testing.T) {
	ctx := context.Background()

	newService := func(env *appointmentTestEnv) *ScheduleServiceImpl {
		cfg := testBookingConfig()
		cfg.GridStartHour = 8
		cfg.GridEndHour = 22
		return NewScheduleService(env.days, env.appts, env.pages, nil, cfg, zap.NewNop())
	}

	t.Run("шаг привязки берётся из настроек страницы", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = func(ctx context.Context, id int64) (*domain.BeautyPage, error) {
			page := testPage()
			page.SlotInterval = 30
			return page, nil
		}

		grid, err := newService(env).CalendarGrid(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 8, grid.StartHour)
		assert.Equal(t, 22, grid.EndHour)
		assert.Equal(t, 7, grid.DayCount)
		assert.Equal(t, 30, grid.SnapInterval)
	})

	t.Run("нулевой интервал страницы заменяется конфигом", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = func(ctx context.Context, id int64) (*domain.BeautyPage, error) {
			page := testPage()
			page.SlotInterval = 0
			return page, nil
		}

		grid, err := newService(env).CalendarGrid(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 15, grid.SnapInterval)
	})

	t.Run("страница не найдена", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.pages.getByID = func(ctx context.Context, id int64) (*domain.BeautyPage, error) {
			return nil, nil
		}

		_, err := newService(env).CalendarGrid(ctx, 10)
		assert.Error(t, err)
	})
}
