package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"icelook/config"
	"icelook/internal/domain"
	"icelook/internal/repository"
	"icelook/pkg/cache"
	"icelook/pkg/timeutil"
)

const dateLayout = "2006-01-02"

type ScheduleServiceImpl struct {
	repo       repository.WorkingDayRepository
	apptRepo   repository.AppointmentRepository
	pageRepo   repository.BeautyPageRepository
	cache      *cache.Cache
	bookingCfg config.BookingConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewScheduleService(
	repo repository.WorkingDayRepository,
	apptRepo repository.AppointmentRepository,
	pageRepo repository.BeautyPageRepository,
	c *cache.Cache,
	bookingCfg config.BookingConfig,
	logger *zap.Logger,
) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{
		repo:       repo,
		apptRepo:   apptRepo,
		pageRepo:   pageRepo,
		cache:      c,
		bookingCfg: bookingCfg,
		logger:     logger,
		now:        time.Now,
	}
}

// parseBreaks разбирает перерывы из DTO и проверяет, что каждый лежит внутри
// рабочего интервала и перерывы не пересекаются между собой.
func parseBreaks(raw []string, dayRange timeutil.TimeRange) ([]timeutil.TimeRange, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	breaks := make([]timeutil.TimeRange, 0, len(raw))
	for _, s := range raw {
		br, err := timeutil.ParseRange(s)
		if err != nil {
			return nil, errors.New("некорректный формат перерыва, ожидается HH:MM-HH:MM")
		}
		if !br.Valid() {
			return nil, errors.New("перерыв должен начинаться раньше, чем заканчиваться")
		}
		if br.Start < dayRange.Start || br.End > dayRange.End {
			return nil, errors.New("перерыв выходит за пределы рабочих часов")
		}
		breaks = append(breaks, br)
	}

	sort.Slice(breaks, func(i, j int) bool { return breaks[i].Start < breaks[j].Start })
	for i := 1; i < len(breaks); i++ {
		if breaks[i].Start < breaks[i-1].End {
			return nil, errors.New("перерывы не должны пересекаться")
		}
	}

	return breaks, nil
}

func (s *ScheduleServiceImpl) Create(ctx context.Context, userID int64, dto domain.CreateWorkingDayDTO) (int64, error) {
	page, err := s.pageRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения страницы пользователя", zap.Int64("userID", userID), zap.Error(err))
		return 0, errors.New("ошибка при создании рабочего дня")
	}
	if page == nil {
		return 0, errors.New("у пользователя нет страницы")
	}

	date, err := time.Parse(dateLayout, dto.Date)
	if err != nil {
		return 0, errors.New("некорректная дата, ожидается YYYY-MM-DD")
	}

	start, err := timeutil.Parse(dto.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := timeutil.Parse(dto.EndTime)
	if err != nil {
		return 0, err
	}

	dayRange := timeutil.TimeRange{Start: start, End: end}
	if !dayRange.Valid() {
		return 0, errors.New("рабочий день должен начинаться раньше, чем заканчиваться")
	}

	breaks, err := parseBreaks(dto.Breaks, dayRange)
	if err != nil {
		return 0, err
	}

	existing, err := s.repo.GetByPageAndDate(ctx, page.ID, date)
	if err != nil {
		s.logger.Error("ошибка проверки рабочего дня", zap.Error(err))
		return 0, errors.New("ошибка при создании рабочего дня")
	}
	if existing != nil {
		return 0, errors.New("на эту дату уже есть рабочий день")
	}

	id, err := s.repo.Create(ctx, domain.WorkingDay{
		BeautyPageID: page.ID,
		Date:         date,
		Range:        dayRange,
		Breaks:       breaks,
	})
	if err != nil {
		s.logger.Error("ошибка создания рабочего дня", zap.Error(err))
		return 0, errors.New("ошибка при создании рабочего дня")
	}

	s.invalidateSlots(ctx, page.ID, date)
	return id, nil
}

func (s *ScheduleServiceImpl) GetByID(ctx context.Context, id int64) (*domain.WorkingDay, error) {
	day, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения рабочего дня", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка при получении рабочего дня")
	}
	if day == nil {
		return nil, errors.New("рабочий день не найден")
	}
	return day, nil
}

func (s *ScheduleServiceImpl) List(ctx context.Context, filter domain.WorkingDayFilter) ([]domain.WorkingDay, int, error) {
	days, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка рабочих дней", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении рабочих дней")
	}
	return days, total, nil
}

// ownedDay возвращает рабочий день, если его страница принадлежит userID.
func (s *ScheduleServiceImpl) ownedDay(ctx context.Context, userID, id int64) (*domain.WorkingDay, error) {
	day, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("ошибка при получении рабочего дня")
	}
	if day == nil {
		return nil, errors.New("рабочий день не найден")
	}

	page, err := s.pageRepo.GetByID(ctx, day.BeautyPageID)
	if err != nil || page == nil {
		return nil, errors.New("страница рабочего дня не найдена")
	}
	if page.UserID != userID {
		return nil, errors.New("рабочий день принадлежит другому мастеру")
	}

	return day, nil
}

func (s *ScheduleServiceImpl) Update(ctx context.Context, userID, id int64, dto domain.UpdateWorkingDayDTO) error {
	day, err := s.ownedDay(ctx, userID, id)
	if err != nil {
		return err
	}

	if dto.StartTime != nil {
		start, err := timeutil.Parse(*dto.StartTime)
		if err != nil {
			return err
		}
		day.Range.Start = start
	}
	if dto.EndTime != nil {
		end, err := timeutil.Parse(*dto.EndTime)
		if err != nil {
			return err
		}
		day.Range.End = end
	}
	if !day.Range.Valid() {
		return errors.New("рабочий день должен начинаться раньше, чем заканчиваться")
	}

	if dto.Breaks != nil {
		breaks, err := parseBreaks(*dto.Breaks, day.Range)
		if err != nil {
			return err
		}
		day.Breaks = breaks
	} else {
		// Сжатие рабочих часов может вытолкнуть существующие перерывы за границы.
		for _, br := range day.Breaks {
			if br.Start < day.Range.Start || br.End > day.Range.End {
				return errors.New("перерыв выходит за пределы рабочих часов")
			}
		}
	}

	if err := s.repo.Update(ctx, *day); err != nil {
		s.logger.Error("ошибка обновления рабочего дня", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении рабочего дня")
	}

	s.invalidateSlots(ctx, day.BeautyPageID, day.Date)
	return nil
}

func (s *ScheduleServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	day, err := s.ownedDay(ctx, userID, id)
	if err != nil {
		return err
	}

	appointments, err := s.apptRepo.ListByPageAndDate(ctx, day.BeautyPageID, day.Date)
	if err != nil {
		s.logger.Error("ошибка проверки записей дня", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при удалении рабочего дня")
	}
	for i := range appointments {
		if appointments[i].IsActive() {
			return errors.New("нельзя удалить рабочий день с активными записями")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления рабочего дня", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при удалении рабочего дня")
	}

	s.invalidateSlots(ctx, day.BeautyPageID, day.Date)
	return nil
}

func (s *ScheduleServiceImpl) FreeSlots(ctx context.Context, beautyPageID int64, date time.Time) ([]string, error) {
	dateStr := date.Format(dateLayout)

	page, err := s.pageRepo.GetByID(ctx, beautyPageID)
	if err != nil {
		s.logger.Error("ошибка получения страницы", zap.Int64("pageID", beautyPageID), zap.Error(err))
		return nil, errors.New("ошибка при получении свободных слотов")
	}
	if page == nil {
		return nil, errors.New("страница не найдена")
	}

	now := s.now()
	if page.Timezone != "" {
		if loc, err := time.LoadLocation(page.Timezone); err == nil {
			now = now.In(loc)
		}
	}

	// Список на сегодня зависит от текущего времени и не кешируется.
	isToday := domain.SameDate(date, now)

	if s.cache != nil && !isToday {
		if slots, ok := s.cache.GetFreeSlots(ctx, beautyPageID, dateStr); ok {
			return slots, nil
		}
	}

	interval := page.SlotInterval
	if interval <= 0 {
		interval = s.bookingCfg.SlotIntervalMinutes
	}
	duration := s.bookingCfg.DefaultServiceDurationMinutes
	if duration <= 0 {
		duration = interval
	}

	day, err := s.repo.GetByPageAndDate(ctx, beautyPageID, date)
	if err != nil {
		s.logger.Error("ошибка получения рабочего дня", zap.Error(err))
		return nil, errors.New("ошибка при получении свободных слотов")
	}
	if day == nil {
		return []string{}, nil
	}

	appointments, err := s.apptRepo.ListByPageAndDate(ctx, beautyPageID, date)
	if err != nil {
		s.logger.Error("ошибка получения записей дня", zap.Error(err))
		return nil, errors.New("ошибка при получении свободных слотов")
	}

	nowMinutes := timeutil.TimeOfDay(now.Hour()*60 + now.Minute())

	workingDays := []domain.WorkingDay{*day}
	slots := []string{}
	for start := day.Range.Start; start.Add(duration) <= day.Range.End; start = start.Add(interval) {
		if isToday && start < nowMinutes {
			continue
		}
		end := start.Add(duration)
		result := domain.ValidatePlacement(date, start, end, appointments, workingDays, nil)
		if result.Valid {
			slots = append(slots, start.String())
		}
	}

	if s.cache != nil && !isToday {
		if err := s.cache.SetFreeSlots(ctx, beautyPageID, dateStr, slots); err != nil {
			s.logger.Warn("не удалось закешировать слоты", zap.Error(err))
		}
	}

	return slots, nil
}

// CalendarGrid собирает геометрию недельной сетки календаря страницы:
// часы видимой области из конфигурации, шаг привязки из настроек страницы.
// Пиксельные размеры задаёт клиент при рендеринге.
func (s *ScheduleServiceImpl) CalendarGrid(ctx context.Context, beautyPageID int64) (domain.CalendarGrid, error) {
	page, err := s.pageRepo.GetByID(ctx, beautyPageID)
	if err != nil {
		s.logger.Error("ошибка получения страницы", zap.Int64("pageID", beautyPageID), zap.Error(err))
		return domain.CalendarGrid{}, errors.New("ошибка при получении сетки календаря")
	}
	if page == nil {
		return domain.CalendarGrid{}, errors.New("страница не найдена")
	}

	snap := page.SlotInterval
	if snap <= 0 {
		snap = s.bookingCfg.SlotIntervalMinutes
	}

	return domain.CalendarGrid{
		StartHour:    s.bookingCfg.GridStartHour,
		EndHour:      s.bookingCfg.GridEndHour,
		DayCount:     7,
		SnapInterval: snap,
	}, nil
}

func (s *ScheduleServiceImpl) invalidateSlots(ctx context.Context, beautyPageID int64, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFreeSlots(ctx, beautyPageID, date.Format(dateLayout)); err != nil {
		s.logger.Warn("не удалось инвалидировать кеш слотов", zap.Error(err))
	}
}
