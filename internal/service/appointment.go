package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"icelook/config"
	"icelook/internal/domain"
	"icelook/internal/repository"
	"icelook/pkg/cache"
	"icelook/pkg/timeutil"
	"icelook/pkg/validator"
)

type AppointmentServiceImpl struct {
	repo       repository.AppointmentRepository
	pageRepo   repository.BeautyPageRepository
	svcRepo    repository.ServiceRepository
	dayRepo    repository.WorkingDayRepository
	policyRepo repository.PolicyRepository
	promoRepo  repository.PromotionRepository
	userRepo   repository.UserRepository
	cache      *cache.Cache
	bookingCfg config.BookingConfig
	logger     *zap.Logger
}

func NewAppointmentService(repos *repository.Repositories, c *cache.Cache, bookingCfg config.BookingConfig, logger *zap.Logger) *AppointmentServiceImpl {
	return &AppointmentServiceImpl{
		repo:       repos.Appointment,
		pageRepo:   repos.BeautyPage,
		svcRepo:    repos.Service,
		dayRepo:    repos.WorkingDay,
		policyRepo: repos.Policy,
		promoRepo:  repos.Promotion,
		userRepo:   repos.User,
		cache:      c,
		bookingCfg: bookingCfg,
		logger:     logger,
	}
}

// bookingDraft — подготовленные данные записи: услуги свёрнуты в снимок,
// цена посчитана с учётом акций.
type bookingDraft struct {
	totals       domain.BookingTotals
	serviceID    int64
	serviceName  string
	slotPromoIDs []int64
}

// prepareBooking загружает выбранные услуги, считает итог и применяет акции.
// Для записи из нескольких услуг снимок услуги хранит первую по порядку выбора,
// имя — объединение всех названий.
func (s *AppointmentServiceImpl) prepareBooking(ctx context.Context, page *domain.BeautyPage, serviceIDs []int64, date time.Time, start timeutil.TimeOfDay, applyPromotions bool) (*bookingDraft, error) {
	services, err := s.svcRepo.GetByIDs(ctx, page.ID, serviceIDs)
	if err != nil {
		s.logger.Error("ошибка получения услуг", zap.Error(err))
		return nil, errors.New("ошибка при создании записи")
	}
	if len(services) != len(serviceIDs) {
		return nil, errors.New("услуга не найдена или недоступна")
	}

	totals, err := domain.ComputeTotals(services)
	if err != nil {
		return nil, err
	}

	draft := &bookingDraft{
		totals:    totals,
		serviceID: services[0].ID,
	}

	names := make([]string, 0, len(services))
	for _, svc := range services {
		names = append(names, svc.Name)
	}
	draft.serviceName = strings.Join(names, " + ")

	if !applyPromotions {
		return draft, nil
	}

	now := time.Now()
	var discounted int64
	for _, svc := range services {
		promotions, err := s.promoRepo.ListActiveByService(ctx, page.ID, svc.ID)
		if err != nil {
			s.logger.Error("ошибка получения акций услуги", zap.Int64("serviceID", svc.ID), zap.Error(err))
			return nil, errors.New("ошибка при создании записи")
		}

		best := domain.BestPromotion(promotions, date, start, now)
		if best == nil {
			discounted += svc.PriceCents
			continue
		}

		discounted += best.DiscountedPriceCents
		if best.Type == domain.PromotionTypeSlot {
			draft.slotPromoIDs = append(draft.slotPromoIDs, best.ID)
		}
	}
	draft.totals.PriceCents = discounted

	return draft, nil
}

func (s *AppointmentServiceImpl) Create(ctx context.Context, clientID int64, dto domain.CreateAppointmentDTO) (int64, error) {
	page, err := s.pageRepo.GetByID(ctx, dto.BeautyPageID)
	if err != nil {
		s.logger.Error("ошибка получения страницы", zap.Int64("pageID", dto.BeautyPageID), zap.Error(err))
		return 0, errors.New("ошибка при создании записи")
	}
	if page == nil || !page.IsPublished {
		return 0, errors.New("страница не найдена")
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil || client == nil {
		s.logger.Error("клиент не найден при создании записи", zap.Int64("clientID", clientID), zap.Error(err))
		return 0, errors.New("клиент не найден")
	}

	block, err := s.policyRepo.FindActiveBlock(ctx, page.ID, &clientID, client.Phone, time.Now())
	if err != nil {
		s.logger.Error("ошибка проверки блокировки", zap.Error(err))
		return 0, errors.New("ошибка при создании записи")
	}
	if block != nil {
		return 0, domain.ErrClientBlocked
	}

	date, err := time.Parse(dateLayout, dto.Date)
	if err != nil {
		return 0, errors.New("некорректная дата, ожидается YYYY-MM-DD")
	}
	start, err := timeutil.Parse(dto.StartTime)
	if err != nil {
		return 0, err
	}

	draft, err := s.prepareBooking(ctx, page, dto.ServiceIDs, date, start, true)
	if err != nil {
		return 0, err
	}
	end := start.Add(draft.totals.DurationMinutes)

	workingDays, err := s.workingDaysFor(ctx, page.ID, date)
	if err != nil {
		return 0, err
	}

	appt := domain.Appointment{
		BeautyPageID: page.ID,
		Date:         date,
		Start:        start,
		End:          end,
		Status:       domain.AppointmentStatusPending,

		ClientID:    &clientID,
		ClientName:  strings.TrimSpace(client.FirstName + " " + client.LastName),
		ClientPhone: client.Phone,
		ClientNotes: validator.SanitizeString(dto.ClientNotes),

		ServiceID:              draft.serviceID,
		ServiceName:            draft.serviceName,
		ServicePriceCents:      draft.totals.PriceCents,
		ServiceDurationMinutes: draft.totals.DurationMinutes,
		ServiceCurrency:        draft.totals.Currency,
	}

	id, err := s.repo.CreateValidated(ctx, appt, workingDays)
	if err != nil {
		return 0, err
	}

	s.markSlotPromotions(ctx, draft.slotPromoIDs)
	s.invalidateSlots(ctx, page.ID, date)

	return id, nil
}

// QuickBook — запись, которую мастер создаёт сам: по телефонному звонку или
// для клиента без аккаунта. Сразу confirmed, акции не применяются —
// условия мастер назначает напрямую.
func (s *AppointmentServiceImpl) QuickBook(ctx context.Context, userID int64, dto domain.QuickBookingDTO) (int64, error) {
	page, err := s.pageRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения страницы мастера", zap.Int64("userID", userID), zap.Error(err))
		return 0, errors.New("ошибка при создании записи")
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

	draft, err := s.prepareBooking(ctx, page, dto.ServiceIDs, date, start, false)
	if err != nil {
		return 0, err
	}
	end := start.Add(draft.totals.DurationMinutes)

	var clientName, clientPhone string
	if dto.ClientID != nil {
		client, err := s.userRepo.GetByID(ctx, *dto.ClientID)
		if err != nil || client == nil {
			return 0, errors.New("клиент не найден")
		}
		clientName = strings.TrimSpace(client.FirstName + " " + client.LastName)
		clientPhone = client.Phone
	} else {
		clientName = validator.SanitizeString(dto.GuestName)
		clientPhone = validator.FormatPhone(dto.GuestPhone)
		if clientName == "" {
			return 0, errors.New("для гостевой записи требуется имя клиента")
		}
	}

	workingDays, err := s.workingDaysFor(ctx, page.ID, date)
	if err != nil {
		return 0, err
	}

	appt := domain.Appointment{
		BeautyPageID: page.ID,
		Date:         date,
		Start:        start,
		End:          end,
		Status:       domain.AppointmentStatusConfirmed,

		ClientID:    dto.ClientID,
		ClientName:  clientName,
		ClientPhone: clientPhone,
		ClientNotes: validator.SanitizeString(dto.ClientNotes),

		ServiceID:              draft.serviceID,
		ServiceName:            draft.serviceName,
		ServicePriceCents:      draft.totals.PriceCents,
		ServiceDurationMinutes: draft.totals.DurationMinutes,
		ServiceCurrency:        draft.totals.Currency,
	}

	id, err := s.repo.CreateValidated(ctx, appt, workingDays)
	if err != nil {
		return 0, err
	}

	s.invalidateSlots(ctx, page.ID, date)
	return id, nil
}

func (s *AppointmentServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения записи", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка при получении записи")
	}
	if appt == nil {
		return nil, errors.New("запись не найдена")
	}
	return appt, nil
}

func (s *AppointmentServiceImpl) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	appointments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка записей", zap.Error(err))
		return nil, 0, errors.New("ошибка при получении списка записей")
	}
	return appointments, total, nil
}

func (s *AppointmentServiceImpl) Transition(ctx context.Context, actorUserID int64, actorRole domain.UserRole, id int64, dto domain.TransitionAppointmentDTO) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при изменении записи")
	}
	if appt == nil {
		return errors.New("запись не найдена")
	}

	page, err := s.pageRepo.GetByID(ctx, appt.BeautyPageID)
	if err != nil || page == nil {
		s.logger.Error("страница записи не найдена", zap.Int64("pageID", appt.BeautyPageID), zap.Error(err))
		return errors.New("ошибка при изменении записи")
	}

	actor := domain.ActorClient
	switch {
	case actorRole == domain.UserRoleAdmin:
		actor = domain.ActorAdmin
	case page.UserID == actorUserID:
		actor = domain.ActorCreator
	}

	policy, err := s.policyFor(ctx, page.ID)
	if err != nil {
		return err
	}

	// Окно уведомления ограничивает только отмену клиентом.
	if dto.Status == domain.AppointmentStatusCancelled && actor == domain.ActorClient {
		if !policy.CanCancel(appointmentStart(appt), time.Now()) {
			return domain.ErrCancellationWindowPassed
		}
	}

	if err := appt.Transition(dto.Status, actor, &actorUserID, dto.Reason); err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, *appt); err != nil {
		s.logger.Error("ошибка сохранения статуса записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при изменении записи")
	}

	// Освободившееся время снова доступно для записи.
	if !appt.IsActive() {
		s.invalidateSlots(ctx, page.ID, appt.Date)
	}

	if dto.Status == domain.AppointmentStatusNoShow ||
		(dto.Status == domain.AppointmentStatusCancelled && actor == domain.ActorClient) {
		s.maybeBlockClient(ctx, page.ID, appt, policy)
	}

	return nil
}

// maybeBlockClient проверяет накопленные отмены клиента и создаёт
// автоматическую блокировку при достижении порога. Сбой здесь не откатывает
// сам переход статуса, только логируется.
func (s *AppointmentServiceImpl) maybeBlockClient(ctx context.Context, pageID int64, appt *domain.Appointment, policy *domain.CancellationPolicy) {
	if !policy.IsEnabled {
		return
	}

	now := time.Now()
	since := now.AddDate(0, 0, -policy.PeriodDays)

	history, err := s.repo.CancellationHistory(ctx, pageID, appt.ClientID, appt.ClientPhone, since)
	if err != nil {
		s.logger.Error("ошибка получения истории отмен", zap.Error(err))
		return
	}

	decision := domain.EvaluateBlockTrigger(history, *policy, now)
	if !decision.ShouldBlock {
		return
	}

	existing, err := s.policyRepo.FindActiveBlock(ctx, pageID, appt.ClientID, appt.ClientPhone, now)
	if err != nil {
		s.logger.Error("ошибка проверки блокировки", zap.Error(err))
		return
	}
	if existing != nil {
		return
	}

	noShows := 0
	for _, rec := range history {
		if rec.WasNoShow {
			noShows++
		}
	}

	_, err = s.policyRepo.CreateBlock(ctx, domain.BlockedClient{
		BeautyPageID: pageID,
		UserID:       appt.ClientID,
		Phone:        appt.ClientPhone,
		IsManual:     false,
		NoShowCount:  noShows,
		BlockedAt:    now,
		BlockedUntil: decision.BlockedUntil,
	})
	if err != nil {
		s.logger.Error("ошибка создания автоблокировки", zap.Error(err))
		return
	}

	s.logger.Info("клиент автоматически заблокирован",
		zap.Int64("pageID", pageID),
		zap.Float64("weightedCount", decision.WeightedCount))
}

func (s *AppointmentServiceImpl) Reschedule(ctx context.Context, userID int64, id int64, dto domain.RescheduleAppointmentDTO) error {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения записи", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при переносе записи")
	}
	if appt == nil {
		return errors.New("запись не найдена")
	}

	page, err := s.pageRepo.GetByID(ctx, appt.BeautyPageID)
	if err != nil || page == nil {
		s.logger.Error("страница записи не найдена", zap.Int64("pageID", appt.BeautyPageID), zap.Error(err))
		return errors.New("ошибка при переносе записи")
	}
	if page.UserID != userID {
		return errors.New("запись принадлежит другому мастеру")
	}

	if appt.Status.IsTerminal() {
		return domain.ErrIllegalTransition
	}

	oldDate := appt.Date

	if dto.Date != nil {
		newDate, err := time.Parse(dateLayout, *dto.Date)
		if err != nil {
			return errors.New("некорректная дата, ожидается YYYY-MM-DD")
		}
		appt.Date = newDate
	}

	switch {
	case dto.StartTime != nil && dto.EndTime == nil:
		// Перенос: длительность сохраняется.
		newStart, err := timeutil.Parse(*dto.StartTime)
		if err != nil {
			return err
		}
		appt.Start, appt.End = domain.MoveTimes(appt.Start, appt.End, newStart)

	case dto.StartTime == nil && dto.EndTime != nil:
		newEnd, err := timeutil.Parse(*dto.EndTime)
		if err != nil {
			return err
		}
		rng, err := domain.ResizeEnd(appt.Start, newEnd, s.bookingCfg.MinDurationMinutes)
		if err != nil {
			return err
		}
		appt.Start, appt.End = rng.Start, rng.End

	case dto.StartTime != nil && dto.EndTime != nil:
		newStart, err := timeutil.Parse(*dto.StartTime)
		if err != nil {
			return err
		}
		newEnd, err := timeutil.Parse(*dto.EndTime)
		if err != nil {
			return err
		}
		rng, err := domain.ResizeStart(newStart, newEnd, s.bookingCfg.MinDurationMinutes)
		if err != nil {
			return err
		}
		appt.Start, appt.End = rng.Start, rng.End

	case dto.Date == nil:
		return errors.New("не указаны новые дата или время")
	}

	workingDays, err := s.workingDaysFor(ctx, page.ID, appt.Date)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateTimesValidated(ctx, *appt, workingDays); err != nil {
		return err
	}

	s.invalidateSlots(ctx, page.ID, oldDate)
	if !domain.SameDate(oldDate, appt.Date) {
		s.invalidateSlots(ctx, page.ID, appt.Date)
	}

	return nil
}

func (s *AppointmentServiceImpl) CheckPlacement(ctx context.Context, beautyPageID int64, date time.Time, start, end int, excludeID *int64) (*domain.PlacementResult, error) {
	workingDays, err := s.workingDaysFor(ctx, beautyPageID, date)
	if err != nil {
		return nil, err
	}

	appointments, err := s.repo.ListByPageAndDate(ctx, beautyPageID, date)
	if err != nil {
		s.logger.Error("ошибка получения записей дня", zap.Error(err))
		return nil, errors.New("ошибка при проверке размещения")
	}

	result := domain.ValidatePlacement(date, timeutil.TimeOfDay(start), timeutil.TimeOfDay(end), appointments, workingDays, excludeID)
	return &result, nil
}

// workingDaysFor возвращает рабочий день страницы на дату срезом:
// проверка размещения принимает набор дней, пустой срез означает выходной.
func (s *AppointmentServiceImpl) workingDaysFor(ctx context.Context, beautyPageID int64, date time.Time) ([]domain.WorkingDay, error) {
	day, err := s.dayRepo.GetByPageAndDate(ctx, beautyPageID, date)
	if err != nil {
		s.logger.Error("ошибка получения рабочего дня", zap.Error(err))
		return nil, errors.New("ошибка при проверке расписания")
	}
	if day == nil {
		return nil, nil
	}
	return []domain.WorkingDay{*day}, nil
}

// policyFor возвращает политику страницы или политику по умолчанию:
// отмены без ограничений, пока мастер не включил правила.
func (s *AppointmentServiceImpl) policyFor(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error) {
	policy, err := s.policyRepo.GetByPage(ctx, beautyPageID)
	if err != nil {
		s.logger.Error("ошибка получения политики отмен", zap.Error(err))
		return nil, errors.New("ошибка при изменении записи")
	}
	if policy == nil {
		return &domain.CancellationPolicy{
			BeautyPageID:     beautyPageID,
			IsEnabled:        false,
			NoticeHours:      s.bookingCfg.DefaultNoticeHours,
			MaxCancellations: 3,
			PeriodDays:       30,
			NoShowMultiplier: 2,
		}, nil
	}
	return policy, nil
}

// appointmentStart — момент начала записи как time.Time.
func appointmentStart(appt *domain.Appointment) time.Time {
	return appt.Date.Add(time.Duration(appt.Start.Minutes()) * time.Minute)
}

func (s *AppointmentServiceImpl) markSlotPromotions(ctx context.Context, ids []int64) {
	for _, id := range ids {
		if err := s.promoRepo.MarkSlotBooked(ctx, id); err != nil {
			s.logger.Warn("не удалось пометить акцию занятой", zap.Int64("promoID", id), zap.Error(err))
		}
	}
}

func (s *AppointmentServiceImpl) invalidateSlots(ctx context.Context, beautyPageID int64, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFreeSlots(ctx, beautyPageID, date.Format(dateLayout)); err != nil {
		s.logger.Warn("не удалось инвалидировать кеш слотов", zap.Error(err))
	}
}
