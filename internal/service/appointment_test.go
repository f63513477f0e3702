package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"icelook/config"
	"icelook/internal/domain"
	"icelook/internal/repository"
	"icelook/pkg/timeutil"
)

// Стабы репозиториев: поведение задаётся функциональными полями,
// незаданные методы возвращают нулевые значения.

type stubAppointmentRepo struct {
	createValidated      func(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) (int64, error)
	updateTimesValidated func(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) error
	getByID              func(ctx context.Context, id int64) (*domain.Appointment, error)
	listByPageAndDate    func(ctx context.Context, beautyPageID int64, date time.Time) ([]domain.Appointment, error)
	updateStatus         func(ctx context.Context, appt domain.Appointment) error
	cancellationHistory  func(ctx context.Context, beautyPageID int64, clientID *int64, phone string, since time.Time) ([]domain.CancellationRecord, error)
}

func (s *stubAppointmentRepo) CreateValidated(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) (int64, error) {
	if s.createValidated != nil {
		return s.createValidated(ctx, appt, workingDays)
	}
	return 1, nil
}

func (s *stubAppointmentRepo) UpdateTimesValidated(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) error {
	if s.updateTimesValidated != nil {
		return s.updateTimesValidated(ctx, appt, workingDays)
	}
	return nil
}

func (s *stubAppointmentRepo) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, nil
}

func (s *stubAppointmentRepo) ListByPageAndDate(ctx context.Context, beautyPageID int64, date time.Time) ([]domain.Appointment, error) {
	if s.listByPageAndDate != nil {
		return s.listByPageAndDate(ctx, beautyPageID, date)
	}
	return nil, nil
}

func (s *stubAppointmentRepo) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error) {
	return nil, 0, nil
}

func (s *stubAppointmentRepo) UpdateStatus(ctx context.Context, appt domain.Appointment) error {
	if s.updateStatus != nil {
		return s.updateStatus(ctx, appt)
	}
	return nil
}

func (s *stubAppointmentRepo) CancellationHistory(ctx context.Context, beautyPageID int64, clientID *int64, phone string, since time.Time) ([]domain.CancellationRecord, error) {
	if s.cancellationHistory != nil {
		return s.cancellationHistory(ctx, beautyPageID, clientID, phone, since)
	}
	return nil, nil
}

type stubBeautyPageRepo struct {
	getByID     func(ctx context.Context, id int64) (*domain.BeautyPage, error)
	getByUserID func(ctx context.Context, userID int64) (*domain.BeautyPage, error)
}

func (s *stubBeautyPageRepo) Create(ctx context.Context, userID int64, page domain.CreateBeautyPageDTO, slotInterval int) (int64, error) {
	return 0, nil
}

func (s *stubBeautyPageRepo) GetByID(ctx context.Context, id int64) (*domain.BeautyPage, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, nil
}

func (s *stubBeautyPageRepo) GetByUserID(ctx context.Context, userID int64) (*domain.BeautyPage, error) {
	if s.getByUserID != nil {
		return s.getByUserID(ctx, userID)
	}
	return nil, nil
}

func (s *stubBeautyPageRepo) GetByHandle(ctx context.Context, handle string) (*domain.BeautyPage, error) {
	return nil, nil
}

func (s *stubBeautyPageRepo) Update(ctx context.Context, id int64, page domain.UpdateBeautyPageDTO) error {
	return nil
}

func (s *stubBeautyPageRepo) UpdatePhoto(ctx context.Context, id int64, photoURL string) error {
	return nil
}

func (s *stubBeautyPageRepo) Delete(ctx context.Context, id int64) error { return nil }

type stubServiceRepo struct {
	getByIDs func(ctx context.Context, beautyPageID int64, ids []int64) ([]domain.BookingService, error)
}

func (s *stubServiceRepo) Create(ctx context.Context, beautyPageID int64, dto domain.CreateServiceDTO) (int64, error) {
	return 0, nil
}

func (s *stubServiceRepo) GetByID(ctx context.Context, id int64) (*domain.BookingService, error) {
	return nil, nil
}

func (s *stubServiceRepo) GetByIDs(ctx context.Context, beautyPageID int64, ids []int64) ([]domain.BookingService, error) {
	if s.getByIDs != nil {
		return s.getByIDs(ctx, beautyPageID, ids)
	}
	return nil, nil
}

func (s *stubServiceRepo) ListByPage(ctx context.Context, beautyPageID int64, onlyActive bool) ([]domain.BookingService, error) {
	return nil, nil
}

func (s *stubServiceRepo) Update(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error {
	return nil
}

func (s *stubServiceRepo) Delete(ctx context.Context, id int64) error { return nil }

type stubWorkingDayRepo struct {
	getByPageAndDate func(ctx context.Context, beautyPageID int64, date time.Time) (*domain.WorkingDay, error)
}

func (s *stubWorkingDayRepo) Create(ctx context.Context, day domain.WorkingDay) (int64, error) {
	return 0, nil
}

func (s *stubWorkingDayRepo) GetByID(ctx context.Context, id int64) (*domain.WorkingDay, error) {
	return nil, nil
}

func (s *stubWorkingDayRepo) GetByPageAndDate(ctx context.Context, beautyPageID int64, date time.Time) (*domain.WorkingDay, error) {
	if s.getByPageAndDate != nil {
		return s.getByPageAndDate(ctx, beautyPageID, date)
	}
	return nil, nil
}

func (s *stubWorkingDayRepo) List(ctx context.Context, filter domain.WorkingDayFilter) ([]domain.WorkingDay, int, error) {
	return nil, 0, nil
}

func (s *stubWorkingDayRepo) Update(ctx context.Context, day domain.WorkingDay) error { return nil }

func (s *stubWorkingDayRepo) Delete(ctx context.Context, id int64) error { return nil }

type stubPolicyRepo struct {
	getByPage       func(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error)
	createBlock     func(ctx context.Context, block domain.BlockedClient) (int64, error)
	findActiveBlock func(ctx context.Context, beautyPageID int64, userID *int64, phone string, now time.Time) (*domain.BlockedClient, error)
}

func (s *stubPolicyRepo) GetByPage(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error) {
	if s.getByPage != nil {
		return s.getByPage(ctx, beautyPageID)
	}
	return nil, nil
}

func (s *stubPolicyRepo) Upsert(ctx context.Context, policy domain.CancellationPolicy) error {
	return nil
}

func (s *stubPolicyRepo) CreateBlock(ctx context.Context, block domain.BlockedClient) (int64, error) {
	if s.createBlock != nil {
		return s.createBlock(ctx, block)
	}
	return 1, nil
}

func (s *stubPolicyRepo) FindActiveBlock(ctx context.Context, beautyPageID int64, userID *int64, phone string, now time.Time) (*domain.BlockedClient, error) {
	if s.findActiveBlock != nil {
		return s.findActiveBlock(ctx, beautyPageID, userID, phone, now)
	}
	return nil, nil
}

func (s *stubPolicyRepo) ListBlocks(ctx context.Context, beautyPageID int64) ([]domain.BlockedClient, error) {
	return nil, nil
}

func (s *stubPolicyRepo) DeleteBlock(ctx context.Context, id int64) error { return nil }

type stubPromotionRepo struct {
	listActiveByService func(ctx context.Context, beautyPageID, serviceID int64) ([]domain.Promotion, error)
	markSlotBooked      func(ctx context.Context, id int64) error
}

func (s *stubPromotionRepo) Create(ctx context.Context, promo domain.Promotion) (int64, error) {
	return 0, nil
}

func (s *stubPromotionRepo) GetByID(ctx context.Context, id int64) (*domain.Promotion, error) {
	return nil, nil
}

func (s *stubPromotionRepo) List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error) {
	return nil, nil
}

func (s *stubPromotionRepo) ListActiveByService(ctx context.Context, beautyPageID, serviceID int64) ([]domain.Promotion, error) {
	if s.listActiveByService != nil {
		return s.listActiveByService(ctx, beautyPageID, serviceID)
	}
	return nil, nil
}

func (s *stubPromotionRepo) UpdateStatus(ctx context.Context, id int64, status domain.PromotionStatus) error {
	return nil
}

func (s *stubPromotionRepo) MarkSlotBooked(ctx context.Context, id int64) error {
	if s.markSlotBooked != nil {
		return s.markSlotBooked(ctx, id)
	}
	return nil
}

type stubUserRepo struct {
	getByID func(ctx context.Context, id int64) (*domain.User, error)
}

func (s *stubUserRepo) Create(ctx context.Context, user domain.CreateUserDTO) (int64, error) {
	return 0, nil
}

func (s *stubUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return nil, nil
}

func (s *stubUserRepo) Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error {
	return nil
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id int64) error { return nil }

type appointmentTestEnv struct {
	appts  *stubAppointmentRepo
	pages  *stubBeautyPageRepo
	svcs   *stubServiceRepo
	days   *stubWorkingDayRepo
	policy *stubPolicyRepo
	promos *stubPromotionRepo
	users  *stubUserRepo
}

func newAppointmentTestEnv() *appointmentTestEnv {
	return &appointmentTestEnv{
		appts:  &stubAppointmentRepo{},
		pages:  &stubBeautyPageRepo{},
		svcs:   &stubServiceRepo{},
		days:   &stubWorkingDayRepo{},
		policy: &stubPolicyRepo{},
		promos: &stubPromotionRepo{},
		users:  &stubUserRepo{},
	}
}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		SlotIntervalMinutes: 15,
		MinDurationMinutes:  15,
		DefaultNoticeHours:  24,
	}
}

func (e *appointmentTestEnv) service() *AppointmentServiceImpl {
	repos := &repository.Repositories{
		User:        e.users,
		BeautyPage:  e.pages,
		Service:     e.svcs,
		WorkingDay:  e.days,
		Appointment: e.appts,
		Policy:      e.policy,
		Promotion:   e.promos,
	}

	return NewAppointmentService(repos, nil, testBookingConfig(), zap.NewNop())
}

func testPage() *domain.BeautyPage {
	return &domain.BeautyPage{
		ID:           10,
		UserID:       100,
		Handle:       "lash-studio",
		DisplayName:  "Студия ресниц",
		SlotInterval: 15,
		Currency:     "RUB",
		IsPublished:  true,
	}
}

func testWorkingDay(date time.Time) *domain.WorkingDay {
	return &domain.WorkingDay{
		ID:           1,
		BeautyPageID: 10,
		Date:         date,
		Range: timeutil.TimeRange{
			Start: timeutil.TimeOfDay(9 * 60),
			End:   timeutil.TimeOfDay(18 * 60),
		},
	}
}

func TestAppointmentCreate(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	baseDTO := domain.CreateAppointmentDTO{
		BeautyPageID: 10,
		ServiceIDs:   []int64{1, 2},
		Date:         "2026-09-14",
		StartTime:    "10:00",
	}

	setup := func(env *appointmentTestEnv) {
		env.pages.getByID = func(ctx context.Context, id int64) (*domain.BeautyPage, error) {
			return testPage(), nil
		}
		env.users.getByID = func(ctx context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, FirstName: "Анна", LastName: "Петрова", Phone: "+79990001122"}, nil
		}
		env.svcs.getByIDs = func(ctx context.Context, beautyPageID int64, ids []int64) ([]domain.BookingService, error) {
			return []domain.BookingService{
				{ID: 1, Name: "Маникюр", PriceCents: 200000, DurationMinutes: 60, Currency: "RUB"},
				{ID: 2, Name: "Покрытие", PriceCents: 100000, DurationMinutes: 30, Currency: "RUB"},
			}, nil
		}
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return testWorkingDay(d), nil
		}
	}

	t.Run("успешное создание со снимком услуг", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env)

		var created domain.Appointment
		env.appts.createValidated = func(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) (int64, error) {
			created = appt
			require.Len(t, workingDays, 1)
			return 42, nil
		}

		id, err := env.service().Create(ctx, 7, baseDTO)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)

		assert.Equal(t, domain.AppointmentStatusPending, created.Status)
		assert.Equal(t, timeutil.TimeOfDay(600), created.Start)
		assert.Equal(t, timeutil.TimeOfDay(690), created.End)
		assert.Equal(t, int64(1), created.ServiceID)
		assert.Equal(t, "Маникюр + Покрытие", created.ServiceName)
		assert.Equal(t, int64(300000), created.ServicePriceCents)
		assert.Equal(t, 90, created.ServiceDurationMinutes)
		assert.Equal(t, "Анна Петрова", created.ClientName)
		require.NotNil(t, created.ClientID)
		assert.Equal(t, int64(7), *created.ClientID)
	})

	t.Run("слотовая акция снижает цену и помечается занятой", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env)

		env.promos.listActiveByService = func(ctx context.Context, beautyPageID, serviceID int64) ([]domain.Promotion, error) {
			if serviceID != 1 {
				return nil, nil
			}
			return []domain.Promotion{{
				ID:                   5,
				ServiceID:            1,
				Type:                 domain.PromotionTypeSlot,
				DiscountPercentage:   50,
				DiscountedPriceCents: 100000,
				Status:               domain.PromotionStatusActive,
				Slot: &domain.SlotPromotionData{
					SlotDate:  date,
					SlotStart: timeutil.TimeOfDay(600),
					SlotEnd:   timeutil.TimeOfDay(660),
				},
			}}, nil
		}

		var marked []int64
		env.promos.markSlotBooked = func(ctx context.Context, id int64) error {
			marked = append(marked, id)
			return nil
		}

		var created domain.Appointment
		env.appts.createValidated = func(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) (int64, error) {
			created = appt
			return 43, nil
		}

		_, err := env.service().Create(ctx, 7, baseDTO)
		require.NoError(t, err)

		// 100000 по акции + 100000 без акции
		assert.Equal(t, int64(200000), created.ServicePriceCents)
		assert.Equal(t, []int64{5}, marked)
	})

	t.Run("заблокированный клиент получает отказ", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env)

		env.policy.findActiveBlock = func(ctx context.Context, beautyPageID int64, userID *int64, phone string, now time.Time) (*domain.BlockedClient, error) {
			return &domain.BlockedClient{ID: 1, BeautyPageID: beautyPageID}, nil
		}

		_, err := env.service().Create(ctx, 7, baseDTO)
		assert.ErrorIs(t, err, domain.ErrClientBlocked)
	})

	t.Run("проигрыш гонки за слот", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env)

		env.appts.createValidated = func(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) (int64, error) {
			return 0, domain.ErrSlotTaken
		}

		_, err := env.service().Create(ctx, 7, baseDTO)
		assert.ErrorIs(t, err, domain.ErrSlotTaken)
	})

	t.Run("неопубликованная страница недоступна", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env)

		env.pages.getByID = func(ctx context.Context, id int64) (*domain.BeautyPage, error) {
			page := testPage()
			page.IsPublished = false
			return page, nil
		}

		_, err := env.service().Create(ctx, 7, baseDTO)
		assert.Error(t, err)
	})

	t.Run("недоступная услуга в выборе", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env)

		env.svcs.getByIDs = func(ctx context.Context, beautyPageID int64, ids []int64) ([]domain.BookingService, error) {
			return []domain.BookingService{
				{ID: 1, Name: "Маникюр", PriceCents: 200000, DurationMinutes: 60, Currency: "RUB"},
			}, nil
		}

		_, err := env.service().Create(ctx, 7, baseDTO)
		assert.Error(t, err)
	})
}

func TestAppointmentQuickBook(t *testing.T) {
	ctx := context.Background()

	dto := domain.QuickBookingDTO{
		ServiceIDs: []int64{1},
		Date:       "2026-09-14",
		StartTime:  "11:00",
		GuestName:  "Мария",
		GuestPhone: "+7 (999) 000-11-22",
	}

	setup := func(env *appointmentTestEnv) {
		env.pages.getByUserID = func(ctx context.Context, userID int64) (*domain.BeautyPage, error) {
			return testPage(), nil
		}
		env.svcs.getByIDs = func(ctx context.Context, beautyPageID int64, ids []int64) ([]domain.BookingService, error) {
			return []domain.BookingService{
				{ID: 1, Name: "Маникюр", PriceCents: 200000, DurationMinutes: 60, Currency: "RUB"},
			}, nil
		}
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return testWorkingDay(d), nil
		}
	}

	t.Run("гостевая запись сразу подтверждена", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env)

		var created domain.Appointment
		env.appts.createValidated = func(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) (int64, error) {
			created = appt
			return 50, nil
		}

		id, err := env.service().QuickBook(ctx, 100, dto)
		require.NoError(t, err)
		assert.Equal(t, int64(50), id)

		assert.Equal(t, domain.AppointmentStatusConfirmed, created.Status)
		assert.Nil(t, created.ClientID)
		assert.Equal(t, "Мария", created.ClientName)
		assert.Equal(t, "+79990001122", created.ClientPhone)
	})

	t.Run("гость без имени отклоняется", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env)

		noName := dto
		noName.GuestName = ""

		_, err := env.service().QuickBook(ctx, 100, noName)
		assert.Error(t, err)
	})

	t.Run("акции не применяются", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env)

		promoCalled := false
		env.promos.listActiveByService = func(ctx context.Context, beautyPageID, serviceID int64) ([]domain.Promotion, error) {
			promoCalled = true
			return nil, nil
		}

		var created domain.Appointment
		env.appts.createValidated = func(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) (int64, error) {
			created = appt
			return 51, nil
		}

		_, err := env.service().QuickBook(ctx, 100, dto)
		require.NoError(t, err)
		assert.False(t, promoCalled)
		assert.Equal(t, int64(200000), created.ServicePriceCents)
	})
}

func TestAppointmentTransition(t *testing.T) {
	ctx := context.Background()

	clientID := int64(7)
	farFuture := time.Now().AddDate(0, 1, 0)

	pendingAppt := func() *domain.Appointment {
		return &domain.Appointment{
			ID:           42,
			BeautyPageID: 10,
			Date:         farFuture,
			Start:        timeutil.TimeOfDay(600),
			End:          timeutil.TimeOfDay(660),
			Status:       domain.AppointmentStatusPending,
			ClientID:     &clientID,
			ClientPhone:  "+79990001122",
		}
	}

	setup := func(env *appointmentTestEnv, appt *domain.Appointment) {
		env.appts.getByID = func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return appt, nil
		}
		env.pages.getByID = func(ctx context.Context, id int64) (*domain.BeautyPage, error) {
			return testPage(), nil
		}
	}

	t.Run("мастер подтверждает запись", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env, pendingAppt())

		var saved domain.Appointment
		env.appts.updateStatus = func(ctx context.Context, appt domain.Appointment) error {
			saved = appt
			return nil
		}

		err := env.service().Transition(ctx, 100, domain.UserRoleCreator, 42, domain.TransitionAppointmentDTO{
			Status: domain.AppointmentStatusConfirmed,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.AppointmentStatusConfirmed, saved.Status)
	})

	t.Run("клиент не может подтвердить", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env, pendingAppt())

		err := env.service().Transition(ctx, clientID, domain.UserRoleClient, 42, domain.TransitionAppointmentDTO{
			Status: domain.AppointmentStatusConfirmed,
		})
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	})

	t.Run("отмена клиентом требует причину", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env, pendingAppt())

		err := env.service().Transition(ctx, clientID, domain.UserRoleClient, 42, domain.TransitionAppointmentDTO{
			Status: domain.AppointmentStatusCancelled,
		})
		assert.ErrorIs(t, err, domain.ErrCancellationReasonRequired)
	})

	t.Run("отмена клиентом с причиной фиксирует инициатора", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env, pendingAppt())

		var saved domain.Appointment
		env.appts.updateStatus = func(ctx context.Context, appt domain.Appointment) error {
			saved = appt
			return nil
		}

		reason := domain.CancellationReasonChangedPlans
		err := env.service().Transition(ctx, clientID, domain.UserRoleClient, 42, domain.TransitionAppointmentDTO{
			Status: domain.AppointmentStatusCancelled,
			Reason: &reason,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.AppointmentStatusCancelled, saved.Status)
		require.NotNil(t, saved.CancelledBy)
		assert.Equal(t, domain.ActorClient, *saved.CancelledBy)
		require.NotNil(t, saved.CancellationReason)
		assert.Equal(t, reason, *saved.CancellationReason)
	})

	t.Run("окно уведомления блокирует позднюю отмену клиентом", func(t *testing.T) {
		env := newAppointmentTestEnv()

		soon := pendingAppt()
		soon.Date = time.Now().Add(2 * time.Hour).Truncate(24 * time.Hour)
		soon.Start = timeutil.TimeOfDay(0)
		setup(env, soon)

		env.policy.getByPage = func(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error) {
			return &domain.CancellationPolicy{
				BeautyPageID:     beautyPageID,
				IsEnabled:        true,
				NoticeHours:      24,
				MaxCancellations: 3,
				PeriodDays:       30,
				NoShowMultiplier: 2,
			}, nil
		}

		reason := domain.CancellationReasonChangedPlans
		err := env.service().Transition(ctx, clientID, domain.UserRoleClient, 42, domain.TransitionAppointmentDTO{
			Status: domain.AppointmentStatusCancelled,
			Reason: &reason,
		})
		assert.ErrorIs(t, err, domain.ErrCancellationWindowPassed)
	})

	t.Run("окно уведомления не мешает мастеру", func(t *testing.T) {
		env := newAppointmentTestEnv()

		soon := pendingAppt()
		soon.Date = time.Now().Truncate(24 * time.Hour)
		setup(env, soon)

		env.policy.getByPage = func(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error) {
			return &domain.CancellationPolicy{
				BeautyPageID: beautyPageID,
				IsEnabled:    true,
				NoticeHours:  24,
			}, nil
		}

		err := env.service().Transition(ctx, 100, domain.UserRoleCreator, 42, domain.TransitionAppointmentDTO{
			Status: domain.AppointmentStatusCancelled,
		})
		assert.NoError(t, err)
	})

	t.Run("неявка запускает автоблокировку при достижении порога", func(t *testing.T) {
		env := newAppointmentTestEnv()

		confirmed := pendingAppt()
		confirmed.Status = domain.AppointmentStatusConfirmed
		setup(env, confirmed)

		env.policy.getByPage = func(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error) {
			return &domain.CancellationPolicy{
				BeautyPageID:     beautyPageID,
				IsEnabled:        true,
				MaxCancellations: 3,
				PeriodDays:       30,
				NoShowMultiplier: 2,
			}, nil
		}

		now := time.Now()
		env.appts.cancellationHistory = func(ctx context.Context, beautyPageID int64, cID *int64, phone string, since time.Time) ([]domain.CancellationRecord, error) {
			return []domain.CancellationRecord{
				{OccurredAt: now.AddDate(0, 0, -3)},
				{OccurredAt: now.AddDate(0, 0, -5), WasNoShow: true},
			}, nil
		}

		var block *domain.BlockedClient
		env.policy.createBlock = func(ctx context.Context, b domain.BlockedClient) (int64, error) {
			block = &b
			return 1, nil
		}

		err := env.service().Transition(ctx, 100, domain.UserRoleCreator, 42, domain.TransitionAppointmentDTO{
			Status: domain.AppointmentStatusNoShow,
		})
		require.NoError(t, err)

		require.NotNil(t, block)
		assert.False(t, block.IsManual)
		assert.Equal(t, 1, block.NoShowCount)
		require.NotNil(t, block.UserID)
		assert.Equal(t, clientID, *block.UserID)
	})

	t.Run("переход из терминального статуса запрещён", func(t *testing.T) {
		env := newAppointmentTestEnv()

		done := pendingAppt()
		done.Status = domain.AppointmentStatusCompleted
		setup(env, done)

		err := env.service().Transition(ctx, 100, domain.UserRoleCreator, 42, domain.TransitionAppointmentDTO{
			Status: domain.AppointmentStatusCancelled,
		})
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	})
}

func TestAppointmentReschedule(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	existing := func() *domain.Appointment {
		clientID := int64(7)
		return &domain.Appointment{
			ID:           42,
			BeautyPageID: 10,
			Date:         date,
			Start:        timeutil.TimeOfDay(600),
			End:          timeutil.TimeOfDay(660),
			Status:       domain.AppointmentStatusConfirmed,
			ClientID:     &clientID,
		}
	}

	setup := func(env *appointmentTestEnv, appt *domain.Appointment) {
		env.appts.getByID = func(ctx context.Context, id int64) (*domain.Appointment, error) {
			return appt, nil
		}
		env.pages.getByID = func(ctx context.Context, id int64) (*domain.BeautyPage, error) {
			return testPage(), nil
		}
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return testWorkingDay(d), nil
		}
	}

	strPtr := func(s string) *string { return &s }

	t.Run("перенос сохраняет длительность", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env, existing())

		var updated domain.Appointment
		env.appts.updateTimesValidated = func(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) error {
			updated = appt
			return nil
		}

		err := env.service().Reschedule(ctx, 100, 42, domain.RescheduleAppointmentDTO{
			StartTime: strPtr("14:00"),
		})
		require.NoError(t, err)

		assert.Equal(t, timeutil.TimeOfDay(840), updated.Start)
		assert.Equal(t, timeutil.TimeOfDay(900), updated.End)
	})

	t.Run("изменение конца двигает только границу", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env, existing())

		var updated domain.Appointment
		env.appts.updateTimesValidated = func(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) error {
			updated = appt
			return nil
		}

		err := env.service().Reschedule(ctx, 100, 42, domain.RescheduleAppointmentDTO{
			EndTime: strPtr("11:30"),
		})
		require.NoError(t, err)

		assert.Equal(t, timeutil.TimeOfDay(600), updated.Start)
		assert.Equal(t, timeutil.TimeOfDay(690), updated.End)
	})

	t.Run("сжатие ниже минимальной длительности отклоняется", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env, existing())

		err := env.service().Reschedule(ctx, 100, 42, domain.RescheduleAppointmentDTO{
			EndTime: strPtr("10:05"),
		})
		assert.ErrorIs(t, err, domain.ErrBelowMinDuration)
	})

	t.Run("чужая запись недоступна", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env, existing())

		err := env.service().Reschedule(ctx, 999, 42, domain.RescheduleAppointmentDTO{
			StartTime: strPtr("14:00"),
		})
		assert.Error(t, err)
	})

	t.Run("терминальная запись не переносится", func(t *testing.T) {
		env := newAppointmentTestEnv()

		cancelled := existing()
		cancelled.Status = domain.AppointmentStatusCancelled
		setup(env, cancelled)

		err := env.service().Reschedule(ctx, 100, 42, domain.RescheduleAppointmentDTO{
			StartTime: strPtr("14:00"),
		})
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	})

	t.Run("без новых даты и времени ошибка", func(t *testing.T) {
		env := newAppointmentTestEnv()
		setup(env, existing())

		err := env.service().Reschedule(ctx, 100, 42, domain.RescheduleAppointmentDTO{})
		assert.Error(t, err)
	})
}

func TestAppointmentCheckPlacement(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	t.Run("свободное время валидно", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return testWorkingDay(d), nil
		}

		result, err := env.service().CheckPlacement(ctx, 10, date, 600, 660, nil)
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("выходной день невалиден", func(t *testing.T) {
		env := newAppointmentTestEnv()

		result, err := env.service().CheckPlacement(ctx, 10, date, 600, 660, nil)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.ErrorIs(t, result.Reason, domain.ErrNotWorkingDay)
	})

	t.Run("пересечение с чужой записью", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return testWorkingDay(d), nil
		}
		env.appts.listByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) ([]domain.Appointment, error) {
			return []domain.Appointment{{
				ID:     3,
				Date:   d,
				Start:  timeutil.TimeOfDay(630),
				End:    timeutil.TimeOfDay(690),
				Status: domain.AppointmentStatusConfirmed,
			}}, nil
		}

		result, err := env.service().CheckPlacement(ctx, 10, date, 600, 660, nil)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		require.NotNil(t, result.ConflictWith)
		assert.Equal(t, int64(3), result.ConflictWith.ID)
	})

	t.Run("исключение самой записи при переносе", func(t *testing.T) {
		env := newAppointmentTestEnv()
		env.days.getByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) (*domain.WorkingDay, error) {
			return testWorkingDay(d), nil
		}
		env.appts.listByPageAndDate = func(ctx context.Context, beautyPageID int64, d time.Time) ([]domain.Appointment, error) {
			return []domain.Appointment{{
				ID:     3,
				Date:   d,
				Start:  timeutil.TimeOfDay(630),
				End:    timeutil.TimeOfDay(690),
				Status: domain.AppointmentStatusConfirmed,
			}}, nil
		}

		self := int64(3)
		result, err := env.service().CheckPlacement(ctx, 10, date, 600, 660, &self)
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})
}
