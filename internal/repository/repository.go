package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"icelook/internal/domain"
)

type Repositories struct {
	User        UserRepository
	Auth        AuthRepository
	BeautyPage  BeautyPageRepository
	Service     ServiceRepository
	WorkingDay  WorkingDayRepository
	Appointment AppointmentRepository
	Policy      PolicyRepository
	Promotion   PromotionRepository
}

func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Auth:        NewAuthRepository(db),
		BeautyPage:  NewBeautyPageRepository(db),
		Service:     NewServiceRepository(db),
		WorkingDay:  NewWorkingDayRepository(db),
		Appointment: NewAppointmentRepository(db),
		Policy:      NewPolicyRepository(db),
		Promotion:   NewPromotionRepository(db),
	}
}

type UserRepository interface {
	Create(ctx context.Context, user domain.CreateUserDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, id int64, user domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

type AuthRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUserID(ctx context.Context, userID int64) error
}

type BeautyPageRepository interface {
	Create(ctx context.Context, userID int64, page domain.CreateBeautyPageDTO, slotInterval int) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.BeautyPage, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.BeautyPage, error)
	GetByHandle(ctx context.Context, handle string) (*domain.BeautyPage, error)
	Update(ctx context.Context, id int64, page domain.UpdateBeautyPageDTO) error
	UpdatePhoto(ctx context.Context, id int64, photoURL string) error
	Delete(ctx context.Context, id int64) error
}

type ServiceRepository interface {
	Create(ctx context.Context, beautyPageID int64, dto domain.CreateServiceDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.BookingService, error)
	GetByIDs(ctx context.Context, beautyPageID int64, ids []int64) ([]domain.BookingService, error)
	ListByPage(ctx context.Context, beautyPageID int64, onlyActive bool) ([]domain.BookingService, error)
	Update(ctx context.Context, id int64, dto domain.UpdateServiceDTO) error
	Delete(ctx context.Context, id int64) error
}

type WorkingDayRepository interface {
	Create(ctx context.Context, day domain.WorkingDay) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.WorkingDay, error)
	GetByPageAndDate(ctx context.Context, beautyPageID int64, date time.Time) (*domain.WorkingDay, error)
	List(ctx context.Context, filter domain.WorkingDayFilter) ([]domain.WorkingDay, int, error)
	Update(ctx context.Context, day domain.WorkingDay) error
	Delete(ctx context.Context, id int64) error
}

type AppointmentRepository interface {
	// CreateValidated проверяет размещение на свежем снимке записей дня
	// внутри транзакции и вставляет запись. Возвращает domain.ErrSlotTaken
	// при проигрыше гонки за слот.
	CreateValidated(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) (int64, error)
	// UpdateTimesValidated переносит или растягивает запись с той же
	// транзакционной проверкой, исключая саму запись из поиска конфликтов.
	UpdateTimesValidated(ctx context.Context, appt domain.Appointment, workingDays []domain.WorkingDay) error
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListByPageAndDate(ctx context.Context, beautyPageID int64, date time.Time) ([]domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
	UpdateStatus(ctx context.Context, appt domain.Appointment) error
	// CancellationHistory возвращает отмены и неявки клиента на странице
	// начиная с момента since (для скользящего окна политики отмен).
	CancellationHistory(ctx context.Context, beautyPageID int64, clientID *int64, phone string, since time.Time) ([]domain.CancellationRecord, error)
}

type PolicyRepository interface {
	GetByPage(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error)
	Upsert(ctx context.Context, policy domain.CancellationPolicy) error
	CreateBlock(ctx context.Context, block domain.BlockedClient) (int64, error)
	// FindActiveBlock ищет действующую блокировку по userID или телефону.
	FindActiveBlock(ctx context.Context, beautyPageID int64, userID *int64, phone string, now time.Time) (*domain.BlockedClient, error)
	ListBlocks(ctx context.Context, beautyPageID int64) ([]domain.BlockedClient, error)
	DeleteBlock(ctx context.Context, id int64) error
}

type PromotionRepository interface {
	Create(ctx context.Context, promo domain.Promotion) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Promotion, error)
	List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error)
	ListActiveByService(ctx context.Context, beautyPageID, serviceID int64) ([]domain.Promotion, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PromotionStatus) error
	// MarkSlotBooked переводит слотовую акцию в booked. Повторная пометка
	// уже занятой акции — no-op, не ошибка.
	MarkSlotBooked(ctx context.Context, id int64) error
}
