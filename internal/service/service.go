package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"icelook/config"
	"icelook/internal/domain"
	"icelook/internal/repository"
	"icelook/internal/storage"
	"icelook/pkg/cache"
	"icelook/pkg/timeutil"
)

type Deps struct {
	Repos       *repository.Repositories
	Logger      *zap.Logger
	Config      *config.Config
	FileStorage storage.FileStorage
	Cache       *cache.Cache
}

type Services struct {
	User        UserService
	Auth        AuthService
	BeautyPage  BeautyPageService
	Service     CatalogService
	Schedule    ScheduleService
	Appointment AppointmentService
	Policy      PolicyService
	Promotion   PromotionService
}

func NewServices(deps Deps) *Services {
	return &Services{
		User:        NewUserService(deps.Repos.User, deps.Repos.Auth, deps.Logger),
		Auth:        NewAuthService(deps.Repos.Auth, deps.Repos.User, deps.Config.JWT, deps.Logger),
		BeautyPage:  NewBeautyPageService(deps.Repos.BeautyPage, deps.FileStorage, deps.Config.Booking, deps.Logger),
		Service:     NewCatalogService(deps.Repos.Service, deps.Repos.BeautyPage, deps.Logger),
		Schedule:    NewScheduleService(deps.Repos.WorkingDay, deps.Repos.Appointment, deps.Repos.BeautyPage, deps.Cache, deps.Config.Booking, deps.Logger),
		Appointment: NewAppointmentService(deps.Repos, deps.Cache, deps.Config.Booking, deps.Logger),
		Policy:      NewPolicyService(deps.Repos.Policy, deps.Repos.BeautyPage, deps.Config.Booking, deps.Logger),
		Promotion:   NewPromotionService(deps.Repos.Promotion, deps.Repos.Service, deps.Repos.BeautyPage, deps.Logger),
	}
}

type UserService interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, dto domain.UpdateUserDTO) error
	UpdatePassword(ctx context.Context, id int64, dto domain.PasswordUpdateDTO) error
	Delete(ctx context.Context, id int64) error
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterRequest) (int64, error)
	Login(ctx context.Context, dto domain.LoginRequest, userAgent, ip string) (*domain.Tokens, error)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*domain.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
	ParseToken(ctx context.Context, token string) (int64, domain.UserRole, error)
}

type BeautyPageService interface {
	Create(ctx context.Context, userID int64, dto domain.CreateBeautyPageDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.BeautyPage, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.BeautyPage, error)
	GetByHandle(ctx context.Context, handle string) (*domain.BeautyPage, error)
	Update(ctx context.Context, userID, id int64, dto domain.UpdateBeautyPageDTO) error
	UploadPhoto(ctx context.Context, userID, id int64, photo []byte, filename string) (string, error)
	Delete(ctx context.Context, userID, id int64) error
}

type CatalogService interface {
	Create(ctx context.Context, userID int64, dto domain.CreateServiceDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.BookingService, error)
	ListByPage(ctx context.Context, beautyPageID int64, onlyActive bool) ([]domain.BookingService, error)
	Update(ctx context.Context, userID, id int64, dto domain.UpdateServiceDTO) error
	Delete(ctx context.Context, userID, id int64) error
}

type ScheduleService interface {
	Create(ctx context.Context, userID int64, dto domain.CreateWorkingDayDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.WorkingDay, error)
	List(ctx context.Context, filter domain.WorkingDayFilter) ([]domain.WorkingDay, int, error)
	Update(ctx context.Context, userID, id int64, dto domain.UpdateWorkingDayDTO) error
	Delete(ctx context.Context, userID, id int64) error
	// FreeSlots возвращает свободные времена начала "HH:MM" на дату
	// c шагом slot_interval страницы, под длительность услуги по умолчанию.
	// Для сегодняшней даты прошедшие времена не предлагаются.
	FreeSlots(ctx context.Context, beautyPageID int64, date time.Time) ([]string, error)
	CalendarGrid(ctx context.Context, beautyPageID int64) (domain.CalendarGrid, error)
}

type AppointmentService interface {
	Create(ctx context.Context, clientID int64, dto domain.CreateAppointmentDTO) (int64, error)
	QuickBook(ctx context.Context, userID int64, dto domain.QuickBookingDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, int, error)
	Transition(ctx context.Context, actorUserID int64, actorRole domain.UserRole, id int64, dto domain.TransitionAppointmentDTO) error
	Reschedule(ctx context.Context, userID int64, id int64, dto domain.RescheduleAppointmentDTO) error
	// CheckPlacement — сухая проверка размещения для подсветки валидности
	// перетаскивания в календаре, без записи в базу.
	CheckPlacement(ctx context.Context, beautyPageID int64, date time.Time, start, end int, excludeID *int64) (*domain.PlacementResult, error)
}

type PolicyService interface {
	GetByPage(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error)
	Update(ctx context.Context, userID int64, dto domain.UpdateCancellationPolicyDTO) error
	BlockClient(ctx context.Context, userID int64, dto domain.BlockClientDTO) (int64, error)
	UnblockClient(ctx context.Context, userID, blockID int64) error
	ListBlocks(ctx context.Context, userID int64) ([]domain.BlockedClient, error)
}

type PromotionService interface {
	Create(ctx context.Context, userID int64, dto domain.CreatePromotionDTO) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Promotion, error)
	List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error)
	BestForSlot(ctx context.Context, beautyPageID, serviceID int64, date time.Time, start timeutil.TimeOfDay) (*domain.Promotion, error)
	Deactivate(ctx context.Context, userID, id int64) error
}
