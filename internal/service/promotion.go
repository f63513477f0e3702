package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"icelook/internal/domain"
	"icelook/internal/repository"
	"icelook/pkg/timeutil"
)

type PromotionServiceImpl struct {
	repo     repository.PromotionRepository
	svcRepo  repository.ServiceRepository
	pageRepo repository.BeautyPageRepository
	logger   *zap.Logger
}

func NewPromotionService(
	repo repository.PromotionRepository,
	svcRepo repository.ServiceRepository,
	pageRepo repository.BeautyPageRepository,
	logger *zap.Logger,
) *PromotionServiceImpl {
	return &PromotionServiceImpl{
		repo:     repo,
		svcRepo:  svcRepo,
		pageRepo: pageRepo,
		logger:   logger,
	}
}

func (s *PromotionServiceImpl) Create(ctx context.Context, userID int64, dto domain.CreatePromotionDTO) (int64, error) {
	page, err := s.pageRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения страницы пользователя", zap.Int64("userID", userID), zap.Error(err))
		return 0, errors.New("ошибка при создании акции")
	}
	if page == nil {
		return 0, errors.New("у пользователя нет страницы")
	}

	svc, err := s.svcRepo.GetByID(ctx, dto.ServiceID)
	if err != nil {
		s.logger.Error("ошибка получения услуги", zap.Int64("serviceID", dto.ServiceID), zap.Error(err))
		return 0, errors.New("ошибка при создании акции")
	}
	if svc == nil || svc.BeautyPageID != page.ID {
		return 0, errors.New("услуга не найдена")
	}

	promo := domain.Promotion{
		BeautyPageID:       page.ID,
		ServiceID:          svc.ID,
		Type:               dto.Type,
		DiscountPercentage: dto.DiscountPercentage,
		OriginalPriceCents: svc.PriceCents,
		// Цена со скидкой округляется вниз до цента.
		DiscountedPriceCents: svc.PriceCents * int64(100-dto.DiscountPercentage) / 100,
		Status:               domain.PromotionStatusActive,
	}

	switch dto.Type {
	case domain.PromotionTypeSale:
		sale := &domain.SalePromotionData{}
		if dto.StartsAt != nil {
			t, err := time.Parse(dateLayout, *dto.StartsAt)
			if err != nil {
				return 0, errors.New("некорректная дата начала акции")
			}
			sale.StartsAt = &t
		}
		if dto.EndsAt != nil {
			t, err := time.Parse(dateLayout, *dto.EndsAt)
			if err != nil {
				return 0, errors.New("некорректная дата окончания акции")
			}
			sale.EndsAt = &t
		}
		if sale.StartsAt != nil && sale.EndsAt != nil && sale.EndsAt.Before(*sale.StartsAt) {
			return 0, errors.New("окончание акции раньше её начала")
		}
		promo.Sale = sale

	case domain.PromotionTypeSlot:
		if dto.SlotDate == nil || dto.SlotStart == nil || dto.SlotEnd == nil {
			return 0, errors.New("для слотовой акции требуются дата и время слота")
		}
		slotDate, err := time.Parse(dateLayout, *dto.SlotDate)
		if err != nil {
			return 0, errors.New("некорректная дата слота")
		}
		slotStart, err := timeutil.Parse(*dto.SlotStart)
		if err != nil {
			return 0, err
		}
		slotEnd, err := timeutil.Parse(*dto.SlotEnd)
		if err != nil {
			return 0, err
		}
		if slotStart >= slotEnd {
			return 0, errors.New("начало слота должно быть раньше конца")
		}
		promo.Slot = &domain.SlotPromotionData{
			SlotDate:  slotDate,
			SlotStart: slotStart,
			SlotEnd:   slotEnd,
		}

	case domain.PromotionTypeTime:
		if dto.StartTime == nil {
			return 0, errors.New("для временной акции требуется время начала")
		}
		start, err := timeutil.Parse(*dto.StartTime)
		if err != nil {
			return 0, err
		}
		window := &domain.TimePromotionData{StartTime: start}
		if dto.Days != nil {
			days := make([]time.Weekday, 0, len(dto.Days))
			for _, d := range dto.Days {
				days = append(days, time.Weekday(d))
			}
			window.Days = days
		}
		if dto.ValidUntil != nil {
			t, err := time.Parse(dateLayout, *dto.ValidUntil)
			if err != nil {
				return 0, errors.New("некорректная дата окончания акции")
			}
			window.ValidUntil = &t
		}
		promo.TimeWindow = window

	default:
		return 0, errors.New("неизвестный тип акции")
	}

	id, err := s.repo.Create(ctx, promo)
	if err != nil {
		s.logger.Error("ошибка создания акции", zap.Error(err))
		return 0, errors.New("ошибка при создании акции")
	}

	return id, nil
}

func (s *PromotionServiceImpl) GetByID(ctx context.Context, id int64) (*domain.Promotion, error) {
	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения акции", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка при получении акции")
	}
	if promo == nil {
		return nil, errors.New("акция не найдена")
	}

	// Истечение вычисляется при чтении, в базе статус остаётся active.
	promo.Status = promo.EffectiveStatus(time.Now())
	return promo, nil
}

func (s *PromotionServiceImpl) List(ctx context.Context, filter domain.PromotionFilter) ([]domain.Promotion, error) {
	promotions, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ошибка получения списка акций", zap.Error(err))
		return nil, errors.New("ошибка при получении списка акций")
	}

	now := time.Now()
	for i := range promotions {
		promotions[i].Status = promotions[i].EffectiveStatus(now)
	}

	return promotions, nil
}

func (s *PromotionServiceImpl) BestForSlot(ctx context.Context, beautyPageID, serviceID int64, date time.Time, start timeutil.TimeOfDay) (*domain.Promotion, error) {
	promotions, err := s.repo.ListActiveByService(ctx, beautyPageID, serviceID)
	if err != nil {
		s.logger.Error("ошибка получения акций услуги",
			zap.Int64("beautyPageID", beautyPageID),
			zap.Int64("serviceID", serviceID),
			zap.Error(err))
		return nil, errors.New("ошибка при подборе акции")
	}

	return domain.BestPromotion(promotions, date, start, time.Now()), nil
}

func (s *PromotionServiceImpl) Deactivate(ctx context.Context, userID, id int64) error {
	page, err := s.pageRepo.GetByUserID(ctx, userID)
	if err != nil || page == nil {
		return errors.New("у пользователя нет страницы")
	}

	promo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения акции", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при отключении акции")
	}
	if promo == nil || promo.BeautyPageID != page.ID {
		return errors.New("акция не найдена")
	}

	if err := s.repo.UpdateStatus(ctx, id, domain.PromotionStatusInactive); err != nil {
		s.logger.Error("ошибка отключения акции", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при отключении акции")
	}

	return nil
}
