package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"icelook/config"
	"icelook/internal/domain"
	"icelook/internal/repository"
	"icelook/pkg/validator"
)

type PolicyServiceImpl struct {
	repo       repository.PolicyRepository
	pageRepo   repository.BeautyPageRepository
	bookingCfg config.BookingConfig
	logger     *zap.Logger
}

func NewPolicyService(repo repository.PolicyRepository, pageRepo repository.BeautyPageRepository, bookingCfg config.BookingConfig, logger *zap.Logger) *PolicyServiceImpl {
	return &PolicyServiceImpl{
		repo:       repo,
		pageRepo:   pageRepo,
		bookingCfg: bookingCfg,
		logger:     logger,
	}
}

func (s *PolicyServiceImpl) GetByPage(ctx context.Context, beautyPageID int64) (*domain.CancellationPolicy, error) {
	policy, err := s.repo.GetByPage(ctx, beautyPageID)
	if err != nil {
		s.logger.Error("ошибка получения политики отмен", zap.Int64("pageID", beautyPageID), zap.Error(err))
		return nil, errors.New("ошибка при получении политики отмен")
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

func (s *PolicyServiceImpl) ownedPage(ctx context.Context, userID int64) (*domain.BeautyPage, error) {
	page, err := s.pageRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения страницы пользователя", zap.Int64("userID", userID), zap.Error(err))
		return nil, errors.New("ошибка при работе с политикой отмен")
	}
	if page == nil {
		return nil, errors.New("у пользователя нет страницы")
	}
	return page, nil
}

func (s *PolicyServiceImpl) Update(ctx context.Context, userID int64, dto domain.UpdateCancellationPolicyDTO) error {
	page, err := s.ownedPage(ctx, userID)
	if err != nil {
		return err
	}

	policy, err := s.GetByPage(ctx, page.ID)
	if err != nil {
		return err
	}

	if dto.IsEnabled != nil {
		policy.IsEnabled = *dto.IsEnabled
	}
	if dto.NoticeHours != nil {
		policy.NoticeHours = *dto.NoticeHours
	}
	if dto.MaxCancellations != nil {
		policy.MaxCancellations = *dto.MaxCancellations
	}
	if dto.PeriodDays != nil {
		policy.PeriodDays = *dto.PeriodDays
	}
	if dto.BlockDurationDays != nil {
		policy.BlockDurationDays = *dto.BlockDurationDays
	}
	if dto.NoShowMultiplier != nil {
		policy.NoShowMultiplier = *dto.NoShowMultiplier
	}

	if err := s.repo.Upsert(ctx, *policy); err != nil {
		s.logger.Error("ошибка сохранения политики отмен", zap.Int64("pageID", page.ID), zap.Error(err))
		return errors.New("ошибка при сохранении политики отмен")
	}

	return nil
}

// BlockClient — ручная блокировка клиента мастером. Без DurationDays
// блокировка бессрочная.
func (s *PolicyServiceImpl) BlockClient(ctx context.Context, userID int64, dto domain.BlockClientDTO) (int64, error) {
	page, err := s.ownedPage(ctx, userID)
	if err != nil {
		return 0, err
	}

	if dto.UserID == nil && dto.Phone == "" {
		return 0, errors.New("укажите клиента или телефон для блокировки")
	}

	phone := ""
	if dto.Phone != "" {
		if !validator.ValidatePhone(dto.Phone) {
			return 0, errors.New("некорректный номер телефона")
		}
		phone = validator.FormatPhone(dto.Phone)
	}

	now := time.Now()
	block := domain.BlockedClient{
		BeautyPageID: page.ID,
		UserID:       dto.UserID,
		Phone:        phone,
		IsManual:     true,
		BlockedAt:    now,
	}
	if dto.DurationDays != nil {
		until := now.AddDate(0, 0, *dto.DurationDays)
		block.BlockedUntil = &until
	}

	id, err := s.repo.CreateBlock(ctx, block)
	if err != nil {
		s.logger.Error("ошибка создания блокировки", zap.Int64("pageID", page.ID), zap.Error(err))
		return 0, errors.New("ошибка при блокировке клиента")
	}

	return id, nil
}

func (s *PolicyServiceImpl) UnblockClient(ctx context.Context, userID, blockID int64) error {
	page, err := s.ownedPage(ctx, userID)
	if err != nil {
		return err
	}

	blocks, err := s.repo.ListBlocks(ctx, page.ID)
	if err != nil {
		s.logger.Error("ошибка получения блокировок", zap.Int64("pageID", page.ID), zap.Error(err))
		return errors.New("ошибка при снятии блокировки")
	}

	found := false
	for _, b := range blocks {
		if b.ID == blockID {
			found = true
			break
		}
	}
	if !found {
		return errors.New("блокировка не найдена")
	}

	if err := s.repo.DeleteBlock(ctx, blockID); err != nil {
		s.logger.Error("ошибка снятия блокировки", zap.Int64("blockID", blockID), zap.Error(err))
		return errors.New("ошибка при снятии блокировки")
	}

	return nil
}

func (s *PolicyServiceImpl) ListBlocks(ctx context.Context, userID int64) ([]domain.BlockedClient, error) {
	page, err := s.ownedPage(ctx, userID)
	if err != nil {
		return nil, err
	}

	blocks, err := s.repo.ListBlocks(ctx, page.ID)
	if err != nil {
		s.logger.Error("ошибка получения блокировок", zap.Int64("pageID", page.ID), zap.Error(err))
		return nil, errors.New("ошибка при получении блокировок")
	}

	return blocks, nil
}
