package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"icelook/internal/domain"
	"icelook/internal/repository"
	"icelook/pkg/validator"
)

type CatalogServiceImpl struct {
	repo     repository.ServiceRepository
	pageRepo repository.BeautyPageRepository
	logger   *zap.Logger
}

func NewCatalogService(repo repository.ServiceRepository, pageRepo repository.BeautyPageRepository, logger *zap.Logger) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		repo:     repo,
		pageRepo: pageRepo,
		logger:   logger,
	}
}

func (s *CatalogServiceImpl) Create(ctx context.Context, userID int64, dto domain.CreateServiceDTO) (int64, error) {
	page, err := s.pageRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения страницы пользователя", zap.Int64("userID", userID), zap.Error(err))
		return 0, errors.New("ошибка при создании услуги")
	}
	if page == nil {
		return 0, errors.New("у пользователя нет страницы")
	}

	dto.Name = validator.SanitizeString(dto.Name)

	id, err := s.repo.Create(ctx, page.ID, dto)
	if err != nil {
		s.logger.Error("ошибка создания услуги", zap.Error(err))
		return 0, errors.New("ошибка при создании услуги")
	}

	return id, nil
}

func (s *CatalogServiceImpl) GetByID(ctx context.Context, id int64) (*domain.BookingService, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения услуги", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка при получении услуги")
	}
	if svc == nil {
		return nil, errors.New("услуга не найдена")
	}
	return svc, nil
}

func (s *CatalogServiceImpl) ListByPage(ctx context.Context, beautyPageID int64, onlyActive bool) ([]domain.BookingService, error) {
	services, err := s.repo.ListByPage(ctx, beautyPageID, onlyActive)
	if err != nil {
		s.logger.Error("ошибка получения списка услуг", zap.Int64("pageID", beautyPageID), zap.Error(err))
		return nil, errors.New("ошибка при получении списка услуг")
	}
	return services, nil
}

// owned проверяет, что услуга принадлежит странице пользователя.
func (s *CatalogServiceImpl) owned(ctx context.Context, userID, serviceID int64) error {
	svc, err := s.repo.GetByID(ctx, serviceID)
	if err != nil {
		return errors.New("ошибка при получении услуги")
	}
	if svc == nil {
		return errors.New("услуга не найдена")
	}

	page, err := s.pageRepo.GetByID(ctx, svc.BeautyPageID)
	if err != nil || page == nil {
		return errors.New("страница услуги не найдена")
	}
	if page.UserID != userID {
		return errors.New("услуга принадлежит другому мастеру")
	}

	return nil
}

func (s *CatalogServiceImpl) Update(ctx context.Context, userID, id int64, dto domain.UpdateServiceDTO) error {
	if err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	if dto.Name != nil {
		name := validator.SanitizeString(*dto.Name)
		dto.Name = &name
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления услуги", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении услуги")
	}

	return nil
}

func (s *CatalogServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	if err := s.owned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления услуги", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при удалении услуги")
	}

	return nil
}
