package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"icelook/config"
	"icelook/internal/domain"
	"icelook/internal/repository"
	"icelook/internal/storage"
	"icelook/pkg/validator"
)

type BeautyPageServiceImpl struct {
	repo        repository.BeautyPageRepository
	fileStorage storage.FileStorage
	bookingCfg  config.BookingConfig
	logger      *zap.Logger
}

func NewBeautyPageService(
	repo repository.BeautyPageRepository,
	fileStorage storage.FileStorage,
	bookingCfg config.BookingConfig,
	logger *zap.Logger,
) *BeautyPageServiceImpl {
	return &BeautyPageServiceImpl{
		repo:        repo,
		fileStorage: fileStorage,
		bookingCfg:  bookingCfg,
		logger:      logger,
	}
}

func (s *BeautyPageServiceImpl) Create(ctx context.Context, userID int64, dto domain.CreateBeautyPageDTO) (int64, error) {
	if !validator.ValidateHandle(dto.Handle) {
		return 0, errors.New("некорректный адрес страницы")
	}

	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка проверки страницы пользователя", zap.Int64("userID", userID), zap.Error(err))
		return 0, errors.New("ошибка при создании страницы")
	}
	if existing != nil {
		return 0, errors.New("у пользователя уже есть страница")
	}

	taken, err := s.repo.GetByHandle(ctx, dto.Handle)
	if err != nil {
		s.logger.Error("ошибка проверки адреса страницы", zap.String("handle", dto.Handle), zap.Error(err))
		return 0, errors.New("ошибка при создании страницы")
	}
	if taken != nil {
		return 0, errors.New("адрес страницы уже занят")
	}

	dto.DisplayName = validator.SanitizeString(dto.DisplayName)
	dto.Description = validator.SanitizeString(dto.Description)

	id, err := s.repo.Create(ctx, userID, dto, s.bookingCfg.SlotIntervalMinutes)
	if err != nil {
		s.logger.Error("ошибка создания страницы", zap.Error(err))
		return 0, errors.New("ошибка при создании страницы")
	}

	return id, nil
}

func (s *BeautyPageServiceImpl) GetByID(ctx context.Context, id int64) (*domain.BeautyPage, error) {
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("ошибка получения страницы", zap.Int64("id", id), zap.Error(err))
		return nil, errors.New("ошибка при получении страницы")
	}
	if page == nil {
		return nil, errors.New("страница не найдена")
	}
	return page, nil
}

func (s *BeautyPageServiceImpl) GetByUserID(ctx context.Context, userID int64) (*domain.BeautyPage, error) {
	page, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("ошибка получения страницы пользователя", zap.Int64("userID", userID), zap.Error(err))
		return nil, errors.New("ошибка при получении страницы")
	}
	if page == nil {
		return nil, errors.New("страница не найдена")
	}
	return page, nil
}

func (s *BeautyPageServiceImpl) GetByHandle(ctx context.Context, handle string) (*domain.BeautyPage, error) {
	page, err := s.repo.GetByHandle(ctx, handle)
	if err != nil {
		s.logger.Error("ошибка получения страницы по адресу", zap.String("handle", handle), zap.Error(err))
		return nil, errors.New("ошибка при получении страницы")
	}
	if page == nil || !page.IsPublished {
		return nil, errors.New("страница не найдена")
	}
	return page, nil
}

// ownedPage возвращает страницу, если она принадлежит userID.
func (s *BeautyPageServiceImpl) ownedPage(ctx context.Context, userID, id int64) (*domain.BeautyPage, error) {
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("ошибка при получении страницы")
	}
	if page == nil {
		return nil, errors.New("страница не найдена")
	}
	if page.UserID != userID {
		return nil, errors.New("страница принадлежит другому пользователю")
	}
	return page, nil
}

func (s *BeautyPageServiceImpl) Update(ctx context.Context, userID, id int64, dto domain.UpdateBeautyPageDTO) error {
	if _, err := s.ownedPage(ctx, userID, id); err != nil {
		return err
	}

	if dto.DisplayName != nil {
		name := validator.SanitizeString(*dto.DisplayName)
		dto.DisplayName = &name
	}
	if dto.Description != nil {
		desc := validator.SanitizeString(*dto.Description)
		dto.Description = &desc
	}

	if err := s.repo.Update(ctx, id, dto); err != nil {
		s.logger.Error("ошибка обновления страницы", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при обновлении страницы")
	}

	return nil
}

func (s *BeautyPageServiceImpl) UploadPhoto(ctx context.Context, userID, id int64, photo []byte, filename string) (string, error) {
	page, err := s.ownedPage(ctx, userID, id)
	if err != nil {
		return "", err
	}

	if s.fileStorage == nil {
		return "", errors.New("загрузка файлов не настроена")
	}

	url, err := s.fileStorage.UploadFile(ctx, photo, filename)
	if err != nil {
		s.logger.Error("ошибка загрузки фото", zap.Int64("pageID", id), zap.Error(err))
		return "", errors.New("ошибка при загрузке фото")
	}

	if page.PhotoURL != "" {
		if err := s.fileStorage.DeleteFile(ctx, page.PhotoURL); err != nil {
			s.logger.Warn("не удалось удалить старое фото", zap.String("url", page.PhotoURL), zap.Error(err))
		}
	}

	if err := s.repo.UpdatePhoto(ctx, id, url); err != nil {
		s.logger.Error("ошибка сохранения фото", zap.Int64("pageID", id), zap.Error(err))
		return "", errors.New("ошибка при загрузке фото")
	}

	return url, nil
}

func (s *BeautyPageServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.ownedPage(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("ошибка удаления страницы", zap.Int64("id", id), zap.Error(err))
		return errors.New("ошибка при удалении страницы")
	}

	return nil
}
