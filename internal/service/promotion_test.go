package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"icelook/internal/domain"
	"icelook/pkg/timeutil"
)

func TestPromotionBestForSlot(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	salePromo := func(id int64, discount int) domain.Promotion {
		return domain.Promotion{
			ID:                 id,
			BeautyPageID:       10,
			ServiceID:          1,
			Type:               domain.PromotionTypeSale,
			DiscountPercentage: discount,
			Status:             domain.PromotionStatusActive,
			Sale:               &domain.SalePromotionData{},
		}
	}

	t.Run("выбирает акцию с наибольшей скидкой", func(t *testing.T) {
		repo := &stubPromotionRepo{
			listActiveByService: func(ctx context.Context, beautyPageID, serviceID int64) ([]domain.Promotion, error) {
				assert.Equal(t, int64(10), beautyPageID)
				assert.Equal(t, int64(1), serviceID)
				return []domain.Promotion{salePromo(1, 15), salePromo(2, 20)}, nil
			},
		}
		svc := NewPromotionService(repo, &stubServiceRepo{}, &stubBeautyPageRepo{}, zap.NewNop())

		best, err := svc.BestForSlot(context.Background(), 10, 1, date, timeutil.TimeOfDay(600))
		require.NoError(t, err)
		require.NotNil(t, best)
		assert.Equal(t, int64(2), best.ID)
	})

	t.Run("без подходящих акций возвращает nil", func(t *testing.T) {
		repo := &stubPromotionRepo{
			listActiveByService: func(ctx context.Context, beautyPageID, serviceID int64) ([]domain.Promotion, error) {
				return nil, nil
			},
		}
		svc := NewPromotionService(repo, &stubServiceRepo{}, &stubBeautyPageRepo{}, zap.NewNop())

		best, err := svc.BestForSlot(context.Background(), 10, 1, date, timeutil.TimeOfDay(600))
		require.NoError(t, err)
		assert.Nil(t, best)
	})

	t.Run("ошибка репозитория не протекает наружу", func(t *testing.T) {
		repo := &stubPromotionRepo{
			listActiveByService: func(ctx context.Context, beautyPageID, serviceID int64) ([]domain.Promotion, error) {
				return nil, errors.New("connection refused")
			},
		}
		svc := NewPromotionService(repo, &stubServiceRepo{}, &stubBeautyPageRepo{}, zap.NewNop())

		best, err := svc.BestForSlot(context.Background(), 10, 1, date, timeutil.TimeOfDay(600))
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "connection refused")
		assert.Nil(t, best)
	})
}
