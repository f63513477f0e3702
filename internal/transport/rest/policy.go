package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"icelook/internal/domain"
)

// @Summary Политика отмен страницы мастера
// @Tags Политика отмен
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} domain.CancellationPolicy
// @Failure 404 {object} errorResponseBody "Страница не найдена"
// @Router /cancellation-policy [get]
func (h *Handler) getMyPolicy(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	page, err := h.services.BeautyPage.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		notFoundResponse(c, "страница не найдена")
		return
	}

	policy, err := h.services.Policy.GetByPage(c.Request.Context(), page.ID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, policy)
}

// @Summary Обновление политики отмен
// @Description Частичное обновление: не переданные поля остаются прежними
// @Tags Политика отмен
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.UpdateCancellationPolicyDTO true "Новые параметры политики"
// @Success 200 {object} messageResponseType
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /cancellation-policy [put]
func (h *Handler) updatePolicy(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.UpdateCancellationPolicyDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Policy.Update(c.Request.Context(), userID, input); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "политика отмен обновлена")
}

// @Summary Список заблокированных клиентов
// @Tags Политика отмен
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} domain.BlockedClient
// @Router /cancellation-policy/blocks [get]
func (h *Handler) getBlockedClients(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	blocks, err := h.services.Policy.ListBlocks(c.Request.Context(), userID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, blocks)
}

// @Summary Ручная блокировка клиента
// @Description Блокирует клиента по ID или телефону на заданный срок либо бессрочно
// @Tags Политика отмен
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.BlockClientDTO true "Клиент и срок блокировки"
// @Success 201 {object} successResponseBody "ID блокировки"
// @Failure 400 {object} errorResponseBody "Не указан клиент"
// @Router /cancellation-policy/blocks [post]
func (h *Handler) blockClient(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.BlockClientDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Policy.BlockClient(c.Request.Context(), userID, input)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Снятие блокировки
// @Tags Политика отмен
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID блокировки"
// @Success 204 "Блокировка снята"
// @Failure 404 {object} errorResponseBody "Блокировка не найдена"
// @Router /cancellation-policy/blocks/{id} [delete]
func (h *Handler) unblockClient(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	blockID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || blockID <= 0 {
		badRequestResponse(c, "некорректный ID блокировки")
		return
	}

	if err := h.services.Policy.UnblockClient(c.Request.Context(), userID, blockID); err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	noContentResponse(c)
}
