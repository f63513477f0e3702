package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"icelook/internal/domain"
)

// @Summary Услуга
// @Tags Услуги
// @Produce json
// @Param id path int true "ID услуги"
// @Success 200 {object} domain.BookingService
// @Failure 404 {object} errorResponseBody "Услуга не найдена"
// @Router /services/{id} [get]
func (h *Handler) getServiceByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID услуги")
		return
	}

	svc, err := h.services.Service.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, svc)
}

// @Summary Каталог услуг страницы
// @Tags Услуги
// @Produce json
// @Param id path int true "ID страницы"
// @Param all query bool false "Включать неактивные услуги"
// @Success 200 {array} domain.BookingService
// @Router /pages/{id}/services [get]
func (h *Handler) getPageServices(c *gin.Context) {
	id, ok := pageIDParam(c)
	if !ok {
		return
	}

	onlyActive := c.DefaultQuery("all", "false") != "true"

	services, err := h.services.Service.ListByPage(c.Request.Context(), id, onlyActive)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, services)
}

// @Summary Создание услуги
// @Tags Услуги
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateServiceDTO true "Данные услуги"
// @Success 201 {object} successResponseBody "ID созданной услуги"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /services [post]
func (h *Handler) createService(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateServiceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Service.Create(c.Request.Context(), userID, input)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Обновление услуги
// @Tags Услуги
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID услуги"
// @Param input body domain.UpdateServiceDTO true "Изменяемые поля"
// @Success 200 {object} messageResponseType
// @Failure 403 {object} errorResponseBody "Услуга принадлежит другому мастеру"
// @Router /services/{id} [put]
func (h *Handler) updateService(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID услуги")
		return
	}

	var input domain.UpdateServiceDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Service.Update(c.Request.Context(), userID, id, input); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "услуга обновлена")
}

// @Summary Удаление услуги
// @Description Услуга скрывается из каталога, существующие записи сохраняют её снимок
// @Tags Услуги
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID услуги"
// @Success 204 {object} nil
// @Failure 403 {object} errorResponseBody "Услуга принадлежит другому мастеру"
// @Router /services/{id} [delete]
func (h *Handler) deleteService(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID услуги")
		return
	}

	if err := h.services.Service.Delete(c.Request.Context(), userID, id); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	noContentResponse(c)
}
