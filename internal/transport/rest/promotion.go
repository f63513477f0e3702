package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"icelook/internal/domain"
	"icelook/pkg/timeutil"
)

// @Summary Акция по ID
// @Tags Акции
// @Produce json
// @Param id path int true "ID акции"
// @Success 200 {object} domain.Promotion
// @Failure 404 {object} errorResponseBody "Акция не найдена"
// @Router /promotions/{id} [get]
func (h *Handler) getPromotionByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID акции")
		return
	}

	promotion, err := h.services.Promotion.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, promotion)
}

// @Summary Акции страницы мастера
// @Description Публичный список акций страницы, по умолчанию только действующие
// @Tags Акции
// @Produce json
// @Param id path int true "ID страницы"
// @Param status query string false "Фильтр по статусу (active, booked, expired, inactive)"
// @Param service_id query int false "Фильтр по услуге"
// @Success 200 {array} domain.Promotion
// @Router /pages/{id}/promotions [get]
func (h *Handler) getPagePromotions(c *gin.Context) {
	pageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || pageID <= 0 {
		badRequestResponse(c, "некорректный ID страницы")
		return
	}

	filter := domain.PromotionFilter{BeautyPageID: &pageID}

	if raw := c.Query("status"); raw != "" {
		status := domain.PromotionStatus(raw)
		filter.Status = &status
	} else {
		active := domain.PromotionStatusActive
		filter.Status = &active
	}
	if raw := c.Query("service_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ServiceID = &id
		}
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	filter.Limit = limit

	promotions, err := h.services.Promotion.List(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, promotions)
}

// @Summary Лучшая акция для слота
// @Description Подбирает акцию с максимальной скидкой для услуги на указанные дату и время
// @Tags Акции
// @Produce json
// @Param id path int true "ID страницы"
// @Param service_id query int true "ID услуги"
// @Param date query string true "Дата (YYYY-MM-DD)"
// @Param time query string true "Время начала (HH:MM)"
// @Success 200 {object} domain.Promotion
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /pages/{id}/promotions/best [get]
func (h *Handler) getBestPromotion(c *gin.Context) {
	pageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || pageID <= 0 {
		badRequestResponse(c, "некорректный ID страницы")
		return
	}

	serviceID, err := strconv.ParseInt(c.Query("service_id"), 10, 64)
	if err != nil || serviceID <= 0 {
		badRequestResponse(c, "некорректный ID услуги")
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		badRequestResponse(c, "некорректная дата, ожидается YYYY-MM-DD")
		return
	}

	start, err := timeutil.Parse(c.Query("time"))
	if err != nil {
		badRequestResponse(c, "некорректное время, ожидается HH:MM")
		return
	}

	promotion, err := h.services.Promotion.BestForSlot(c.Request.Context(), pageID, serviceID, date, start)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if promotion == nil {
		notFoundResponse(c, "подходящих акций нет")
		return
	}

	successResponse(c, http.StatusOK, promotion)
}

// @Summary Создание акции
// @Description Создаёт акцию типа sale, slot или time для услуги мастера
// @Tags Акции
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreatePromotionDTO true "Параметры акции"
// @Success 201 {object} successResponseBody "ID созданной акции"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /promotions [post]
func (h *Handler) createPromotion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreatePromotionDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Promotion.Create(c.Request.Context(), userID, input)
	if err != nil {
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Деактивация акции
// @Tags Акции
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID акции"
// @Success 204 "Акция деактивирована"
// @Failure 404 {object} errorResponseBody "Акция не найдена"
// @Router /promotions/{id} [delete]
func (h *Handler) deactivatePromotion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID акции")
		return
	}

	if err := h.services.Promotion.Deactivate(c.Request.Context(), userID, id); err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	noContentResponse(c)
}
