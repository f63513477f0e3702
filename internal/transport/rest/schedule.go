package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"icelook/internal/domain"
)

// @Summary Свободные слоты страницы на дату
// @Tags Расписание
// @Produce json
// @Param id path int true "ID страницы"
// @Param date query string true "Дата YYYY-MM-DD"
// @Success 200 {array} string "Времена начала HH:MM"
// @Failure 400 {object} errorResponseBody "Некорректная дата"
// @Router /pages/{id}/free-slots [get]
func (h *Handler) getFreeSlots(c *gin.Context) {
	id, ok := pageIDParam(c)
	if !ok {
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		badRequestResponse(c, "некорректная дата, ожидается YYYY-MM-DD")
		return
	}

	slots, err := h.services.Schedule.FreeSlots(c.Request.Context(), id, date)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, slots)
}

// @Summary Геометрия сетки календаря страницы
// @Description Часы видимой области и шаг привязки для недельного календаря
// @Tags Расписание
// @Produce json
// @Param id path int true "ID страницы"
// @Success 200 {object} map[string]int
// @Router /pages/{id}/calendar-grid [get]
func (h *Handler) getCalendarGrid(c *gin.Context) {
	id, ok := pageIDParam(c)
	if !ok {
		return
	}

	grid, err := h.services.Schedule.CalendarGrid(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	successResponse(c, http.StatusOK, gin.H{
		"start_hour":    grid.StartHour,
		"end_hour":      grid.EndHour,
		"day_count":     grid.DayCount,
		"snap_interval": grid.SnapInterval,
	})
}

// @Summary Рабочие дни страницы
// @Tags Расписание
// @Produce json
// @Param id path int true "ID страницы"
// @Param date_from query string false "Начало периода YYYY-MM-DD"
// @Param date_to query string false "Конец периода YYYY-MM-DD"
// @Success 200 {array} domain.WorkingDay
// @Router /pages/{id}/working-days [get]
func (h *Handler) getWorkingDays(c *gin.Context) {
	id, ok := pageIDParam(c)
	if !ok {
		return
	}

	filter := domain.WorkingDayFilter{BeautyPageID: &id}

	if raw := c.Query("date_from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.StartDate = &t
		}
	}
	if raw := c.Query("date_to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.EndDate = &t
		}
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "31"))
	if err != nil || limit <= 0 {
		limit = 31
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	filter.Limit = limit
	filter.Offset = offset

	days, total, err := h.services.Schedule.List(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	paginatedSuccessResponse(c, days, total, offset/limit+1, limit)
}

// @Summary Создание рабочего дня
// @Tags Расписание
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateWorkingDayDTO true "Дата, рабочие часы и перерывы"
// @Success 201 {object} successResponseBody "ID созданного рабочего дня"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /working-days [post]
func (h *Handler) createWorkingDay(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateWorkingDayDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Schedule.Create(c.Request.Context(), userID, input)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Рабочий день
// @Tags Расписание
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID рабочего дня"
// @Success 200 {object} domain.WorkingDay
// @Failure 404 {object} errorResponseBody "Рабочий день не найден"
// @Router /working-days/{id} [get]
func (h *Handler) getWorkingDayByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID рабочего дня")
		return
	}

	day, err := h.services.Schedule.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, day)
}

// @Summary Обновление рабочего дня
// @Tags Расписание
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID рабочего дня"
// @Param input body domain.UpdateWorkingDayDTO true "Новые часы или перерывы"
// @Success 200 {object} messageResponseType
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /working-days/{id} [put]
func (h *Handler) updateWorkingDay(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID рабочего дня")
		return
	}

	var input domain.UpdateWorkingDayDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Schedule.Update(c.Request.Context(), userID, id, input); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "рабочий день обновлён")
}

// @Summary Удаление рабочего дня
// @Tags Расписание
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID рабочего дня"
// @Success 204 {object} nil
// @Failure 400 {object} errorResponseBody "День содержит активные записи"
// @Router /working-days/{id} [delete]
func (h *Handler) deleteWorkingDay(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID рабочего дня")
		return
	}

	if err := h.services.Schedule.Delete(c.Request.Context(), userID, id); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	noContentResponse(c)
}
