package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"icelook/internal/domain"
	"icelook/pkg/timeutil"
)

// @Summary Создание записи клиентом
// @Description Клиент записывается на услуги; запись создаётся в статусе pending
// @Tags Записи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateAppointmentDTO true "Страница, услуги, дата и время"
// @Success 201 {object} successResponseBody "ID созданной записи"
// @Failure 400 {object} errorResponseBody "Нарушение правил размещения"
// @Failure 403 {object} errorResponseBody "Клиент заблокирован"
// @Failure 409 {object} errorResponseBody "Слот занят"
// @Router /appointments [post]
func (h *Handler) createAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateAppointmentDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Appointment.Create(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			ObserveBookingConflict()
		}
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Быстрая запись мастером
// @Description Мастер записывает клиента сам; запись сразу confirmed, клиент может быть гостем
// @Tags Записи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.QuickBookingDTO true "Услуги, дата, время и данные клиента"
// @Success 201 {object} successResponseBody "ID созданной записи"
// @Failure 400 {object} errorResponseBody "Нарушение правил размещения"
// @Failure 409 {object} errorResponseBody "Слот занят"
// @Router /appointments/quick [post]
func (h *Handler) quickBook(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.QuickBookingDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.Appointment.QuickBook(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			ObserveBookingConflict()
		}
		domainErrorResponse(c, err)
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

type checkPlacementRequest struct {
	BeautyPageID int64  `json:"beauty_page_id" binding:"required"`
	Date         string `json:"date" binding:"required"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
	ExcludeID    *int64 `json:"exclude_id"`
}

// @Summary Проверка размещения записи
// @Description Сухая проверка для подсветки валидности перетаскивания в календаре
// @Tags Записи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body checkPlacementRequest true "Кандидат на размещение"
// @Success 200 {object} domain.PlacementResult
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /appointments/check-placement [post]
func (h *Handler) checkPlacement(c *gin.Context) {
	var input checkPlacementRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		badRequestResponse(c, "некорректная дата, ожидается YYYY-MM-DD")
		return
	}

	start, err := timeutil.Parse(input.StartTime)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}
	end, err := timeutil.Parse(input.EndTime)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	result, err := h.services.Appointment.CheckPlacement(c.Request.Context(), input.BeautyPageID, date, start.Minutes(), end.Minutes(), input.ExcludeID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	// Причина отказа отдаётся текстом: фронту нужно показать её пользователю.
	response := gin.H{"valid": result.Valid}
	if result.Reason != nil {
		response["reason"] = result.Reason.Error()
	}
	if result.ConflictWith != nil {
		response["conflict_with"] = result.ConflictWith
	}

	successResponse(c, http.StatusOK, response)
}

// @Summary Список записей
// @Description Клиент видит свои записи, мастер — записи своей страницы
// @Tags Записи
// @Security ApiKeyAuth
// @Produce json
// @Param status query string false "Фильтр по статусу"
// @Param date query string false "Дата YYYY-MM-DD"
// @Param date_from query string false "Начало периода"
// @Param date_to query string false "Конец периода"
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} paginatedResponse
// @Router /appointments [get]
func (h *Handler) getAppointments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	role, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	filter := domain.AppointmentFilter{}

	switch role {
	case domain.UserRoleCreator:
		page, err := h.services.BeautyPage.GetByUserID(c.Request.Context(), userID)
		if err != nil {
			notFoundResponse(c, "страница не найдена")
			return
		}
		filter.BeautyPageID = &page.ID
	case domain.UserRoleAdmin:
		// Админ может фильтровать по любой странице.
		if raw := c.Query("beauty_page_id"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				filter.BeautyPageID = &id
			}
		}
	default:
		filter.ClientID = &userID
	}

	if raw := c.Query("status"); raw != "" {
		status := domain.AppointmentStatus(raw)
		filter.Status = &status
	}
	if raw := c.Query("date"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.Date = &t
		}
	}
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

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	filter.Limit = limit
	filter.Offset = offset

	appointments, total, err := h.services.Appointment.List(c.Request.Context(), filter)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	paginatedSuccessResponse(c, appointments, total, offset/limit+1, limit)
}

// @Summary Запись по ID
// @Tags Записи
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID записи"
// @Success 200 {object} domain.Appointment
// @Failure 404 {object} errorResponseBody "Запись не найдена"
// @Router /appointments/{id} [get]
func (h *Handler) getAppointmentByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	role, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID записи")
		return
	}

	appt, err := h.services.Appointment.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	if !h.canViewAppointment(c, userID, role, appt) {
		forbiddenResponse(c)
		return
	}

	successResponse(c, http.StatusOK, appt)
}

func (h *Handler) canViewAppointment(c *gin.Context, userID int64, role domain.UserRole, appt *domain.Appointment) bool {
	if role == domain.UserRoleAdmin {
		return true
	}
	if appt.ClientID != nil && *appt.ClientID == userID {
		return true
	}

	page, err := h.services.BeautyPage.GetByID(c.Request.Context(), appt.BeautyPageID)
	return err == nil && page.UserID == userID
}

// @Summary Переход статуса записи
// @Description Подтверждение, завершение, отмена или неявка с проверкой ролей и политики отмен
// @Tags Записи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.TransitionAppointmentDTO true "Целевой статус и причина отмены"
// @Success 200 {object} messageResponseType
// @Failure 409 {object} errorResponseBody "Недопустимый переход или истёкшее окно отмены"
// @Router /appointments/{id}/status [put]
func (h *Handler) transitionAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	role, err := getUserRole(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID записи")
		return
	}

	var input domain.TransitionAppointmentDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Appointment.Transition(c.Request.Context(), userID, role, id, input); err != nil {
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "статус записи обновлён")
}

// @Summary Перенос или изменение длительности записи
// @Description Перетаскивание в календаре мастера: move сохраняет длительность, resize двигает границу
// @Tags Записи
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID записи"
// @Param input body domain.RescheduleAppointmentDTO true "Новые дата и времена"
// @Success 200 {object} messageResponseType
// @Failure 400 {object} errorResponseBody "Нарушение правил размещения"
// @Failure 409 {object} errorResponseBody "Слот занят"
// @Router /appointments/{id}/times [put]
func (h *Handler) rescheduleAppointment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID записи")
		return
	}

	var input domain.RescheduleAppointmentDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.Appointment.Reschedule(c.Request.Context(), userID, id, input); err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			ObserveBookingConflict()
		}
		domainErrorResponse(c, err)
		return
	}

	messageResponse(c, http.StatusOK, "запись перенесена")
}
