package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"icelook/internal/domain"
)

const maxPhotoSizeBytes = 5 << 20

func pageIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequestResponse(c, "некорректный ID страницы")
		return 0, false
	}
	return id, true
}

// @Summary Страница мастера
// @Tags Страницы
// @Produce json
// @Param id path int true "ID страницы"
// @Success 200 {object} domain.BeautyPage
// @Failure 404 {object} errorResponseBody "Страница не найдена"
// @Router /pages/{id} [get]
func (h *Handler) getPageByID(c *gin.Context) {
	id, ok := pageIDParam(c)
	if !ok {
		return
	}

	page, err := h.services.BeautyPage.GetByID(c.Request.Context(), id)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, page)
}

// @Summary Страница мастера по адресу
// @Tags Страницы
// @Produce json
// @Param handle path string true "Адрес страницы"
// @Success 200 {object} domain.BeautyPage
// @Failure 404 {object} errorResponseBody "Страница не найдена"
// @Router /pages/handle/{handle} [get]
func (h *Handler) getPageByHandle(c *gin.Context) {
	page, err := h.services.BeautyPage.GetByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, page)
}

// @Summary Собственная страница мастера
// @Tags Страницы
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} domain.BeautyPage
// @Failure 404 {object} errorResponseBody "Страница не найдена"
// @Router /pages/me [get]
func (h *Handler) getMyPage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	page, err := h.services.BeautyPage.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		notFoundResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, page)
}

// @Summary Создание страницы
// @Tags Страницы
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param input body domain.CreateBeautyPageDTO true "Данные страницы"
// @Success 201 {object} successResponseBody "ID созданной страницы"
// @Failure 400 {object} errorResponseBody "Ошибка валидации"
// @Router /pages [post]
func (h *Handler) createPage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	var input domain.CreateBeautyPageDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	id, err := h.services.BeautyPage.Create(c.Request.Context(), userID, input)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	createdResponse(c, map[string]interface{}{
		"id": id,
	})
}

// @Summary Обновление страницы
// @Tags Страницы
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path int true "ID страницы"
// @Param input body domain.UpdateBeautyPageDTO true "Изменяемые поля"
// @Success 200 {object} messageResponseType
// @Failure 403 {object} errorResponseBody "Страница принадлежит другому пользователю"
// @Router /pages/{id} [put]
func (h *Handler) updatePage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := pageIDParam(c)
	if !ok {
		return
	}

	var input domain.UpdateBeautyPageDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("неверный формат данных", zap.Error(err))
		badRequestResponse(c, "неверный формат данных")
		return
	}

	if err := h.services.BeautyPage.Update(c.Request.Context(), userID, id, input); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	messageResponse(c, http.StatusOK, "страница обновлена")
}

// @Summary Загрузка фото страницы
// @Tags Страницы
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID страницы"
// @Param photo formData file true "Файл изображения"
// @Success 200 {object} successResponseBody "URL загруженного фото"
// @Failure 400 {object} errorResponseBody "Некорректный файл"
// @Router /pages/{id}/photo [post]
func (h *Handler) uploadPagePhoto(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := pageIDParam(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		badRequestResponse(c, "не удалось прочитать файл")
		return
	}
	defer file.Close()

	if header.Size > maxPhotoSizeBytes {
		badRequestResponse(c, "файл слишком большой, максимум 5 МБ")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSizeBytes))
	if err != nil {
		h.logger.Error("ошибка чтения файла", zap.Error(err))
		badRequestResponse(c, "не удалось прочитать файл")
		return
	}

	url, err := h.services.BeautyPage.UploadPhoto(c.Request.Context(), userID, id, data, header.Filename)
	if err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	successResponse(c, http.StatusOK, map[string]interface{}{
		"photo_url": url,
	})
}

// @Summary Снятие страницы с публикации
// @Tags Страницы
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "ID страницы"
// @Success 204 {object} nil
// @Failure 403 {object} errorResponseBody "Страница принадлежит другому пользователю"
// @Router /pages/{id} [delete]
func (h *Handler) deletePage(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		unauthorizedResponse(c)
		return
	}

	id, ok := pageIDParam(c)
	if !ok {
		return
	}

	if err := h.services.BeautyPage.Delete(c.Request.Context(), userID, id); err != nil {
		badRequestResponse(c, err.Error())
		return
	}

	noContentResponse(c)
}
