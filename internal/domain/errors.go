package domain

import (
	"errors"
)

// Сентинели доменных ошибок. Сервисный слой и транспорт различают их
// через errors.Is, тексты — пользовательские сообщения.
var (
	ErrNotWorkingDay              = errors.New("на эту дату нет рабочего дня")
	ErrOutsideWorkingHours        = errors.New("время вне рабочих часов")
	ErrBreakConflict              = errors.New("время попадает на перерыв")
	ErrTimeConflict               = errors.New("время пересекается с другой записью")
	ErrBelowMinDuration           = errors.New("длительность записи меньше минимальной")
	ErrIllegalTransition          = errors.New("недопустимый переход статуса записи")
	ErrCancellationReasonRequired = errors.New("для отмены требуется указать причину")
	ErrEmptySelection             = errors.New("не выбрано ни одной услуги")
	ErrMixedCurrencies            = errors.New("услуги с разными валютами нельзя объединить в одну запись")
	ErrCancellationWindowPassed   = errors.New("срок бесплатной отмены истёк")
	ErrClientBlocked              = errors.New("клиент заблокирован на этой странице")
	ErrSlotTaken                  = errors.New("слот только что заняли, выберите другое время")
)
