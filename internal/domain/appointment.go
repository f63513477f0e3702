package domain

import (
	"time"

	"icelook/pkg/timeutil"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// IsTerminal — из терминального статуса переходов нет.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted ||
		s == AppointmentStatusCancelled ||
		s == AppointmentStatusNoShow
}

// legalTransitions — таблица допустимых переходов статуса.
var legalTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
}

// CanTransitionTo проверяет переход по таблице, без учёта ролей.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Actor — кто инициирует изменение записи.
type Actor string

const (
	ActorClient  Actor = "client"
	ActorCreator Actor = "creator"
	ActorAdmin   Actor = "admin"
)

// CancellationReason — закрытый перечень причин отмены клиентом.
type CancellationReason string

const (
	CancellationReasonChangedPlans  CancellationReason = "changed_plans"
	CancellationReasonFeelingUnwell CancellationReason = "feeling_unwell"
	CancellationReasonOther         CancellationReason = "other"
)

func (r CancellationReason) Valid() bool {
	switch r {
	case CancellationReasonChangedPlans, CancellationReasonFeelingUnwell, CancellationReasonOther:
		return true
	}
	return false
}

// Appointment — запись клиента к мастеру. Физически не удаляется:
// история фиксируется переходами статуса.
type Appointment struct {
	ID           int64              `json:"id"`
	BeautyPageID int64              `json:"beauty_page_id"`
	Date         time.Time          `json:"date"`
	Start        timeutil.TimeOfDay `json:"start"`
	End          timeutil.TimeOfDay `json:"end"`
	Status       AppointmentStatus  `json:"status"`

	// ClientID nil для гостевых записей, созданных мастером.
	ClientID    *int64 `json:"client_id,omitempty"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientNotes string `json:"client_notes,omitempty"`

	// Снимок услуги на момент создания. После изменения размеров записи
	// End-Start может разойтись с ServiceDurationMinutes — это допустимо.
	ServiceID              int64  `json:"service_id"`
	ServiceName            string `json:"service_name"`
	ServicePriceCents      int64  `json:"service_price_cents"`
	ServiceDurationMinutes int    `json:"service_duration_minutes"`
	ServiceCurrency        string `json:"service_currency"`

	CancelledBy        *Actor              `json:"cancelled_by,omitempty"`
	CancellationReason *CancellationReason `json:"cancellation_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Transition валидирует переход статуса с учётом роли инициатора и применяет его.
// Правила ролей:
//   - клиент может только отменить собственную запись, и только с причиной;
//   - подтверждение, завершение и неявка — действия мастера или администратора.
func (a *Appointment) Transition(target AppointmentStatus, actor Actor, actorUserID *int64, reason *CancellationReason) error {
	if !a.Status.CanTransitionTo(target) {
		return ErrIllegalTransition
	}

	switch target {
	case AppointmentStatusCancelled:
		if actor == ActorClient {
			if a.ClientID == nil || actorUserID == nil || *a.ClientID != *actorUserID {
				return ErrIllegalTransition
			}
			if reason == nil || !reason.Valid() {
				return ErrCancellationReasonRequired
			}
		}
		// Администратор действует от имени мастера: в CancelledBy
		// хранятся только client и creator.
		by := actor
		if by == ActorAdmin {
			by = ActorCreator
		}
		a.CancelledBy = &by
		a.CancellationReason = reason
	case AppointmentStatusConfirmed, AppointmentStatusCompleted, AppointmentStatusNoShow:
		if actor == ActorClient {
			return ErrIllegalTransition
		}
	}

	a.Status = target
	return nil
}

// IsActive — запись занимает время в календаре.
// Отменённые и неявки не участвуют в проверке конфликтов.
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusCancelled && a.Status != AppointmentStatusNoShow
}

type CreateAppointmentDTO struct {
	BeautyPageID int64   `json:"beauty_page_id" binding:"required"`
	ServiceIDs   []int64 `json:"service_ids" binding:"required"`
	Date         string  `json:"date" binding:"required"`
	StartTime    string  `json:"start_time" binding:"required"`
	ClientNotes  string  `json:"client_notes"`
}

// QuickBookingDTO — запись, создаваемая мастером (телефонный звонок, клиент с улицы).
// Создаётся сразу в статусе confirmed, клиент может быть анонимным гостем.
type QuickBookingDTO struct {
	ServiceIDs  []int64 `json:"service_ids" binding:"required"`
	Date        string  `json:"date" binding:"required"`
	StartTime   string  `json:"start_time" binding:"required"`
	ClientID    *int64  `json:"client_id"`
	GuestName   string  `json:"guest_name"`
	GuestPhone  string  `json:"guest_phone"`
	ClientNotes string  `json:"client_notes"`
}

// RescheduleAppointmentDTO — перенос или изменение длительности записи.
type RescheduleAppointmentDTO struct {
	Date      *string `json:"date,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

type TransitionAppointmentDTO struct {
	Status AppointmentStatus   `json:"status" binding:"required,oneof=confirmed completed cancelled no_show"`
	Reason *CancellationReason `json:"reason,omitempty"`
}

type AppointmentFilter struct {
	BeautyPageID *int64             `json:"beauty_page_id"`
	ClientID     *int64             `json:"client_id"`
	Status       *AppointmentStatus `json:"status"`
	Date         *time.Time         `json:"date"`
	StartDate    *time.Time         `json:"start_date"`
	EndDate      *time.Time         `json:"end_date"`
	Limit        int                `json:"limit"`
	Offset       int                `json:"offset"`
}
