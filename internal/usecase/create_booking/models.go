package create_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	Caller          *domain.Principal     // nil для анонимного запроса
	EmployeeID      int64                 // ID сотрудника
	ServiceID       int64                 // ID услуги
	Date            time.Time             // Дата бронирования (без времени)
	StartTime       types.TimeString      // Время начала, например "10:00"
	ParentBookingID *int64                // Родительское бронирование для групповой записи
	Message         *string               // Сообщение клиента (опционально)
	Client          *domain.ClientProfile // Данные клиента: анонимная запись или запись сотрудником от имени клиента
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	EmployeeID      int64
	ClientID        int64
	ServiceID       int64
	BookingDate     time.Time
	StartTime       types.TimeString
	EndTime         types.TimeString
	DurationMinutes int
	Status          string
	ParentBookingID *int64
	Message         *string
	ClientCreated   bool // true, если учётная запись клиента создана этим запросом

	CreatedAt time.Time
	UpdatedAt time.Time
}
