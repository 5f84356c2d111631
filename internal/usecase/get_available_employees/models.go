package get_available_employees

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса свободных сотрудников
type Request struct {
	ServiceID int64
	Date      time.Time        // Дата (без времени)
	StartTime types.TimeString // Время начала, например "10:00"
}

// Response модель ответа со свободными сотрудниками
type Response struct {
	ServiceID       int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	EmployeeIDs     []int64 // по возрастанию, пустой список если свободных нет
}
