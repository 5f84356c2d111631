package catalog

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrEmployeeNotFound возвращается, когда назначаемый сотрудник не найден
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrServiceInUse возвращается при удалении услуги, у которой есть бронирования
	ErrServiceInUse = errors.New("service has bookings")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
