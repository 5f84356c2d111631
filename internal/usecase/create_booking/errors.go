package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = errors.New("create_booking: service is inactive")

	// ErrEmployeeNotFound возвращается, когда сотрудник не найден или не имеет роли employee
	ErrEmployeeNotFound = errors.New("create_booking: employee not found")

	// ErrEmployeeNotCapable возвращается, когда сотрудник не оказывает услугу
	ErrEmployeeNotCapable = errors.New("create_booking: employee does not provide this service")

	// ErrParentBookingNotFound возвращается, когда родительское бронирование не найдено
	ErrParentBookingNotFound = errors.New("create_booking: parent booking not found")

	// ErrInvalidParentBooking возвращается, когда дочернее бронирование нельзя привязать к родителю
	ErrInvalidParentBooking = errors.New("create_booking: invalid parent booking")

	// ErrDuplicateEmail возвращается, когда анонимный клиент указывает email существующего пользователя
	ErrDuplicateEmail = errors.New("create_booking: email is already used by another account")

	// ErrConcurrentBookingConflict возвращается, когда параллельная запись помешала завершить транзакцию
	// Запрос можно повторить
	ErrConcurrentBookingConflict = errors.New("create_booking: concurrent booking conflict")

	// ErrInvalidDate возвращается, когда дата в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает maxBookingDelayDays
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrTooLateToBook возвращается, когда до начала меньше minBookingDelayHours
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrAccessDenied возвращается, когда у пользователя нет права записывать других клиентов
	ErrAccessDenied = errors.New("create_booking: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
