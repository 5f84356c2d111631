package parameters

import "errors"

var (
	// ErrParametersNotFound возвращается, когда параметры бизнеса ещё не заданы
	ErrParametersNotFound = errors.New("parameters.repository: parameters not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("parameters.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("parameters.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("parameters.repository: failed to scan row")
)
