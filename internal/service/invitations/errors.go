package invitations

import "errors"

var (
	// ErrInvitationNotFound возвращается, когда приглашение не найдено
	ErrInvitationNotFound = errors.New("invitation not found")

	// ErrInvitationExists возвращается, когда на email уже есть приглашение
	ErrInvitationExists = errors.New("invitation for this email already exists")

	// ErrInvitationNotPending возвращается, когда приглашение уже принято, отклонено или отозвано
	ErrInvitationNotPending = errors.New("invitation is not pending")

	// ErrAlreadyMember возвращается, когда у пользователя с этим email уже есть приглашаемая роль
	ErrAlreadyMember = errors.New("user already has this role")

	// ErrEmailTaken возвращается, когда email заняли между чтением и созданием учётной записи
	ErrEmailTaken = errors.New("email is already taken")

	// ErrServiceNotFound возвращается, когда одна из услуг приглашения не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
