package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrRequired    = errors.New("is required")
	ErrTooLong     = errors.New("is too long")
	ErrInvalidID   = errors.New("must be positive")
	ErrBadEmail    = errors.New("is not a valid email")
	ErrBadPhone    = errors.New("is not a valid phone number")
	ErrBadPostal   = errors.New("is not a valid postal code")
	ErrBadDate     = errors.New("must be a date in YYYY-MM-DD format")
	ErrOutOfBounds = errors.New("is out of range")
)

var (
	phonePattern  = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,19}$`)
	postalPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 -]{1,9}$`)
)

// FieldError ошибка конкретного поля запроса
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func field(name string, err error) error {
	return &FieldError{Field: name, Err: err}
}

// ID положительный идентификатор
func ID(name string, id int64) error {
	if id <= 0 {
		return field(name, ErrInvalidID)
	}
	return nil
}

// Required непустая строка не длиннее max символов
func Required(name, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return field(name, ErrRequired)
	}
	return MaxLength(name, value, max)
}

// MaxLength длина в символах, а не в байтах
func MaxLength(name, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return field(name, fmt.Errorf("%w: max %d characters", ErrTooLong, max))
	}
	return nil
}

// OptionalMaxLength как MaxLength, nil пропускается
func OptionalMaxLength(name string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return MaxLength(name, *value, max)
}

// Email адрес вида local@domain без отображаемого имени
func Email(name, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return field(name, ErrRequired)
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".") {
		return field(name, ErrBadEmail)
	}
	return nil
}

// Phone необязательный телефон
func Phone(name string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if !phonePattern.MatchString(*value) {
		return field(name, ErrBadPhone)
	}
	return nil
}

// PostalCode необязательный почтовый индекс
func PostalCode(name string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if !postalPattern.MatchString(*value) {
		return field(name, ErrBadPostal)
	}
	return nil
}

// Range целое в границах [min, max]
func Range(name string, value, min, max int) error {
	if value < min || value > max {
		return field(name, fmt.Errorf("%w: expected %d..%d", ErrOutOfBounds, min, max))
	}
	return nil
}

// Date разбирает YYYY-MM-DD в полночь UTC
func Date(name, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, field(name, ErrRequired)
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, field(name, ErrBadDate)
	}
	return t, nil
}

// First первая ненулевая ошибка
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
