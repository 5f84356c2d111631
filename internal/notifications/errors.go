package notifications

import "errors"

// ErrPublish возвращается, когда событие не удалось отправить
var ErrPublish = errors.New("notifications: failed to publish event")
