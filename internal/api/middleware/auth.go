package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	userRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/user"
)

// DefaultUserIDHeader заголовок, который проставляет gateway после проверки токена
const DefaultUserIDHeader = "X-User-ID"

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgInvalidUserID = "некорректный ID пользователя"
	msgUnknownUser   = "пользователь не найден"
	msgForbidden     = "доступ запрещен"
)

type principalKey struct{}

// WithPrincipal кладёт пользователя запроса в контекст
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// GetPrincipal пользователь запроса, false для анонимного запроса
func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// GetUserID ID пользователя запроса
func GetUserID(ctx context.Context) (int64, bool) {
	p, ok := GetPrincipal(ctx)
	return p.UserID, ok
}

// Authenticator достаёт пользователя по заголовку и подгружает его роли из БД
type Authenticator struct {
	users  UserLoader
	header string
	logger Logger
}

func NewAuthenticator(users UserLoader, header string, logger Logger) *Authenticator {
	if header == "" {
		header = DefaultUserIDHeader
	}
	return &Authenticator{users: users, header: header, logger: logger}
}

// Required пропускает только аутентифицированные запросы
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return a.wrap(next, false)
}

// Optional пропускает анонимные запросы без пользователя в контексте
// Присланный, но невалидный заголовок всё равно отклоняется
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return a.wrap(next, true)
}

func (a *Authenticator) wrap(next http.Handler, optional bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(a.header))
		if raw == "" {
			if optional {
				next.ServeHTTP(w, r)
				return
			}
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			a.logger.Warn("Auth: invalid user id header value=%q request_id=%s", raw, GetRequestID(r.Context()))
			handlers.RespondUnauthorized(w, msgInvalidUserID)
			return
		}

		user, err := a.users.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				a.logger.Warn("Auth: unknown user id=%d request_id=%s", id, GetRequestID(r.Context()))
				handlers.RespondUnauthorized(w, msgUnknownUser)
				return
			}
			a.logger.Error("Auth: failed to load user id=%d request_id=%s: %v", id, GetRequestID(r.Context()), err)
			handlers.RespondInternalError(w)
			return
		}

		ctx := WithPrincipal(r.Context(), domain.Principal{UserID: user.ID, Roles: user.Roles})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability отклоняет запросы пользователей без нужного права
// Ставится после Required
func RequireCapability(c domain.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				handlers.RespondUnauthorized(w, msgMissingUserID)
				return
			}
			if !p.Can(c) {
				handlers.RespondForbidden(w, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
