package middleware

import (
	"context"
	"net/http"

	apierrors "github.com/pribylovaa/go-contacts-service/internal/errors"
	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/pkg/log"
	"github.com/pribylovaa/go-contacts-service/internal/pkg/redact"
)

// Resolver превращает заголовок Authorization в пользователя.
type Resolver interface {
	Resolve(ctx context.Context, authHeader string) (*models.User, error)
}

type userCtxKey struct{}

// Authenticate пропускает запрос дальше только после успешного Resolve.
// Любая ошибка резолвинга пишется через errors.WriteError (401 для auth-ошибок,
// 500 для сбоев хранилища); обработчик в этом случае не вызывается.
func Authenticate(res Resolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			user, err := res.Resolve(r.Context(), header)
			if err != nil {
				log.From(r.Context()).Debug("auth_rejected", "authorization", redact.Token(header), "err", err)
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, user)
			ctx = log.With(ctx, "user_id", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext возвращает пользователя, положенного Authenticate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*models.User)
	return u, ok && u != nil
}
