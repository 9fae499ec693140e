package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pribylovaa/go-contacts-service/internal/pkg/log"
)

// ErrRequestTimeout - причина отмены контекста, когда запрос упёрся в лимит Timeout.
var ErrRequestTimeout = errors.New("request timeout")

// Timeout ограничивает обработку запроса сроком d. Более ранний дедлайн
// родительского контекста остаётся в силе; d <= 0 отключает лимит.
// Срабатывание именно этого лимита логируется как request_timeout.
func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeoutCause(r.Context(), d, ErrRequestTimeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(context.Cause(ctx), ErrRequestTimeout) {
				log.From(ctx).Warn("request_timeout", "path", r.URL.Path, "limit", d)
			}
		})
	}
}
