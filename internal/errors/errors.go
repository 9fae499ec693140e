// errors стандартизирует ответы об ошибках HTTP-слоя contacts-service.
// На вход он принимает доменную ошибку (sentinel из service/storage),
// а на выход даёт:
//   - корректный HTTP-статус;
//   - краткий стабильный code и безопасный detail без утечки деталей.
//
// Это единственное место, где доменные ошибки превращаются в HTTP.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-contacts-service/internal/pkg/log"
	"github.com/pribylovaa/go-contacts-service/internal/service"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

// ErrInvalidArgument - тело запроса не прошло декодирование или валидацию.
var ErrInvalidArgument = errors.New("invalid argument")

// APIError - единый формат ошибки для клиентов.
// Code - короткий стабильный код для машиночитаемой обработки.
// Detail - безопасное человекочитаемое описание.
// RequestID - прокидывается из X-Request-Id (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse - корневой объект в ответе.
// Detail верхнего уровня дублирует Error.Detail для клиентов,
// читающих плоский {"detail": ...}.
type ErrorResponse struct {
	Error  APIError `json:"error"`
	Detail string   `json:"detail"`
}

func newResponse(code, detail string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Detail: detail}, Detail: detail}
}

type mapping struct {
	target error
	status int
	code   string
	detail string
}

// table просматривается по порядку; первое совпадение errors.Is выигрывает.
var table = []mapping{
	{service.ErrMissingToken, http.StatusUnauthorized, "missing_token", "missing token"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token", "invalid token"},
	{service.ErrTokenExpired, http.StatusUnauthorized, "token_expired", "token expired"},
	{service.ErrUnknownUser, http.StatusUnauthorized, "unknown_user", "user not found"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "incorrect email or password"},
	{service.ErrEmailTaken, http.StatusBadRequest, "email_taken", "email already registered"},
	{service.ErrContactNotFound, http.StatusNotFound, "not_found", "contact not found"},
	{service.ErrInvalidEmail, http.StatusUnprocessableEntity, "invalid_argument", "invalid email format"},
	{service.ErrPasswordTooLong, http.StatusUnprocessableEntity, "invalid_argument", "password is too long"},
	{ErrInvalidArgument, http.StatusUnprocessableEntity, "invalid_argument", "invalid request body"},
	{context.Canceled, StatusClientClosedRequest, "canceled", "canceled"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"},
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil - программная ошибка вызова: 500/internal, чтобы не послать
//     "200 OK" с телом ошибки и не маскировать баг;
//   - известный sentinel (в том числе обёрнутый через %w) - по таблице;
//   - прочее - 500/internal без утечки деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err != nil {
		for _, m := range table {
			if errors.Is(err, m.target) {
				return m.status, newResponse(m.code, m.detail)
			}
		}
	}

	return http.StatusInternalServerError, newResponse("internal", "internal error")
}

// WriteError - хелпер для HTTP-хендлеров и мидлваров.
// Пишет статус/тело, добавляет request_id из заголовка, для 401 выставляет
// WWW-Authenticate. Ошибки 5xx логируются целиком.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	if status >= http.StatusInternalServerError {
		log.From(r.Context()).LogAttrs(r.Context(), slog.LevelError, "request_failed",
			slog.Int("status", status),
			slog.Any("err", err),
		)
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
