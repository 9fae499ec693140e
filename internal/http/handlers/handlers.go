// handlers содержит REST-обработчики contacts-service поверх chi.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/pribylovaa/go-contacts-service/internal/errors"
	"github.com/pribylovaa/go-contacts-service/internal/models"
)

// maxBodyBytes ограничивает размер тела запроса.
const maxBodyBytes = 1 << 20

// AuthService - регистрация и вход.
type AuthService interface {
	RegisterUser(ctx context.Context, email, password string) (*models.Token, error)
	LoginUser(ctx context.Context, email, password string) (*models.Token, error)
}

// ContactService - операции над контактами владельца.
type ContactService interface {
	ListContacts(ctx context.Context, ownerID int64) ([]models.Contact, error)
	CreateContact(ctx context.Context, ownerID int64, name, phone string) (*models.Contact, error)
	UpdateContact(ctx context.Context, ownerID, id int64, patch models.ContactPatch) (*models.Contact, error)
	DeleteContact(ctx context.Context, ownerID, id int64) error
}

// Handlers агрегирует зависимости обработчиков.
type Handlers struct {
	auth     AuthService
	contacts ContactService
	version  string
}

func New(auth AuthService, contacts ContactService, version string) *Handlers {
	return &Handlers{auth: auth, contacts: contacts, version: version}
}

// writeJSON - единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// requirer реализуют запросы с обязательными полями.
type requirer interface {
	Required() []string
}

// decodeJSON читает одно JSON-значение не больше maxBodyBytes.
// Неизвестные поля игнорируются, пустые строки допустимы; отсутствующее
// или null обязательное поле и данные после объекта дают ErrInvalidArgument.
func decodeJSON(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrInvalidArgument, err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", apierrors.ErrInvalidArgument)
	}

	if rq, ok := value.(requirer); ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("%w: %v", apierrors.ErrInvalidArgument, err)
		}

		for _, name := range rq.Required() {
			if v, ok := fields[name]; !ok || string(v) == "null" {
				return fmt.Errorf("%w: field %q is required", apierrors.ErrInvalidArgument, name)
			}
		}
	}

	if err := json.Unmarshal(raw, value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrInvalidArgument, err)
	}

	return nil
}

// idParam читает целочисленный {id} из пути.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id", apierrors.ErrInvalidArgument)
	}

	return id, nil
}
