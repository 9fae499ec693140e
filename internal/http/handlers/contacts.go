package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-contacts-service/internal/errors"
	"github.com/pribylovaa/go-contacts-service/internal/http/middleware"
	"github.com/pribylovaa/go-contacts-service/internal/models"
	"github.com/pribylovaa/go-contacts-service/internal/service"
)

// owner возвращает ID пользователя, резолвнутого middleware.Authenticate.
// Без него запрос отклоняется: маршрут мог быть смонтирован без аутентификации.
func owner(w http.ResponseWriter, r *http.Request) (int64, bool) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		apierrors.WriteError(w, r, service.ErrMissingToken)
		return 0, false
	}

	return u.ID, true
}

func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	contacts, err := h.contacts.ListContacts(r.Context(), ownerID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ContactsToResponse(contacts))
}

func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	var in models.ContactCreateRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, err := h.contacts.CreateContact(r.Context(), ownerID, in.Name, in.Phone)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ContactToResponse(c))
}

func (h *Handlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.ContactUpdateRequest
	if err := decodeJSON(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	c, err := h.contacts.UpdateContact(r.Context(), ownerID, id, in.Patch())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ContactToResponse(c))
}

func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := owner(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := h.contacts.DeleteContact(r.Context(), ownerID, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: "contact deleted"})
}
