package handlers

import (
	"net/http"

	"github.com/pribylovaa/go-contacts-service/internal/models"
)

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.RootResponse{
		Message: "Contacts API",
		Version: h.version,
		Status:  "running",
	})
}
