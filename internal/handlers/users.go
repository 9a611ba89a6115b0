package handlers

import (
	"net/http"

	"github.com/loeitech/booker/internal/models"
	"github.com/loeitech/booker/internal/repo"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	Users *repo.UserRepo
}

// ==========================
// List Members
// ==========================
// Admin view of registered members. Admin accounts are excluded.
func (h *UserHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListMembers(r.Context())
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if users == nil {
		users = []models.User{}
	}

	JSON(w, users, http.StatusOK)
}
