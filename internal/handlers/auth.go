package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lib/pq"
	"github.com/loeitech/booker/internal/models"
	"github.com/loeitech/booker/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

// pqUniqueViolation is the Postgres error code for a unique index conflict.
const pqUniqueViolation = "23505"

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Users *repo.UserRepo
}

// ==========================
// Register
// ==========================
// Creates a user with the member role unless another role is given. The
// password is stored as a bcrypt hash and never serialized back out.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	if input.Username == "" {
		fields["username"] = "required"
	}
	if input.Password == "" {
		fields["password"] = "required"
	}
	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		fields["role"] = "must be member or admin"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	user, err := h.Users.Create(r.Context(), input.Username, string(hash), role)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			JSONError(w, "Registration failed. Username might be taken.", http.StatusBadRequest)
			return
		}
		slog.Error("register: create user failed", "username", input.Username, "err", err)
		JSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	JSON(w, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	}, http.StatusCreated)
}

// ==========================
// Login
// ==========================
// Verifies the bcrypt hash and returns {id, username, role}. No token is
// issued; clients keep the identity themselves.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	user, err := h.Users.GetByUsername(r.Context(), input.Username)
	if err != nil {
		JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		JSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	JSON(w, map[string]interface{}{
		"message": "Login successful",
		"user":    user.Public(),
	}, http.StatusOK)
}
