package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	DB *sql.DB
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// UpdateRole handles PUT /api/users/{id}/role.
func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	caller := CurrentUser(r.Context())
	id := chi.URLParam(r, "id")

	var req updateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, errInvalidBody())
		return
	}
	if !model.ValidRole(req.Role) {
		writeError(w, r, invalidValue("role must be 'user' or 'admin'"))
		return
	}
	// An admin demoting themselves could leave no administrator at all.
	if id == caller.ID && req.Role != model.RoleAdmin {
		writeError(w, r, invalidValue("cannot change your own role"))
		return
	}

	ok, err := store.UpdateUserRole(r.Context(), h.DB, id, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, errUserNotFound())
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, errUserNotFound())
		return
	}

	slog.Info("user role changed", "user", user.ID, "role", user.Role, "by", caller.ID)
	jsonResponse(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := CurrentUser(r.Context())
	id := chi.URLParam(r, "id")

	if id == caller.ID {
		writeError(w, r, invalidValue("cannot delete yourself"))
		return
	}

	ok, err := store.DeleteUser(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, errUserNotFound())
		return
	}

	slog.Info("user deleted", "user", id, "by", caller.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
