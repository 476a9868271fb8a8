package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"campuspos/m/domain"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var users []domain.User
	err := h.db.Select(&users, `SELECT id, username, full_name, role, is_active, created_at
        FROM users ORDER BY username`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" || req.FullName == "" || req.Role == "" {
		respondError(w, http.StatusBadRequest, "username, password, full_name and role are required")
		return
	}
	if !domain.ValidRole(req.Role) {
		respondError(w, http.StatusBadRequest, "role must be ADMIN, CASHIER or INVENTORY_CLERK")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to secure password")
		return
	}

	id := uuid.NewString()
	_, err = h.db.Exec(`INSERT INTO users (id, username, password, full_name, role) VALUES (?, ?, ?, ?, ?)`,
		id, req.Username, hashed, req.FullName, req.Role)
	if isUniqueViolation(err) {
		respondError(w, http.StatusConflict, "username already exists")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create user")
		return
	}

	var user domain.User
	if err := h.db.Get(&user, `SELECT id, username, full_name, role, is_active, created_at FROM users WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load user")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id := chi.URLParam(r, "id")
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user domain.User
	err := h.db.Get(&user, `SELECT id, username, password, full_name, role, is_active, created_at FROM users WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Role != "" {
		if !domain.ValidRole(req.Role) {
			respondError(w, http.StatusBadRequest, "role must be ADMIN, CASHIER or INVENTORY_CLERK")
			return
		}
		user.Role = req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to secure password")
			return
		}
		user.Password = string(hashed)
	}

	_, err = h.db.Exec(`UPDATE users SET username = ?, password = ?, full_name = ?, role = ?, is_active = ? WHERE id = ?`,
		user.Username, user.Password, user.FullName, user.Role, user.IsActive, id)
	if isUniqueViolation(err) {
		respondError(w, http.StatusConflict, "username already exists")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update user")
		return
	}

	user.Password = ""
	respondJSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id := chi.URLParam(r, "id")
	if id == userIDFromContext(r) {
		respondError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}
	res, err := h.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete user")
		return
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
