package api

import (
	"net/http"

	"github.com/google/uuid"

	"campuspos/m/domain"
)

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	var categories []domain.Category
	err := h.db.Select(&categories, `SELECT id, name, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	id := uuid.NewString()
	_, err := h.db.Exec(`INSERT INTO categories (id, name, description) VALUES (?, ?, ?)`,
		id, req.Name, nullIfEmpty(req.Description))
	if isUniqueViolation(err) {
		respondError(w, http.StatusConflict, "category already exists")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create category")
		return
	}

	var category domain.Category
	if err := h.db.Get(&category, `SELECT id, name, description, created_at FROM categories WHERE id = ?`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load category")
		return
	}
	respondJSON(w, http.StatusCreated, category)
}
