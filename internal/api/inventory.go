package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shamba-labs/mazao/internal/store"
)

func (s *Server) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.Inventory.ListInventory(r.Context())
	if err != nil {
		s.deps.Logger.Error("list inventory failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"message": "Error retrieving inventory items",
		})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createInventoryItem(w http.ResponseWriter, r *http.Request) {
	var item store.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Error creating inventory item",
		})
		return
	}
	if item.Name == "" || item.Unit == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Error creating inventory item",
		})
		return
	}

	saved, err := s.deps.Inventory.CreateInventoryItem(r.Context(), item)
	if err != nil {
		s.deps.Logger.Error("create inventory item failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Error creating inventory item",
		})
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) updateInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid inventory item ID",
		})
		return
	}

	var item store.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Error updating inventory item",
		})
		return
	}

	updated, err := s.deps.Inventory.UpdateInventoryItem(r.Context(), id, item)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message": "Inventory item not found",
		})
		return
	}
	if err != nil {
		s.deps.Logger.Error("update inventory item failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Error updating inventory item",
		})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteInventoryItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Invalid inventory item ID",
		})
		return
	}

	if err := s.deps.Inventory.DeleteInventoryItem(r.Context(), id); err != nil {
		s.deps.Logger.Error("delete inventory item failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "Error deleting inventory item",
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
