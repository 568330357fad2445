package http

import (
	"errors"
	"net/http"
	"strings"

	"savesmart/internal/core"
	"savesmart/internal/storage"
)

// catalogHandlers serves one of the two structurally identical lookup
// entities (categories, types); label only affects messages.
type catalogHandlers[T any] struct {
	server *Server
	store  *storage.CatalogStore[T]
	label  string
	id     func(T) int64
}

type catalogRequest struct {
	Name        *string `json:"name"`
	ImageLink   *string `json:"image_link"`
	Description *string `json:"description"`
}

func (h *catalogHandlers[T]) register(mux *http.ServeMux, prefix string) {
	auth := h.server.requireAuth
	mux.HandleFunc("POST "+prefix, auth(h.create))
	mux.HandleFunc("GET "+prefix, auth(h.list))
	mux.HandleFunc("GET "+prefix+"/active", auth(h.listActive))
	mux.HandleFunc("GET "+prefix+"/stats", auth(h.stats))
	mux.HandleFunc("GET "+prefix+"/{id}", auth(h.get))
	mux.HandleFunc("PUT "+prefix+"/{id}", auth(h.update))
	mux.HandleFunc("DELETE "+prefix+"/{id}", auth(h.del))
	mux.HandleFunc("POST "+prefix+"/{id}/activate", auth(h.activate))
}

// nameTaken checks uniqueness across both active and inactive rows.
func (h *catalogHandlers[T]) nameTaken(r *http.Request, name string) (bool, error) {
	_, err := h.store.GetByName(r.Context(), name)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (h *catalogHandlers[T]) create(w http.ResponseWriter, r *http.Request) {
	var req catalogRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		respondError(w, r, core.Validation("name is required"))
		return
	}
	name := strings.TrimSpace(*req.Name)

	taken, err := h.nameTaken(r, name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if taken {
		respondError(w, r, core.Conflict(h.label+" name already exists"))
		return
	}

	item, err := h.store.Create(r.Context(), name, req.ImageLink, req.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, item)
}

func (h *catalogHandlers[T]) list(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	items, total, err := h.store.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")), page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, items, page, total)
}

func (h *catalogHandlers[T]) listActive(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListActive(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	respondData(w, http.StatusOK, items)
}

func (h *catalogHandlers[T]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, item)
}

func (h *catalogHandlers[T]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := h.store.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	var req catalogRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	var assigns []storage.Assign
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondError(w, r, core.Validation("name cannot be empty"))
			return
		}
		existing, err := h.store.GetByName(r.Context(), name)
		if err == nil {
			if h.id(existing) != id {
				respondError(w, r, core.Conflict(h.label+" name already exists"))
				return
			}
		} else if !errors.Is(err, core.ErrNotFound) {
			respondError(w, r, err)
			return
		}
		assigns = append(assigns, storage.Set("name", name))
	}
	if req.ImageLink != nil {
		assigns = append(assigns, storage.Set("image_link", *req.ImageLink))
	}
	if req.Description != nil {
		assigns = append(assigns, storage.Set("description", *req.Description))
	}

	if err := h.store.Update(r.Context(), id, assigns); err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, item)
}

func (h *catalogHandlers[T]) del(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := h.store.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.store.SoftDelete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, h.label+" deactivated")
}

func (h *catalogHandlers[T]) activate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := h.store.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.store.Activate(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	item, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, item)
}

func (h *catalogHandlers[T]) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}
