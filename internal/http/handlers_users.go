package http

import (
	"errors"
	"net/http"
	"strings"

	"savesmart/internal/auth"
	"savesmart/internal/core"
	"savesmart/internal/storage"
)

type createUserRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Email    *string `json:"email"`
}

type updateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	switch {
	case req.Username == "" || req.Password == "":
		respondError(w, r, core.Validation("username and password are required"))
		return
	case len(req.Password) < core.MinPasswordLength:
		respondError(w, r, core.Validation("password must be at least 6 characters"))
		return
	case req.Email != nil && !core.EmailRX.MatchString(*req.Email):
		respondError(w, r, core.Validation("invalid email format"))
		return
	}

	if _, err := s.store.Users.GetByUsername(r.Context(), req.Username); err == nil {
		respondError(w, r, core.Conflict("username is already taken"))
		return
	} else if !errors.Is(err, core.ErrNotFound) {
		respondError(w, r, err)
		return
	}
	if req.Email != nil {
		if _, err := s.store.Users.GetByEmail(r.Context(), *req.Email); err == nil {
			respondError(w, r, core.Conflict("email is already registered"))
			return
		} else if !errors.Is(err, core.ErrNotFound) {
			respondError(w, r, err)
			return
		}
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := s.store.Users.Create(r.Context(), core.User{
		Username: req.Username,
		Password: &hash,
		Email:    req.Email,
		Provider: core.ProviderLocal,
		IsActive: true,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r)
	users, total, err := s.store.Users.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")), page)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, users, page, total)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := s.store.Users.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	current, err := s.store.Users.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	var assigns []storage.Assign
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			respondError(w, r, core.Validation("username cannot be empty"))
			return
		}
		if username != current.Username {
			if _, err := s.store.Users.GetByUsername(r.Context(), username); err == nil {
				respondError(w, r, core.Conflict("username is already taken"))
				return
			} else if !errors.Is(err, core.ErrNotFound) {
				respondError(w, r, err)
				return
			}
			assigns = append(assigns, storage.Set("username", username))
		}
	}
	if req.Email != nil {
		if !core.EmailRX.MatchString(*req.Email) {
			respondError(w, r, core.Validation("invalid email format"))
			return
		}
		if current.Email == nil || *current.Email != *req.Email {
			if _, err := s.store.Users.GetByEmail(r.Context(), *req.Email); err == nil {
				respondError(w, r, core.Conflict("email is already registered"))
				return
			} else if !errors.Is(err, core.ErrNotFound) {
				respondError(w, r, err)
				return
			}
			assigns = append(assigns, storage.Set("email", *req.Email))
		}
	}
	if req.AvatarURL != nil {
		assigns = append(assigns, storage.Set("avatar_url", *req.AvatarURL))
	}

	if err := s.store.Users.Update(r.Context(), id, assigns); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := s.store.Users.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// handleDeleteUser soft-deletes: the row stays, flagged inactive.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := s.store.Users.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.store.Users.SoftDelete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "user deactivated")
}

func (s *Server) handleActivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if _, err := s.store.Users.GetByID(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.store.Users.Activate(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := s.store.Users.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (s *Server) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Users.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}
