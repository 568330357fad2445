package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"savesmart/internal/auth"
	"savesmart/internal/core"
	"savesmart/internal/log"
)

const oauthStateCookie = "oauth_state"

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authPayload is the register/login response body: the user plus their
// bearer token.
type authPayload struct {
	User  core.User `json:"user"`
	Token string    `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Username == "" || req.Email == "" || req.Password == "":
		respondError(w, r, core.Validation("username, email and password are required"))
		return
	case !core.EmailRX.MatchString(req.Email):
		respondError(w, r, core.Validation("invalid email format"))
		return
	case len(req.Password) < core.MinPasswordLength:
		respondError(w, r, core.Validation("password must be at least 6 characters"))
		return
	}

	user, token, err := s.auth.RegisterLocal(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "User registered",
		log.FieldUserID, user.ID, log.FieldProvider, user.Provider)
	respondData(w, http.StatusCreated, authPayload{User: user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, r, core.Validation("email and password are required"))
		return
	}

	user, token, err := s.auth.LoginLocal(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, authPayload{User: user, Token: token})
}

func (s *Server) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if !core.EmailRX.MatchString(email) {
		respondError(w, r, core.Validation("invalid email format"))
		return
	}

	available, provider, err := s.auth.EmailAvailability(r.Context(), email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"available": available, "provider": provider})
}

func (s *Server) handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PathValue("username"))
	if username == "" {
		respondError(w, r, core.Validation("username is required"))
		return
	}

	available, err := s.auth.UsernameAvailability(r.Context(), username)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"available": available})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	respondData(w, http.StatusOK, user)
}

// handleLogout exists for client symmetry; bearer tokens are stateless so
// there is nothing to tear down server-side.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "logged out")
}

func (s *Server) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	if !s.google.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Message: "Google sign-in is not configured"})
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/api/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.google.AuthURL(state), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	fail := func(reason string) {
		logger.WarnContext(r.Context(), "Google sign-in failed", log.FieldError, reason)
		http.Redirect(w, r, s.frontendURL+"/login?error="+url.QueryEscape(reason), http.StatusFound)
	}

	if !s.google.Enabled() {
		fail("google_disabled")
		return
	}
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		fail(errParam)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		fail("state_mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		fail("missing_code")
		return
	}

	token, err := s.google.Exchange(r.Context(), code)
	if err != nil {
		fail("exchange_failed")
		return
	}

	profile, err := s.google.FetchProfile(r.Context(), token)
	if err != nil {
		fail("profile_fetch_failed")
		return
	}

	user, bearer, err := s.auth.ReconcileGoogle(r.Context(), profile)
	if err != nil {
		fail("reconcile_failed")
		return
	}

	logger.InfoContext(r.Context(), "User signed in with Google",
		log.FieldUserID, user.ID, log.FieldProvider, user.Provider)
	http.Redirect(w, r, s.frontendURL+"/auth/callback?token="+url.QueryEscape(bearer), http.StatusFound)
}

type testGoogleRequest struct {
	GoogleID string `json:"googleId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}

// handleTestGoogle runs the reconciliation flow against a caller-supplied
// profile, skipping the consent/exchange round trip. Useful for exercising
// account linking without real Google credentials.
func (s *Server) handleTestGoogle(w http.ResponseWriter, r *http.Request) {
	var req testGoogleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.GoogleID == "" || !core.EmailRX.MatchString(req.Email) {
		respondError(w, r, core.Validation("googleId and a valid email are required"))
		return
	}

	user, token, err := s.auth.ReconcileGoogle(r.Context(), auth.GoogleProfile{
		ID:      req.GoogleID,
		Email:   req.Email,
		Name:    req.Name,
		Picture: req.Picture,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, authPayload{User: user, Token: token})
}
