package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"savesmart/internal/core"
	"savesmart/internal/storage"
)

// Service implements the authentication operations: local register/login,
// token verification, availability probes and Google profile
// reconciliation.
type Service struct {
	users      *storage.UserStore
	tokens     *TokenManager
	bcryptCost int
}

func NewService(users *storage.UserStore, tokens *TokenManager, bcryptCost int) *Service {
	return &Service{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// RegisterLocal creates a password-based account and issues its first
// token. Input format is validated at the controller boundary; uniqueness
// is checked here.
func (s *Service) RegisterLocal(ctx context.Context, username, email, password string) (core.User, string, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return core.User{}, "", core.Conflict("email is already registered")
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, "", err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return core.User{}, "", core.Conflict("username is already taken")
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, "", err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return core.User{}, "", err
	}

	user, err := s.users.Create(ctx, core.User{
		Username: username,
		Password: &hash,
		Email:    &email,
		Provider: core.ProviderLocal,
		IsActive: true,
	})
	if err != nil {
		return core.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}

// LoginLocal authenticates a password-based account and issues a token.
func (s *Service) LoginLocal(ctx context.Context, email, password string) (core.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, "", core.Unauthorized("invalid credentials")
	}
	if err != nil {
		return core.User{}, "", err
	}

	if !user.IsLocal() || user.Password == nil {
		return core.User{}, "", core.Unauthorized("this email is registered with Google; use Google sign-in")
	}
	if !CheckPassword(password, *user.Password) {
		return core.User{}, "", core.Unauthorized("invalid credentials")
	}
	if !user.IsActive {
		return core.User{}, "", core.Unauthorized("account is deactivated")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}

// VerifyToken validates a bearer token and loads its user.
func (s *Service) VerifyToken(ctx context.Context, token string) (core.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return core.User{}, core.Unauthorized("invalid token")
	}

	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, core.Unauthorized("user not found")
	}
	if err != nil {
		return core.User{}, err
	}
	return user, nil
}

// EmailAvailability reports whether an email is unused; when taken it also
// returns the provider the existing account uses.
func (s *Service) EmailAvailability(ctx context.Context, email string) (bool, *string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return true, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return false, &user.Provider, nil
}

// UsernameAvailability reports whether a username is unused.
func (s *Service) UsernameAvailability(ctx context.Context, username string) (bool, error) {
	if _, err := s.users.GetByUsername(ctx, username); errors.Is(err, core.ErrNotFound) {
		return true, nil
	} else if err != nil {
		return false, err
	}
	return false, nil
}

// ReconcileGoogle maps a Google profile onto a user row: match by google
// id first, then link by email, else create a new account. A token is
// issued either way.
func (s *Service) ReconcileGoogle(ctx context.Context, profile GoogleProfile) (core.User, string, error) {
	user, err := s.users.GetByGoogleID(ctx, profile.ID)
	switch {
	case err == nil:
		// Existing Google account.
	case errors.Is(err, core.ErrNotFound):
		user, err = s.linkOrCreate(ctx, profile)
		if err != nil {
			return core.User{}, "", err
		}
	default:
		return core.User{}, "", err
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return core.User{}, "", err
	}
	return user, token, nil
}

func (s *Service) linkOrCreate(ctx context.Context, profile GoogleProfile) (core.User, error) {
	existing, err := s.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		// Link the Google identity to the account registered with this email.
		assigns := []storage.Assign{
			storage.Set("google_id", profile.ID),
			storage.Set("provider", core.ProviderGoogle),
		}
		if profile.Picture != "" {
			assigns = append(assigns, storage.Set("avatar_url", profile.Picture))
		}
		if err := s.users.Update(ctx, existing.ID, assigns); err != nil {
			return core.User{}, fmt.Errorf("link google account: %w", err)
		}
		return s.users.GetByID(ctx, existing.ID)
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, err
	}

	username, err := s.availableUsername(ctx, deriveUsername(profile))
	if err != nil {
		return core.User{}, err
	}

	newUser := core.User{
		Username: username,
		Provider: core.ProviderGoogle,
		GoogleID: &profile.ID,
		IsActive: true,
	}
	if profile.Email != "" {
		newUser.Email = &profile.Email
	}
	if profile.Picture != "" {
		newUser.AvatarURL = &profile.Picture
	}

	user, err := s.users.Create(ctx, newUser)
	if err != nil {
		return core.User{}, fmt.Errorf("create google user: %w", err)
	}
	return user, nil
}

// deriveUsername picks a username from the profile: display name, then
// the email local part, then a generic fallback.
func deriveUsername(profile GoogleProfile) string {
	if name := strings.TrimSpace(profile.Name); name != "" {
		return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	}
	if at := strings.IndexByte(profile.Email, '@'); at > 0 {
		return profile.Email[:at]
	}
	return "user"
}

// availableUsername disambiguates a taken username with a numeric suffix.
func (s *Service) availableUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; ; i++ {
		_, err := s.users.GetByUsername(ctx, candidate)
		if errors.Is(err, core.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
}
