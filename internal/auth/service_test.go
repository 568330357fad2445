package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"savesmart/internal/core"
	"savesmart/internal/storage"
)

type ServiceSuite struct {
	suite.Suite
	store *storage.Store
	svc   *Service
	ctx   context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	store, err := storage.Open(":memory:")
	s.Require().NoError(err)
	s.store = store
	// Bcrypt cost 4 keeps the suite fast.
	s.svc = NewService(store.Users, NewTokenManager("test-secret", time.Hour), 4)
	s.ctx = context.Background()
}

func (s *ServiceSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *ServiceSuite) TestRegisterLocal() {
	user, token, err := s.svc.RegisterLocal(s.ctx, "alice", "alice@example.com", "secret123")
	s.Require().NoError(err)

	s.Equal("alice", user.Username)
	s.Equal(core.ProviderLocal, user.Provider)
	s.True(user.IsActive)
	s.Require().NotNil(user.Password)
	s.NotEqual("secret123", *user.Password)

	// The token decodes to the created user.
	verified, err := s.svc.VerifyToken(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(user.ID, verified.ID)
}

func (s *ServiceSuite) TestRegisterDuplicateEmail() {
	_, _, err := s.svc.RegisterLocal(s.ctx, "alice", "alice@example.com", "secret123")
	s.Require().NoError(err)

	_, _, err = s.svc.RegisterLocal(s.ctx, "other", "alice@example.com", "secret123")
	var conflict *core.ConflictError
	s.ErrorAs(err, &conflict)
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	_, _, err := s.svc.RegisterLocal(s.ctx, "alice", "alice@example.com", "secret123")
	s.Require().NoError(err)

	_, _, err = s.svc.RegisterLocal(s.ctx, "alice", "other@example.com", "secret123")
	var conflict *core.ConflictError
	s.ErrorAs(err, &conflict)
}

func (s *ServiceSuite) TestLoginLocal() {
	_, _, err := s.svc.RegisterLocal(s.ctx, "alice", "alice@example.com", "secret123")
	s.Require().NoError(err)

	user, token, err := s.svc.LoginLocal(s.ctx, "alice@example.com", "secret123")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.NotEmpty(token)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, _, err := s.svc.RegisterLocal(s.ctx, "alice", "alice@example.com", "secret123")
	s.Require().NoError(err)

	_, _, err = s.svc.LoginLocal(s.ctx, "alice@example.com", "wrong")
	var authErr *core.AuthError
	s.ErrorAs(err, &authErr)
}

func (s *ServiceSuite) TestLoginUnknownEmail() {
	_, _, err := s.svc.LoginLocal(s.ctx, "nobody@example.com", "secret123")
	var authErr *core.AuthError
	s.ErrorAs(err, &authErr)
}

func (s *ServiceSuite) TestLoginGoogleAccountRejected() {
	_, _, err := s.svc.ReconcileGoogle(s.ctx, GoogleProfile{
		ID: "g-1", Email: "alice@example.com", Name: "Alice Smith",
	})
	s.Require().NoError(err)

	// Password login must fail for a google-provider account, whatever the
	// password.
	_, _, err = s.svc.LoginLocal(s.ctx, "alice@example.com", "anything")
	var authErr *core.AuthError
	s.ErrorAs(err, &authErr)
}

func (s *ServiceSuite) TestLoginDeactivatedAccount() {
	user, _, err := s.svc.RegisterLocal(s.ctx, "alice", "alice@example.com", "secret123")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Users.SoftDelete(s.ctx, user.ID))

	_, _, err = s.svc.LoginLocal(s.ctx, "alice@example.com", "secret123")
	var authErr *core.AuthError
	s.ErrorAs(err, &authErr)
}

func (s *ServiceSuite) TestVerifyTokenInvalid() {
	_, err := s.svc.VerifyToken(s.ctx, "garbage")
	var authErr *core.AuthError
	s.ErrorAs(err, &authErr)
}

func (s *ServiceSuite) TestAvailability() {
	_, _, err := s.svc.RegisterLocal(s.ctx, "alice", "alice@example.com", "secret123")
	s.Require().NoError(err)

	available, provider, err := s.svc.EmailAvailability(s.ctx, "alice@example.com")
	s.Require().NoError(err)
	s.False(available)
	s.Require().NotNil(provider)
	s.Equal(core.ProviderLocal, *provider)

	available, provider, err = s.svc.EmailAvailability(s.ctx, "free@example.com")
	s.Require().NoError(err)
	s.True(available)
	s.Nil(provider)

	taken, err := s.svc.UsernameAvailability(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(taken)

	free, err := s.svc.UsernameAvailability(s.ctx, "bob")
	s.Require().NoError(err)
	s.True(free)
}

func (s *ServiceSuite) TestReconcileGoogleCreatesUser() {
	user, token, err := s.svc.ReconcileGoogle(s.ctx, GoogleProfile{
		ID: "g-1", Email: "alice@example.com", Name: "Alice Smith", Picture: "http://img",
	})
	s.Require().NoError(err)

	s.Equal("alice_smith", user.Username)
	s.Equal(core.ProviderGoogle, user.Provider)
	s.Require().NotNil(user.GoogleID)
	s.Equal("g-1", *user.GoogleID)
	s.NotEmpty(token)

	// A second reconcile with the same google id returns the same user.
	again, _, err := s.svc.ReconcileGoogle(s.ctx, GoogleProfile{ID: "g-1", Email: "alice@example.com"})
	s.Require().NoError(err)
	s.Equal(user.ID, again.ID)
}

func (s *ServiceSuite) TestReconcileGoogleLinksByEmail() {
	local, _, err := s.svc.RegisterLocal(s.ctx, "alice", "alice@example.com", "secret123")
	s.Require().NoError(err)

	linked, _, err := s.svc.ReconcileGoogle(s.ctx, GoogleProfile{
		ID: "g-1", Email: "alice@example.com", Name: "Alice Smith", Picture: "http://img",
	})
	s.Require().NoError(err)

	s.Equal(local.ID, linked.ID)
	s.Equal(core.ProviderGoogle, linked.Provider)
	s.Require().NotNil(linked.GoogleID)
	s.Equal("g-1", *linked.GoogleID)
}

func (s *ServiceSuite) TestReconcileGoogleDerivedUsernameCollision() {
	_, _, err := s.svc.RegisterLocal(s.ctx, "alice_smith", "taken@example.com", "secret123")
	s.Require().NoError(err)

	user, _, err := s.svc.ReconcileGoogle(s.ctx, GoogleProfile{
		ID: "g-2", Email: "alice@example.com", Name: "Alice Smith",
	})
	s.Require().NoError(err)
	s.Equal("alice_smith_1", user.Username)
}

func (s *ServiceSuite) TestDeriveUsernameFallsBackToEmail() {
	user, _, err := s.svc.ReconcileGoogle(s.ctx, GoogleProfile{
		ID: "g-3", Email: "carol@example.com",
	})
	s.Require().NoError(err)
	s.Equal("carol", user.Username)
}
