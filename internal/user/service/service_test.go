package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"userhub/internal/platform/logger"
	"userhub/internal/storage"
	"userhub/internal/token"
	"userhub/internal/user/models"
	"userhub/internal/user/store"
	dErrors "userhub/pkg/domain-errors"
	"userhub/pkg/secrets"
)

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	tokens   *token.Service
	uploader *storage.MemoryUploader
	svc      *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.tokens = token.NewService("test-signing-key", 30*24*time.Hour)
	s.uploader = storage.NewMemory()
	s.svc = New(store.NewMemory(), s.tokens, logger.New(),
		WithUploader(s.uploader),
		WithAdminCredentials("admin@x.com", "admin-secret"),
	)
}

func (s *ServiceSuite) register(email string) *AuthResult {
	res, err := s.svc.Register(s.ctx, &models.RegisterRequest{
		Name:     "Ann",
		Email:    email,
		Password: "secret1",
	})
	s.Require().NoError(err)
	return res
}

func (s *ServiceSuite) TestRegister() {
	res := s.register("a@x.com")

	s.NotEmpty(res.User.ID)
	s.Equal("Ann", res.User.Name)
	s.NotEmpty(res.Token)
	s.NotEqual("secret1", res.User.PasswordHash)

	claims, err := s.tokens.Verify(res.Token)
	s.Require().NoError(err)
	s.Equal(res.User.ID, claims.UserID)
	s.False(claims.IsAdmin)
}

func (s *ServiceSuite) TestRegisterDuplicateEmail() {
	s.register("a@x.com")

	_, err := s.svc.Register(s.ctx, &models.RegisterRequest{
		Name:     "Bob",
		Email:    "a@x.com",
		Password: "secret2",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	// no second record was created
	users, err := s.svc.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 1)
}

func (s *ServiceSuite) TestEmailCaseFolding() {
	res := s.register("Ann@X.com")
	s.Equal("ann@x.com", res.User.Email)

	// duplicate detection and login are case-insensitive via normalization
	_, err := s.svc.Register(s.ctx, &models.RegisterRequest{
		Name:     "Bob",
		Email:    "ANN@x.COM",
		Password: "secret2",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	login, err := s.svc.Authenticate(s.ctx, &models.LoginRequest{Email: "ann@X.COM", Password: "secret1"})
	s.Require().NoError(err)
	s.Equal(res.User.ID, login.User.ID)

	// patched emails are stored lowercased too
	updated, err := s.svc.UpdateProfile(s.ctx, res.User.ID, &models.UpdateRequest{Email: "New@X.com"})
	s.Require().NoError(err)
	s.Equal("new@x.com", updated.User.Email)
}

func (s *ServiceSuite) TestAuthenticate() {
	reg := s.register("a@x.com")

	res, err := s.svc.Authenticate(s.ctx, &models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	s.Require().NoError(err)

	// issued token's subject matches the authenticated record id
	claims, err := s.tokens.Verify(res.Token)
	s.Require().NoError(err)
	s.Equal(reg.User.ID, claims.UserID)
}

func (s *ServiceSuite) TestAuthenticateFailures() {
	s.register("a@x.com")

	s.Run("wrong password", func() {
		_, err := s.svc.Authenticate(s.ctx, &models.LoginRequest{Email: "a@x.com", Password: "wrong"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.EqualError(err, "invalid credentials")
	})

	s.Run("unknown email is indistinguishable", func() {
		_, err := s.svc.Authenticate(s.ctx, &models.LoginRequest{Email: "nobody@x.com", Password: "secret1"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.EqualError(err, "invalid credentials")
	})
}

func (s *ServiceSuite) TestGetProfile() {
	reg := s.register("a@x.com")

	user, err := s.svc.GetProfile(s.ctx, reg.User.ID)
	s.Require().NoError(err)
	s.Equal("a@x.com", user.Email)

	_, err = s.svc.GetProfile(s.ctx, "missing")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestUpdateProfilePartial() {
	reg := s.register("a@x.com")

	res, err := s.svc.UpdateProfile(s.ctx, reg.User.ID, &models.UpdateRequest{Email: "new@x.com"})
	s.Require().NoError(err)

	// omitted fields keep their stored value
	s.Equal("new@x.com", res.User.Email)
	s.Equal("Ann", res.User.Name)
	s.Equal(reg.User.PasswordHash, res.User.PasswordHash)

	// a fresh token is issued on profile mutation
	s.NotEmpty(res.Token)
	claims, err := s.tokens.Verify(res.Token)
	s.Require().NoError(err)
	s.Equal(reg.User.ID, claims.UserID)
}

func (s *ServiceSuite) TestUpdateProfileRehashesPassword() {
	reg := s.register("a@x.com")

	res, err := s.svc.UpdateProfile(s.ctx, reg.User.ID, &models.UpdateRequest{Password: "newsecret"})
	s.Require().NoError(err)
	s.NotEqual(reg.User.PasswordHash, res.User.PasswordHash)
	s.NoError(secrets.Verify("newsecret", res.User.PasswordHash))
}

func (s *ServiceSuite) TestUpdateProfileEmailConflict() {
	s.register("a@x.com")
	other := s.register("b@x.com")

	_, err := s.svc.UpdateProfile(s.ctx, other.User.ID, &models.UpdateRequest{Email: "a@x.com"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestUploadImage() {
	reg := s.register("a@x.com")

	user, err := s.svc.UploadImage(s.ctx, reg.User.ID, &UploadInput{
		Filename:    "me.png",
		ContentType: "image/png",
		Ext:         ".png",
		Body:        strings.NewReader("png-bytes"),
	})
	s.Require().NoError(err)
	s.True(strings.HasPrefix(user.ProfileImageURL, "memory://"), user.ProfileImageURL)

	// URL survives a fresh read
	again, err := s.svc.GetProfile(s.ctx, reg.User.ID)
	s.Require().NoError(err)
	s.Equal(user.ProfileImageURL, again.ProfileImageURL)
}

func (s *ServiceSuite) TestUploadImageNoFile() {
	reg := s.register("a@x.com")

	_, err := s.svc.UploadImage(s.ctx, reg.User.ID, nil)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestUploadImageCollaboratorFailure() {
	reg := s.register("a@x.com")
	s.uploader.FailWith = errors.New("bucket unavailable")

	_, err := s.svc.UploadImage(s.ctx, reg.User.ID, &UploadInput{
		Filename:    "me.png",
		ContentType: "image/png",
		Ext:         ".png",
		Body:        strings.NewReader("png-bytes"),
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUpstream))
}
