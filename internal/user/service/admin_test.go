package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"userhub/internal/platform/logger"
	"userhub/internal/token"
	"userhub/internal/user/models"
	"userhub/internal/user/store"
	dErrors "userhub/pkg/domain-errors"
)

type AdminSuite struct {
	suite.Suite
	ctx    context.Context
	tokens *token.Service
	svc    *Service
}

func TestAdminSuite(t *testing.T) {
	suite.Run(t, new(AdminSuite))
}

func (s *AdminSuite) SetupTest() {
	s.ctx = context.Background()
	s.tokens = token.NewService("test-signing-key", time.Hour)
	s.svc = New(store.NewMemory(), s.tokens, logger.New(),
		WithAdminCredentials("admin@x.com", "admin-secret"),
	)
}

func (s *AdminSuite) TestAdminLogin() {
	res, err := s.svc.AdminLogin(s.ctx, &models.LoginRequest{Email: "admin@x.com", Password: "admin-secret"})
	s.Require().NoError(err)
	s.Equal(AdminSubject, res.User.ID)

	claims, err := s.tokens.Verify(res.Token)
	s.Require().NoError(err)
	s.True(claims.IsAdmin)
	s.Equal(AdminSubject, claims.UserID)
}

func (s *AdminSuite) TestAdminLoginRejected() {
	for _, tc := range []models.LoginRequest{
		{Email: "admin@x.com", Password: "wrong"},
		{Email: "other@x.com", Password: "admin-secret"},
	} {
		_, err := s.svc.AdminLogin(s.ctx, &tc)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
}

func (s *AdminSuite) TestAdminLoginDisabledWithoutCredentials() {
	svc := New(store.NewMemory(), s.tokens, logger.New())
	_, err := svc.AdminLogin(s.ctx, &models.LoginRequest{Email: "", Password: ""})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *AdminSuite) TestAdminCreateAndList() {
	created, err := s.svc.AdminCreateUser(s.ctx, &models.AdminCreateRequest{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "secret1",
		Bio:      "made by admin",
	})
	s.Require().NoError(err)
	s.Equal("made by admin", created.Bio)

	// duplicate rejected, nothing created
	_, err = s.svc.AdminCreateUser(s.ctx, &models.AdminCreateRequest{
		Name:     "Bob",
		Email:    "a@x.com",
		Password: "secret2",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	users, err := s.svc.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 1)
}

func (s *AdminSuite) TestAdminUpdateAnyRecord() {
	created, err := s.svc.AdminCreateUser(s.ctx, &models.AdminCreateRequest{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "secret1",
	})
	s.Require().NoError(err)

	updated, err := s.svc.AdminUpdateUser(s.ctx, created.ID, &models.UpdateRequest{Bio: "updated"})
	s.Require().NoError(err)
	s.Equal("updated", updated.Bio)
	s.Equal("Ann", updated.Name)

	_, err = s.svc.AdminUpdateUser(s.ctx, "missing", &models.UpdateRequest{Bio: "x"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AdminSuite) TestDeleteUser() {
	created, err := s.svc.AdminCreateUser(s.ctx, &models.AdminCreateRequest{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "secret1",
	})
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteUser(s.ctx, created.ID))

	err = s.svc.DeleteUser(s.ctx, created.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
