package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	"userhub/internal/user/models"
	"userhub/internal/user/store"
	dErrors "userhub/pkg/domain-errors"
	"userhub/pkg/secrets"
)

// AdminSubject is the token subject for the single administrative identity.
// The admin is a configured trust boundary, not a credential record.
const AdminSubject = "admin"

// AdminLogin validates the static administrative credentials and issues a
// token carrying the admin flag. Comparison is constant-time.
func (s *Service) AdminLogin(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	if s.adminEmail == "" || s.adminPassword == "" {
		s.metrics.AuthFailures.Inc()
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid admin credentials")
	}

	emailOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(s.adminEmail)) == 1
	passwordOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminPassword)) == 1
	if !emailOK || !passwordOK {
		s.metrics.AuthFailures.Inc()
		s.logger.WarnContext(ctx, "admin login rejected")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid admin credentials")
	}

	signed, err := s.tokens.Issue(AdminSubject, true)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.Logins.Inc()
	s.logger.InfoContext(ctx, "admin logged in")

	return &AuthResult{
		User: &models.User{
			ID:    AdminSubject,
			Name:  "Admin",
			Email: s.adminEmail,
		},
		Token: signed,
	}, nil
}

// ListUsers returns every record, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	s.metrics.AdminActions.WithLabelValues("list").Inc()
	return users, nil
}

// AdminCreateUser creates a record on behalf of an administrator. Same
// primitives as Register, but may set the bio and issues no token.
func (s *Service) AdminCreateUser(ctx context.Context, req *models.AdminCreateRequest) (*models.User, error) {
	hash, err := secrets.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Bio:          req.Bio,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.AdminActions.WithLabelValues("create").Inc()
	s.logger.InfoContext(ctx, "user created by admin", "user_id", user.ID)

	return user, nil
}

// AdminUpdateUser applies a partial update to any record, with no
// self-ownership restriction and no token re-issue.
func (s *Service) AdminUpdateUser(ctx context.Context, id string, patch *models.UpdateRequest) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}

	if err := s.applyPatch(user, patch); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	s.metrics.AdminActions.WithLabelValues("update").Inc()
	s.logger.InfoContext(ctx, "user updated by admin", "user_id", user.ID)

	return user, nil
}

// DeleteUser removes a record by id.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	s.metrics.AdminActions.WithLabelValues("delete").Inc()
	s.logger.InfoContext(ctx, "user deleted by admin", "user_id", id)

	return nil
}
