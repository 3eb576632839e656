package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"userhub/internal/storage"
	"userhub/internal/user/metrics"
	"userhub/internal/user/models"
	"userhub/internal/user/store"
	dErrors "userhub/pkg/domain-errors"
	"userhub/pkg/secrets"
)

// TokenIssuer mints signed identity tokens.
type TokenIssuer interface {
	Issue(subjectID string, isAdmin bool) (string, error)
}

// Service implements the credential-store operations: registration, login,
// profile reads and partial updates, image upload, and the admin variants.
type Service struct {
	users    store.Store
	tokens   TokenIssuer
	uploader storage.Uploader
	logger   *slog.Logger
	metrics  *metrics.Metrics

	adminEmail    string
	adminPassword string
}

type Option func(*Service)

func WithUploader(u storage.Uploader) Option {
	return func(s *Service) {
		s.uploader = u
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAdminCredentials sets the static administrative credentials. Admin login
// is disabled when they are empty.
func WithAdminCredentials(email, password string) Option {
	return func(s *Service) {
		s.adminEmail = email
		s.adminPassword = password
	}
}

func New(users store.Store, tokens TokenIssuer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:   users,
		tokens:  tokens,
		logger:  logger,
		metrics: metrics.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AuthResult pairs a record with a freshly issued token.
type AuthResult struct {
	User  *models.User
	Token string
}

// normalizeEmail lowercases email addresses before any store access. Both
// stores index emails case-sensitively, so the service owns case-folding.
func normalizeEmail(email string) string {
	return strings.ToLower(email)
}

// Register hashes the password and persists a new user. The unique-email
// invariant is enforced by the store, so a concurrent duplicate registration
// surfaces as a conflict rather than a second record.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*AuthResult, error) {
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
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	signed, err := s.tokens.Issue(user.ID, false)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.UsersRegistered.Inc()
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)

	return &AuthResult{User: user, Token: signed}, nil
}

// Authenticate verifies credentials and issues a token. Unknown email and hash
// mismatch are indistinguishable to callers.
func (s *Service) Authenticate(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	start := time.Now()

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		s.metrics.AuthFailures.Inc()
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}

	if err := secrets.Verify(req.Password, user.PasswordHash); err != nil {
		s.metrics.AuthFailures.Inc()
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	signed, err := s.tokens.Issue(user.ID, false)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.Logins.Inc()
	s.metrics.LoginDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)

	return &AuthResult{User: user, Token: signed}, nil
}

// GetProfile returns the record for the given id.
func (s *Service) GetProfile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}
	return user, nil
}

// UpdateProfile applies a partial update: omitted fields keep their stored
// value and the password is re-hashed only when supplied. A fresh token is
// issued because identity-bearing fields may have changed.
func (s *Service) UpdateProfile(ctx context.Context, id string, patch *models.UpdateRequest) (*AuthResult, error) {
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

	signed, err := s.tokens.Issue(user.ID, false)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.metrics.ProfileUpdates.Inc()
	s.logger.InfoContext(ctx, "profile updated", "user_id", user.ID)

	return &AuthResult{User: user, Token: signed}, nil
}

func (s *Service) applyPatch(user *models.User, patch *models.UpdateRequest) error {
	if patch.Name != "" {
		user.Name = patch.Name
	}
	if patch.Email != "" {
		user.Email = normalizeEmail(patch.Email)
	}
	if patch.Bio != "" {
		user.Bio = patch.Bio
	}
	if patch.Password != "" {
		hash, err := secrets.Hash(patch.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now().UTC()
	return nil
}

// UploadInput is a staged multipart file handed to the storage collaborator.
type UploadInput struct {
	Filename    string
	ContentType string
	Ext         string
	Body        io.Reader
}

// UploadImage stores a staged profile image with the object-storage
// collaborator and records the returned durable URL on the user.
func (s *Service) UploadImage(ctx context.Context, id string, in *UploadInput) (*models.User, error) {
	if in == nil || in.Body == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "please upload a file")
	}
	if s.uploader == nil {
		return nil, dErrors.New(dErrors.CodeUpstream, "image storage is not configured")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}

	key := storage.RandomKey(in.Ext)
	url, err := s.uploader.Upload(ctx, key, in.ContentType, in.Body)
	if err != nil {
		s.metrics.UploadFailures.Inc()
		s.logger.ErrorContext(ctx, "image upload failed", "user_id", user.ID, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "image upload failed")
	}

	user.ProfileImageURL = url
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	s.metrics.ImageUploads.Inc()
	s.logger.InfoContext(ctx, "profile image uploaded", "user_id", user.ID, "key", key)

	return user, nil
}
