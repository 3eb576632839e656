package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"userhub/internal/platform/device"
	"userhub/internal/platform/middleware"
	"userhub/internal/ratelimit"
	jsonResponse "userhub/internal/transport/http/json"
	"userhub/internal/transport/http/shared"
	"userhub/internal/user/models"
	"userhub/internal/user/service"
	dErrors "userhub/pkg/domain-errors"
	"userhub/pkg/validation"
)

// Service defines the user-management operations the HTTP layer delegates to.
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*service.AuthResult, error)
	Authenticate(ctx context.Context, req *models.LoginRequest) (*service.AuthResult, error)
	GetProfile(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, patch *models.UpdateRequest) (*service.AuthResult, error)
	UploadImage(ctx context.Context, id string, in *service.UploadInput) (*models.User, error)

	AdminLogin(ctx context.Context, req *models.LoginRequest) (*service.AuthResult, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	AdminCreateUser(ctx context.Context, req *models.AdminCreateRequest) (*models.User, error)
	AdminUpdateUser(ctx context.Context, id string, patch *models.UpdateRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Handler is the thin HTTP layer over the user service. It owns request
// decoding, validation, and error translation; business rules live in the
// service.
type Handler struct {
	svc       Service
	logger    *slog.Logger
	limiter   *ratelimit.LoginLimiter
	maxUpload int64
}

func New(svc Service, logger *slog.Logger, limiter *ratelimit.LoginLimiter, maxUpload int64) *Handler {
	if maxUpload <= 0 {
		maxUpload = 2 << 20
	}
	return &Handler{
		svc:       svc,
		logger:    logger,
		limiter:   limiter,
		maxUpload: maxUpload,
	}
}

// maxJSONBody caps JSON request bodies. Multipart uploads have their own
// limit enforced in the upload handler.
const maxJSONBody = 1 << 20

// jsonRoutes guards routes that accept JSON bodies with a content-type check
// and a body size cap.
func jsonRoutes(r chi.Router) chi.Router {
	return r.With(middleware.ContentTypeJSON, middleware.BodyLimit(maxJSONBody))
}

// Register mounts the public user routes.
func (h *Handler) Register(r chi.Router) {
	jr := jsonRoutes(r)
	jr.Post("/register", h.handleRegister)
	jr.Post("/login", h.handleLogin)
}

// RegisterProtected mounts routes that require a verified identity.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/profile", h.handleGetProfile)
	jsonRoutes(r).Put("/profile", h.handleUpdateProfile)
	r.Post("/profile/upload", h.handleUploadImage)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request",
			"error", err,
			"request_id", requestID,
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON in request body"))
		return
	}

	req.Sanitize()
	if err := validation.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.limiter.Allow(ctx, req.Email, remoteIP(r)); err != nil {
		shared.WriteError(w, err)
		return
	}

	res, err := h.svc.Register(ctx, &req)
	if err != nil {
		h.logger.WarnContext(ctx, "register failed",
			"error", err,
			"request_id", requestID,
		)
		shared.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusCreated, authResponse(res))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON in request body"))
		return
	}

	req.Sanitize()
	if err := validation.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.limiter.Allow(ctx, req.Email, remoteIP(r)); err != nil {
		shared.WriteError(w, err)
		return
	}

	res, err := h.svc.Authenticate(ctx, &req)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"error", err,
			"request_id", requestID,
		)
		shared.WriteError(w, err)
		return
	}

	dev := device.Parse(r.UserAgent())
	h.logger.InfoContext(ctx, "login",
		"user_id", res.User.ID,
		"browser", dev.Browser,
		"os", dev.OS,
		"platform", dev.Platform,
		"request_id", requestID,
	)

	jsonResponse.WriteJSON(w, http.StatusOK, authResponse(res))
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing identity"))
		return
	}

	user, err := h.svc.GetProfile(ctx, ident.UserID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, models.NewUserResponse(user))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing identity"))
		return
	}

	var patch models.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON in request body"))
		return
	}

	patch.Sanitize()
	if err := validation.Validate(&patch); err != nil {
		shared.WriteError(w, err)
		return
	}

	res, err := h.svc.UpdateProfile(ctx, ident.UserID, &patch)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, authResponse(res))
}

func authResponse(res *service.AuthResult) models.AuthResponse {
	return models.AuthResponse{
		UserResponse: models.NewUserResponse(res.User),
		Token:        res.Token,
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
