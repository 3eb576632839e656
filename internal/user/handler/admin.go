package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"userhub/internal/platform/device"
	"userhub/internal/platform/middleware"
	jsonResponse "userhub/internal/transport/http/json"
	"userhub/internal/transport/http/shared"
	"userhub/internal/user/models"
	dErrors "userhub/pkg/domain-errors"
	"userhub/pkg/validation"
)

// RegisterAdminLogin mounts the public admin login route.
func (h *Handler) RegisterAdminLogin(r chi.Router) {
	jsonRoutes(r).Post("/login", h.handleAdminLogin)
}

// RegisterAdmin mounts the admin-gated user CRUD routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	jr := jsonRoutes(r)
	r.Get("/users", h.handleListUsers)
	jr.Post("/users", h.handleAdminCreateUser)
	jr.Put("/users/{id}", h.handleAdminUpdateUser)
	r.Delete("/users/{id}", h.handleAdminDeleteUser)
}

func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.svc.AdminLogin(ctx, &req)
	if err != nil {
		h.logger.WarnContext(ctx, "admin login failed",
			"error", err,
			"request_id", requestID,
		)
		shared.WriteError(w, err)
		return
	}

	dev := device.Parse(r.UserAgent())
	h.logger.InfoContext(ctx, "admin login",
		"browser", dev.Browser,
		"os", dev.OS,
		"platform", dev.Platform,
		"request_id", requestID,
	)

	jsonResponse.WriteJSON(w, http.StatusOK, authResponse(res))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, models.NewUserResponse(u))
	}
	jsonResponse.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.AdminCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON in request body"))
		return
	}

	req.Sanitize()
	if err := validation.Validate(&req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.svc.AdminCreateUser(ctx, &req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusCreated, models.NewUserResponse(user))
}

func (h *Handler) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

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

	user, err := h.svc.AdminUpdateUser(ctx, id, &patch)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, models.NewUserResponse(user))
}

func (h *Handler) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}

	jsonResponse.WriteJSON(w, http.StatusOK, map[string]string{"message": "user removed"})
}
