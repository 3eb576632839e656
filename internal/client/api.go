// Package client is the Go SDK for the userhub API. It pairs a typed HTTP
// client with a state store that mirrors identity into durable local storage,
// so a restarted app can rehydrate without a fresh login.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// genericErrorMessage is the fallback shown when the server's structured
// error cannot be decoded.
const genericErrorMessage = "something went wrong"

// APIError is the normalized error every API call returns on failure. It is
// produced once at the request boundary; Message is always human-readable so
// callers never sniff response shapes.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Account is an identity snapshot returned by register, login, and
// identity-bearing mutations. Token is empty on plain reads.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Token        string    `json:"token,omitempty"`
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateInput is a partial profile patch; empty fields are omitted.
type UpdateInput struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Password string `json:"password,omitempty"`
}

// API is the typed HTTP client for the userhub server.
type API struct {
	baseURL string
	http    *http.Client
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &API{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

func (a *API) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	var out Account
	if err := a.doJSON(ctx, http.MethodPost, "/api/users/register", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Login(ctx context.Context, email, password string) (*Account, error) {
	var out Account
	body := map[string]string{"email": email, "password": password}
	if err := a.doJSON(ctx, http.MethodPost, "/api/users/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) GetProfile(ctx context.Context, token string) (*Account, error) {
	var out Account
	if err := a.doJSON(ctx, http.MethodGet, "/api/users/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) UpdateProfile(ctx context.Context, token string, in UpdateInput) (*Account, error) {
	var out Account
	if err := a.doJSON(ctx, http.MethodPut, "/api/users/profile", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadProfileImage stages a file as multipart form data.
func (a *API) UploadProfileImage(ctx context.Context, token, filename string, file io.Reader) (*Account, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("profileImage", filename)
	if err != nil {
		return nil, &APIError{Code: "client_error", Message: genericErrorMessage}
	}
	if _, err := io.Copy(fw, file); err != nil {
		return nil, &APIError{Code: "client_error", Message: genericErrorMessage}
	}
	if err := mw.Close(); err != nil {
		return nil, &APIError{Code: "client_error", Message: genericErrorMessage}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/users/profile/upload", &body)
	if err != nil {
		return nil, &APIError{Code: "client_error", Message: genericErrorMessage}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	var out Account
	if err := a.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) AdminLogin(ctx context.Context, email, password string) (*Account, error) {
	var out Account
	body := map[string]string{"email": email, "password": password}
	if err := a.doJSON(ctx, http.MethodPost, "/api/admin/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) ListUsers(ctx context.Context, token string) ([]Account, error) {
	var out []Account
	if err := a.doJSON(ctx, http.MethodGet, "/api/admin/users", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUserInput is the payload for admin user creation.
type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Bio      string `json:"bio,omitempty"`
}

func (a *API) CreateUser(ctx context.Context, token string, in CreateUserInput) (*Account, error) {
	var out Account
	if err := a.doJSON(ctx, http.MethodPost, "/api/admin/users", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) UpdateUser(ctx context.Context, token, id string, in UpdateInput) (*Account, error) {
	var out Account
	if err := a.doJSON(ctx, http.MethodPut, "/api/admin/users/"+id, token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeleteUser(ctx context.Context, token, id string) error {
	return a.doJSON(ctx, http.MethodDelete, "/api/admin/users/"+id, token, nil, nil)
}

func (a *API) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &APIError{Code: "client_error", Message: genericErrorMessage}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return &APIError{Code: "client_error", Message: genericErrorMessage}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return a.send(req, out)
}

// send executes the request and normalizes every failure into *APIError.
// This is the single place error shapes are interpreted.
func (a *API) send(req *http.Request, out any) error {
	resp, err := a.http.Do(req)
	if err != nil {
		return &APIError{Code: "network_error", Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Status: resp.StatusCode, Code: "network_error", Message: genericErrorMessage}
	}

	if resp.StatusCode >= 400 {
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		apiErr := &APIError{Status: resp.StatusCode, Code: "unknown", Message: genericErrorMessage}
		if err := json.Unmarshal(raw, &body); err == nil {
			if body.Error != "" {
				apiErr.Code = body.Error
			}
			if body.Message != "" {
				apiErr.Message = body.Message
			}
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{Status: resp.StatusCode, Code: "decode_error", Message: genericErrorMessage}
		}
	}
	return nil
}
