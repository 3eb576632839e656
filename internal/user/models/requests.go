package models

import s "userhub/pkg/string"

// RegisterRequest is the payload for POST /api/users/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *RegisterRequest) Sanitize() {
	s.TrimStrings(&r.Name, &r.Email)
}

// LoginRequest is the payload for POST /api/users/login and /api/admin/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Sanitize() {
	s.TrimStrings(&r.Email)
}

// UpdateRequest carries a partial profile update. Empty fields are treated as
// omitted and leave the stored value unchanged; the password is re-hashed only
// when supplied.
type UpdateRequest struct {
	Name     string `json:"name" validate:"omitempty,notblank"`
	Email    string `json:"email" validate:"omitempty,email"`
	Bio      string `json:"bio"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

func (r *UpdateRequest) Sanitize() {
	s.TrimStrings(&r.Name, &r.Email)
}

// IsEmpty reports whether the patch carries no changes at all.
func (r *UpdateRequest) IsEmpty() bool {
	return r.Name == "" && r.Email == "" && r.Bio == "" && r.Password == ""
}

// AdminCreateRequest is the payload for POST /api/admin/users.
type AdminCreateRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Bio      string `json:"bio"`
}

func (r *AdminCreateRequest) Sanitize() {
	s.TrimStrings(&r.Name, &r.Email)
}
