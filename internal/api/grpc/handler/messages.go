package handler

import (
	"github.com/dtroode/pactpal-server/internal/model"
)

// Messages of the pactpal.Auth and pactpal.Agreements services. They travel
// JSON encoded.

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type Empty struct{}

type CreateRequest struct {
	Message string `json:"message"`
}

type AgreementRequest struct {
	ID string `json:"id"`
}

type RespondRequest struct {
	ID     string `json:"id"`
	Accept bool   `json:"accept"`
}

type ListRequest struct {
	Tab    string `json:"tab,omitempty"`
	Query  string `json:"q,omitempty"`
	Status string `json:"status,omitempty"`
}

type GetResponse struct {
	Agreement   model.Agreement   `json:"agreement"`
	Permissions model.Permissions `json:"permissions"`
}

type ListResponse struct {
	Agreements []model.Agreement `json:"agreements"`
}

type StatusResponse struct {
	Unread bool `json:"unread"`
}
