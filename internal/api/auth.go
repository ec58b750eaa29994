package api

import (
	"context"
	"net/http"
)

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Username        string `json:"username" validate:"required,min=3,max=30"`
	FirstName       string `json:"firstName" validate:"required"`
	LastName        string `json:"lastName" validate:"required"`
	Address         string `json:"address" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.checkValid(req); err != nil {
		return err
	}

	return c.doJSON(ctx, http.MethodPost, "/api/auth/register", nil, req, nil)
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := c.checkValid(req); err != nil {
		return nil, err
	}

	var resp LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}
