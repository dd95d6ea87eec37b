package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
	"github.com/autox/marketplace-client/internal/metrics"
)

type AuthHandler struct {
	authService ports.AuthService
	metrics     *metrics.Backend
}

func NewAuthHandler(authService ports.AuthService, m *metrics.Backend) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m}
}

type registerRequest struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Phone    string      `json:"phone,omitempty" validate:"omitempty,max=20"`
	District string      `json:"district,omitempty" validate:"omitempty,district"`
	Role     domain.Role `json:"role,omitempty" validate:"omitempty,oneof=consumer vehicle_owner material_supplier admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	District *string `json:"district,omitempty" validate:"omitempty,district"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func authPayload(token string, user *domain.User) domain.AuthPayload {
	return domain.AuthPayload{Token: token, User: user.Identity()}
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		District: req.District,
		Role:     req.Role,
	})
	h.metrics.AuthEvent("register", err)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User registered successfully", authPayload(token, user))
}

// Login authenticates a user and returns a JWT.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	h.metrics.AuthEvent("login", err)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successful", authPayload(token, user))
}

func (h *AuthHandler) Me(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Profile(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", user.Identity())
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), actor.UserID, ports.ProfileUpdate{
		Name:     req.Name,
		Phone:    req.Phone,
		District: req.District,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile updated successfully", user.Identity())
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	actor, _, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), actor.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password changed successfully", nil)
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(c echo.Context) error {
	_, claims, err := ctxActor(c)
	if err != nil {
		return err
	}
	err = h.authService.Logout(c.Request().Context(), *claims)
	h.metrics.AuthEvent("logout", err)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}
