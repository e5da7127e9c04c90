package handler

import (
	"autoparts-inventory/internal/service"
	"autoparts-inventory/pkg/jwt"
	"autoparts-inventory/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// authErrors are answered with 401 on the auth routes. ErrUserNotFound is
// among them so a password reset does not reveal which emails exist.
var authErrors = []error{
	service.ErrInvalidCredentials,
	service.ErrUserNotFound,
	service.ErrUserInactive,
	service.ErrWrongPassword,
	service.ErrSessionTimeout,
	service.ErrSessionReplaced,
	jwt.ErrInvalidToken,
	jwt.ErrMissingToken,
}

func authFail(c *fiber.Ctx, err error) error {
	if isAny(err, authErrors) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	return fail(c, err)
}

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// Login starts a new session and ends any other one of the same user
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := validator.Validate(&req); err != nil {
		return fail(c, err)
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return authFail(c, err)
	}
	return c.JSON(response)
}

// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := validator.Validate(&req); err != nil {
		return fail(c, err)
	}

	if err := h.authService.ResetPassword(req.Email, req.OldPassword, req.NewPassword); err != nil {
		return authFail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated, sign in again"})
}

// Heartbeat marks the caller online. Sessions without one inside the idle
// window fail token validation.
// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	id, err := uuid.Parse(actor(c).ID)
	if err != nil {
		return authFail(c, jwt.ErrMissingToken)
	}

	if err := h.authService.Heartbeat(id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "online"})
}

// ValidateToken lets the client restore a session on page load
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := validator.Validate(&req); err != nil {
		return fail(c, err)
	}

	response, err := h.authService.ValidateToken(req.Token)
	if err != nil {
		return authFail(c, err)
	}
	return c.JSON(response)
}
