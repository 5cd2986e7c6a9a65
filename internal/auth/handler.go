package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wichananm65/orders-api/internal/apperror"
	"github.com/wichananm65/orders-api/internal/logger"
	"github.com/wichananm65/orders-api/internal/metrics"
	"github.com/wichananm65/orders-api/internal/user"
)

type Handler struct {
	users   *user.Service
	tokens  *TokenIssuer
	limiter *RateLimiter
	log     *zap.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type profileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Password  *string `json:"password"`
}

func NewHandler(users *user.Service, tokens *TokenIssuer, limiter *RateLimiter, log *zap.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, limiter: limiter, log: log}
}

func (h *Handler) RegisterPublicRoutes(router fiber.Router) {
	group := router.Group("/api/auth")
	group.Post("/register", h.limiter.Handler(), h.register)
	group.Post("/login", h.limiter.Handler(), h.login)
}

// RegisterProtectedRoutes expects router to already enforce RequireUser.
func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	router.Get("/auth/profile", h.getProfile)
	router.Put("/auth/profile", h.updateProfile)
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(registerRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid request body"))
	}
	if field := payload.missingField(); field != "" {
		return apperror.Write(c, apperror.NewBadRequest("Missing required field: "+field))
	}

	created, err := h.users.Register(c.UserContext(), user.RegisterInput{
		Email:     payload.Email,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	})
	if err != nil {
		return apperror.Write(c, err)
	}

	logger.FromCtx(c, h.log).Info("user registered", zap.Int("user_id", created.ID))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    created,
	})
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid request body"))
	}
	if payload.Email == "" || payload.Password == "" {
		return apperror.Write(c, apperror.NewBadRequest("Email and password required"))
	}

	u, err := h.users.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidCredentials):
			metrics.RecordAuthAttempt("invalid_credentials")
		case errors.Is(err, user.ErrInactive):
			metrics.RecordAuthAttempt("inactive")
		default:
			metrics.RecordAuthAttempt("error")
		}
		return apperror.Write(c, err)
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		metrics.RecordAuthAttempt("error")
		return apperror.Write(c, err)
	}

	metrics.RecordAuthAttempt("success")
	logger.FromCtx(c, h.log).Info("user logged in", zap.Int("user_id", u.ID))
	return c.JSON(fiber.Map{
		"message":      "Login successful",
		"access_token": token,
		"user":         u,
	})
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	u, ok := CurrentUser(c)
	if !ok {
		return apperror.Write(c, ErrInvalidToken)
	}
	return c.JSON(fiber.Map{"user": u})
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	u, ok := CurrentUser(c)
	if !ok {
		return apperror.Write(c, ErrInvalidToken)
	}

	var payload profileUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return apperror.Write(c, apperror.NewBadRequest("Invalid request body"))
	}

	updated, err := h.users.UpdateProfile(c.UserContext(), u.ID, user.ProfileUpdate{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Password:  payload.Password,
	})
	if err != nil {
		return apperror.Write(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    updated,
	})
}

func (r registerRequest) missingField() string {
	switch {
	case strings.TrimSpace(r.Email) == "":
		return "email"
	case r.Password == "":
		return "password"
	case strings.TrimSpace(r.FirstName) == "":
		return "first_name"
	case strings.TrimSpace(r.LastName) == "":
		return "last_name"
	}
	return ""
}
