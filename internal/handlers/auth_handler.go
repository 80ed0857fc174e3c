package handlers

import (
	"log/slog"
	"time"

	"warbler/internal/config"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for signup, login and logout.
type AuthHandler struct {
	authService  *services.AuthService
	defaults     config.ProfileDefaults
	sessionTTL   time.Duration
	secureCookie bool
	validate     *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		defaults:     cfg.ProfileDefaults(),
		sessionTTL:   cfg.SessionTTL,
		secureCookie: cfg.IsProduction(),
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Username       string `json:"username" validate:"required,max=100"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Password       string `json:"password" validate:"required,min=6"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
}

// HandleSignup registers a new user and logs them in.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if errBody := bindBody(c, h.validate, &req); errBody != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errBody)
	}

	user, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ImageURL:       orDefault(req.ImageURL, h.defaults.ImageURL),
		HeaderImageURL: orDefault(req.HeaderImageURL, h.defaults.HeaderImageURL),
	})
	if err != nil {
		return respondError(c, err, "Registration failed")
	}

	token, err := h.startSession(c, user)
	if err != nil {
		return respondError(c, err, "Could not start session")
	}

	slog.Info("user signed up", "user_id", user.ID, "username", user.Username)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates a user and issues a session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if errBody := bindBody(c, h.validate, &req); errBody != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errBody)
	}

	user, err := h.authService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		slog.Info("login failed", "username", req.Username)
		return respondError(c, err, "Authentication failed")
	}

	token, err := h.startSession(c, user)
	if err != nil {
		return respondError(c, err, "Could not start session")
	}

	return c.JSON(fiber.Map{
		"message": "Hello, " + user.Username + "!",
		"user":    user,
		"token":   token,
	})
}

// HandleLogout ends the caller's session, if any.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := endSession(c, h.authService); err != nil {
		return respondError(c, err, "Could not end session")
	}
	return c.JSON(fiber.Map{
		"message": "You have successfully logged out.",
	})
}

func (h *AuthHandler) startSession(c *fiber.Ctx, user *models.User) (string, error) {
	token, err := h.authService.EstablishSession(c.UserContext(), user)
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}

// endSession revokes the request's token and clears the cookie.
func endSession(c *fiber.Ctx, authService *services.AuthService) error {
	if token := middleware.SessionToken(c); token != "" {
		if err := authService.EndSession(c.UserContext(), token); err != nil {
			return err
		}
	}
	c.ClearCookie(middleware.SessionCookie)
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
