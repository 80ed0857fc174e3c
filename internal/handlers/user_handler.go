package handlers

import (
	"warbler/internal/config"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for profiles and the follow graph.
type UserHandler struct {
	authService *services.AuthService
	users       *services.UserService
	graph       *services.GraphService
	timelines   *services.TimelineService
	defaults    config.ProfileDefaults
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService, users *services.UserService, graph *services.GraphService, timelines *services.TimelineService, defaults config.ProfileDefaults) *UserHandler {
	return &UserHandler{
		authService: authService,
		users:       users,
		graph:       graph,
		timelines:   timelines,
		defaults:    defaults,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleSearch)
	userRoutes.Patch("/profile", middleware.AuthRequired(), h.HandleUpdateProfile)
	userRoutes.Delete("/profile", middleware.AuthRequired(), h.HandleDeleteAccount)
	userRoutes.Post("/follow/:id", middleware.AuthRequired(), h.HandleFollow)
	userRoutes.Post("/stop-following/:id", middleware.AuthRequired(), h.HandleStopFollowing)
	userRoutes.Get("/:id", h.HandleShow)
	userRoutes.Get("/:id/following", middleware.AuthRequired(), h.HandleFollowing)
	userRoutes.Get("/:id/followers", middleware.AuthRequired(), h.HandleFollowers)
	userRoutes.Get("/:id/likes", h.HandleLikes)
}

// HandleSearch lists users, filtered by the q query parameter.
func (h *UserHandler) HandleSearch(c *fiber.Ctx) error {
	users, err := h.users.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err, "Could not search users")
	}
	return c.JSON(users)
}

// HandleShow returns a profile with its newest messages.
func (h *UserHandler) HandleShow(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "User not found")
	}
	ctx := c.UserContext()
	viewer := middleware.CurrentUser(c)

	user, err := h.users.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err, "User not found")
	}
	messages, err := h.timelines.Profile(ctx, viewer, id)
	if err != nil {
		return respondError(c, err, "Could not load messages")
	}
	followers, err := h.graph.FollowerCount(ctx, id)
	if err != nil {
		return respondError(c, err, "Could not count followers")
	}
	following, err := h.graph.FollowingCount(ctx, id)
	if err != nil {
		return respondError(c, err, "Could not count following")
	}

	resp := fiber.Map{
		"user":            user,
		"messages":        messages,
		"followers_count": followers,
		"following_count": following,
	}
	if viewer != nil && viewer.ID != id {
		isFollowing, err := h.graph.IsFollowing(ctx, viewer.ID, id)
		if err != nil {
			return respondError(c, err, "Could not load relationship")
		}
		resp["is_following"] = isFollowing
	}
	return c.JSON(resp)
}

// HandleFollowing lists the users :id follows.
func (h *UserHandler) HandleFollowing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "User not found")
	}
	users, err := h.graph.Following(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not list following")
	}
	return c.JSON(users)
}

// HandleFollowers lists the users following :id.
func (h *UserHandler) HandleFollowers(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "User not found")
	}
	users, err := h.graph.Followers(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not list followers")
	}
	return c.JSON(users)
}

// HandleLikes lists the messages :id likes.
func (h *UserHandler) HandleLikes(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "User not found")
	}
	entries, err := h.timelines.Liked(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err, "Could not list liked messages")
	}
	return c.JSON(entries)
}

// HandleFollow makes the caller follow :id.
func (h *UserHandler) HandleFollow(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "User not found")
	}
	if err := h.graph.Follow(c.UserContext(), middleware.CurrentUser(c).ID, id); err != nil {
		return respondError(c, err, "Could not follow user")
	}
	return c.JSON(fiber.Map{
		"message":   "Followed",
		"following": true,
	})
}

// HandleStopFollowing removes the caller's edge to :id.
func (h *UserHandler) HandleStopFollowing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, err, "User not found")
	}
	if err := h.graph.Unfollow(c.UserContext(), middleware.CurrentUser(c).ID, id); err != nil {
		return respondError(c, err, "Could not stop following user")
	}
	return c.JSON(fiber.Map{
		"message":   "Stopped following",
		"following": false,
	})
}

// UpdateProfileRequest represents the request body for a profile edit.
// Omitted fields keep their values; an empty image URL restores the default.
type UpdateProfileRequest struct {
	Username       *string `json:"username" validate:"omitempty,min=1,max=100"`
	Email          *string `json:"email" validate:"omitempty,email,max=255"`
	ImageURL       *string `json:"image_url"`
	HeaderImageURL *string `json:"header_image_url"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location" validate:"omitempty,max=100"`
	Password       string  `json:"password" validate:"required"`
}

// HandleUpdateProfile edits the caller's profile after re-checking the password.
func (h *UserHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if errBody := bindBody(c, h.validate, &req); errBody != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errBody)
	}

	update := models.ProfileUpdate{
		Username:       req.Username,
		Email:          req.Email,
		ImageURL:       defaultIfBlank(req.ImageURL, h.defaults.ImageURL),
		HeaderImageURL: defaultIfBlank(req.HeaderImageURL, h.defaults.HeaderImageURL),
		Bio:            req.Bio,
		Location:       req.Location,
	}
	user, err := h.users.UpdateProfile(c.UserContext(), middleware.CurrentUser(c), update, req.Password)
	if err != nil {
		return respondError(c, err, "Could not update profile")
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user,
	})
}

// HandleDeleteAccount deletes the caller's account and ends the session.
func (h *UserHandler) HandleDeleteAccount(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), middleware.CurrentUser(c)); err != nil {
		return respondError(c, err, "Could not delete account")
	}
	if err := endSession(c, h.authService); err != nil {
		return respondError(c, err, "Could not end session")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func defaultIfBlank(value *string, fallback string) *string {
	if value == nil || *value != "" {
		return value
	}
	return &fallback
}
