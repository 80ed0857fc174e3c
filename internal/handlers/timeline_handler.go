package handlers

import (
	"warbler/internal/middleware"
	"warbler/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TimelineHandler serves the home feed.
type TimelineHandler struct {
	timelines *services.TimelineService
}

// NewTimelineHandler creates a new TimelineHandler.
func NewTimelineHandler(timelines *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{timelines: timelines}
}

// RegisterRoutes registers the timeline route with the Fiber app.
func (h *TimelineHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/timeline", h.HandleHome)
}

// HandleHome returns the caller's home timeline. Anonymous callers get an
// empty list.
func (h *TimelineHandler) HandleHome(c *fiber.Ctx) error {
	entries, err := h.timelines.Home(c.UserContext(), middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err, "Could not load timeline")
	}
	return c.JSON(entries)
}
