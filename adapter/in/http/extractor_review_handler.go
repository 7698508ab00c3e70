package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"extractor_server/core/domain"
	"extractor_server/core/port/in"
	"extractor_server/pkg/logger"
)

// ReviewHandler exposes the sidebar review actions.
type ReviewHandler struct {
	review in.ReviewService
	log    *logger.Logger
}

func NewReviewHandler(review in.ReviewService, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		review: review,
		log:    log.WithField("handler", "review"),
	}
}

func (h *ReviewHandler) Register(router fiber.Router) {
	router.Get("/review/current", h.Current)
	router.Post("/review/edit", h.Edit)
	router.Post("/review/approve", h.Approve)
	router.Post("/review/reject", h.Reject)
	router.Post("/review/close", h.Close)
}

func (h *ReviewHandler) Current(c *fiber.Ctx) error {
	candidate, index, total := h.review.Current()
	if candidate == nil {
		return SuccessResponse(c, fiber.Map{"active": false})
	}
	return SuccessResponse(c, fiber.Map{
		"active":    true,
		"candidate": candidate,
		"index":     index,
		"total":     total,
	})
}

type editRequest struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
	Location      string    `json:"location"`
}

func (h *ReviewHandler) Edit(c *fiber.Ctx) error {
	var req editRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}

	updated := &domain.EventCandidate{
		Title:         req.Title,
		Description:   req.Description,
		StartDateTime: req.StartDateTime,
		EndDateTime:   req.EndDateTime,
		Location:      req.Location,
	}
	if err := h.review.Edit(c.Context(), updated); err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"updated": true})
}

func (h *ReviewHandler) Approve(c *fiber.Ctx) error {
	if err := h.review.Approve(c.Context()); err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"approved": true})
}

func (h *ReviewHandler) Reject(c *fiber.Ctx) error {
	if err := h.review.Reject(c.Context()); err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"rejected": true})
}

func (h *ReviewHandler) Close(c *fiber.Ctx) error {
	h.review.Close(c.Context())
	return SuccessResponse(c, fiber.Map{"closed": true})
}
