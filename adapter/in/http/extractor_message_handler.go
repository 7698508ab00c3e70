package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"extractor_server/core/domain"
	"extractor_server/core/port/in"
	"extractor_server/pkg/logger"
)

// MessageHandler ingests opened-message reports from the extension and
// kicks off extraction plus the review workflow.
type MessageHandler struct {
	extraction in.ExtractionService
	review     in.ReviewService
	log        *logger.Logger
}

func NewMessageHandler(extraction in.ExtractionService, review in.ReviewService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		extraction: extraction,
		review:     review,
		log:        log.WithField("handler", "message"),
	}
}

func (h *MessageHandler) Register(router fiber.Router) {
	router.Post("/messages/opened", h.MessageOpened)
}

type messageOpenedRequest struct {
	SenderName  string `json:"senderName"`
	SenderEmail string `json:"senderEmail"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	DateTime    string `json:"dateTime"`
	ThreadID    string `json:"threadId"`
}

// MessageOpened runs the extraction pipeline for one opened message and
// opens a review session when candidates are found. Extraction failures
// surface as zero candidates, never as an error response.
func (h *MessageHandler) MessageOpened(c *fiber.Ctx) error {
	var req messageOpenedRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrorResponse(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Body == "" && req.Subject == "" {
		return ErrorResponse(c, fiber.StatusBadRequest, "empty message")
	}

	email := &domain.EmailRecord{
		SenderName:  req.SenderName,
		SenderEmail: req.SenderEmail,
		Subject:     req.Subject,
		Body:        req.Body,
		DateTime:    req.DateTime,
	}
	if req.ThreadID != "" {
		email.MailLink = fmt.Sprintf("https://mail.google.com/mail/u/0/#inbox/%s", req.ThreadID)
	}

	candidates := h.extraction.GetEventSuggestions(c.Context(), email)
	opened := h.review.Open(c.Context(), email, candidates)

	return SuccessResponse(c, fiber.Map{
		"candidates":     len(candidates),
		"session_opened": opened,
	})
}
