package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"extractor_server/core/domain"
	"extractor_server/core/port/in"
	"extractor_server/pkg/logger"
)

// DatasetHandler exposes the collected decision dataset.
type DatasetHandler struct {
	dataset in.DatasetService
	log     *logger.Logger
}

func NewDatasetHandler(dataset in.DatasetService, log *logger.Logger) *DatasetHandler {
	return &DatasetHandler{
		dataset: dataset,
		log:     log.WithField("handler", "dataset"),
	}
}

func (h *DatasetHandler) Register(router fiber.Router) {
	router.Get("/dataset/stats", h.Stats)
	router.Get("/dataset/entries", h.Entries)
	router.Get("/dataset/export", h.Export)
	router.Delete("/dataset", h.Clear)
}

func (h *DatasetHandler) Stats(c *fiber.Ctx) error {
	return SuccessResponse(c, h.dataset.GetStats())
}

func (h *DatasetHandler) Entries(c *fiber.Ctx) error {
	filter := &domain.DatasetFilter{
		Action:   domain.DatasetAction(c.Query("action")),
		FromDate: c.Query("from"),
		ToDate:   c.Query("to"),
	}
	entries := h.dataset.GetAllEntries(filter)
	return SuccessResponse(c, fiber.Map{
		"entries": entries,
		"total":   len(entries),
	})
}

// Export serves the full dataset document as a JSON attachment.
func (h *DatasetHandler) Export(c *fiber.Ctx) error {
	data, err := h.dataset.ExportToJSON()
	if err != nil {
		return InternalErrorResponse(c, err, "dataset export")
	}

	filename := fmt.Sprintf("mail-event-extractor-dataset-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Send(data)
}

func (h *DatasetHandler) Clear(c *fiber.Ctx) error {
	if err := h.dataset.ClearDataset(c.Context()); err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"cleared": true})
}
