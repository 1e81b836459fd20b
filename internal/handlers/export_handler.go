package handlers

import (
	"bytes"

	"lager/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ExportHandler serves the CSV inventory export.
type ExportHandler struct {
	service *services.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(service *services.ExportService) *ExportHandler {
	return &ExportHandler{
		service: service,
	}
}

// RegisterRoutes registers the export routes. The router is expected to be guarded.
func (h *ExportHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/export/csv", h.HandleExportCSV)
}

// HandleExportCSV renders in-stock articles as a CSV attachment.
func (h *ExportHandler) HandleExportCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.WriteCSV(c.UserContext(), &buf); err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename="+services.ExportFilename)
	return c.Send(buf.Bytes())
}
