package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	"github.com/spec-kit/helpdesk-sla/internal/service"
)

// BreachScanner runs one breach scan at an instant.
type BreachScanner interface {
	Run(ctx context.Context, now time.Time) (service.ScanSummary, error)
}

// ScanHandler exposes the breach scan trigger for external schedulers.
type ScanHandler struct {
	scanner BreachScanner
}

// NewScanHandler constructs handler.
func NewScanHandler(scanner BreachScanner) *ScanHandler {
	return &ScanHandler{scanner: scanner}
}

// Trigger POST /internal/sla/scan.
func (h *ScanHandler) Trigger(c *fiber.Ctx) error {
	summary, err := h.scanner.Run(c.Context(), time.Now())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(dto.ScanResponse{
			Success: false,
			Message: err.Error(),
		})
	}

	notified := summary.Notified
	if notified == nil {
		notified = []string{}
	}
	return c.JSON(dto.ScanResponse{
		Success:  true,
		Message:  "breach scan complete",
		Scanned:  summary.Scanned,
		Notified: notified,
		Skipped:  summary.Skipped,
	})
}
