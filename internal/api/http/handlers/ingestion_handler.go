package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-case-service/internal/auth"
	"github.com/spec-kit/support-case-service/internal/observability"
	"github.com/spec-kit/support-case-service/internal/service"
	apperrors "github.com/spec-kit/support-case-service/pkg/util/errorutil"
)

// IngestionHandler exposes the on-demand auto-create run.
type IngestionHandler struct {
	service *service.IngestionService
	metrics *observability.Metrics
}

// NewIngestionHandler constructs handler.
func NewIngestionHandler(ingestionService *service.IngestionService, metrics *observability.Metrics) *IngestionHandler {
	return &IngestionHandler{service: ingestionService, metrics: metrics}
}

// AutoCreateCases POST /admin/cases/auto-create. The run is scoped to the
// caller's institution and audited under their admin id.
func (h *IngestionHandler) AutoCreateCases(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}

	adminID := principal.Admin.ID
	institutionID := principal.Admin.InstitutionID

	report, err := h.service.IngestPending(c.UserContext(), &adminID, &institutionID)
	if err != nil {
		return err
	}
	h.metrics.RecordIngestionRun(report.CasesCreated)
	return c.JSON(fiber.Map{"data": report})
}
