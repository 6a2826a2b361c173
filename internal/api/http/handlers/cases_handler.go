package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-case-service/internal/api/dto"
	"github.com/spec-kit/support-case-service/internal/auth"
	"github.com/spec-kit/support-case-service/internal/domain"
	"github.com/spec-kit/support-case-service/internal/service"
	apperrors "github.com/spec-kit/support-case-service/pkg/util/errorutil"
)

// CasesHandler manages counsellor case endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// ListCases GET /admin/cases.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	filter := parseCaseQuery(c)
	cases, err := h.service.ListCases(c.UserContext(), principal.Identity(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.CaseSummary, 0, len(cases))
	for i := range cases {
		items = append(items, caseSummary(&cases[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetCase GET /admin/cases/:id.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	supportCase, msgs, trail, err := h.service.GetCase(c.UserContext(), principal.Identity(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseDetail(supportCase, msgs, trail)})
}

// UpdateStatus PATCH /admin/cases/:id/status.
func (h *CasesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	var req dto.UpdateCaseStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Status) == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	supportCase, err := h.service.SetStatus(c.UserContext(), principal.Identity(), c.Params("id"), domain.CaseStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": caseSummary(supportCase)})
}

// ClaimCase POST /admin/cases/:id/claim.
func (h *CasesHandler) ClaimCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("admin required")
	}
	claimed, err := h.service.Claim(c.UserContext(), principal.Identity(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ClaimResponse{Claimed: claimed}})
}

func parseCaseQuery(c *fiber.Ctx) service.CaseListFilter {
	filter := service.CaseListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.CaseStatus(strings.TrimSpace(part)))
		}
	}
	if tierStr := c.Query("risk_tier"); tierStr != "" {
		for _, part := range strings.Split(tierStr, ",") {
			if tier, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
				filter.RiskTiers = append(filter.RiskTiers, domain.RiskTier(tier))
			}
		}
	}
	if assigned := c.Query("assigned_to"); assigned != "" {
		filter.AssignedTo = &assigned
	}
	if c.Query("unassigned") == "true" {
		filter.Unassigned = true
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func caseSummary(supportCase *domain.SupportCase) dto.CaseSummary {
	return dto.CaseSummary{
		ID:               supportCase.ID,
		UserID:           supportCase.UserID,
		InstitutionID:    supportCase.InstitutionID,
		Status:           supportCase.Status,
		RequestedChannel: string(supportCase.RequestedChannel),
		RiskTier:         supportCase.RiskTier,
		AssignedTo:       supportCase.AssignedTo,
		CreatedAt:        supportCase.CreatedAt,
		UpdatedAt:        supportCase.UpdatedAt,
	}
}

func caseDetail(supportCase *domain.SupportCase, messages []domain.SupportMessage, trail []domain.AuditLogEntry) dto.CaseDetailResponse {
	msgs := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		msgs = append(msgs, dto.MessageResponse{
			ID:               msg.ID,
			SenderType:       msg.SenderType,
			Body:             msg.Body,
			ContainsHighRisk: msg.ContainsHighRisk,
			CreatedAt:        msg.CreatedAt,
		})
	}
	entries := make([]dto.AuditEntryPayload, 0, len(trail))
	for i := range trail {
		entry := &trail[i]
		entries = append(entries, dto.AuditEntryPayload{
			ID:            entry.ID,
			AdminUserID:   entry.AdminUserID,
			ActionType:    entry.ActionType,
			ActionDetails: entry.ActionDetails,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return dto.CaseDetailResponse{
		CaseSummary:      caseSummary(supportCase),
		ConsentRecordID:  supportCase.ConsentRecordID,
		ConsentVersion:   supportCase.ConsentVersion,
		ConsentTimestamp: supportCase.ConsentTimestamp,
		FirstResponseAt:  supportCase.FirstResponseAt,
		CompletedAt:      supportCase.CompletedAt,
		ExpiresAt:        supportCase.ExpiresAt,
		ReviewNotes:      supportCase.ReviewNotes,
		Messages:         msgs,
		AuditTrail:       entries,
	}
}
