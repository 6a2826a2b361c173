package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-case-service/internal/api/dto"
	"github.com/spec-kit/support-case-service/internal/service"
	apperrors "github.com/spec-kit/support-case-service/pkg/util/errorutil"
)

// AdminsHandler manages counsellor authentication endpoints.
type AdminsHandler struct {
	service *service.AuthService
}

// NewAdminsHandler constructs handler.
func NewAdminsHandler(authService *service.AuthService) *AdminsHandler {
	return &AdminsHandler{service: authService}
}

// Login POST /auth/admins/login.
func (h *AdminsHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	admin, token, err := h.service.LoginAdmin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AdminLoginResponse{
		Token:         token,
		AdminID:       admin.ID,
		InstitutionID: admin.InstitutionID,
	}})
}
