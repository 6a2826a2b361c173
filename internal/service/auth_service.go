package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/support-case-service/internal/auth"
	"github.com/spec-kit/support-case-service/internal/config"
	"github.com/spec-kit/support-case-service/internal/domain"
	"github.com/spec-kit/support-case-service/internal/repository"
	apperrors "github.com/spec-kit/support-case-service/pkg/util/errorutil"
)

// AuthService authenticates counsellor accounts.
type AuthService struct {
	admins     repository.AdminRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, admins repository.AdminRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		admins:     admins,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// LoginAdmin authenticates a counsellor and issues a bearer token.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*domain.AdminUser, string, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", apperrors.NewUpstreamFailure("persistence", err)
	}
	if !admin.Active {
		return nil, "", apperrors.NewForbidden("account disabled")
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, "", apperrors.NewUnauthorized("invalid credentials")
	}
	token, _, err := s.tokenMgr.GenerateToken(admin.ID, admin.InstitutionID)
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}
	return admin, token, nil
}

// EnsureBootstrapAdmin seeds an initial counsellor account from config when
// the configured email does not exist yet. No-op when unset.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, cfg config.AuthConfig) error {
	if cfg.BootstrapAdminEmail == "" || cfg.BootstrapAdminPassword == "" {
		return nil
	}
	if _, err := s.admins.GetByEmail(ctx, cfg.BootstrapAdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.BootstrapAdminPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.AdminUser{
		Name:          "Bootstrap Admin",
		Email:         cfg.BootstrapAdminEmail,
		PasswordHash:  hash,
		InstitutionID: cfg.BootstrapInstitutionID,
		Active:        true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", admin.Email))
	return nil
}
