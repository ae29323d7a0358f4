// Package services provides application-level orchestration services
package services

import (
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/logging"
	"github.com/havenwellness/haven-go/internal/infrastructure/observability/performance"
	"github.com/havenwellness/haven-go/internal/infrastructure/security"
	"github.com/havenwellness/haven-go/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles admin authentication and JWT issuance.
type AuthService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthService creates a new authentication service
func NewAuthService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	return &AuthService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthenticateAdmin validates the admin password and issues a JWT.
func (a *AuthService) AuthenticateAdmin(password string) *AuthResult {
	marker := a.perfTracker.StartOperation("auth:authenticate_admin")
	defer marker.Complete()

	if config.AdminPasswordHash == "" || config.JWTSecret == "" {
		a.logger.Auth().Error("Admin auth attempted without credentials configured")
		marker.SetSuccess(false)
		return &AuthResult{Success: false, Error: "admin authentication not configured"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(config.AdminPasswordHash), []byte(password)); err != nil {
		a.logger.Auth().Warn("Admin auth failed")
		marker.SetSuccess(false)
		return &AuthResult{Success: false, Error: "invalid credentials"}
	}

	token, err := security.GenerateAdminToken(config.JWTSecret, config.AdminTokenTTL)
	if err != nil {
		a.logger.Auth().Error("Admin token generation failed", "error", err.Error())
		marker.SetSuccess(false)
		return &AuthResult{Success: false, Error: "failed to generate token"}
	}

	marker.SetSuccess(true)
	a.logger.Auth().Info("Admin authenticated")
	return &AuthResult{Token: token, Role: "admin", Success: true}
}

// ValidateAdminToken checks a bearer token and confirms the admin role.
func (a *AuthService) ValidateAdminToken(tokenString string) bool {
	if tokenString == "" || config.JWTSecret == "" {
		return false
	}
	claims, err := security.ValidateJWT(tokenString, config.JWTSecret)
	if err != nil {
		return false
	}
	return security.IsAdminClaims(claims)
}
