package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/app/services"
	"github.com/opencampus/credisphere/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// Login handles user login
// @Summary Participant login
// @Description Authenticates a registered participant and returns a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Authentication successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("identity", resp.Identity).Msg("Participant logged in")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Rotates a refresh token and returns a fresh token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Token refreshed"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Token expired, revoked or unknown"
// @Router /auth/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.RefreshToken(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// RevokeSessions handles administrative session revocation
// @Summary Revoke all sessions of an account
// @Description Revokes every refresh token issued to the identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param identity path string true "Account identity"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Sessions revoked"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the administrator"
// @Failure 404 {object} dto.ErrorResponse "Identity not registered"
// @Router /accounts/{identity}/sessions [delete]
func (c *AuthController) RevokeSessions(ctx *gin.Context) {
	identity := ctx.Param("identity")

	if err := c.authService.RevokeSessions(ctx.Request.Context(), identity); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("identity", identity).Msg("Sessions revoked by administrator")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "all sessions revoked"}))
}
