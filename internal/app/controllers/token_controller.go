package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/app/services"
	"github.com/opencampus/credisphere/internal/middleware"
)

// TokenController handles credit token purchases and balance queries
type TokenController struct {
	tokenService *services.TokenService
	logger       zerolog.Logger
}

// NewTokenController creates a new TokenController
func NewTokenController(tokenService *services.TokenService, logger zerolog.Logger) *TokenController {
	return &TokenController{
		tokenService: tokenService,
		logger:       logger,
	}
}

// Purchase buys credit tokens from a university
// @Summary Purchase credit tokens
// @Description Buys credit tokens from a university. The payment must match the quoted price exactly. Students only.
// @Tags tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PurchaseRequest true "Purchase details"
// @Success 200 {object} dto.APIResponse{data=dto.PurchaseResponse} "Purchase completed"
// @Failure 400 {object} dto.ErrorResponse "Payment mismatch or arithmetic overflow"
// @Failure 404 {object} dto.ErrorResponse "University not registered"
// @Failure 422 {object} dto.ErrorResponse "University has insufficient supply"
// @Router /tokens/purchase [post]
func (c *TokenController) Purchase(ctx *gin.Context) {
	var req dto.PurchaseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.tokenService.Purchase(ctx.Request.Context(), callerIdentity(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}

// GetBalance returns the total token balance of an identity
// @Summary Get token balance
// @Description Returns the total credit token balance of an identity. Holder or admin only.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param identity path string true "Holder identity"
// @Success 200 {object} dto.APIResponse{data=dto.BalanceResponse} "Balance returned"
// @Failure 403 {object} dto.ErrorResponse "Caller may not read this balance"
// @Router /balances/{identity} [get]
func (c *TokenController) GetBalance(ctx *gin.Context) {
	identity := ctx.Param("identity")

	balance, err := c.tokenService.BalanceOf(ctx.Request.Context(), callerIdentity(ctx), callerRole(ctx), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.BalanceResponse{
		Identity: identity,
		Balance:  balance,
	}))
}

// GetProvenanceBalance returns a student's sub-balance from one university
// @Summary Get provenance balance
// @Description Returns the tokens a student holds that were issued by one university. Student, university or admin only.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param identity path string true "Student identity"
// @Param university path string true "University identity"
// @Success 200 {object} dto.APIResponse{data=dto.ProvenanceBalanceResponse} "Provenance balance returned"
// @Failure 403 {object} dto.ErrorResponse "Caller may not read this balance"
// @Router /balances/{identity}/provenance/{university} [get]
func (c *TokenController) GetProvenanceBalance(ctx *gin.Context) {
	studentIdentity := ctx.Param("identity")
	universityIdentity := ctx.Param("university")

	balance, err := c.tokenService.ProvenanceBalanceOf(ctx.Request.Context(),
		callerIdentity(ctx), callerRole(ctx), studentIdentity, universityIdentity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ProvenanceBalanceResponse{
		StudentIdentity:    studentIdentity,
		UniversityIdentity: universityIdentity,
		Balance:            balance,
	}))
}

// GetMovements returns the movement journal of an identity
// @Summary Get token movements
// @Description Returns the token movement journal entries an identity took part in, newest first. Holder or admin only.
// @Tags tokens
// @Produce json
// @Security BearerAuth
// @Param identity path string true "Holder identity"
// @Success 200 {object} dto.APIResponse{data=dto.MovementListResponse} "Movements returned"
// @Failure 403 {object} dto.ErrorResponse "Caller may not read this journal"
// @Router /movements/{identity} [get]
func (c *TokenController) GetMovements(ctx *gin.Context) {
	identity := ctx.Param("identity")

	movements, err := c.tokenService.MovementsOf(ctx.Request.Context(), callerIdentity(ctx), callerRole(ctx), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toMovementListResponse(movements)))
}

func toMovementListResponse(movements []*models.TokenMovement) dto.MovementListResponse {
	resp := dto.MovementListResponse{
		Movements: make([]dto.MovementResponse, 0, len(movements)),
	}
	for _, m := range movements {
		resp.Movements = append(resp.Movements, dto.MovementResponse{
			ID:           m.ID,
			Kind:         string(m.Kind),
			FromIdentity: m.FromIdentity,
			ToIdentity:   m.ToIdentity,
			Amount:       m.Amount,
			CourseID:     m.CourseID,
			CreatedAt:    m.CreatedAt,
		})
	}
	resp.Total = len(resp.Movements)
	return resp
}
