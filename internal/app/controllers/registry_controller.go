package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/opencampus/credisphere/internal/app/models"
	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/app/services"
	"github.com/opencampus/credisphere/internal/middleware"
)

// RegistryController handles participant registry operations
type RegistryController struct {
	registryService *services.RegistryService
	logger          zerolog.Logger
}

// NewRegistryController creates a new RegistryController
func NewRegistryController(registryService *services.RegistryService, logger zerolog.Logger) *RegistryController {
	return &RegistryController{
		registryService: registryService,
		logger:          logger,
	}
}

func toAccountResponse(account *models.Account) dto.AccountResponse {
	return dto.AccountResponse{
		Identity:     account.Identity,
		DisplayName:  account.DisplayName,
		Role:         string(account.RoleType),
		RegisteredAt: account.RegisteredAt,
	}
}

func toAccountListResponse(accounts []*models.Account) dto.AccountListResponse {
	resp := dto.AccountListResponse{
		Accounts: make([]dto.AccountResponse, 0, len(accounts)),
	}
	for _, account := range accounts {
		resp.Accounts = append(resp.Accounts, toAccountResponse(account))
	}
	resp.Total = len(resp.Accounts)
	return resp
}

// RegisterUniversity registers a new university
// @Summary Register a university
// @Description Registers a university and issues its initial credit supply. Admin only.
// @Tags registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterAccountRequest true "University information"
// @Success 201 {object} dto.APIResponse{data=dto.AccountResponse} "University registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the admin"
// @Failure 409 {object} dto.ErrorResponse "Identity already registered"
// @Router /universities [post]
func (c *RegistryController) RegisterUniversity(ctx *gin.Context) {
	c.register(ctx, c.registryService.RegisterUniversity)
}

// RegisterProfessor registers a new professor
// @Summary Register a professor
// @Description Registers a professor. Admin only.
// @Tags registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterAccountRequest true "Professor information"
// @Success 201 {object} dto.APIResponse{data=dto.AccountResponse} "Professor registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the admin"
// @Failure 409 {object} dto.ErrorResponse "Identity already registered"
// @Router /professors [post]
func (c *RegistryController) RegisterProfessor(ctx *gin.Context) {
	c.register(ctx, c.registryService.RegisterProfessor)
}

// RegisterStudent registers a new student
// @Summary Register a student
// @Description Registers a student. Admin only.
// @Tags registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RegisterAccountRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.AccountResponse} "Student registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the admin"
// @Failure 409 {object} dto.ErrorResponse "Identity already registered"
// @Router /students [post]
func (c *RegistryController) RegisterStudent(ctx *gin.Context) {
	c.register(ctx, c.registryService.RegisterStudent)
}

func (c *RegistryController) register(ctx *gin.Context, fn func(context.Context, *dto.RegisterAccountRequest) (*models.Account, error)) {
	var req dto.RegisterAccountRequest
	if !bindJSON(ctx, &req) {
		return
	}

	account, err := fn(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(toAccountResponse(account)))
}

// GetAccount retrieves one registered participant
// @Summary Get a participant
// @Description Returns the registry entry for one identity
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Param identity path string true "Participant identity"
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse} "Participant found"
// @Failure 404 {object} dto.ErrorResponse "Identity not registered"
// @Router /accounts/{identity} [get]
func (c *RegistryController) GetAccount(ctx *gin.Context) {
	account, err := c.registryService.GetAccount(ctx.Request.Context(), ctx.Param("identity"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toAccountResponse(account)))
}

// ListUniversities lists registered universities
// @Summary List universities
// @Description Returns all universities in registration order
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AccountListResponse} "Universities listed"
// @Router /universities [get]
func (c *RegistryController) ListUniversities(ctx *gin.Context) {
	c.list(ctx, c.registryService.ListUniversities)
}

// ListProfessors lists registered professors
// @Summary List professors
// @Description Returns all professors in registration order
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AccountListResponse} "Professors listed"
// @Router /professors [get]
func (c *RegistryController) ListProfessors(ctx *gin.Context) {
	c.list(ctx, c.registryService.ListProfessors)
}

// ListStudents lists registered students
// @Summary List students
// @Description Returns all students in registration order
// @Tags registry
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AccountListResponse} "Students listed"
// @Router /students [get]
func (c *RegistryController) ListStudents(ctx *gin.Context) {
	c.list(ctx, c.registryService.ListStudents)
}

func (c *RegistryController) list(ctx *gin.Context, fn func(context.Context) ([]*models.Account, error)) {
	accounts, err := fn(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(toAccountListResponse(accounts)))
}
