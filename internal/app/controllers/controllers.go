// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/middleware"
)

// callerIdentity returns the authenticated identity set by the JWT middleware
func callerIdentity(ctx *gin.Context) string {
	value, _ := ctx.Get(middleware.ContextIdentityKey)
	identity, _ := value.(string)
	return identity
}

// callerRole returns the authenticated role set by the JWT middleware
func callerRole(ctx *gin.Context) string {
	value, _ := ctx.Get(middleware.ContextRoleKey)
	role, _ := value.(string)
	return role
}

// pathID parses a numeric path parameter, responding 400 on garbage input
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid path parameter").
			WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body, responding 400 on malformed payloads
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return false
	}
	return true
}
