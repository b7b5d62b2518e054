package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/opencampus/credisphere/internal/app/models/dto"
	"github.com/opencampus/credisphere/internal/pkg/apperrors"
)

// HandleAPIError maps application errors to HTTP responses. Every controller
// funnels service errors through here so status codes stay consistent.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError
	var details interface{}
	message := ""
	if errors.As(err, &custom) {
		message = custom.Message
		if custom.Details != nil {
			details = custom.Details
		}
	}

	respond := func(status int, code dto.ErrorCode, fallback string) {
		msg := message
		if msg == "" {
			msg = fallback
		}
		errorDetail := dto.NewErrorDetail(code, msg)
		if details != nil {
			errorDetail = errorDetail.WithDetails(details)
		}
		c.JSON(status, dto.APIResponse{Error: errorDetail})
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(401, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(401, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(401, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respond(401, dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrTokenRevoked):
		respond(401, dto.ErrorCodeInvalidToken, "Token revoked")
	case errors.Is(err, apperrors.ErrUnauthorized):
		respond(403, dto.ErrorCodeUnauthorized, "Caller is not authorized for this operation")
	case errors.Is(err, apperrors.ErrNotOwner):
		respond(403, dto.ErrorCodeNotOwner, "Caller is not the owner of the record")
	case errors.Is(err, apperrors.ErrAlreadyRegistered):
		respond(409, dto.ErrorCodeAlreadyRegistered, "Identity already registered")
	case errors.Is(err, apperrors.ErrNotRegistered):
		respond(404, dto.ErrorCodeNotRegistered, "Identity not registered")
	case errors.Is(err, apperrors.ErrCourseNotFound):
		respond(404, dto.ErrorCodeCourseNotFound, "Course offering not found")
	case errors.Is(err, apperrors.ErrRecordNotFound):
		respond(404, dto.ErrorCodeRecordNotFound, "Enrollment record not found")
	case errors.Is(err, apperrors.ErrCourseAlreadyExists):
		respond(409, dto.ErrorCodeCourseAlreadyExists, "Course offering with this symbol already exists")
	case errors.Is(err, apperrors.ErrNoProfessorAssigned):
		respond(409, dto.ErrorCodeNoProfessorAssigned, "No professor assigned for the university on this course")
	case errors.Is(err, apperrors.ErrAlreadyEvaluated):
		respond(409, dto.ErrorCodeAlreadyEvaluated, "Enrollment record already evaluated")
	case errors.Is(err, apperrors.ErrNotRelocatable):
		respond(409, dto.ErrorCodeNotRelocatable, "Only a passed record held by its student can relocate")
	case errors.Is(err, apperrors.ErrPaymentMismatch):
		respond(400, dto.ErrorCodePaymentMismatch, "Payment does not match the required amount")
	case errors.Is(err, apperrors.ErrArithmeticOverflow):
		respond(400, dto.ErrorCodeArithmeticOverflow, "Requested amount exceeds the representable range")
	case errors.Is(err, apperrors.ErrValidationFailed):
		respond(400, dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, apperrors.ErrInsufficientBalance):
		respond(422, dto.ErrorCodeInsufficientBalance, "Insufficient credit balance")
	case errors.Is(err, apperrors.ErrInsufficientProvenanceBalance):
		respond(422, dto.ErrorCodeInsufficientProvenanceBalance, "Insufficient credit balance for the issuing university")
	default:
		respond(500, dto.ErrorCodeInternalServer, "Internal server error")
	}
}
