package apperrors

import "errors"

// Registry errors
var (
	// ErrUnauthorized is returned when the caller lacks the required role or
	// identity for the operation.
	ErrUnauthorized = errors.New("caller is not authorized for this operation")
	// ErrAlreadyRegistered is returned when an identity is registered twice,
	// in any role.
	ErrAlreadyRegistered = errors.New("identity already registered")
	// ErrNotRegistered is returned when a referenced identity is absent from
	// the required registry.
	ErrNotRegistered = errors.New("identity not registered")
)

// Pricing and payment errors
var (
	ErrArithmeticOverflow = errors.New("pricing computation exceeds representable range")
	ErrPaymentMismatch    = errors.New("supplied payment does not equal the required amount")
)

// Ledger errors
var (
	ErrInsufficientBalance = errors.New("insufficient credit balance")
	// ErrInsufficientProvenanceBalance is returned when the student's balance
	// of tokens issued by the specific university cannot satisfy the debit,
	// regardless of the student's total balance.
	ErrInsufficientProvenanceBalance = errors.New("insufficient credit balance for the issuing university")
)

// Course and enrollment errors
var (
	ErrCourseNotFound      = errors.New("course offering not found")
	ErrCourseAlreadyExists = errors.New("course offering with this symbol already exists")
	ErrNoProfessorAssigned = errors.New("no professor assigned for the university on this course")
	ErrAlreadyEvaluated    = errors.New("enrollment record already evaluated")
	ErrNotOwner            = errors.New("caller is not the owner of the record")
	ErrNotRelocatable      = errors.New("only a passed record held by its student can relocate")
	ErrRecordNotFound      = errors.New("enrollment record not found")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidFormat      = errors.New("invalid token format")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
)

// CustomError carries additional context for an application error.
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap.
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError wrapping err.
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error.
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
