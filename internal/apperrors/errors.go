package apperrors

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Stable machine-readable codes carried on every user-visible failure.
const (
	TextCodeNotAuthenticated    = "NOT_AUTHENTICATED"
	TextCodeAccessDenied        = "ACCESS_DENIED"
	TextCodeDuplicateResource   = "DUPLICATE_RESOURCE"
	TextCodeEmailRegistered     = "EMAIL_ALREADY_REGISTERED"
	TextCodeInvalidTransition   = "INVALID_STATUS_TRANSITION"
	TextCodeInvalidProjectState = "INVALID_PROJECT_STATUS"
	TextCodeAlreadyDeleted      = "ALREADY_DELETED"
	TextCodeInvalidInput        = "INVALID_INPUT"
	TextCodeInvalidDate         = "INVALID_DATE"
	TextCodeTokenInvalid        = "TOKEN_INVALID"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenRevoked        = "TOKEN_REVOKED"
	TextCodeLastAdmin           = "LAST_ADMIN_PROTECTED"
	TextCodeLastOwner           = "LAST_OWNER_PROTECTED"
	TextCodeSelfOperation       = "SELF_OPERATION_NOT_ALLOWED"
	TextCodeRateLimited         = "RATE_LIMITED"
	TextCodeInternal            = "INTERNAL"
)

var (
	ErrNotAuthenticated = goerrors.New("authentication required", goerrors.CategoryAuth).
				WithTextCode(TextCodeNotAuthenticated).
				WithCode(goerrors.CodeUnauthorized)

	ErrAccessDenied = goerrors.New("access denied", goerrors.CategoryAuth).
			WithTextCode(TextCodeAccessDenied)

	ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
				WithTextCode(TextCodeNotAuthenticated).
				WithCode(goerrors.CodeUnauthorized)

	ErrTokenInvalid = goerrors.New("invalid token, please login again", goerrors.CategoryAuth).
			WithTextCode(TextCodeTokenInvalid).
			WithCode(goerrors.CodeUnauthorized)

	ErrTokenExpired = goerrors.New("refresh token expired, please login again", goerrors.CategoryAuth).
			WithTextCode(TextCodeTokenExpired).
			WithCode(goerrors.CodeUnauthorized)

	ErrTokenRevoked = goerrors.New("refresh token revoked, please login again", goerrors.CategoryAuth).
			WithTextCode(TextCodeTokenRevoked).
			WithCode(goerrors.CodeUnauthorized)

	ErrEmailRegistered = goerrors.New("email is already registered", goerrors.CategoryConflict).
				WithTextCode(TextCodeEmailRegistered).
				WithCode(goerrors.CodeConflict)

	ErrAlreadyDeleted = goerrors.New("resource is already deleted", goerrors.CategoryConflict).
				WithTextCode(TextCodeAlreadyDeleted).
				WithCode(goerrors.CodeConflict)

	ErrInvalidProjectStatus = goerrors.New("status is not allowed at project creation", goerrors.CategoryValidation).
				WithTextCode(TextCodeInvalidProjectState).
				WithCode(goerrors.CodeBadRequest)

	ErrLastAdminProtected = goerrors.New("the last active admin cannot be deactivated, suspended, deleted or demoted", goerrors.CategoryConflict).
				WithTextCode(TextCodeLastAdmin).
				WithCode(goerrors.CodeConflict)

	ErrLastOwnerProtected = goerrors.New("a team must keep exactly one owner", goerrors.CategoryConflict).
				WithTextCode(TextCodeLastOwner).
				WithCode(goerrors.CodeConflict)

	ErrSelfOperation = goerrors.New("operation not allowed on your own account", goerrors.CategoryConflict).
				WithTextCode(TextCodeSelfOperation).
				WithCode(goerrors.CodeConflict)
)

// NotFound builds a typed not-found error with a per-resource text code,
// e.g. NotFound("team") -> TEAM_NOT_FOUND.
func NotFound(resource string) *goerrors.Error {
	return goerrors.New(resource+" not found", goerrors.CategoryNotFound).
		WithTextCode(textCodeForResource(resource, "_NOT_FOUND")).
		WithCode(goerrors.CodeNotFound)
}

// Duplicate builds a typed conflict error for scoped uniqueness violations.
func Duplicate(resource, detail string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("%s already exists: %s", resource, detail), goerrors.CategoryConflict).
		WithTextCode(TextCodeDuplicateResource).
		WithCode(goerrors.CodeConflict).
		WithMetadata(map[string]any{"resource": resource})
}

// AccessDenied wraps the shared denial with a human-readable reason.
func AccessDenied(reason string) *goerrors.Error {
	return goerrors.New("access denied: "+reason, goerrors.CategoryAuth).
		WithTextCode(TextCodeAccessDenied)
}

// InvalidTransition reports a disallowed status change, carrying old/new
// status for diagnostics.
func InvalidTransition(entity, from, to string) *goerrors.Error {
	return goerrors.New(fmt.Sprintf("invalid %s status transition", entity), goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidTransition).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"entity": entity, "from": from, "to": to})
}

// InvalidInput reports a bad request-level value (blank fields, empty files,
// unknown enum values).
func InvalidInput(reason string) *goerrors.Error {
	return goerrors.New("invalid input: "+reason, goerrors.CategoryBadInput).
		WithTextCode(TextCodeInvalidInput).
		WithCode(goerrors.CodeBadRequest)
}

// InvalidDate reports a date-rule violation.
func InvalidDate(reason string) *goerrors.Error {
	return goerrors.New("invalid date: "+reason, goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidDate).
		WithCode(goerrors.CodeBadRequest)
}

// Internal wraps a store or infrastructure failure without leaking details.
func Internal(err error, msg string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg).
		WithTextCode(TextCodeInternal)
}

// HasTextCode reports whether err carries the given machine-readable code.
func HasTextCode(err error, textCode string) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCode
	}
	return false
}

func textCodeForResource(resource, suffix string) string {
	code := make([]byte, 0, len(resource)+len(suffix))
	for i := 0; i < len(resource); i++ {
		c := resource[i]
		switch {
		case c >= 'a' && c <= 'z':
			code = append(code, c-'a'+'A')
		case c == ' ' || c == '-':
			code = append(code, '_')
		default:
			code = append(code, c)
		}
	}
	return string(code) + suffix
}
