package auth

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeTokenNotFound      = "TOKEN_NOT_FOUND"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeEmailNotFound      = "EMAIL_NOT_FOUND"
	TextCodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	TextCodeWrongPassword      = "WRONG_PASSWORD"
	TextCodeWrongCode          = "WRONG_CODE"
	TextCodePasswordsDontMatch = "PASSWORDS_DONT_MATCH"
	TextCodeResetNotAuthorized = "RESET_NOT_AUTHORIZED"
	TextCodeResetTokenUsed     = "RESET_TOKEN_USED"
	TextCodeMalformedHash      = "MALFORMED_PASSWORD_HASH"
	TextCodeMailDelivery       = "MAIL_DELIVERY_FAILED"
	TextCodeMissingSigningKey  = "MISSING_SIGNING_KEY"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
)

// ErrTokenNotFound is returned when the request carries no cookie header
// or the header has no token cookie.
var ErrTokenNotFound = goerrors.New("authentication token not found", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenNotFound).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidToken is returned when a token fails signature, structure or
// expiry checks.
var ErrInvalidToken = goerrors.New("invalid authentication token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailNotFound no account is registered for the email.
var ErrEmailNotFound = goerrors.New("email not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeEmailNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailAlreadyExists an account is already registered for the email.
var ErrEmailAlreadyExists = goerrors.New("email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailAlreadyExists).
	WithCode(goerrors.CodeConflict)

// ErrWrongPassword the password does not match the stored hash.
var ErrWrongPassword = goerrors.New("wrong password", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongPassword).
	WithCode(goerrors.CodeUnauthorized)

// ErrWrongCode the one-time code does not match the reset claim.
var ErrWrongCode = goerrors.New("wrong code", goerrors.CategoryAuth).
	WithTextCode(TextCodeWrongCode).
	WithCode(goerrors.CodeUnauthorized)

// ErrPasswordsDontMatch new password and confirmation differ.
var ErrPasswordsDontMatch = goerrors.New("passwords don't match", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordsDontMatch).
	WithCode(goerrors.CodeBadRequest)

// ErrResetNotAuthorized the reset claim has not been authorized with a code.
var ErrResetNotAuthorized = goerrors.New("password reset not authorized", goerrors.CategoryAuth).
	WithTextCode(TextCodeResetNotAuthorized).
	WithCode(goerrors.CodeUnauthorized)

// ErrResetTokenUsed the reset token already changed a password.
var ErrResetTokenUsed = goerrors.New("password reset token has already been used", goerrors.CategoryConflict).
	WithTextCode(TextCodeResetTokenUsed).
	WithCode(goerrors.CodeConflict)

// ErrMalformedPasswordHash the stored hash cannot be parsed.
var ErrMalformedPasswordHash = goerrors.New("malformed password hash", goerrors.CategoryInternal).
	WithTextCode(TextCodeMalformedHash).
	WithCode(http.StatusInternalServerError)

// ErrMailDelivery the one-time code email could not be sent.
var ErrMailDelivery = goerrors.New("failed to deliver email", goerrors.CategoryInternal).
	WithTextCode(TextCodeMailDelivery).
	WithCode(http.StatusInternalServerError)

// ErrMissingSigningKey the claim codec was built without a secret.
var ErrMissingSigningKey = goerrors.New("signing key is required", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMissingSigningKey).
	WithCode(http.StatusInternalServerError)

// ErrUserNotFound is returned by a UserStore when no record matches.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrUserAlreadyExists is returned by a UserStore on a duplicate email.
var ErrUserAlreadyExists = goerrors.New("user already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeUserAlreadyExists).
	WithCode(goerrors.CodeConflict)

// ErrNoEmptyString empty passwords are never hashed.
var ErrNoEmptyString = goerrors.New("password can not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// IsTokenRejection reports whether err means the request must go back
// to the login page.
func IsTokenRejection(err error) bool {
	return errors.Is(err, ErrTokenNotFound) || errors.Is(err, ErrInvalidToken)
}

// HTTPStatus resolves the status code for an error returned by this
// package. Errors without a rich code are internal.
func HTTPStatus(err error) int {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	if richErr.Code > 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func asInternal(err error, msg string) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}
