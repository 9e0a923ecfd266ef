package auth

import (
	"errors"
	"strings"
	"unicode"

	goerrors "github.com/goliatone/go-errors"
)

// MinPasswordLength is the shortest password accepted on registration
// and password change.
const MinPasswordLength = 8

// ValidatePasswordStrength requires MinPasswordLength characters with at
// least one upper case letter, one lower case letter and one digit.
func ValidatePasswordStrength(value interface{}) error {
	s, _ := value.(string)

	var missing []string
	if len([]rune(s)) < MinPasswordLength {
		missing = append(missing, "at least 8 characters")
	}

	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if !upper {
		missing = append(missing, "an upper case letter")
	}
	if !lower {
		missing = append(missing, "a lower case letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}

	if len(missing) > 0 {
		return errors.New("password needs " + strings.Join(missing, ", "))
	}
	return nil
}

func validationFailed(err error, msg string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, msg+": "+err.Error()).
		WithCode(goerrors.CodeBadRequest)
}
