package services

import "errors"

// Domain errors returned by the services
var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports the first rule an input violated
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
