package models

import "errors"

// Common errors for store operations.
var (
	// Developer errors
	ErrDeveloperNotFound  = errors.New("developer not found")
	ErrDuplicateDeveloper = errors.New("developer already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Plugin and source errors
	ErrPluginNotFound  = errors.New("plugin not found")
	ErrSourceNotFound  = errors.New("source not found")
	ErrDuplicateSource = errors.New("source already exists")

	// Resource and resource data errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceDataNotFound  = errors.New("resource data not found")
	ErrDuplicateResourceData = errors.New("resource data already exists")

	// Enum parsing errors
	ErrInvalidPublishState = errors.New("invalid publish state")
	ErrInvalidBuildState   = errors.New("invalid build state")
)

// IsNotFound reports whether err is any of the not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDeveloperNotFound) ||
		errors.Is(err, ErrPluginNotFound) ||
		errors.Is(err, ErrSourceNotFound) ||
		errors.Is(err, ErrResourceNotFound) ||
		errors.Is(err, ErrResourceDataNotFound)
}
