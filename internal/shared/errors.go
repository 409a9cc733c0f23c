package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API errors
	ErrAPIRequest = fmt.Errorf("API request failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Database errors
	ErrNoMigrations = fmt.Errorf("no migrations applied")

	// Run control
	ErrAborted     = fmt.Errorf("operation aborted")
	ErrRunNotFound = fmt.Errorf("run not found")
)
