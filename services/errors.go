// services/errors.go
package services

import "errors"

// Sentinel errors mapped to HTTP status codes by the controllers.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrGateway    = errors.New("payment gateway error")
)
