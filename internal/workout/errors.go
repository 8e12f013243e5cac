package workout

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("workout not found")
	ErrUnknownKind            = errors.New("unknown workout kind")
	ErrPersistenceUnavailable = errors.New("workouts could not be saved")
)
