package apperror

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrInvalidCell     = errors.New("invalid cell index")
)
