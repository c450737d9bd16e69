package domain

import "errors"

var (
	ErrModelNotFound  = errors.New("model not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrNotImplemented = errors.New("operation not implemented for model")
)
