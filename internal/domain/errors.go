package domain

import "errors"

var (
	ErrBadRequest   = errors.New("bad request")
	ErrEmptyMessage = errors.New("message body and attachment are both empty")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)
