package models

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrParse             = errors.New("parse error")
	ErrService           = errors.New("service error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrAuth              = errors.New("auth error")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
