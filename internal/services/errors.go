package services

import (
	"errors"
)

// 领域错误，handler 层负责映射到 HTTP 状态码
var (
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrConflict    = errors.New("conflict")
	ErrAlreadyUsed = errors.New("invitation code already used")
	ErrInvalid     = errors.New("invalid input")
)
