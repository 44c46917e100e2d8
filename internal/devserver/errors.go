package devserver

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrAlreadyExists  = errors.New("already exists")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrWrongPassword  = errors.New("incorrect password")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenRevoked   = errors.New("token revoked")
	ErrInvalidInput   = errors.New("invalid input")
)
