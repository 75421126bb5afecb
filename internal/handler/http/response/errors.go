package response

import "errors"

var (
	ErrInvalidToken     = errors.New("invalid or missing access token")
	ErrInsufficientRole = errors.New("manager or owner access required")
)
