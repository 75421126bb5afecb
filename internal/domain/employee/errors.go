package employee

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidPayDay    = errors.New("salary payment date must be between 1 and 28")
)
