package repository

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	ErrReadOnly = errors.New("store is read-only")
)
