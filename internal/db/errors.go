package db

import "errors"

var (
	// ErrNotFound is returned when a document is not found in the store.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a create targets a document ID that is taken.
	ErrAlreadyExists = errors.New("document already exists")
)
