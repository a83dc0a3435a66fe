package service

import "emperror.dev/errors"

const (
	// ErrBadRequest means Store was called without content or without a description.
	ErrBadRequest = errors.Sentinel("no file uploaded or description missing")

	// ErrNotFound covers an unknown name as well as a metadata/blob desync.
	ErrNotFound = errors.Sentinel("the requested file could not be found")

	ErrInvalidName = errors.Sentinel("invalid file name")
	ErrConflict    = errors.Sentinel("file record already exists")
	ErrBlobExists  = errors.Sentinel("blob already exists")
	ErrExhausted   = errors.Sentinel("could not generate an unused file name")
)
