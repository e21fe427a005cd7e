package domain

import "errors"

var (
	// ErrValidation marks user input rejected before any write.
	ErrValidation = errors.New("validation failed")

	ErrNotFound       = errors.New("not found")
	ErrParentNotFound = errors.New("parent not found")

	// ErrStorageRead and ErrStorageWrite wrap failures of the backing store.
	ErrStorageRead  = errors.New("storage read failed")
	ErrStorageWrite = errors.New("storage write failed")

	ErrEditUnsupported  = errors.New("only notes can be edited")
	ErrNoPendingRemoval = errors.New("no removal awaiting confirmation")
)
