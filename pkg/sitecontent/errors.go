package sitecontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrObjectNotFound indicates the addressed object does not exist
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidKey indicates a key failed path-safety validation
	ErrInvalidKey = errors.New("invalid key")

	// ErrPresignNotSupported indicates a blob store cannot issue upload URLs
	ErrPresignNotSupported = errors.New("presigned upload not supported")
)

// StorageError represents an error related to storage operations
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
