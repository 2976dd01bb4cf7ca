package storage

import (
	"errors"
	"fmt"
)

// Standard storage error types that all backends should use.
var (
	// ErrTenantNotFound indicates no document exists for the tenant.
	ErrTenantNotFound = errors.New("tenant configuration not found")

	// ErrBackupNotFound indicates the requested backup key does not exist.
	ErrBackupNotFound = errors.New("backup not found")
)

// StorageError wraps backend failures with the operation and tenant involved.
// Storage failures are recoverable: the document stays dirty and the user
// may retry.
type StorageError struct {
	Op       string // Operation being performed (e.g., "LoadConfig", "DeployConfig")
	TenantID string // Tenant whose document was involved
	Err      error  // Underlying error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s failed for tenant %s: %v", e.Op, e.TenantID, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStorageError creates a storage error with context.
func NewStorageError(op, tenantID string, err error) *StorageError {
	return &StorageError{Op: op, TenantID: tenantID, Err: err}
}

// IsTenantNotFound checks if an error indicates a missing tenant document.
func IsTenantNotFound(err error) bool {
	return errors.Is(err, ErrTenantNotFound)
}
