package cli

import (
	"context"
	"errors"
	"io/fs"

	"github.com/ccconfigs/packsync/internal/fsops"
	"github.com/ccconfigs/packsync/internal/packs"
	"github.com/ccconfigs/packsync/internal/reconcile"
	"github.com/ccconfigs/packsync/internal/registry"
)

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	ErrConfigInvalid       = "CONFIG_INVALID"
	ErrRegistryInvalid     = "REGISTRY_INVALID"
	ErrUnknownPack         = "UNKNOWN_PACK"
	ErrPackConflict        = "PACK_CONFLICT"
	ErrManagedPathConflict = "MANAGED_PATH_CONFLICT"
	ErrCheckFailed         = "CHECK_FAILED"
	ErrInvalidInput        = "INVALID_INPUT"
	ErrConfirmationNeeded  = "CONFIRMATION_REQUIRED"
	ErrFileWriteError      = "FILE_WRITE_ERROR"
	ErrCancelled           = "CANCELLED"
	ErrInternal            = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnDrift = "MANAGED_ARTIFACT_MISSING"
)

// classifyError maps an engine error to its code and a hint for the user.
func classifyError(err error) (code, suggestion string) {
	var (
		unknown  *packs.UnknownPackError
		conflict *packs.ConflictError
		managed  *fsops.ManagedPathConflictError
		invalid  *registry.InvalidRegistryError
		pathErr  *fs.PathError
	)
	switch {
	case errors.As(err, &unknown):
		return ErrUnknownPack, "Run 'packsync list' to see available packs"
	case errors.As(err, &conflict):
		return ErrPackConflict, "Disable one of the conflicting packs"
	case errors.As(err, &managed):
		return ErrManagedPathConflict, "Move or delete the existing path, then sync again"
	case errors.As(err, &invalid):
		return ErrRegistryInvalid, "Check --source-root and opencode/packs.json"
	case errors.Is(err, reconcile.ErrCheckFailed):
		return ErrCheckFailed, "Run 'packsync sync' without --check to apply"
	case errors.Is(err, context.Canceled):
		return ErrCancelled, ""
	case errors.As(err, &pathErr):
		return ErrFileWriteError, ""
	}
	return ErrInternal, ""
}

// handleEngineError reports an error from the sync engine with its code.
func handleEngineError(err error) error {
	code, suggestion := classifyError(err)
	return handleError(code, err, suggestion)
}
