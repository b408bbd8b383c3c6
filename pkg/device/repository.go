package device

import (
	"context"
	"time"
)

// AccountBinding is the persisted association between an account and the one
// device fingerprint allowed to use it. Fingerprint is empty until the first
// enforced login.
type AccountBinding struct {
	AccountID   string    `json:"id"`
	Fingerprint string    `json:"bound_device_fingerprint,omitempty"`
	BoundAt     time.Time `json:"device_bound_at"`
}

// IsBound reports whether a device has been claimed for the account
func (b AccountBinding) IsBound() bool {
	return b.Fingerprint != ""
}

// ClaimResult is the outcome of a claim-or-verify against the store
type ClaimResult int

const (
	// ClaimUnknown is returned alongside an error and never admits a request
	ClaimUnknown ClaimResult = iota
	// ClaimBound means the binding now equals the presented fingerprint
	ClaimBound
	// ClaimConflict means another fingerprint holds the binding; nothing was written
	ClaimConflict
)

func (c ClaimResult) String() string {
	switch c {
	case ClaimBound:
		return "bound"
	case ClaimConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// BindingRepository defines the storage operations for account device bindings.
//
// ClaimOrVerify must perform its read-compare-write as one atomic operation:
// when several callers race to claim an unbound account with different
// fingerprints, exactly one observes ClaimBound.
//
// Implementations return errors from pkg/errors: ErrCodeAccountNotFound when
// the account has no record, ErrCodeStoreUnavailable for everything else.
type BindingRepository interface {
	ClaimOrVerify(ctx context.Context, accountID, fingerprint string) (ClaimResult, error)
	GetBinding(ctx context.Context, accountID string) (AccountBinding, error)

	// CreateAccount registers an account with no binding. Creating an existing
	// account is a no-op that returns the current binding.
	CreateAccount(ctx context.Context, accountID string) (AccountBinding, error)

	// ResetBinding clears the bound fingerprint. It is the only way a bound
	// fingerprint ever changes.
	ResetBinding(ctx context.Context, accountID string) error
}
