package device

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gateerrors "github.com/tendant/devicegate/pkg/errors"
)

// InMemBindingRepository implements BindingRepository using an in-memory map
type InMemBindingRepository struct {
	accounts map[string]AccountBinding
	mu       sync.Mutex
}

// NewInMemBindingRepository creates a new in-memory binding repository
func NewInMemBindingRepository() *InMemBindingRepository {
	return &InMemBindingRepository{
		accounts: make(map[string]AccountBinding),
	}
}

// ClaimOrVerify compares and sets the binding inside a single critical section
func (r *InMemBindingRepository) ClaimOrVerify(ctx context.Context, accountID, fingerprint string) (ClaimResult, error) {
	if err := ctx.Err(); err != nil {
		return ClaimUnknown, gateerrors.StoreUnavailable(err, "failed to claim device binding")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	binding, exists := r.accounts[accountID]
	if !exists {
		slog.Debug("Account not found", "accountID", accountID)
		return ClaimUnknown, gateerrors.AccountNotFound(accountID)
	}

	result, updated := claim(binding, fingerprint, time.Now().UTC())
	if result == ClaimBound {
		r.accounts[accountID] = updated
	}
	return result, nil
}

// GetBinding retrieves the binding for an account
func (r *InMemBindingRepository) GetBinding(ctx context.Context, accountID string) (AccountBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	binding, exists := r.accounts[accountID]
	if !exists {
		return AccountBinding{}, gateerrors.AccountNotFound(accountID)
	}
	return binding, nil
}

// CreateAccount registers an unbound account
func (r *InMemBindingRepository) CreateAccount(ctx context.Context, accountID string) (AccountBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if binding, exists := r.accounts[accountID]; exists {
		return binding, nil
	}

	binding := AccountBinding{AccountID: accountID}
	r.accounts[accountID] = binding
	slog.Debug("Account created", "accountID", accountID)
	return binding, nil
}

// ResetBinding clears the bound fingerprint of an account
func (r *InMemBindingRepository) ResetBinding(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[accountID]; !exists {
		return gateerrors.AccountNotFound(accountID)
	}
	r.accounts[accountID] = AccountBinding{AccountID: accountID}
	return nil
}

// claim decides the outcome for a binding already read under lock. The
// returned binding is only meaningful for ClaimBound.
func claim(binding AccountBinding, fingerprint string, now time.Time) (ClaimResult, AccountBinding) {
	if !binding.IsBound() {
		binding.Fingerprint = fingerprint
		binding.BoundAt = now
		return ClaimBound, binding
	}
	if binding.Fingerprint == fingerprint {
		return ClaimBound, binding
	}
	return ClaimConflict, binding
}
