package device

import (
	"context"
	"log/slog"
	"time"

	gateerrors "github.com/tendant/devicegate/pkg/errors"
)

// DefaultStoreTimeout bounds every store call made on behalf of a request
const DefaultStoreTimeout = 2 * time.Second

// BindingService enforces the single-device policy on top of a BindingRepository
type BindingService struct {
	repository BindingRepository
	timeout    time.Duration
}

// ServiceOption configures a BindingService
type ServiceOption func(*BindingService)

// WithStoreTimeout sets the deadline applied to each store call
func WithStoreTimeout(timeout time.Duration) ServiceOption {
	return func(s *BindingService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// NewBindingService creates a new binding service with the given repository
func NewBindingService(repository BindingRepository, opts ...ServiceOption) *BindingService {
	s := &BindingService{
		repository: repository,
		timeout:    DefaultStoreTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClaimOrVerify binds or verifies fingerprint for the account within the
// store timeout. Anything other than ClaimBound or ClaimConflict comes back
// with an ErrCodeAccountNotFound or ErrCodeStoreUnavailable error.
func (s *BindingService) ClaimOrVerify(ctx context.Context, accountID, fingerprint string) (ClaimResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.repository.ClaimOrVerify(ctx, accountID, fingerprint)
	if err != nil {
		if gateerrors.IsCode(err, gateerrors.ErrCodeAccountNotFound) {
			return ClaimUnknown, err
		}
		if !gateerrors.IsCode(err, gateerrors.ErrCodeStoreUnavailable) {
			err = gateerrors.StoreUnavailable(err, "device binding store failed")
		}
		slog.Error("Device binding store unavailable", "err", err, "accountID", accountID)
		return ClaimUnknown, err
	}

	switch result {
	case ClaimBound:
		slog.Debug("Device binding verified", "accountID", accountID)
	case ClaimConflict:
		slog.Info("Device binding conflict", "accountID", accountID)
	default:
		return ClaimUnknown, gateerrors.StoreUnavailable(nil, "device binding store returned no result")
	}

	return result, nil
}

// GetBinding returns the current binding for an account
func (s *BindingService) GetBinding(ctx context.Context, accountID string) (AccountBinding, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repository.GetBinding(ctx, accountID)
}

// ResetBinding clears the binding so the next enforced login can claim it
func (s *BindingService) ResetBinding(ctx context.Context, accountID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.repository.ResetBinding(ctx, accountID)
}
