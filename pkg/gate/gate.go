package gate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tendant/devicegate/pkg/device"
	gateerrors "github.com/tendant/devicegate/pkg/errors"
	"github.com/tendant/devicegate/pkg/token"
)

// BindingStore is the claim-or-verify primitive the gate enforces device
// locks with. *device.BindingService satisfies it.
type BindingStore interface {
	ClaimOrVerify(ctx context.Context, accountID, fingerprint string) (device.ClaimResult, error)
}

// Config holds the gate options
type Config struct {
	// EnforceDeviceLock binds each account to one device. When false the
	// store is never consulted.
	EnforceDeviceLock bool
}

// Gate verifies the bearer token of every request and, when enforcement is
// on, the account's device binding. It keeps no per-request state.
type Gate struct {
	verifier token.Verifier
	store    BindingStore
	config   Config
}

// New creates a gate. store may be nil only when the device lock is off.
func New(verifier token.Verifier, store BindingStore, config Config) (*Gate, error) {
	if verifier == nil {
		return nil, fmt.Errorf("token verifier is required")
	}
	if config.EnforceDeviceLock && store == nil {
		return nil, fmt.Errorf("binding store is required when device lock is enforced")
	}
	return &Gate{
		verifier: verifier,
		store:    store,
		config:   config,
	}, nil
}

// Evaluate runs the checks for r in order and returns the first rejection,
// or Authorized once every check has passed.
func (g *Gate) Evaluate(r *http.Request) Decision {
	claims, err := g.verifier.Verify(r.Header.Get("Authorization"))
	if err != nil {
		if gateerrors.IsCode(err, gateerrors.ErrCodeTokenMissing) {
			return Rejected(http.StatusUnauthorized, MsgNoToken, err)
		}
		return Rejected(http.StatusUnauthorized, MsgInvalidToken, err)
	}

	authCtx := AuthContext{
		SubjectID:         claims.SubjectID(),
		Role:              claims.Role,
		DeviceFingerprint: claims.DeviceID,
	}

	if !g.config.EnforceDeviceLock {
		return Authorized(authCtx)
	}

	fingerprint := device.ResolveFingerprint(claims.DeviceID, r)
	if fingerprint == "" {
		return Rejected(http.StatusBadRequest, MsgMissingDeviceID,
			gateerrors.New(gateerrors.ErrCodeMissingDeviceID, "no device identifier in token or header"))
	}
	authCtx.DeviceFingerprint = fingerprint

	result, err := g.store.ClaimOrVerify(r.Context(), authCtx.SubjectID, fingerprint)
	if err != nil {
		if gateerrors.IsCode(err, gateerrors.ErrCodeAccountNotFound) {
			return Rejected(http.StatusUnauthorized, MsgUserNotFound, err)
		}
		return Rejected(http.StatusInternalServerError, MsgDeviceLockFail, err)
	}

	switch result {
	case device.ClaimBound:
		return Authorized(authCtx)
	case device.ClaimConflict:
		return Rejected(http.StatusForbidden, MsgDeviceConflict,
			gateerrors.Newf(gateerrors.ErrCodeDeviceConflict, "account %s is bound to another device", authCtx.SubjectID))
	default:
		slog.Error("Binding store returned no result", "accountID", authCtx.SubjectID, "result", result.String())
		return Rejected(http.StatusInternalServerError, MsgDeviceLockFail,
			gateerrors.StoreUnavailable(nil, "binding store returned no result"))
	}
}
