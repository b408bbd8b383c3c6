// Package device binds each account to a single device fingerprint.
//
// The first enforced login of an account claims the binding for the device it
// came from. Every later enforced login must present the same fingerprint;
// a different one is a conflict and leaves the stored binding untouched.
// The binding changes only through ResetBinding.
//
// # Overview
//
// The device package provides:
//   - AccountBinding, the persisted account → fingerprint association
//   - BindingRepository with an atomic ClaimOrVerify primitive
//   - PostgreSQL, SQLite, JSON file and in-memory repositories
//   - BindingService, which bounds each store call with a timeout
//   - ResolveFingerprint, the token-first / header-fallback lookup
//
// # Basic Usage
//
//	import "github.com/tendant/devicegate/pkg/device"
//
//	repo := device.NewPostgresBindingRepository(pool)
//	service := device.NewBindingService(
//		repo,
//		device.WithStoreTimeout(2*time.Second),
//	)
//
//	result, err := service.ClaimOrVerify(ctx, accountID, fingerprint)
//	switch {
//	case err != nil:
//		// ErrCodeAccountNotFound or ErrCodeStoreUnavailable
//	case result == device.ClaimConflict:
//		// account already active on another device
//	}
//
// # Concurrency
//
// All cross-request coordination happens inside ClaimOrVerify. The PostgreSQL
// and SQLite repositories issue one conditional UPDATE; the file and in-memory
// repositories compare and set under a single lock. Callers must not read a
// binding and then write it in a separate step.
//
// # Schema
//
//	CREATE TABLE accounts (
//		id                       TEXT PRIMARY KEY,
//		bound_device_fingerprint TEXT,
//		device_bound_at          TIMESTAMPTZ,
//		created_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
package device
