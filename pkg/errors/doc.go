// Package errors provides structured error handling with error codes for devicegate.
//
// Every failure the gate can produce carries one ErrorCode, and every code maps
// to exactly one HTTP status via MapErrorCodeToHTTPStatus.
//
// # Basic Usage
//
//	import gateerrors "github.com/tendant/devicegate/pkg/errors"
//
//	err := gateerrors.New(gateerrors.ErrCodeTokenInvalid, "signature mismatch")
//	err := gateerrors.StoreUnavailable(dbErr, "claim device binding")
//
//	if gateerrors.IsCode(err, gateerrors.ErrCodeTokenExpired) {
//		// ...
//	}
//
// # Error Codes
//
// Credentials (401):
//   - ErrCodeTokenMissing
//   - ErrCodeTokenInvalid
//   - ErrCodeTokenExpired
//   - ErrCodeAccountNotFound
//
// Client configuration (400):
//   - ErrCodeMissingDeviceID
//
// Device binding (403):
//   - ErrCodeDeviceConflict
//
// Infrastructure (500):
//   - ErrCodeStoreUnavailable
//   - ErrCodeInternal
package errors
