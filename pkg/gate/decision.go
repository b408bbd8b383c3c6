package gate

import (
	"net/http"
)

// Rejection messages returned to clients in the {"error": ...} body
const (
	MsgNoToken         = "No token provided"
	MsgInvalidToken    = "Invalid / expired token"
	MsgMissingDeviceID = "Missing device identifier"
	MsgDeviceConflict  = "Account already active on another device"
	MsgUserNotFound    = "User not found"
	MsgDeviceLockFail  = "Device lock failed"
)

// Decision is the terminal outcome of evaluating a request: either
// Authorized with an AuthContext, or Rejected with a status and message.
type Decision struct {
	Authorized bool
	Context    AuthContext

	Status  int
	Message string
	// Err is the cause of a rejection, for logging only
	Err error
}

// Authorized admits the request with authCtx
func Authorized(authCtx AuthContext) Decision {
	return Decision{
		Authorized: true,
		Context:    authCtx,
		Status:     http.StatusOK,
	}
}

// Rejected terminates the request with status and message
func Rejected(status int, message string, err error) Decision {
	return Decision{
		Status:  status,
		Message: message,
		Err:     err,
	}
}
