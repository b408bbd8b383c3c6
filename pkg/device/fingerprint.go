package device

import (
	"net/http"
	"strings"
)

// DeviceIDHeader carries the out-of-band device identifier for clients whose
// token was issued without one.
const DeviceIDHeader = "X-Device-Id"

// ResolveFingerprint returns the fingerprint to enforce for a request. The
// value from the verified token wins; the device header is only consulted
// when the token has none. An empty result means no identifier was supplied.
func ResolveFingerprint(tokenFingerprint string, r *http.Request) string {
	if fingerprint := strings.TrimSpace(tokenFingerprint); fingerprint != "" {
		return fingerprint
	}
	return ExtractDeviceIDFromRequest(r)
}

// ExtractDeviceIDFromRequest reads the device header
func ExtractDeviceIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Header.Get(DeviceIDHeader))
}
