package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by a session token. The issuer places the account id in
// "id"; tokens that only carry the registered "sub" claim are accepted too.
type Claims struct {
	AccountID string `json:"id,omitempty"`
	Role      string `json:"role,omitempty"`
	DeviceID  string `json:"deviceId,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the account the token was issued for
func (c *Claims) SubjectID() string {
	if c.AccountID != "" {
		return c.AccountID
	}
	return c.RegisteredClaims.Subject
}
