package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields flightdeck reads from a JWT credential.
// The credential is not verified; the server remains the authority.
type Claims struct {
	Subject   string
	UserID    string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseClaims decodes credential as a JWT without verifying its signature.
// ok is false when the credential is not a JWT (it is opaque to flightdeck).
func ParseClaims(credential string) (claims Claims, ok bool) {
	if credential == "" {
		return Claims{}, false
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, mc); err != nil {
		return Claims{}, false
	}

	claims.Subject, _ = mc.GetSubject()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	claims.Role = stringClaim(mc, "role")
	claims.Email = stringClaim(mc, "email")
	claims.UserID = stringClaim(mc, "id", "_id", "userId")
	return claims, true
}

// Expired reports whether the claims carry an expiry that is not after now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func stringClaim(mc jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if v, ok := mc[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
