package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs HS256 access tokens accepted by Parse with the same Config.
type Issuer struct {
	cfg Config
	ttl time.Duration
	now func() time.Time
}

// NewIssuer constructs an Issuer producing tokens valid for ttl.
func NewIssuer(cfg Config, ttl time.Duration) *Issuer {
	return &Issuer{cfg: cfg, ttl: ttl, now: time.Now}
}

// Issue returns a signed token whose subject is the user id.
func (i *Issuer) Issue(userID int64, email string) (string, time.Time, error) {
	now := i.now().UTC()
	expiresAt := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(userID, 10),
		"email": email,
		"iss":   i.cfg.Issuer,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}
	if i.cfg.Audience != "" {
		claims["aud"] = i.cfg.Audience
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
