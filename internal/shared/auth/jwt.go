// Package auth verifies the HS256 tokens issued by the identity provider.
// Tokens carry a role flag; anything other than admin is treated as a user.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	devSecret  = "dev-secret"
	defaultTTL = 24 * time.Hour
)

// ErrInvalidToken covers every verification failure. Callers never learn
// which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity carried by a token.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Exp   int64  `json:"exp,omitempty"`
	Iat   int64  `json:"iat,omitempty"`
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
}

// Verifier checks token signatures and expiry against one shared secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier builds a Verifier. An empty secret falls back to the
// development secret; config refuses that in production.
func NewVerifier(secret string, now func() time.Time) *Verifier {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		secret = devSecret
	}
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: []byte(secret), now: now}
}

// Sign issues a token for claims. Only tests and local tooling mint tokens.
func (v *Verifier) Sign(claims Claims) (string, error) {
	if claims.Sub == "" {
		return "", errors.New("sub is required")
	}
	now := v.now().UTC().Unix()
	if claims.Iat == 0 {
		claims.Iat = now
	}
	if claims.Exp == 0 {
		claims.Exp = now + int64(defaultTTL/time.Second)
	}

	headerJSON, err := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", err
	}
	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(payloadJSON)
	return signingInput + "." + v.sign(signingInput), nil
}

// Verify checks the algorithm, signature and expiry of token and returns its
// claims with the role normalized.
func (v *Verifier) Verify(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, ErrInvalidToken
	}

	var h header
	if err := decodeSegment(parts[0], &h); err != nil || h.Alg != "HS256" {
		return Claims{}, ErrInvalidToken
	}

	expected := v.sign(parts[0] + "." + parts[1])
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	if err := decodeSegment(parts[1], &claims); err != nil || claims.Sub == "" {
		return Claims{}, ErrInvalidToken
	}
	if claims.Exp > 0 && v.now().UTC().Unix() > claims.Exp {
		return Claims{}, ErrInvalidToken
	}
	if claims.Role != RoleAdmin {
		claims.Role = RoleUser
	}
	return claims, nil
}

func (v *Verifier) sign(input string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(input))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func decodeSegment(seg string, dest any) error {
	raw, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
