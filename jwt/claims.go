/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"time"

	"github.com/go-jose/go-jose/v3/json"
	"github.com/go-jose/go-jose/v3/jwt"

	"github.com/trustbloc/sectoken-go/jose"
)

// Registered claim names (https://tools.ietf.org/html/rfc7519#section-4.1),
// plus the actor claim used in delegation scenarios.
const (
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimAudience  = "aud"
	ClaimExpiry    = "exp"
	ClaimNotBefore = "nbf"
	ClaimIssuedAt  = "iat"
	ClaimID        = "jti"
	ClaimActor     = "actort"
)

// Claims defines JSON Web Token Claims (https://tools.ietf.org/html/rfc7519#section-4)
type Claims jwt.Claims

// DecodeClaims fills input c with claims of a token. For encrypted tokens the
// attached inner token's claims are decoded; before attachment c is left
// untouched.
func (t *SecurityToken) DecodeClaims(c interface{}) error {
	return json.Unmarshal(t.PayloadSet().Bytes(), c)
}

// Issuer returns the iss claim, empty when absent.
func (t *SecurityToken) Issuer() string {
	return t.stringClaim(ClaimIssuer)
}

// Subject returns the sub claim, empty when absent.
func (t *SecurityToken) Subject() string {
	return t.stringClaim(ClaimSubject)
}

// ID returns the jti claim, empty when absent.
func (t *SecurityToken) ID() string {
	return t.stringClaim(ClaimID)
}

// IssuedAt returns the iat claim, the zero time when absent.
func (t *SecurityToken) IssuedAt() time.Time {
	return t.PayloadSet().TimeValue(ClaimIssuedAt)
}

// NotBefore returns the nbf claim, the zero time when absent.
func (t *SecurityToken) NotBefore() time.Time {
	return t.PayloadSet().TimeValue(ClaimNotBefore)
}

// Expiry returns the exp claim, the zero time when absent.
func (t *SecurityToken) Expiry() time.Time {
	return t.PayloadSet().TimeValue(ClaimExpiry)
}

// Audience returns the aud claim values. Both the single-string and the array
// forms are accepted; an absent claim yields nil.
func (t *SecurityToken) Audience() []string {
	raw, ok := t.PayloadSet().Value(ClaimAudience)
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case string:
		return []string{v}
	case []interface{}:
		audience := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok {
				audience = append(audience, s)
			}
		}

		return audience
	}

	return nil
}

// Algorithm returns the alg header, empty when absent.
func (t *SecurityToken) Algorithm() string {
	return t.stringHeader(jose.HeaderAlgorithm)
}

// Encryption returns the enc header, empty when absent.
func (t *SecurityToken) Encryption() string {
	return t.stringHeader(jose.HeaderEncryption)
}

// Compression returns the zip header, empty when absent.
func (t *SecurityToken) Compression() string {
	return t.stringHeader(jose.HeaderCompression)
}

// KeyID returns the kid header, empty when absent.
func (t *SecurityToken) KeyID() string {
	return t.stringHeader(jose.HeaderKeyID)
}

// Type returns the typ header, empty when absent.
func (t *SecurityToken) Type() string {
	return t.stringHeader(jose.HeaderType)
}

// ContentType returns the cty header, empty when absent.
func (t *SecurityToken) ContentType() string {
	return t.stringHeader(jose.HeaderContentType)
}

// Thumbprint returns the x5t header, empty when absent.
func (t *SecurityToken) Thumbprint() string {
	return t.stringHeader(jose.HeaderX509CertificateDigestSha1)
}

// LookupStringHeader makes look up of particular header with string value.
func (t *SecurityToken) LookupStringHeader(name string) string {
	return t.stringHeader(name)
}

// LookupStringClaim makes look up of particular payload claim with string
// value.
func (t *SecurityToken) LookupStringClaim(name string) string {
	return t.stringClaim(name)
}

func (t *SecurityToken) stringClaim(name string) string {
	v, _ := t.PayloadSet().StringValue(name)

	return v
}

func (t *SecurityToken) stringHeader(name string) string {
	v, _ := t.header.StringValue(name)

	return v
}
