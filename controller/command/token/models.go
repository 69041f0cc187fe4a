/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package token

import (
	"encoding/json"
)

// DecodeRequest is the request model for decoding a compact token.
type DecodeRequest struct {
	// Token is the compact-serialized token string.
	Token string `json:"token"`
}

// DecodeResponse reports the structure of a decoded token.
type DecodeResponse struct {
	// Format is the compact serialization format, JWS or JWE.
	Format string `json:"format"`

	// Unsigned is true for signed-format tokens with an empty signature.
	Unsigned bool `json:"unsigned"`

	// Header is the decoded protected header document.
	Header json.RawMessage `json:"header"`

	// Payload is the decoded payload document, signed tokens only.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Claims carries the registered claim shortcuts, signed tokens only.
	Claims *RegisteredClaims `json:"claims,omitempty"`
}

// RegisteredClaims carries the registered claim values of a token payload.
// Absent claims keep their zero value.
type RegisteredClaims struct {
	Issuer    string   `json:"iss,omitempty"`
	Subject   string   `json:"sub,omitempty"`
	Audience  []string `json:"aud,omitempty"`
	Expiry    int64    `json:"exp,omitempty"`
	NotBefore int64    `json:"nbf,omitempty"`
	IssuedAt  int64    `json:"iat,omitempty"`
	ID        string   `json:"jti,omitempty"`
}

// ProjectRequest is the request model for projecting token claims.
type ProjectRequest struct {
	// Token is the compact-serialized token string.
	Token string `json:"token"`

	// Issuer optionally overrides the issuer projected claims are attributed to.
	Issuer string `json:"issuer,omitempty"`
}

// ProjectResponse carries the projected identity tree.
type ProjectResponse struct {
	Identity *IdentityReport `json:"identity"`
}

// IdentityReport is one projected identity: its claims and, when the payload
// carried an actor token, the projected actor identity.
type IdentityReport struct {
	Claims []ClaimDetail   `json:"claims"`
	Actor  *IdentityReport `json:"actor,omitempty"`
}

// ClaimDetail is one projected claim.
type ClaimDetail struct {
	Name           string            `json:"name"`
	Value          string            `json:"value"`
	ValueType      string            `json:"valueType"`
	Issuer         string            `json:"issuer,omitempty"`
	OriginalIssuer string            `json:"originalIssuer,omitempty"`
	Properties     map[string]string `json:"properties,omitempty"`
}
