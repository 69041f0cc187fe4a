/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"encoding/base64"
	"fmt"

	"github.com/go-jose/go-jose/v3/json"
	"github.com/google/uuid"

	"github.com/trustbloc/sectoken-go/jose"
)

type builderOpts struct {
	generateID bool
}

// BuilderOpt is a token building option.
type BuilderOpt func(opts *builderOpts)

// WithGeneratedID assigns a generated UUID as the jti claim when the claims
// do not carry one.
func WithGeneratedID() BuilderOpt {
	return func(opts *builderOpts) {
		opts.generateID = true
	}
}

// NewUnsecured creates a new unsecured (alg "none", empty signature) token
// from input claims and optional extra headers. claims may be a map, raw JSON
// or a marshallable struct. The result is a fully parsed token, so building
// and re-parsing its Raw form are equivalent.
func NewUnsecured(claims interface{}, headers jose.Headers, opts ...BuilderOpt) (*SecurityToken, error) {
	bOpts := &builderOpts{}

	for _, opt := range opts {
		opt(bOpts)
	}

	payload, err := PayloadToMap(claims)
	if err != nil {
		return nil, fmt.Errorf("unmarshallable claims: %w", err)
	}

	if bOpts.generateID {
		if _, ok := payload[ClaimID]; !ok {
			payload[ClaimID] = uuid.NewString()
		}
	}

	join := jose.Headers{}

	for k, v := range headers {
		join[k] = v
	}

	join[jose.HeaderAlgorithm] = AlgorithmNone

	headerBytes, err := json.Marshal(join)
	if err != nil {
		return nil, fmt.Errorf("marshal token headers: %w", err)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal token claims: %w", err)
	}

	raw := base64.RawURLEncoding.EncodeToString(headerBytes) + "." +
		base64.RawURLEncoding.EncodeToString(payloadBytes) + "."

	return Parse(raw)
}
