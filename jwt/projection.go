/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"errors"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/trustbloc/sectoken-go/claims"
	"github.com/trustbloc/sectoken-go/jose"
)

var logger = log.New("sectoken-go/jwt")

// DefaultMaxActorDepth bounds nested actor token projection when
// WithMaxActorDepth is not used.
const DefaultMaxActorDepth = 8

// ErrDuplicateActor is returned when a payload carries more than one actor
// claim.
var ErrDuplicateActor = errors.New("duplicate actor claim")

// Identity projects the payload claims into a claims identity. The projection
// runs at most once per token; subsequent calls return the cached identity.
//
// Every payload claim becomes one claim entry attributed to the token's
// effective issuer. An actor claim additionally has its value parsed as a
// nested token and projected into the actor sub-identity; a malformed actor
// is the single suppressed failure, the outer identity is then built without
// an actor. A second actor claim fails the projection.
//
// An encrypted token without an attached inner token projects to an empty
// identity, computed fresh on each call so a later attachment takes effect.
func (t *SecurityToken) Identity() (*claims.Identity, error) {
	if t.identity != nil {
		return t.identity, nil
	}

	if t.format == jose.FormatJWE && t.inner == nil {
		return claims.NewIdentity(), nil
	}

	identity, err := t.project(t.opts.maxActorDepth)
	if err != nil {
		return nil, err
	}

	t.identity = identity

	return identity, nil
}

// HeaderClaims converts the protected header parameters into claim entries
// attributed to the token's effective issuer. Headers get no actor handling.
func (t *SecurityToken) HeaderClaims() []*claims.Claim {
	return t.header.Claims(t.effectiveIssuer())
}

func (t *SecurityToken) project(depth int) (*claims.Identity, error) {
	identity := claims.NewIdentity()

	var actorSeen bool

	for _, c := range t.PayloadSet().Claims(t.effectiveIssuer()) {
		if c.Name == ClaimActor {
			if actorSeen {
				return nil, ErrDuplicateActor
			}

			actorSeen = true

			actor, err := t.projectActor(c.Value, depth)
			if err != nil {
				return nil, err
			}

			if actor != nil {
				identity.SetActor(actor)
			}
		}

		identity.AddClaim(c)
	}

	return identity, nil
}

// projectActor parses the actor claim value as a nested token and projects
// it. Parse failures are swallowed so a malformed actor does not poison the
// outer projection, and depth exhaustion truncates the chain. A projection
// failure of a well-formed actor fails the whole projection.
func (t *SecurityToken) projectActor(value string, depth int) (*claims.Identity, error) {
	if depth <= 0 {
		logger.Warnf("actor chain deeper than %d, truncating", t.opts.maxActorDepth)

		return nil, nil
	}

	actorOpts := t.opts

	actor, err := parseWithOpts(value, &actorOpts)
	if err != nil {
		logger.Debugf("ignoring malformed actor token: %v", err)

		return nil, nil
	}

	return actor.project(depth - 1)
}

// effectiveIssuer is the issuer claims are attributed to: the parse-time
// override when set, the payload's iss value otherwise.
func (t *SecurityToken) effectiveIssuer() string {
	if t.opts.issuer != "" {
		return t.opts.issuer
	}

	return t.Issuer()
}
