/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package claims provides the claims-based identity model produced by token
// claims projection: flat Claim entries grouped into an Identity, with an
// optional actor sub-identity for delegation scenarios.
package claims

// Claim value type tags. A claim value is always carried as a string; the tag
// records the JSON type the value was converted from.
const (
	ValueTypeString    = "string"
	ValueTypeBoolean   = "boolean"
	ValueTypeInteger64 = "integer64"
	ValueTypeDouble    = "double"
	ValueTypeJSON      = "json"
	ValueTypeJSONArray = "json-array"
)

// PropertyJSONType keys a claim property holding the raw JSON kind ("object",
// "array", "number", "boolean", "null") of a claim whose value was converted
// to string form.
const PropertyJSONType = "json_type"

// Claim is a single statement extracted from a token claim set: a name, a
// string value with its original type tag, attribution to an issuer and an
// optional property bag.
type Claim struct {
	Name           string
	Value          string
	ValueType      string
	Issuer         string
	OriginalIssuer string
	Properties     map[string]string

	identity *Identity
}

// Identity returns the identity the claim belongs to, nil for a detached claim.
func (c *Claim) Identity() *Identity {
	return c.identity
}

// Identity is a collection of claims projected from a single token. An
// identity may carry an actor identity, forming a delegation chain.
type Identity struct {
	claims []*Claim
	actor  *Identity
}

// NewIdentity returns an empty identity.
func NewIdentity() *Identity {
	return &Identity{}
}

// AddClaim appends the claim to the identity and makes the identity its owner.
func (i *Identity) AddClaim(c *Claim) {
	c.identity = i
	i.claims = append(i.claims, c)
}

// Claims returns the identity's claims in projection order.
func (i *Identity) Claims() []*Claim {
	return i.claims
}

// Actor returns the delegated identity, nil when the identity has no actor.
func (i *Identity) Actor() *Identity {
	return i.actor
}

// SetActor sets the delegated identity.
func (i *Identity) SetActor(actor *Identity) {
	i.actor = actor
}

// FindFirst returns the first claim with the given name, nil when absent.
func (i *Identity) FindFirst(name string) *Claim {
	for _, c := range i.claims {
		if c.Name == name {
			return c
		}
	}

	return nil
}

// FindAll returns all claims with the given name.
func (i *Identity) FindAll(name string) []*Claim {
	var found []*Claim

	for _, c := range i.claims {
		if c.Name == name {
			found = append(found, c)
		}
	}

	return found
}

// HasClaim reports whether the identity holds a claim with the given name and
// value.
func (i *Identity) HasClaim(name, value string) bool {
	for _, c := range i.claims {
		if c.Name == name && c.Value == value {
			return true
		}
	}

	return false
}
