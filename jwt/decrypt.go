/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"errors"
	"fmt"

	"github.com/trustbloc/sectoken-go/jose"
)

var (
	// ErrNotEncrypted is returned when an encrypted-only operation is invoked
	// on a signed token.
	ErrNotEncrypted = errors.New("token is not encrypted")

	// ErrInnerTokenSet is returned when an inner token is already attached.
	ErrInnerTokenSet = errors.New("inner token already set")
)

// Decrypter recovers the plaintext content of an encrypted token.
// Implementations hold the key material; the token carries the JWE parts.
type Decrypter interface {
	Decrypt(token *SecurityToken) ([]byte, error)
}

// InnerToken returns the signed token recovered from the encrypted content,
// nil before attachment.
func (t *SecurityToken) InnerToken() *SecurityToken {
	return t.inner
}

// SetInnerToken links the signed token recovered from the encrypted content.
// The link is write-once and only valid on encrypted tokens; payload-facing
// accessors delegate to the inner token from then on.
func (t *SecurityToken) SetInnerToken(inner *SecurityToken) error {
	if t.format != jose.FormatJWE {
		return ErrNotEncrypted
	}

	if t.inner != nil {
		return ErrInnerTokenSet
	}

	if inner == nil {
		return errors.New("inner token is nil")
	}

	if inner.format != jose.FormatJWS {
		return errors.New("inner token is not signed")
	}

	t.inner = inner

	return nil
}

// DecryptInner recovers the token's content with d, parses the plaintext as a
// signed token and attaches it as the inner token. The inner token inherits
// the outer token's parse options; opts apply on top.
func (t *SecurityToken) DecryptInner(d Decrypter, opts ...ParseOpt) error {
	if t.format != jose.FormatJWE {
		return ErrNotEncrypted
	}

	if t.inner != nil {
		return ErrInnerTokenSet
	}

	plaintext, err := d.Decrypt(t)
	if err != nil {
		return fmt.Errorf("decrypt token content: %w", err)
	}

	innerOpts := t.opts

	for _, opt := range opts {
		opt(&innerOpts)
	}

	inner, err := parseWithOpts(string(plaintext), &innerOpts)
	if err != nil {
		return fmt.Errorf("parse decrypted token: %w", err)
	}

	return t.SetInnerToken(inner)
}
