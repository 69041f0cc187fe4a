/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToken_SetInnerToken(t *testing.T) {
	r := require.New(t)

	outer, err := Parse(exampleCompactJWE)
	r.NoError(err)
	r.Nil(outer.InnerToken())

	// payload accessors give safe defaults before attachment
	r.Empty(outer.Issuer())
	r.Empty(outer.Subject())
	r.True(outer.Expiry().IsZero())

	inner, err := Parse(signedToken(`{"alg":"none"}`, `{"iss":"inner-issuer","sub":"alice","exp":1694126400}`, ""))
	r.NoError(err)

	r.NoError(outer.SetInnerToken(inner))
	r.Same(inner, outer.InnerToken())

	// payload accessors now delegate to the inner token
	r.Equal("inner-issuer", outer.Issuer())
	r.Equal("alice", outer.Subject())
	r.Equal(int64(1694126400), outer.Expiry().Unix())

	// header accessors still read the outer header
	r.Equal("RSA-OAEP", outer.Algorithm())
	r.Equal("A256GCM", outer.Encryption())

	identity, err := outer.Identity()
	r.NoError(err)
	r.Equal("inner-issuer", identity.FindFirst("sub").Issuer)
}

func TestToken_SetInnerTokenErrors(t *testing.T) {
	inner, err := Parse(unsecuredExample)
	require.NoError(t, err)

	t.Run("not an encrypted token", func(t *testing.T) {
		signed, err := Parse(unsecuredExample)
		require.NoError(t, err)

		require.ErrorIs(t, signed.SetInnerToken(inner), ErrNotEncrypted)
	})

	t.Run("nil inner token", func(t *testing.T) {
		outer, err := Parse(exampleCompactJWE)
		require.NoError(t, err)

		err = outer.SetInnerToken(nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "inner token is nil")
	})

	t.Run("inner token is not signed", func(t *testing.T) {
		outer, err := Parse(exampleCompactJWE)
		require.NoError(t, err)

		encrypted, err := Parse(exampleCompactJWE)
		require.NoError(t, err)

		err = outer.SetInnerToken(encrypted)
		require.Error(t, err)
		require.Contains(t, err.Error(), "inner token is not signed")
	})

	t.Run("attach is write-once", func(t *testing.T) {
		outer, err := Parse(exampleCompactJWE)
		require.NoError(t, err)

		require.NoError(t, outer.SetInnerToken(inner))
		require.ErrorIs(t, outer.SetInnerToken(inner), ErrInnerTokenSet)
	})
}

func TestToken_IdentityBeforeAttachment(t *testing.T) {
	r := require.New(t)

	outer, err := Parse(exampleCompactJWE)
	r.NoError(err)

	// an unattached encrypted token projects to an empty identity, computed
	// fresh each call so a later attachment is not masked by a cached result
	first, err := outer.Identity()
	r.NoError(err)
	r.Empty(first.Claims())

	second, err := outer.Identity()
	r.NoError(err)
	r.NotSame(first, second)

	inner, err := Parse(signedToken(`{"alg":"none"}`, `{"iss":"me","sub":"alice"}`, ""))
	r.NoError(err)
	r.NoError(outer.SetInnerToken(inner))

	attached, err := outer.Identity()
	r.NoError(err)
	r.Len(attached.Claims(), 2)

	cached, err := outer.Identity()
	r.NoError(err)
	r.Same(attached, cached)
}

func TestToken_DecryptInner(t *testing.T) {
	innerRaw := signedToken(`{"alg":"none"}`, `{"iss":"inner-issuer","sub":"alice"}`, "")

	t.Run("success", func(t *testing.T) {
		r := require.New(t)

		outer, err := Parse(exampleCompactJWE)
		r.NoError(err)

		decrypter := &staticDecrypter{plaintext: []byte(innerRaw)}

		r.NoError(outer.DecryptInner(decrypter))
		r.Same(outer, decrypter.got)

		r.NotNil(outer.InnerToken())
		r.Equal("alice", outer.Subject())
		r.Equal(innerRaw, outer.InnerToken().Raw())
	})

	t.Run("extra options apply to the inner token", func(t *testing.T) {
		r := require.New(t)

		outer, err := Parse(exampleCompactJWE)
		r.NoError(err)

		r.NoError(outer.DecryptInner(&staticDecrypter{plaintext: []byte(innerRaw)}, WithIssuer("configured-issuer")))

		identity, err := outer.InnerToken().Identity()
		r.NoError(err)
		r.Equal("configured-issuer", identity.FindFirst("sub").Issuer)
	})

	t.Run("decrypter failure", func(t *testing.T) {
		outer, err := Parse(exampleCompactJWE)
		require.NoError(t, err)

		errBoom := errors.New("boom")

		err = outer.DecryptInner(&staticDecrypter{err: errBoom})
		require.ErrorIs(t, err, errBoom)
		require.Contains(t, err.Error(), "decrypt token content")
		require.Nil(t, outer.InnerToken())
	})

	t.Run("plaintext is not a signed token", func(t *testing.T) {
		outer, err := Parse(exampleCompactJWE)
		require.NoError(t, err)

		err = outer.DecryptInner(&staticDecrypter{plaintext: []byte("not a token")})
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse decrypted token")
		require.Nil(t, outer.InnerToken())
	})

	t.Run("not an encrypted token", func(t *testing.T) {
		signed, err := Parse(unsecuredExample)
		require.NoError(t, err)

		require.ErrorIs(t, signed.DecryptInner(&staticDecrypter{plaintext: []byte(innerRaw)}), ErrNotEncrypted)
	})

	t.Run("already attached", func(t *testing.T) {
		outer, err := Parse(exampleCompactJWE)
		require.NoError(t, err)

		require.NoError(t, outer.DecryptInner(&staticDecrypter{plaintext: []byte(innerRaw)}))
		require.ErrorIs(t, outer.DecryptInner(&staticDecrypter{plaintext: []byte(innerRaw)}), ErrInnerTokenSet)
	})
}

type staticDecrypter struct {
	plaintext []byte
	err       error
	got       *SecurityToken
}

func (d *staticDecrypter) Decrypt(token *SecurityToken) ([]byte, error) {
	d.got = token

	if d.err != nil {
		return nil, d.err
	}

	return d.plaintext, nil
}
