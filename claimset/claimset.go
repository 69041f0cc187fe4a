/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package claimset provides read access to the claim documents carried in
// token segments. The Set interface is deliberately narrow; two
// implementations back it, a full in-memory document model (Document) and a
// zero-copy view over the raw bytes (View). Both treat the document as
// immutable after construction.
package claimset

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/mitchellh/mapstructure"

	"github.com/trustbloc/sectoken-go/claims"
)

var (
	// ErrParse is returned when bytes do not hold a valid claim document.
	ErrParse = errors.New("invalid claim set document")

	// ErrClaimNotFound is returned by Decode when the named claim is absent.
	ErrClaimNotFound = errors.New("claim not found")
)

// Set is a parsed claim document.
type Set interface {
	// StringValue returns the claim's string value. The second return is
	// false when the claim is absent or not a string.
	StringValue(name string) (string, bool)

	// Value returns the claim's raw decoded value.
	Value(name string) (interface{}, bool)

	// Decode decodes the named claim into out. Absent claims yield an error
	// wrapping ErrClaimNotFound.
	Decode(name string, out interface{}) error

	// TimeValue interprets the claim as epoch seconds. Absent or non-numeric
	// claims yield the zero time.
	TimeValue(name string) time.Time

	// Has reports whether the claim is present.
	Has(name string) bool

	// Claims converts every claim in the document into a claim entry
	// attributed to the given issuer. The conversion is idempotent.
	Claims(issuer string) []*claims.Claim

	// Bytes returns the document bytes the set was constructed from.
	Bytes() []byte
}

// ParseFunc constructs a Set from the decoded bytes of a token segment.
type ParseFunc func(doc []byte) (Set, error)

// Empty returns a set with no claims.
func Empty() Set {
	return &Document{raw: []byte("{}"), doc: map[string]interface{}{}}
}

func newDecoder(out interface{}) (*mapstructure.Decoder, error) {
	return mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		DecodeHook:       jsonNumberToNumericDate(),
	})
}

// jsonNumberToNumericDate is a mapstructure hook decoding numeric claim
// values to jwt.NumericDate targets.
func jsonNumberToNumericDate() mapstructure.DecodeHookFuncType {
	numericDateType := reflect.TypeOf(jwt.NumericDate(0))

	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != numericDateType && t != reflect.PtrTo(numericDateType) {
			return data, nil
		}

		seconds, err := strconv.ParseFloat(fmt.Sprint(data), 64)
		if err != nil {
			return nil, err
		}

		date := jwt.NewNumericDate(time.Unix(int64(seconds), 0))
		if t == numericDateType {
			return *date, nil
		}

		return date, nil
	}
}

func numericTime(v interface{}) time.Time {
	seconds, err := strconv.ParseFloat(fmt.Sprint(v), 64)
	if err != nil {
		return time.Time{}
	}

	date := jwt.NumericDate(int64(seconds))

	return date.Time()
}
