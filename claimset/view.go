/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package claimset

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/trustbloc/sectoken-go/claims"
)

// gjson path syntax characters that need escaping when a claim name is used
// as a lookup path. Claim names in the wild include dotted URIs.
const pathSpecials = `.|#@*?\`

// View is the zero-copy Set implementation: lookups run directly against the
// raw document bytes, so construction does not build an in-memory model.
// Numeric claim values keep their exact document text.
type View struct {
	raw []byte
}

// ParseView validates doc and wraps it in a View set.
func ParseView(doc []byte) (Set, error) {
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrParse)
	}

	if !gjson.ParseBytes(doc).IsObject() {
		return nil, fmt.Errorf("%w: document is not a JSON object", ErrParse)
	}

	return &View{raw: doc}, nil
}

// StringValue returns the claim's string value.
func (v *View) StringValue(name string) (string, bool) {
	r := v.get(name)
	if !r.Exists() || r.Type != gjson.String {
		return "", false
	}

	return r.String(), true
}

// Value returns the claim's raw decoded value. Unlike Document, numbers are
// yielded as float64.
func (v *View) Value(name string) (interface{}, bool) {
	r := v.get(name)
	if !r.Exists() {
		return nil, false
	}

	return r.Value(), true
}

// Decode decodes the named claim into out.
func (v *View) Decode(name string, out interface{}) error {
	r := v.get(name)
	if !r.Exists() {
		return fmt.Errorf("%w: %s", ErrClaimNotFound, name)
	}

	dec, err := newDecoder(out)
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}

	if err := dec.Decode(r.Value()); err != nil {
		return fmt.Errorf("decode claim %q: %w", name, err)
	}

	return nil
}

// TimeValue interprets the claim as epoch seconds.
func (v *View) TimeValue(name string) time.Time {
	r := v.get(name)
	if !r.Exists() {
		return time.Time{}
	}

	return numericTime(r.Value())
}

// Has reports whether the claim is present.
func (v *View) Has(name string) bool {
	return v.get(name).Exists()
}

// Claims converts the document's claims into claim entries attributed to
// issuer, in document order.
func (v *View) Claims(issuer string) []*claims.Claim {
	var list []*claims.Claim

	gjson.ParseBytes(v.raw).ForEach(func(key, value gjson.Result) bool {
		list = append(list, claimFromResult(key.String(), value, issuer))

		return true
	})

	return list
}

// Bytes returns the document bytes the set was constructed from.
func (v *View) Bytes() []byte {
	return v.raw
}

func (v *View) get(name string) gjson.Result {
	return gjson.GetBytes(v.raw, escapePath(name))
}

func escapePath(name string) string {
	if !strings.ContainsAny(name, pathSpecials) {
		return name
	}

	var b strings.Builder

	for _, r := range name {
		if strings.ContainsRune(pathSpecials, r) {
			b.WriteRune('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}

func claimFromResult(name string, r gjson.Result, issuer string) *claims.Claim {
	c := &claims.Claim{Name: name, Issuer: issuer, OriginalIssuer: issuer}

	switch {
	case r.Type == gjson.String:
		c.Value, c.ValueType = r.String(), claims.ValueTypeString
	case r.Type == gjson.True || r.Type == gjson.False:
		c.Value, c.ValueType = r.Raw, claims.ValueTypeBoolean
		c.Properties = jsonTypeProperty("boolean")
	case r.Type == gjson.Number:
		c.Value, c.ValueType = r.Raw, numberValueType(r.Raw)
		c.Properties = jsonTypeProperty("number")
	case r.Type == gjson.Null:
		c.Value, c.ValueType = "", claims.ValueTypeJSON
		c.Properties = jsonTypeProperty("null")
	case r.IsArray():
		c.Value, c.ValueType = r.Raw, claims.ValueTypeJSONArray
		c.Properties = jsonTypeProperty("array")
	default:
		c.Value, c.ValueType = r.Raw, claims.ValueTypeJSON
		c.Properties = jsonTypeProperty("object")
	}

	return c
}
