/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package claimset

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-jose/go-jose/v3/json"
	"golang.org/x/exp/slices"

	"github.com/trustbloc/sectoken-go/claims"
)

// Document is the in-memory Set implementation: the whole claim document is
// decoded into a map up front. Numbers are kept as json.Number to avoid
// float64 precision loss.
type Document struct {
	raw []byte
	doc map[string]interface{}
}

// ParseDocument decodes doc into a Document set.
func ParseDocument(doc []byte) (Set, error) {
	d := json.NewDecoder(bytes.NewReader(doc))
	d.UseNumber()

	var m map[string]interface{}

	if err := d.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if m == nil {
		return nil, fmt.Errorf("%w: document is not a JSON object", ErrParse)
	}

	return &Document{raw: doc, doc: m}, nil
}

// StringValue returns the claim's string value.
func (d *Document) StringValue(name string) (string, bool) {
	raw, ok := d.doc[name]
	if !ok {
		return "", false
	}

	str, ok := raw.(string)

	return str, ok
}

// Value returns the claim's raw decoded value.
func (d *Document) Value(name string) (interface{}, bool) {
	raw, ok := d.doc[name]

	return raw, ok
}

// Decode decodes the named claim into out.
func (d *Document) Decode(name string, out interface{}) error {
	raw, ok := d.doc[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClaimNotFound, name)
	}

	dec, err := newDecoder(out)
	if err != nil {
		return fmt.Errorf("new decoder: %w", err)
	}

	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode claim %q: %w", name, err)
	}

	return nil
}

// TimeValue interprets the claim as epoch seconds.
func (d *Document) TimeValue(name string) time.Time {
	raw, ok := d.doc[name]
	if !ok {
		return time.Time{}
	}

	return numericTime(raw)
}

// Has reports whether the claim is present.
func (d *Document) Has(name string) bool {
	_, ok := d.doc[name]

	return ok
}

// Claims converts the document's claims into claim entries attributed to
// issuer, ordered by claim name.
func (d *Document) Claims(issuer string) []*claims.Claim {
	names := make([]string, 0, len(d.doc))

	for name := range d.doc {
		names = append(names, name)
	}

	slices.Sort(names)

	list := make([]*claims.Claim, 0, len(names))

	for _, name := range names {
		list = append(list, newClaim(name, d.doc[name], issuer))
	}

	return list
}

// Bytes returns the document bytes the set was constructed from.
func (d *Document) Bytes() []byte {
	return d.raw
}

func newClaim(name string, value interface{}, issuer string) *claims.Claim {
	c := &claims.Claim{Name: name, Issuer: issuer, OriginalIssuer: issuer}

	switch v := value.(type) {
	case string:
		c.Value, c.ValueType = v, claims.ValueTypeString
	case bool:
		c.Value, c.ValueType = strconv.FormatBool(v), claims.ValueTypeBoolean
		c.Properties = jsonTypeProperty("boolean")
	case json.Number:
		c.Value = v.String()
		c.ValueType = numberValueType(v.String())
		c.Properties = jsonTypeProperty("number")
	case float64:
		c.Value = strconv.FormatFloat(v, 'f', -1, 64)
		c.ValueType = claims.ValueTypeDouble
		c.Properties = jsonTypeProperty("number")
	case nil:
		c.Value, c.ValueType = "", claims.ValueTypeJSON
		c.Properties = jsonTypeProperty("null")
	case []interface{}:
		c.Value, c.ValueType = compactJSON(v), claims.ValueTypeJSONArray
		c.Properties = jsonTypeProperty("array")
	default:
		c.Value, c.ValueType = compactJSON(v), claims.ValueTypeJSON
		c.Properties = jsonTypeProperty("object")
	}

	return c
}

func numberValueType(text string) string {
	if _, err := strconv.ParseInt(text, 10, 64); err != nil {
		return claims.ValueTypeDouble
	}

	return claims.ValueTypeInteger64
}

func jsonTypeProperty(jsonType string) map[string]string {
	return map[string]string{claims.PropertyJSONType: jsonType}
}

func compactJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}

	return string(b)
}
