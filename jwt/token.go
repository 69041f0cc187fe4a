/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwt parses compact-serialized security tokens into a structured,
// queryable form. Parsing is purely structural: signatures and encrypted
// content are carried as opaque bytes and never verified or decrypted here.
package jwt

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/go-jose/go-jose/v3/json"

	"github.com/trustbloc/sectoken-go/claims"
	"github.com/trustbloc/sectoken-go/claimset"
	"github.com/trustbloc/sectoken-go/jose"
)

const (
	// TypeJWT defines JWT type.
	TypeJWT = "JWT"

	// AlgorithmNone is the alg header value of an unsecured token.
	AlgorithmNone = "none"
)

// parseOpts holds options for token parsing.
type parseOpts struct {
	claimSetParse claimset.ParseFunc
	issuer        string
	maxActorDepth int
	maxTokenSize  int
}

func defaultParseOpts() *parseOpts {
	return &parseOpts{
		claimSetParse: claimset.ParseDocument,
		maxActorDepth: DefaultMaxActorDepth,
	}
}

// ParseOpt is a token parsing option.
type ParseOpt func(opts *parseOpts)

// WithClaimSetParser selects the claim set implementation backing the token's
// header and payload. claimset.ParseDocument is the default;
// claimset.ParseView avoids building in-memory claim maps.
func WithClaimSetParser(parse claimset.ParseFunc) ParseOpt {
	return func(opts *parseOpts) {
		opts.claimSetParse = parse
	}
}

// WithIssuer overrides the issuer that projected claims are attributed to.
// Without it, claims are attributed to the payload's iss value.
func WithIssuer(issuer string) ParseOpt {
	return func(opts *parseOpts) {
		opts.issuer = issuer
	}
}

// WithMaxActorDepth caps the depth of nested actor token projection.
// DefaultMaxActorDepth applies when the option is not used.
func WithMaxActorDepth(depth int) ParseOpt {
	return func(opts *parseOpts) {
		opts.maxActorDepth = depth
	}
}

// WithMaxTokenSize rejects tokens longer than size bytes. Zero (the default)
// leaves input bounding to the caller.
func WithMaxTokenSize(size int) ParseOpt {
	return func(opts *parseOpts) {
		opts.maxTokenSize = size
	}
}

// rawField caches the text form of an optional byte segment. The zero value
// is unset; the first read freezes the value. Access is unsynchronized, see
// the SecurityToken concurrency note.
type rawField struct {
	value string
	done  bool
}

func (f *rawField) text(data []byte) string {
	if !f.done {
		f.value = string(data)
		f.done = true
	}

	return f.value
}

// SecurityToken is a parsed compact security token, either signed (JWS) or
// encrypted (JWE). The original string and the decoded segments are fixed at
// construction.
//
// Tokens are not safe for unsynchronized concurrent use until the lazily
// computed fields are materialized: construct and first-read on a single
// goroutine, or call Materialize before sharing.
type SecurityToken struct {
	raw    string
	dots   []int
	format jose.Format

	header  claimset.Set
	payload claimset.Set // signed tokens only

	signature    []byte
	encryptedKey []byte
	iv           []byte
	ciphertext   []byte
	authTag      []byte

	encryptedKeyText rawField
	ivText           rawField
	ciphertextText   rawField
	authTagText      rawField

	headers  jose.Headers
	identity *claims.Identity
	inner    *SecurityToken

	opts parseOpts
}

// Parse parses a compact-serialized token. Signed (three-segment) and
// encrypted (five-segment) serializations are supported; any construction
// failure aborts parsing, so a non-nil token is fully formed.
func Parse(raw string, opts ...ParseOpt) (*SecurityToken, error) {
	pOpts := defaultParseOpts()

	for _, opt := range opts {
		opt(pOpts)
	}

	return parseWithOpts(raw, pOpts)
}

func parseWithOpts(raw string, opts *parseOpts) (*SecurityToken, error) {
	if opts.maxTokenSize > 0 && len(raw) > opts.maxTokenSize {
		return nil, fmt.Errorf("token length %d exceeds maximum %d", len(raw), opts.maxTokenSize)
	}

	compact, err := jose.ParseCompact(raw)
	if err != nil {
		return nil, fmt.Errorf("parse compact token: %w", err)
	}

	token := &SecurityToken{
		raw:    compact.Raw,
		dots:   compact.Dots(),
		format: compact.Format,
		opts:   *opts,
	}

	if compact.Format == jose.FormatJWE {
		err = token.mapJWE(compact)
	} else {
		err = token.mapJWS(compact)
	}

	if err != nil {
		return nil, err
	}

	return token, nil
}

func (t *SecurityToken) mapJWS(compact *jose.Compact) error {
	header, err := parseClaimSegment(compact, 0, t.opts.claimSetParse)
	if err != nil {
		return err
	}

	t.header = header

	if compact.Segments[1].Empty() {
		t.payload = claimset.Empty()
	} else {
		payload, err := parseClaimSegment(compact, 1, t.opts.claimSetParse)
		if err != nil {
			return err
		}

		t.payload = payload
	}

	signature, err := decodeSegment(compact, 2)
	if err != nil {
		return err
	}

	t.signature = signature

	return nil
}

func (t *SecurityToken) mapJWE(compact *jose.Compact) error {
	header, err := parseClaimSegment(compact, 0, t.opts.claimSetParse)
	if err != nil {
		return err
	}

	t.header = header

	for i, buf := range []*[]byte{&t.encryptedKey, &t.iv, &t.ciphertext, &t.authTag} {
		data, err := decodeSegment(compact, i+1)
		if err != nil {
			return err
		}

		*buf = data
	}

	return nil
}

func parseClaimSegment(compact *jose.Compact, index int, parse claimset.ParseFunc) (claimset.Set, error) {
	data, err := decodeSegment(compact, index)
	if err != nil {
		return nil, err
	}

	set, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s claim set of token %q: %w",
			jose.SegmentName(compact.Format, index), compact.Raw, err)
	}

	return set, nil
}

func decodeSegment(compact *jose.Compact, index int) ([]byte, error) {
	seg := compact.Segments[index]

	data, err := jose.DecodeSegment(seg.Text)
	if err != nil {
		return nil, fmt.Errorf("decode %s segment %q of token %q: %w",
			jose.SegmentName(compact.Format, index), abbreviate(seg.Text), compact.Raw, err)
	}

	return data, nil
}

// abbreviate shortens segment text for error messages, the full token is
// reported separately.
func abbreviate(s string) string {
	const max = 32

	if len(s) <= max {
		return s
	}

	return s[:max] + "..."
}

// Raw returns the original compact serialization.
func (t *SecurityToken) Raw() string {
	return t.raw
}

// Serialize returns the compact serialization of the token. Parsing keeps the
// input string intact, so this is always the exact text Parse was given.
func (t *SecurityToken) Serialize() string {
	return t.raw
}

// Dots returns the offsets of the segment separators in the original string,
// in increasing order.
func (t *SecurityToken) Dots() []int {
	return append([]int(nil), t.dots...)
}

// Format returns the token's compact serialization format.
func (t *SecurityToken) Format() jose.Format {
	return t.format
}

// IsSigned reports whether the token uses the signed (JWS) layout.
func (t *SecurityToken) IsSigned() bool {
	return t.format == jose.FormatJWS
}

// IsEncrypted reports whether the token uses the encrypted (JWE) layout.
func (t *SecurityToken) IsEncrypted() bool {
	return t.format == jose.FormatJWE
}

// IsUnsigned reports whether the token is signed-format with an empty
// signature, i.e. an unsecured token.
func (t *SecurityToken) IsUnsigned() bool {
	return t.format == jose.FormatJWS && len(t.signature) == 0
}

func (t *SecurityToken) rawSegment(index int) string {
	start := 0
	if index > 0 {
		start = t.dots[index-1] + 1
	}

	end := len(t.raw)
	if index < len(t.dots) {
		end = t.dots[index]
	}

	return t.raw[start:end]
}

// RawHeader returns the encoded header segment.
func (t *SecurityToken) RawHeader() string {
	return t.rawSegment(0)
}

// RawPayload returns the encoded payload segment, empty for encrypted tokens.
func (t *SecurityToken) RawPayload() string {
	if t.format != jose.FormatJWS {
		return ""
	}

	return t.rawSegment(1)
}

// RawSignature returns the encoded signature segment, empty for encrypted
// tokens.
func (t *SecurityToken) RawSignature() string {
	if t.format != jose.FormatJWS {
		return ""
	}

	return t.rawSegment(2)
}

// RawEncryptedKey returns the encoded encrypted key segment, empty for signed
// tokens.
func (t *SecurityToken) RawEncryptedKey() string {
	if t.format != jose.FormatJWE {
		return ""
	}

	return t.rawSegment(1)
}

// RawIV returns the encoded initialization vector segment, empty for signed
// tokens.
func (t *SecurityToken) RawIV() string {
	if t.format != jose.FormatJWE {
		return ""
	}

	return t.rawSegment(2)
}

// RawCiphertext returns the encoded ciphertext segment, empty for signed
// tokens.
func (t *SecurityToken) RawCiphertext() string {
	if t.format != jose.FormatJWE {
		return ""
	}

	return t.rawSegment(3)
}

// RawAuthTag returns the encoded authentication tag segment, empty for signed
// tokens.
func (t *SecurityToken) RawAuthTag() string {
	if t.format != jose.FormatJWE {
		return ""
	}

	return t.rawSegment(4)
}

// Signature returns the decoded signature, empty for unsecured and encrypted
// tokens.
func (t *SecurityToken) Signature() []byte {
	return t.signature
}

// EncryptedKey returns the decoded encrypted key of an encrypted token.
func (t *SecurityToken) EncryptedKey() []byte {
	return t.encryptedKey
}

// IV returns the decoded initialization vector of an encrypted token.
func (t *SecurityToken) IV() []byte {
	return t.iv
}

// Ciphertext returns the decoded ciphertext of an encrypted token.
func (t *SecurityToken) Ciphertext() []byte {
	return t.ciphertext
}

// AuthTag returns the decoded authentication tag of an encrypted token.
func (t *SecurityToken) AuthTag() []byte {
	return t.authTag
}

// EncryptedKeyText returns the encrypted key bytes as text, computed on first
// use. Unset segments yield the empty string.
func (t *SecurityToken) EncryptedKeyText() string {
	return t.encryptedKeyText.text(t.encryptedKey)
}

// IVText returns the initialization vector bytes as text, computed on first
// use. Unset segments yield the empty string.
func (t *SecurityToken) IVText() string {
	return t.ivText.text(t.iv)
}

// CiphertextText returns the ciphertext bytes as text, computed on first use.
// Unset segments yield the empty string.
func (t *SecurityToken) CiphertextText() string {
	return t.ciphertextText.text(t.ciphertext)
}

// AuthTagText returns the authentication tag bytes as text, computed on first
// use. Unset segments yield the empty string.
func (t *SecurityToken) AuthTagText() string {
	return t.authTagText.text(t.authTag)
}

// HeaderSet returns the token's header claim set.
func (t *SecurityToken) HeaderSet() claimset.Set {
	return t.header
}

// PayloadSet returns the claim set payload reads go to: the payload itself
// for signed tokens, the attached inner token's payload for encrypted tokens,
// or an empty set before attachment.
func (t *SecurityToken) PayloadSet() claimset.Set {
	if t.inner != nil {
		return t.inner.PayloadSet()
	}

	if t.payload != nil {
		return t.payload
	}

	return emptyClaims
}

// Headers returns the protected headers as a map, decoded on first use.
func (t *SecurityToken) Headers() jose.Headers {
	if t.headers == nil {
		m, err := PayloadToMap(t.header.Bytes())
		if err != nil {
			m = map[string]interface{}{}
		}

		t.headers = m
	}

	return t.headers
}

// Materialize forces every lazily computed field, the claims projection
// included, so the token can be shared across goroutines without first-access
// races. A failing projection leaves the memo unwritten; Identity reports the
// failure on demand.
func (t *SecurityToken) Materialize() {
	t.EncryptedKeyText()
	t.IVText()
	t.CiphertextText()
	t.AuthTagText()
	t.Headers()

	_, _ = t.Identity() //nolint:errcheck

	if t.inner != nil {
		t.inner.Materialize()
	}
}

// String renders the decoded header and payload documents separated by a dot.
// Signature and encrypted content are deliberately omitted.
func (t *SecurityToken) String() string {
	if t.format == jose.FormatJWE {
		return string(t.header.Bytes()) + "."
	}

	return string(t.header.Bytes()) + "." + string(t.payload.Bytes())
}

//nolint:gochecknoglobals
var emptyClaims = claimset.Empty()

// PayloadToMap transforms claims in map, struct or raw JSON form to a map.
func PayloadToMap(i interface{}) (map[string]interface{}, error) {
	if reflect.ValueOf(i).Kind() == reflect.Map {
		return i.(map[string]interface{}), nil
	}

	var (
		b   []byte
		err error
	)

	switch cv := i.(type) {
	case []byte:
		b = cv
	case string:
		b = []byte(cv)
	default:
		b, err = json.Marshal(i)
		if err != nil {
			return nil, fmt.Errorf("marshal interface[%T]: %w", i, err)
		}
	}

	var m map[string]interface{}

	d := json.NewDecoder(bytes.NewReader(b))
	d.UseNumber()

	if err := d.Decode(&m); err != nil {
		return nil, fmt.Errorf("convert to map: %w", err)
	}

	return m, nil
}
