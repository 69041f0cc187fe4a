/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	// CompactJWSSegmentCount is the number of segments in a compact JWS serialization (RFC 7515 §7.1).
	CompactJWSSegmentCount = 3

	// CompactJWESegmentCount is the number of segments in a compact JWE serialization (RFC 7516 §7.1).
	CompactJWESegmentCount = 5
)

// Compact serialization segment names, used in error reporting.
const (
	SegmentHeader       = "header"
	SegmentPayload      = "payload"
	SegmentSignature    = "signature"
	SegmentEncryptedKey = "encrypted key"
	SegmentIV           = "initialization vector"
	SegmentCiphertext   = "ciphertext"
	SegmentAuthTag      = "authentication tag"
)

var (
	// ErrFormat is returned when a token string does not match any compact serialization layout.
	ErrFormat = errors.New("invalid compact serialization")

	// ErrSegmentDecode is returned when a compact serialization segment is not valid base64url.
	ErrSegmentDecode = errors.New("invalid base64url segment")
)

// Format is the compact serialization layout of a token.
type Format int

const (
	// FormatJWS is the three-segment signed layout.
	FormatJWS Format = iota + 1

	// FormatJWE is the five-segment encrypted layout.
	FormatJWE
)

// String returns the JOSE name of the format.
func (f Format) String() string {
	switch f {
	case FormatJWS:
		return "JWS"
	case FormatJWE:
		return "JWE"
	default:
		return "unknown"
	}
}

// Segment is a single base64url segment of a compact serialization, together
// with its boundaries in the original string. Text equals raw[Start:End].
type Segment struct {
	Text  string
	Start int
	End   int
}

// Empty reports whether the segment has no content.
func (s Segment) Empty() bool {
	return s.Text == ""
}

// Compact is a structurally checked compact serialization: segment count
// matches the format and no required segment is empty. Segment contents are
// not decoded.
type Compact struct {
	Raw      string
	Format   Format
	Segments []Segment
}

// Dots returns the offsets of the dot separators in the original string.
// Offsets are strictly increasing.
func (c *Compact) Dots() []int {
	dots := make([]int, 0, len(c.Segments)-1)

	for _, seg := range c.Segments[:len(c.Segments)-1] {
		dots = append(dots, seg.End)
	}

	return dots
}

// SplitCompact splits a compact serialization into its dot-separated segments,
// preserving each segment's offsets in the original string. Empty segments are
// kept, so the result always has one more element than the input has dots.
func SplitCompact(s string) []Segment {
	segments := make([]Segment, 0, CompactJWESegmentCount)

	start := 0

	for {
		i := strings.IndexByte(s[start:], '.')
		if i < 0 {
			return append(segments, Segment{Text: s[start:], Start: start, End: len(s)})
		}

		end := start + i
		segments = append(segments, Segment{Text: s[start:end], Start: start, End: end})
		start = end + 1
	}
}

// ParseCompact splits a compact serialization, classifies it as JWS or JWE by
// segment count and enforces the per-format segment requirements: a JWS must
// have a non-empty header, while its payload and signature may be empty; a JWE
// must have a non-empty header, initialization vector, ciphertext and
// authentication tag, while its encrypted key may be empty.
func ParseCompact(s string) (*Compact, error) {
	segments := SplitCompact(s)

	var format Format

	switch len(segments) {
	case CompactJWSSegmentCount:
		format = FormatJWS
	case CompactJWESegmentCount:
		format = FormatJWE
	default:
		return nil, fmt.Errorf("%w: bad segment count %d", ErrFormat, len(segments))
	}

	if err := checkSegments(format, segments); err != nil {
		return nil, err
	}

	return &Compact{Raw: s, Format: format, Segments: segments}, nil
}

// IsCompactJWS checks if the given token holds a compact JWS serialization.
func IsCompactJWS(s string) bool {
	c, err := ParseCompact(s)

	return err == nil && c.Format == FormatJWS
}

// IsCompactJWE checks if the given token holds a compact JWE serialization.
func IsCompactJWE(s string) bool {
	c, err := ParseCompact(s)

	return err == nil && c.Format == FormatJWE
}

// SegmentName returns the serialization-order name of the segment at index for
// the given format.
func SegmentName(format Format, index int) string {
	var names []string

	switch format {
	case FormatJWS:
		names = []string{SegmentHeader, SegmentPayload, SegmentSignature}
	case FormatJWE:
		names = []string{SegmentHeader, SegmentEncryptedKey, SegmentIV, SegmentCiphertext, SegmentAuthTag}
	}

	if index < 0 || index >= len(names) {
		return "unknown"
	}

	return names[index]
}

// DecodeSegment decodes a base64url segment. The canonical unpadded form is
// expected, but the padded form is accepted as well.
func DecodeSegment(text string) ([]byte, error) {
	encoding := base64.RawURLEncoding

	if strings.ContainsRune(text, '=') {
		encoding = base64.URLEncoding
	}

	data, err := encoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSegmentDecode, err)
	}

	return data, nil
}

func checkSegments(format Format, segments []Segment) error {
	if segments[0].Empty() {
		return fmt.Errorf("%w: %s segment is empty", ErrFormat, SegmentHeader)
	}

	if format != FormatJWE {
		return nil
	}

	for i, name := range []string{SegmentIV, SegmentCiphertext, SegmentAuthTag} {
		if segments[i+2].Empty() {
			return fmt.Errorf("%w: %s segment is empty", ErrFormat, name)
		}
	}

	return nil
}
