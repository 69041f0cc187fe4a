/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"fmt"

	"github.com/bluele/gcache"
)

// DefaultParseCacheSize bounds the parse cache when no size is given.
const DefaultParseCacheSize = 128

// ParseCache memoizes parsed tokens by their raw serialization. Cached tokens
// are materialized before they are shared, so concurrent readers never race
// on lazily computed fields. The underlying gcache is threadsafe, no need of
// locks.
type ParseCache struct {
	gstore gcache.Cache
	opts   []ParseOpt
}

// NewParseCache creates an LRU parse cache holding up to size tokens,
// DefaultParseCacheSize when size is not positive. opts apply to every parse.
func NewParseCache(size int, opts ...ParseOpt) *ParseCache {
	if size <= 0 {
		size = DefaultParseCacheSize
	}

	return &ParseCache{
		gstore: gcache.New(size).LRU().Build(),
		opts:   opts,
	}
}

// Parse returns the cached token for raw, parsing and caching on a miss.
// Parse failures are not cached.
func (p *ParseCache) Parse(raw string) (*SecurityToken, error) {
	if cached, err := p.gstore.Get(raw); err == nil {
		token, ok := cached.(*SecurityToken)
		if !ok {
			return nil, fmt.Errorf("failed to cast cache entry: expects SecurityToken, gets %T", cached)
		}

		return token, nil
	}

	token, err := Parse(raw, p.opts...)
	if err != nil {
		return nil, err
	}

	token.Materialize()

	if err := p.gstore.Set(raw, token); err != nil {
		logger.Debugf("cache parsed token: %v", err)
	}

	return token, nil
}

// Remove evicts the token parsed from raw, reporting whether it was cached.
func (p *ParseCache) Remove(raw string) bool {
	return p.gstore.Remove(raw)
}

// Purge empties the cache.
func (p *ParseCache) Purge() {
	p.gstore.Purge()
}
