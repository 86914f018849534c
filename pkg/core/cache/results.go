package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"github.com/msto63/cdlc/foundation/cdl"
)

// Outcome is a cached compilation: either a result or the syntax error
// that aborted it
type Outcome struct {
	Result *cdl.Result
	Err    error
}

// ResultCache memoizes compilations keyed by source hash. Cached Asts are
// shared between callers and must be treated as read-only.
type ResultCache struct {
	cache *Cache
}

// NewResultCache creates a compile result cache
func NewResultCache(cfg Config) *ResultCache {
	return &ResultCache{cache: New(cfg)}
}

// SourceKey generates a cache key for a source text and the options that
// change the compile output
func SourceKey(src string, opts cdl.Options) string {
	hash := sha256.Sum256([]byte(src))
	return "cdl:" + hex.EncodeToString(hash[:16]) +
		":" + strconv.FormatBool(opts.SkipResolve) +
		":" + strconv.Itoa(opts.MaxInputBytes)
}

// SourceHash returns the full hex sha256 of a source text
func SourceHash(src string) string {
	hash := sha256.Sum256([]byte(src))
	return hex.EncodeToString(hash[:])
}

// Compile returns the cached outcome for src or compiles it. The second
// return value reports a cache hit. Syntax errors are cached like results;
// input limit errors are not.
func (c *ResultCache) Compile(src string, opts cdl.Options) (Outcome, bool) {
	key := SourceKey(src, opts)
	if val, ok := c.cache.Get(key); ok {
		return val.(Outcome), true
	}

	result, err := cdl.Compile(src, opts)
	outcome := Outcome{Result: result, Err: err}
	if err == nil || cdl.IsSyntaxError(err) {
		c.cache.Set(key, outcome)
	}
	return outcome, false
}

// Invalidate drops the cached outcome for src
func (c *ResultCache) Invalidate(src string, opts cdl.Options) {
	c.cache.Delete(SourceKey(src, opts))
}

// Stats returns cache statistics
func (c *ResultCache) Stats() Stats {
	return c.cache.Stats()
}

// Close stops the background cleanup
func (c *ResultCache) Close() {
	c.cache.Close()
}
