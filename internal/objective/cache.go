package objective

import (
	"fmt"
	"reflect"
	"strings"
)

// ResultCache memoizes objective results keyed by the decoded parameter tuple
// plus any extra fixed arguments. It is unbounded and never evicts.
//
// The cache is not synchronized: each adapter, and therefore each cache, must
// be driven by a single goroutine. Independent workers construct their own
// adapters and pay for their own caches.
type ResultCache struct {
	entries map[string]float64
	hits    uint64
	misses  uint64
}

// NewResultCache creates an empty cache.
func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[string]float64)}
}

// CacheInfo is a read-only snapshot of cache statistics. MaxSize is nil
// because the cache is unbounded.
type CacheInfo struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	MaxSize  *int   `json:"maxSize"`
	CurrSize int    `json:"currSize"`
}

// GetOrCompute returns the stored result for key, or invokes compute exactly
// once, stores its result, and returns it. An error from compute is returned
// unchanged and nothing is stored, so a later identical call re-attempts the
// computation; the failed attempt still counts as a miss.
func (c *ResultCache) GetOrCompute(key string, compute func() (float64, error)) (float64, error) {
	if result, ok := c.entries[key]; ok {
		c.hits++
		return result, nil
	}
	c.misses++
	result, err := compute()
	if err != nil {
		return 0, err
	}
	c.entries[key] = result
	return result, nil
}

// Info returns the current counters.
func (c *ResultCache) Info() CacheInfo {
	return CacheInfo{
		Hits:     c.hits,
		Misses:   c.misses,
		MaxSize:  nil,
		CurrSize: len(c.entries),
	}
}

// Key builds the cache key for a decoded tuple and its extra arguments.
// Comparable values are keyed by type and value. Uncomparable values (slices,
// maps, functions a ChoiceVar may legitimately carry) fall back to reference
// identity, so two equal-by-value but distinct uncomparable objects occupy
// separate entries. That is a deliberate approximation: such values are drawn
// from a stable declared candidate list, where identity coincides with
// intended equality.
func Key(values []any, extra []any) string {
	var b strings.Builder
	writeKeyPart(&b, values)
	b.WriteByte(0x1e)
	writeKeyPart(&b, extra)
	return b.String()
}

func writeKeyPart(b *strings.Builder, values []any) {
	for i, v := range values {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		writeKeyValue(b, v)
	}
}

func writeKeyValue(b *strings.Builder, v any) {
	t := reflect.TypeOf(v)
	switch {
	case t == nil:
		b.WriteString("nil")
	case t.Comparable():
		fmt.Fprintf(b, "%T=%#v", v, v)
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.UnsafePointer:
			fmt.Fprintf(b, "%T@%#x", v, rv.Pointer())
		default:
			// Uncomparable value with no reference identity; key by rendering.
			fmt.Fprintf(b, "%T=%#v", v, v)
		}
	}
}
