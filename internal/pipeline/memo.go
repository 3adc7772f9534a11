package pipeline

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Memo caches stage results keyed by a digest of the stage name, its input
// tables and its parameters. Cached values are shared and must be treated as
// read-only.
type Memo struct {
	cache *lru.Cache[uint64, any]
}

// NewMemo creates a cache holding at most size stage results.
func NewMemo(size int) (*Memo, error) {
	c, err := lru.New[uint64, any](size)
	if err != nil {
		return nil, fmt.Errorf("creating stage cache: %w", err)
	}
	return &Memo{cache: c}, nil
}

// Len returns the number of cached results.
func (m *Memo) Len() int { return m.cache.Len() }

// stageKey digests a stage name, input table hashes and string parameters.
func stageKey(stage string, tables []uint64, params ...string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(stage)
	for _, h := range tables {
		_, _ = fmt.Fprintf(d, "\x1e%016x", h)
	}
	for _, p := range params {
		_, _ = d.WriteString("\x1f")
		_, _ = d.WriteString(p)
	}
	return d.Sum64()
}

// memoize returns the cached result for key or computes, stores and returns
// it. Errors are never cached. A nil memo computes every time.
func memoize[T any](m *Memo, key uint64, fn func() (T, error)) (T, bool, error) {
	if m != nil {
		if v, ok := m.cache.Get(key); ok {
			if typed, ok := v.(T); ok {
				return typed, true, nil
			}
		}
	}
	v, err := fn()
	if err != nil {
		return v, false, err
	}
	if m != nil {
		m.cache.Add(key, v)
	}
	return v, false, nil
}
