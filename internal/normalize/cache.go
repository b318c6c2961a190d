package normalize

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// FieldResult is the canonical value of one field and how sure we are of it.
type FieldResult struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type fieldCache = lru.Cache[string, FieldResult]

// Caches memoizes per-field normalization keyed by the raw input. A nil
// member disables memoization for that field. The LRUs are safe for
// concurrent use, so one Caches value may back several workers.
type Caches struct {
	Names      *fieldCache
	Units      *fieldCache
	Categories *fieldCache
	Suppliers  *fieldCache
}

// NewCaches builds bounded caches of size entries each. size <= 0 returns
// an empty Caches.
func NewCaches(size int) (Caches, error) {
	if size <= 0 {
		return Caches{}, nil
	}
	var c Caches
	for _, slot := range []**fieldCache{&c.Names, &c.Units, &c.Categories, &c.Suppliers} {
		cache, err := lru.New[string, FieldResult](size)
		if err != nil {
			return Caches{}, fmt.Errorf("create normalizer cache: %w", err)
		}
		*slot = cache
	}
	return c, nil
}

func memo(c *fieldCache, key string, fn func(string) FieldResult) FieldResult {
	if c == nil {
		return fn(key)
	}
	if v, ok := c.Get(key); ok {
		return v
	}
	v := fn(key)
	c.Add(key, v)
	return v
}
