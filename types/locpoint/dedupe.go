package locpoint

import (
	"fmt"

	"github.com/golang/groupcache/lru"
	"github.com/mitchellh/hashstructure/v2"
)

// NewDedupeLRUFunc returns a predicate that is true the first time it
// sees a structurally-identical point and false thereafter.
// This is an exact-duplicate guard only; the time-window dedupe
// against the store is a separate, stronger check.
func NewDedupeLRUFunc(size int) func(*LocationPoint) bool {
	dedupeCache := lru.New(size)
	return func(p *LocationPoint) bool {
		hash, err := hashstructure.Hash(p, hashstructure.FormatV2, nil)
		if err != nil {
			return false
		}
		key := fmt.Sprintf("%d", hash)
		if _, ok := dedupeCache.Get(key); ok {
			return false
		}
		dedupeCache.Add(key, true)
		return true
	}
}
