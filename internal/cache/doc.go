// Package cache provides a small generic LRU cache.
//
//	c := cache.New[string, []uint32](64)
//	words, err := c.GetOrCreate(key, func() ([]uint32, error) {
//	    return compile(src)
//	})
//
// Failed creations are not cached. Cache is safe for concurrent use and
// must not be copied after creation.
package cache
