package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](4)
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) found a value")
	}
	c.Set("a", 1)
	c.Set("a", 2)
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) = %d, %v; want 2, true", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Capacity != 4 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCacheEviction(t *testing.T) {
	c := New[int, string](3)
	for i := range 3 {
		c.Set(i, strconv.Itoa(i))
	}
	c.Get(0) // 1 is now the oldest
	c.Set(3, "3")

	if _, ok := c.Get(1); ok {
		t.Error("least recently used entry was not evicted")
	}
	for _, k := range []int{0, 2, 3} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("entry %d evicted", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](8)
	calls := 0
	create := func() (int, error) {
		calls++
		return 42, nil
	}

	for range 3 {
		v, err := c.GetOrCreate("k", create)
		if err != nil || v != 42 {
			t.Fatalf("GetOrCreate() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	errBoom := errors.New("boom")
	for range 2 {
		if _, err := c.GetOrCreate("bad", func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
			t.Errorf("GetOrCreate() err = %v, want errBoom", err)
		}
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed creation was cached")
	}
}

func TestCacheDeleteClear(t *testing.T) {
	c := New[string, int](0)
	if c.Stats().Capacity != 1 {
		t.Errorf("capacity = %d, want 1", c.Stats().Capacity)
	}

	c.Set("a", 1)
	if !c.Delete("a") || c.Delete("a") {
		t.Error("Delete() should report presence once")
	}
	c.Set("b", 2)
	c.Set("c", 3)
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 with capacity 1", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear", c.Len())
	}
	c.Set("d", 4)
	if v, _ := c.Get("d"); v != 4 {
		t.Error("cache unusable after Clear")
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](16)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := (g + i) % 32
				_, _ = c.GetOrCreate(k, func() (int, error) { return k * 2, nil })
				if v, ok := c.Get(k); ok && v != k*2 {
					t.Errorf("Get(%d) = %d", k, v)
				}
			}
		}()
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
