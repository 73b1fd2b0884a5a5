package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
)

func TestProgramCache_Lookup(t *testing.T) {
	cache := NewProgramCache()
	prog := &ast.Program{Package: "models"}

	cache.Set("user.typestate.hcl", prog, "abc")

	got, ok := cache.Lookup("user.typestate.hcl", "abc")
	assert.True(t, ok)
	assert.Same(t, prog, got)

	_, ok = cache.Lookup("user.typestate.hcl", "def")
	assert.False(t, ok, "stale hash")

	_, ok = cache.Lookup("other.typestate.hcl", "abc")
	assert.False(t, ok)
}

func TestProgramCache_Invalidate(t *testing.T) {
	cache := NewProgramCache()
	cache.Set("a", &ast.Program{}, "1")
	cache.Set("b", &ast.Program{}, "2")
	assert.Equal(t, 2, cache.Size())

	cache.Invalidate("a")
	assert.Equal(t, 1, cache.Size())

	_, ok := cache.Lookup("a", "1")
	assert.False(t, ok)
}

func TestProgramCache_Concurrent(t *testing.T) {
	cache := NewProgramCache()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Set("a", &ast.Program{}, "1")
			cache.Lookup("a", "1")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Size())
}
