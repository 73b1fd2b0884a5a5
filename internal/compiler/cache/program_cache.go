package cache

import (
	"sync"
	"time"

	"github.com/conduit-lang/typestate/internal/compiler/ast"
)

// CachedProgram is a parsed schema file and the hash of the content it
// was parsed from
type CachedProgram struct {
	Program  *ast.Program
	Hash     string
	Path     string
	CachedAt time.Time
}

// ProgramCache keeps parsed schema files between runs in watch mode
type ProgramCache struct {
	entries map[string]*CachedProgram
	mu      sync.RWMutex
}

// NewProgramCache creates an empty cache
func NewProgramCache() *ProgramCache {
	return &ProgramCache{
		entries: make(map[string]*CachedProgram),
	}
}

// Lookup returns the program cached for path if it was parsed from
// content with the given hash.
func (pc *ProgramCache) Lookup(path, hash string) (*ast.Program, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	entry, ok := pc.entries[path]
	if !ok || entry.Hash != hash {
		return nil, false
	}
	return entry.Program, true
}

// Set stores a program in the cache
func (pc *ProgramCache) Set(path string, program *ast.Program, hash string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.entries[path] = &CachedProgram{
		Program:  program,
		Hash:     hash,
		Path:     path,
		CachedAt: time.Now(),
	}
}

// Invalidate removes an entry from the cache
func (pc *ProgramCache) Invalidate(path string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	delete(pc.entries, path)
}

// Size returns the number of cached entries
func (pc *ProgramCache) Size() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	return len(pc.entries)
}
