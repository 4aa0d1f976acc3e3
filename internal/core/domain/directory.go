package domain

import (
	"sync"
	"time"
)

// Directory owns the record list of one page. It is replaced wholesale by a
// successful fetch and only read by rendering and filtering.
type Directory struct {
	mu       sync.RWMutex
	users    []UserRecord
	loadedAt time.Time
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{}
}

// Replace swaps in a new record list.
func (d *Directory) Replace(users []UserRecord, at time.Time) {
	cp := make([]UserRecord, len(users))
	copy(cp, users)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = cp
	d.loadedAt = at
}

// Users returns a copy of the stored records.
func (d *Directory) Users() []UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cp := make([]UserRecord, len(d.users))
	copy(cp, d.users)
	return cp
}

// Search filters the stored records by query.
func (d *Directory) Search(query string) []UserRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Filter(d.users, query)
}

// Loaded reports whether a fetch has ever succeeded for this directory.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return !d.loadedAt.IsZero()
}

// LoadedAt returns the time of the last successful fetch.
func (d *Directory) LoadedAt() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loadedAt
}
