package core

import (
	"fmt"
	"sync"
)

// IdentifierPool hands out small integer ids, reusing released slots first.
type IdentifierPool struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifierPool(capacity int) *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, 0, capacity),
	}
}

func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.owners {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return uint32(i)
		}
	}

	// If here, no existing free slots. Need a new id, so push one.
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

func (p *IdentifierPool) Release(id uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(id) >= len(p.owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d). Nothing was done", id, len(p.owners))
	}
	if p.owners[id] == nil {
		return fmt.Errorf("identifier release: id '%d' is not in use. Nothing was done", id)
	}

	// Just zero out the entry, making it available for use.
	p.owners[id] = nil
	return nil
}

func (p *IdentifierPool) Owner(id uint32) (interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(id) >= len(p.owners) || p.owners[id] == nil {
		return nil, false
	}
	return p.owners[id], true
}
