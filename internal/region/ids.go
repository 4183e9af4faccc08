package region

import "sync/atomic"

// IDAllocator hands out entity and item ids. One allocator is shared by
// every region in the process so ids stay unique across transfers. Zero is
// never returned.
type IDAllocator struct {
	last atomic.Uint32
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

func (a *IDAllocator) Next() uint32 {
	return a.last.Add(1)
}

// Observe makes sure later ids are greater than id.
func (a *IDAllocator) Observe(id uint32) {
	for {
		cur := a.last.Load()
		if cur >= id || a.last.CompareAndSwap(cur, id) {
			return
		}
	}
}
