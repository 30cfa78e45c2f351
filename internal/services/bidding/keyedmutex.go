package bidding

import "sync"

// keyedMutex serializes work per item ID. Entries are tiny and the live item
// set is bounded, so they are never evicted.
type keyedMutex struct {
	locks sync.Map // itemID -> *sync.Mutex
}

// Lock blocks until the item's mutex is held and returns the unlock func.
func (k *keyedMutex) Lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
