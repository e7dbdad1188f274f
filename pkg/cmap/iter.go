// Package cmap provides a concurrent-safe sharded map keyed by string.
package cmap

// Range iterates over all key-value pairs.
//
// The callback returns false to stop iteration.
// Note: locks are acquired shard by shard, so the view may not be consistent.
func (m *Map[V]) Range(fn func(key string, value V) bool) {
	for _, shard := range m.shards {
		shard.mu.RLock()
		for k, v := range shard.items {
			if !fn(k, v) {
				shard.mu.RUnlock()
				return
			}
		}
		shard.mu.RUnlock()
	}
}

// Keys returns all keys.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.Count())
	m.Range(func(key string, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Values returns all values.
func (m *Map[V]) Values() []V {
	values := make([]V, 0, m.Count())
	m.Range(func(_ string, value V) bool {
		values = append(values, value)
		return true
	})
	return values
}

// GetOrSet returns the existing value for a key, or sets and returns the
// given value if absent. The second return reports whether the key existed.
func (m *Map[V]) GetOrSet(key string, value V) (V, bool) {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if existing, ok := shard.items[key]; ok {
		return existing, true
	}

	shard.items[key] = value
	return value, false
}

// SetIfAbsent sets the value only if the key does not exist.
// Returns true if the value was set, false if the key already exists.
func (m *Map[V]) SetIfAbsent(key string, value V) bool {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.items[key]; ok {
		return false
	}

	shard.items[key] = value
	return true
}

// Pop removes a key and returns its value.
// Returns the value and true if the key existed, zero value and false
// otherwise. At most one concurrent caller observes true for a given
// insertion, which makes Pop suitable for exactly-once eviction.
func (m *Map[V]) Pop(key string) (V, bool) {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	val, ok := shard.items[key]
	if ok {
		delete(shard.items, key)
	}
	return val, ok
}

// Update atomically updates the value for a key.
// The callback receives the existing value (if any) and whether the key
// exists, and returns the new value to store.
func (m *Map[V]) Update(key string, fn func(value V, exists bool) V) V {
	shard := m.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	existing, exists := shard.items[key]
	newValue := fn(existing, exists)
	shard.items[key] = newValue
	return newValue
}
