// Package kv defines the store-handle contract the persistence engine runs
// against. A backend must provide plain get/set/delete plus three atomic
// primitives: increment-and-return, set-if-absent and delete-if-equals. All
// correctness guarantees of the engine derive from those primitives alone; no
// multi-key transactions are assumed.
package kv

import "context"

// Store is a resolved handle to a key-value backend.
//
// Ordinary Get/Set/Delete need no atomicity beyond single-key linearizability.
// Incr, SetIfAbsent and DeleteIfEquals must each be a single atomic step on
// the backend; implementations must never emulate them with a read followed
// by a separate write.
type Store interface {
	// Get returns the value at key. ok is false when the key does not exist;
	// a missing key is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes value at key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Incr atomically increments the integer at key by one and returns the
	// new value. A missing key counts as zero.
	Incr(ctx context.Context, key string) (int64, error)

	// SetIfAbsent writes value at key only if the key does not exist.
	// It returns true iff this call created the key.
	SetIfAbsent(ctx context.Context, key, value string) (bool, error)

	// DeleteIfEquals removes key only if its current value equals value.
	// It returns true iff this call removed the key; a missing key or a
	// different current value returns false without error.
	DeleteIfEquals(ctx context.Context, key, value string) (bool, error)
}

// Resolver yields the store handle for one engine operation on the named
// model. The engine calls it exactly once per operation and never caches the
// result, so a resolver may return a fixed handle, pick one per call, or dial
// lazily.
type Resolver func(ctx context.Context, model string) (Store, error)

// Fixed returns a Resolver that always yields s.
func Fixed(s Store) Resolver {
	return func(context.Context, string) (Store, error) {
		return s, nil
	}
}
