// Package model persists schema-light objects into a key-value store while
// enforcing per-property uniqueness through a value-to-id secondary index.
//
// A model is declared once with [Define]: a name, a per-model [Config], and a
// set of declared [Property] descriptors. Objects are open maps of property
// name to primitive value; properties that were never declared ("dynamic"
// properties) are stored exactly like declared ones, declared properties only
// add default-on-absence and optional uniqueness.
//
//	users, err := model.Define("User", model.Config{Resolver: kv.Fixed(store)},
//		map[string]model.Property{
//			"username": {Unique: true},
//			"email":    {Unique: true},
//			"plan":     {Default: "free"},
//		})
//
//	u := &model.Object{Props: model.Props{"username": "daniel", "email": "d@x.com"}}
//	err = users.Put(ctx, u) // allocates u.ID, claims username and email
//
// # Storage layout
//
// Each model owns three kinds of keys: a record key per object id holding the
// JSON property map, one id-counter key, and one index key per claimed unique
// value pointing back at the owning id.
//
// # Concurrency
//
// Correctness never relies on in-process locks. Ids come from the store's
// atomic increment; unique claims are taken with atomic set-if-absent and
// released with delete-if-equals, so a stale release can never erase a newer
// claim. Every operation is a fixed, short sequence of such primitive calls.
// Constraint conflicts are surfaced to the caller as [ConstraintError], never
// retried internally.
//
// # Errors
//
// Absence and constraint conflicts are part of the normal result contract:
//
//   - [ErrNotFound] - no object for the id or unique value
//   - [ErrDuplicateValue] - matched by every [ConstraintError]
//   - [ErrNotUnique] - lookup by a property not declared unique
//   - [ErrUnsaved] - delete of a never-saved object
//
// Store failures propagate wrapped and unretried.
package model
