package model

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/jacentio/arbor/internal/keys"
	"github.com/jacentio/arbor/kv"
)

// Object is an in-memory instance of a model.
type Object struct {
	// ID is assigned on the first successful Put and never changes across
	// updates. Zero means the object has not been persisted.
	ID int64

	// Props holds the object's properties, declared and dynamic alike.
	Props Props
}

// Put persists the object: a create when it has no id yet, an update
// otherwise. On create the allocated id is written back to obj.ID.
//
// Unique claims are reconciled as part of the same operation. A value already
// held by another object aborts the whole Put with a ConstraintError and
// leaves the store untouched (create) or the record unmodified (update); the
// caller decides whether to retry with a different value.
func (m *Model) Put(ctx context.Context, obj *Object) error {
	rec, err := m.buildRecord(obj.Props)
	if err != nil {
		return err
	}
	store, err := m.resolver(ctx, m.name)
	if err != nil {
		return fmt.Errorf("resolve store: %w", err)
	}
	if obj.ID == 0 {
		return m.create(ctx, store, obj, rec)
	}
	return m.update(ctx, store, obj, rec)
}

// Get returns the object stored under id, or ErrNotFound.
func (m *Model) Get(ctx context.Context, id int64) (*Object, error) {
	store, err := m.resolver(ctx, m.name)
	if err != nil {
		return nil, fmt.Errorf("resolve store: %w", err)
	}
	return m.load(ctx, store, id)
}

// LookupID resolves the id currently holding value for a unique property.
// Returns ErrNotUnique if the property is not declared unique, ErrNotFound if
// no object holds the value.
func (m *Model) LookupID(ctx context.Context, property string, value any) (int64, error) {
	store, err := m.resolver(ctx, m.name)
	if err != nil {
		return 0, fmt.Errorf("resolve store: %w", err)
	}
	return m.lookupID(ctx, store, property, value)
}

// GetBy loads the object currently holding value for a unique property.
// An index entry pointing at a record that no longer exists is reported as
// ErrNotFound and logged as a consistency anomaly.
func (m *Model) GetBy(ctx context.Context, property string, value any) (*Object, error) {
	store, err := m.resolver(ctx, m.name)
	if err != nil {
		return nil, fmt.Errorf("resolve store: %w", err)
	}
	id, err := m.lookupID(ctx, store, property, value)
	if err != nil {
		return nil, err
	}
	obj, err := m.load(ctx, store, id)
	if errors.Is(err, ErrNotFound) {
		m.log.Warn("index entry resolves to a missing record",
			zap.String("model", m.name),
			zap.String("property", property),
			zap.Int64("id", id))
		return nil, ErrNotFound
	}
	return obj, err
}

// Delete removes the object's record and releases every unique value it
// holds. The object's id is never reallocated. Deleting an object whose
// record is already gone is not an error; deleting a never-saved object is
// ErrUnsaved.
func (m *Model) Delete(ctx context.Context, obj *Object) error {
	if obj.ID == 0 {
		return ErrUnsaved
	}
	store, err := m.resolver(ctx, m.name)
	if err != nil {
		return fmt.Errorf("resolve store: %w", err)
	}

	idStr := strconv.FormatInt(obj.ID, 10)
	recordKey := keys.Record(m.storage, obj.ID)

	// The stored record, not the in-memory one, knows which values are held.
	text, found, err := store.Get(ctx, recordKey)
	if err != nil {
		return fmt.Errorf("load record %d: %w", obj.ID, err)
	}
	if found {
		rec, err := decodeRecord(text)
		if err != nil {
			return fmt.Errorf("record %d: %w", obj.ID, err)
		}
		claims, err := m.uniqueValues(rec)
		if err != nil {
			return err
		}
		// Release before remove: a crash in between leaves at worst an
		// orphaned index entry, never a record with no reachable index.
		for _, name := range m.uniqueNames {
			canon, ok := claims[name]
			if !ok {
				continue
			}
			if _, err := store.DeleteIfEquals(ctx, keys.Unique(m.storage, name, canon), idStr); err != nil {
				return fmt.Errorf("release %s: %w", name, err)
			}
		}
	}

	if err := store.Delete(ctx, recordKey); err != nil {
		return fmt.Errorf("remove record %d: %w", obj.ID, err)
	}
	if m.debug {
		m.log.Debug("deleted object", zap.String("model", m.name), zap.Int64("id", obj.ID))
	}
	obj.ID = 0
	return nil
}

func (m *Model) create(ctx context.Context, store kv.Store, obj *Object, rec Props) error {
	claims, err := m.uniqueValues(rec)
	if err != nil {
		return err
	}

	id, err := store.Incr(ctx, keys.Counter(m.storage))
	if err != nil {
		return fmt.Errorf("allocate id: %w", err)
	}
	idStr := strconv.FormatInt(id, 10)

	var reserved []string
	for _, name := range m.uniqueNames {
		canon, ok := claims[name]
		if !ok {
			continue
		}
		key := keys.Unique(m.storage, name, canon)
		won, err := store.SetIfAbsent(ctx, key, idStr)
		if err != nil {
			return fmt.Errorf("reserve %s: %w", name, err)
		}
		if !won {
			holder := m.holder(ctx, store, key)
			m.releaseKeys(ctx, store, reserved, idStr)
			return &ConstraintError{Property: name, Value: canon, HolderID: holder}
		}
		reserved = append(reserved, key)
	}

	text, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, keys.Record(m.storage, id), text); err != nil {
		return fmt.Errorf("write record %d: %w", id, err)
	}
	obj.ID = id
	if m.debug {
		m.log.Debug("created object", zap.String("model", m.name), zap.Int64("id", id))
	}
	return nil
}

func (m *Model) update(ctx context.Context, store kv.Store, obj *Object, rec Props) error {
	newClaims, err := m.uniqueValues(rec)
	if err != nil {
		return err
	}
	idStr := strconv.FormatInt(obj.ID, 10)
	recordKey := keys.Record(m.storage, obj.ID)

	prevText, found, err := store.Get(ctx, recordKey)
	if err != nil {
		return fmt.Errorf("load record %d: %w", obj.ID, err)
	}
	oldClaims := map[string]string{}
	if !found {
		// An id with no record should not happen; proceed as if nothing was
		// claimed and let delete-if-equals keep any leftovers safe.
		m.log.Warn("update found no prior record",
			zap.String("model", m.name), zap.Int64("id", obj.ID))
	} else {
		prev, err := decodeRecord(prevText)
		if err != nil {
			return fmt.Errorf("record %d: %w", obj.ID, err)
		}
		oldClaims, err = m.uniqueValues(prev)
		if err != nil {
			return err
		}
	}

	// Reserve new values before releasing old ones, so the object never
	// transiently holds no valid claim.
	var reserved []string
	for _, name := range m.uniqueNames {
		canon, ok := newClaims[name]
		if !ok {
			continue
		}
		if old, held := oldClaims[name]; held && old == canon {
			continue
		}
		key := keys.Unique(m.storage, name, canon)
		won, err := store.SetIfAbsent(ctx, key, idStr)
		if err != nil {
			return fmt.Errorf("reserve %s: %w", name, err)
		}
		if !won {
			holder := m.holder(ctx, store, key)
			if holder == obj.ID {
				// already ours, e.g. after a lost record
				continue
			}
			m.releaseKeys(ctx, store, reserved, idStr)
			return &ConstraintError{Property: name, Value: canon, HolderID: holder}
		}
		reserved = append(reserved, key)
	}

	text, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, recordKey, text); err != nil {
		return fmt.Errorf("write record %d: %w", obj.ID, err)
	}

	// Release the values this update replaced. Each release only removes the
	// entry if it still points at this id.
	for _, name := range m.uniqueNames {
		old, held := oldClaims[name]
		if !held {
			continue
		}
		if cur, ok := newClaims[name]; ok && cur == old {
			continue
		}
		if _, err := store.DeleteIfEquals(ctx, keys.Unique(m.storage, name, old), idStr); err != nil {
			return fmt.Errorf("release %s: %w", name, err)
		}
	}
	if m.debug {
		m.log.Debug("updated object", zap.String("model", m.name), zap.Int64("id", obj.ID))
	}
	return nil
}

func (m *Model) load(ctx context.Context, store kv.Store, id int64) (*Object, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	text, ok, err := store.Get(ctx, keys.Record(m.storage, id))
	if err != nil {
		return nil, fmt.Errorf("load record %d: %w", id, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	rec, err := decodeRecord(text)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", id, err)
	}
	m.applyDefaults(rec)
	return &Object{ID: id, Props: rec}, nil
}

func (m *Model) lookupID(ctx context.Context, store kv.Store, property string, value any) (int64, error) {
	desc, ok := m.props[property]
	if !ok || !desc.Unique {
		return 0, fmt.Errorf("%w: %s.%s", ErrNotUnique, m.name, property)
	}
	if value == nil {
		return 0, ErrNotFound
	}
	canon, err := canonical(value)
	if err != nil {
		return 0, fmt.Errorf("%s.%s: %w", m.name, property, err)
	}
	v, ok, err := store.Get(ctx, keys.Unique(m.storage, property, canon))
	if err != nil {
		return 0, fmt.Errorf("lookup %s: %w", property, err)
	}
	if !ok {
		return 0, ErrNotFound
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed index entry for %s=%q: %w", property, canon, err)
	}
	return id, nil
}

// holder reads the id currently claiming an index key, best effort; 0 when it
// cannot be read.
func (m *Model) holder(ctx context.Context, store kv.Store, key string) int64 {
	v, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// releaseKeys undoes the reservations taken earlier in a failed attempt.
// Best effort: the claims are conditioned on this id, so leftovers can never
// block or erase another object's claim.
func (m *Model) releaseKeys(ctx context.Context, store kv.Store, reserved []string, idStr string) {
	for _, k := range reserved {
		if _, err := store.DeleteIfEquals(ctx, k, idStr); err != nil {
			m.log.Warn("failed to release unique reservation",
				zap.String("key", k), zap.Error(err))
		}
	}
}
