// Package keys derives store keys for model records, id counters and unique
// index entries, and holds the naming rules that keep those keys collision-free.
package keys

import (
	"regexp"
	"strconv"
)

// Key layout, one keyspace per model:
//
//	{model}:mid              next id to allocate
//	{model}:{id}             serialized object record
//	{model}:{prop}:{value}   unique value -> owning id
var (
	modelNameRe    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	propertyNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Record returns the key holding the serialized record of an object.
func Record(model string, id int64) string {
	return model + ":" + strconv.FormatInt(id, 10)
}

// Counter returns the key of the model's id counter.
func Counter(model string) string {
	return model + ":mid"
}

// Unique returns the index key mapping a unique property value to the id of
// the object currently holding it. The value must already be in its canonical
// string form.
func Unique(model, property, value string) string {
	return model + ":" + property + ":" + value
}

// ValidModelName reports whether s may be used as a model storage name: it
// must start with a letter and contain only letters, digits and underscores.
func ValidModelName(s string) bool {
	return modelNameRe.MatchString(s)
}

// ValidPropertyName reports whether s may be used as a property name: it must
// start with a letter or underscore and contain only letters, digits and
// underscores.
func ValidPropertyName(s string) bool {
	return propertyNameRe.MatchString(s)
}

// Storable reports whether a property under this name is persisted. Names
// with a leading underscore are reserved for in-memory bookkeeping and are
// never written to the store.
func Storable(s string) bool {
	return ValidPropertyName(s) && s[0] != '_'
}
