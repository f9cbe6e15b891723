// Package utils contains lenient scalar conversion helpers shared by the
// CSV catalog importer and other boundary code that consumes loosely-typed
// values.
package utils
