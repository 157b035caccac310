// Package contract provides registry.Contract implementations. NullLeaves is
// the shallow presence check every registered widget receives; RequiredKeys
// and JSONSchema are opt-in deeper checks a widget module can attach to its
// Registration.
package contract
