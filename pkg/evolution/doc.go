// Package evolution holds the process-wide schema version contract and the
// single-hop migrator. A schema older than the current version is rewritten
// by at most one registered migration; chaining through intermediate versions
// is not supported.
package evolution
