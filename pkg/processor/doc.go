// Package processor wires the migrate -> validate -> fallback pipeline into
// the single Process entry point consumed by rendering layers. Process never
// returns an error: every failure, including a panicking migration, becomes a
// renderable error-widget schema plus diagnostics.
package processor
