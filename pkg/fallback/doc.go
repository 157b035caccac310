// Package fallback implements the degrade-gracefully cascade applied to a
// schema that failed validation. Strategies run in a fixed order and the last
// one, the terminal error widget, always matches, so Resolve always returns a
// renderable schema.
package fallback
