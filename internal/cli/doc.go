// Package cli implements the widgetschema command: process and validate
// schema files, list registered widgets, and lint widget manifests.
package cli
