// Package widgets supplies the built-in widget registrations, including the
// text-widget and error-widget sentinels the fallback cascade relies on, and
// loads additional registrations from JSON/YAML manifests.
package widgets
