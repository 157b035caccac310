// Package validation checks a migrated widget schema against its
// registration. Registration, contract and child failures are collected as
// issues rather than returned as Go errors; a Result is valid when it holds
// no error-grade issue.
package validation
