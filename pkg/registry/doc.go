// Package registry holds one Registration per widget type. It is populated
// once at boot by the widget modules and then read concurrently by every
// processing call. The sentinel types text-widget and error-widget must be
// registered before traffic starts; RequireSentinels enforces that.
package registry
