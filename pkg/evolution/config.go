package evolution

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/goliatone/go-widgetschema/pkg/schema"
)

// DefaultVersion is used when a host does not supply a version contract.
const DefaultVersion = "1.0"

// ErrInvalidConfig wraps every Config.Validate failure.
var ErrInvalidConfig = errors.New("evolution: invalid config")

// Migration adapts a schema from one older version to the current shape.
type Migration func(widget schema.WidgetSchema) (schema.WidgetSchema, error)

// Deprecation describes a feature key that still works but should be
// replaced.
type Deprecation struct {
	Message     string `json:"message" yaml:"message"`
	Replacement string `json:"replacement,omitempty" yaml:"replacement,omitempty"`
}

// Config is the version contract supplied once when the processor is built.
type Config struct {
	CurrentVersion    string
	SupportedVersions []string
	Migrations        map[string]Migration
	Deprecations      map[string]Deprecation
}

// DefaultConfig returns a contract with a single supported version and no
// migrations.
func DefaultConfig() Config {
	return Config{
		CurrentVersion:    DefaultVersion,
		SupportedVersions: []string{DefaultVersion},
	}
}

// Validate checks the contract and normalises it: the current version is
// added to SupportedVersions when missing.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	c.CurrentVersion = strings.TrimSpace(c.CurrentVersion)
	if c.CurrentVersion == "" {
		return fmt.Errorf("%w: current version is required", ErrInvalidConfig)
	}
	current, err := parseVersion(c.CurrentVersion)
	if err != nil {
		return fmt.Errorf("%w: current version %q: %v", ErrInvalidConfig, c.CurrentVersion, err)
	}

	if !c.Supports(c.CurrentVersion) {
		supported := make([]string, 0, len(c.SupportedVersions)+1)
		supported = append(supported, c.SupportedVersions...)
		c.SupportedVersions = append(supported, c.CurrentVersion)
	}

	seen := make(map[string]string, len(c.Migrations))
	for _, from := range migrationKeys(c.Migrations) {
		migration := c.Migrations[from]
		if migration == nil {
			return fmt.Errorf("%w: migration for %q is nil", ErrInvalidConfig, from)
		}
		if !c.Supports(from) {
			return fmt.Errorf("%w: migration for %q targets an unsupported version", ErrInvalidConfig, from)
		}
		version, err := parseVersion(from)
		if err != nil {
			return fmt.Errorf("%w: migration version %q: %v", ErrInvalidConfig, from, err)
		}
		if !version.LessThan(current) {
			return fmt.Errorf("%w: migration for %q is not older than current version %q", ErrInvalidConfig, from, c.CurrentVersion)
		}
		canonical := version.String()
		if prev, ok := seen[canonical]; ok {
			return fmt.Errorf("%w: migrations for %q and %q target the same version", ErrInvalidConfig, prev, from)
		}
		seen[canonical] = from
	}

	for key := range c.Deprecations {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: deprecation key is empty", ErrInvalidConfig)
		}
	}
	return nil
}

// Supports reports whether version is listed in SupportedVersions.
func (c Config) Supports(version string) bool {
	for _, candidate := range c.SupportedVersions {
		if SameVersion(candidate, version) {
			return true
		}
	}
	return false
}

// IsCurrent reports whether version equals the current version.
func (c Config) IsCurrent(version string) bool {
	return SameVersion(c.CurrentVersion, version)
}

// MigrationFor returns the migration registered for version, if any.
func (c Config) MigrationFor(version string) (Migration, bool) {
	if migration, ok := c.Migrations[version]; ok {
		return migration, true
	}
	for _, from := range migrationKeys(c.Migrations) {
		if SameVersion(from, version) {
			return c.Migrations[from], true
		}
	}
	return nil, false
}

func migrationKeys(migrations map[string]Migration) []string {
	keys := make([]string, 0, len(migrations))
	for key := range migrations {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SameVersion compares two version strings semantically ("1.0" == "v1.0.0").
// Strings that do not parse are compared verbatim.
func SameVersion(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == b {
		return true
	}
	va, errA := parseVersion(a)
	vb, errB := parseVersion(b)
	if errA != nil || errB != nil {
		return false
	}
	return va.Equal(vb)
}

func parseVersion(version string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(strings.TrimSpace(version), "v"))
}
