package evolution

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-widgetschema/pkg/schema"
)

// Migrator stamps schemas with the current version, applying at most one
// migration on the way.
type Migrator struct {
	config Config
	logger *slog.Logger
}

// MigratorOption customises a Migrator.
type MigratorOption func(*Migrator)

// WithLogger sets the logger used for unsupported-version notices.
func WithLogger(logger *slog.Logger) MigratorOption {
	return func(m *Migrator) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMigrator builds a migrator over a validated Config.
func NewMigrator(config Config, opts ...MigratorOption) *Migrator {
	m := &Migrator{
		config: config,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Config returns the version contract the migrator enforces.
func (m *Migrator) Config() Config {
	return m.config
}

// Migrate returns a migrated copy of widget. Unsupported versions are logged
// and passed through unmigrated. An error is returned only when a migration
// fails or produces a schema without a type.
func (m *Migrator) Migrate(widget schema.WidgetSchema) (schema.WidgetSchema, error) {
	out := widget.Clone()
	version := strings.TrimSpace(out.Version)

	if version == "" || m.config.IsCurrent(version) {
		out.Version = m.config.CurrentVersion
		return out, nil
	}

	if !m.config.Supports(version) {
		m.logger.Warn("unsupported schema version, skipping migration",
			"type", out.Type,
			"id", out.ID,
			"version", version,
			"current", m.config.CurrentVersion,
		)
		return out, nil
	}

	migration, ok := m.config.MigrationFor(version)
	if !ok {
		out.Version = m.config.CurrentVersion
		return out, nil
	}

	migrated, err := migration(out)
	if err != nil {
		return widget, fmt.Errorf("evolution: migrate %s from %s: %w", out.Type, version, err)
	}
	if strings.TrimSpace(migrated.Type) == "" {
		return widget, fmt.Errorf("evolution: migration from %s produced an empty type", version)
	}
	migrated.Version = m.config.CurrentVersion
	m.logger.Debug("schema migrated",
		"type", migrated.Type,
		"id", migrated.ID,
		"from", version,
		"to", m.config.CurrentVersion,
	)
	return migrated, nil
}
