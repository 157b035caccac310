package evolution_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-widgetschema/pkg/evolution"
	"github.com/goliatone/go-widgetschema/pkg/schema"
)

func testConfig(t *testing.T) evolution.Config {
	t.Helper()
	cfg := evolution.Config{
		CurrentVersion:    "1.0",
		SupportedVersions: []string{"0.8", "0.9", "1.0"},
		Migrations: map[string]evolution.Migration{
			"0.9": func(w schema.WidgetSchema) (schema.WidgetSchema, error) {
				if w.Config == nil {
					w.Config = map[string]any{}
				}
				w.Config["displayMode"] = "standard"
				return w, nil
			},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	return cfg
}

func TestMigrate_CurrentVersionIsNoop(t *testing.T) {
	m := evolution.NewMigrator(testConfig(t))
	input := schema.WidgetSchema{Type: "card", ID: "a", Version: "1.0", Config: map[string]any{"title": "x"}}

	got, err := m.Migrate(input)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if diff := cmp.Diff(input, got); diff != "" {
		t.Fatalf("current version should be untouched (-want +got):\n%s", diff)
	}
}

func TestMigrate_StampsMissingAndEquivalentVersions(t *testing.T) {
	m := evolution.NewMigrator(testConfig(t))
	for _, version := range []string{"", "v1.0", "1.0.0"} {
		got, err := m.Migrate(schema.WidgetSchema{Type: "card", Version: version})
		if err != nil {
			t.Fatalf("migrate %q: %v", version, err)
		}
		if got.Version != "1.0" {
			t.Fatalf("version %q: want stamped 1.0, got %q", version, got.Version)
		}
	}
}

func TestMigrate_AppliesSingleMigration(t *testing.T) {
	m := evolution.NewMigrator(testConfig(t))
	input := schema.WidgetSchema{Type: "Card", Version: "0.9", Config: map[string]any{"title": "x"}}

	got, err := m.Migrate(input)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if got.Version != "1.0" {
		t.Fatalf("want version 1.0, got %q", got.Version)
	}
	if got.Config["displayMode"] != "standard" {
		t.Fatalf("migration not applied: %+v", got.Config)
	}
	if _, ok := input.Config["displayMode"]; ok {
		t.Fatalf("input mutated by migration")
	}
}

func TestMigrate_SupportedWithoutMigrationIsStamped(t *testing.T) {
	m := evolution.NewMigrator(testConfig(t))
	got, err := m.Migrate(schema.WidgetSchema{Type: "card", Version: "0.8"})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if got.Version != "1.0" {
		t.Fatalf("want version 1.0, got %q", got.Version)
	}
}

func TestMigrate_UnsupportedVersionPassesThroughAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := evolution.NewMigrator(testConfig(t), evolution.WithLogger(logger))

	got, err := m.Migrate(schema.WidgetSchema{Type: "card", Version: "0.1"})
	if err != nil {
		t.Fatalf("unsupported version must not error: %v", err)
	}
	if got.Version != "0.1" {
		t.Fatalf("unsupported version should stay unmigrated, got %q", got.Version)
	}
	if !strings.Contains(buf.String(), "unsupported schema version") {
		t.Fatalf("expected warning log, got %q", buf.String())
	}
}

func TestMigrate_MigrationErrorsSurface(t *testing.T) {
	cfg := evolution.Config{
		CurrentVersion:    "2.0",
		SupportedVersions: []string{"1.0", "2.0"},
		Migrations: map[string]evolution.Migration{
			"1.0": func(w schema.WidgetSchema) (schema.WidgetSchema, error) {
				return w, errors.New("boom")
			},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	m := evolution.NewMigrator(cfg)
	if _, err := m.Migrate(schema.WidgetSchema{Type: "card", Version: "1.0"}); err == nil {
		t.Fatalf("expected migration error")
	}
}

func TestConfigValidate(t *testing.T) {
	noop := func(w schema.WidgetSchema) (schema.WidgetSchema, error) { return w, nil }

	cases := []struct {
		name    string
		cfg     evolution.Config
		wantErr bool
	}{
		{name: "default", cfg: evolution.DefaultConfig()},
		{name: "missing current", cfg: evolution.Config{}, wantErr: true},
		{name: "unparseable current", cfg: evolution.Config{CurrentVersion: "latest"}, wantErr: true},
		{
			name:    "migration for unsupported version",
			cfg:     evolution.Config{CurrentVersion: "1.0", Migrations: map[string]evolution.Migration{"0.5": noop}},
			wantErr: true,
		},
		{
			name: "migration newer than current",
			cfg: evolution.Config{
				CurrentVersion:    "1.0",
				SupportedVersions: []string{"1.0", "2.0"},
				Migrations:        map[string]evolution.Migration{"2.0": noop},
			},
			wantErr: true,
		},
		{
			name: "semantically duplicate migration keys",
			cfg: evolution.Config{
				CurrentVersion:    "1.0",
				SupportedVersions: []string{"0.9"},
				Migrations:        map[string]evolution.Migration{"0.9": noop, "v0.9.0": noop},
			},
			wantErr: true,
		},
		{
			name: "nil migration",
			cfg: evolution.Config{
				CurrentVersion:    "1.0",
				SupportedVersions: []string{"0.9"},
				Migrations:        map[string]evolution.Migration{"0.9": nil},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				if !errors.Is(err, evolution.ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.cfg.Supports(tc.cfg.CurrentVersion) {
				t.Fatalf("current version should be supported after validate")
			}
		})
	}
}

func TestConfigValidate_DoesNotWriteIntoCallerSlice(t *testing.T) {
	backing := make([]string, 1, 4)
	backing[0] = "0.9"
	cfg := evolution.Config{CurrentVersion: "1.0", SupportedVersions: backing}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if diff := cmp.Diff([]string{"0.9", "1.0"}, cfg.SupportedVersions); diff != "" {
		t.Fatalf("supported versions mismatch (-want +got):\n%s", diff)
	}
	if spare := backing[:2]; spare[1] != "" {
		t.Fatalf("caller backing array was written: %q", spare[1])
	}
}
