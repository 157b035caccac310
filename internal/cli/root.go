package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	widgetschema "github.com/goliatone/go-widgetschema"
	"github.com/goliatone/go-widgetschema/internal/config"
	"github.com/goliatone/go-widgetschema/pkg/evolution"
	"github.com/goliatone/go-widgetschema/pkg/processor"
	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/widgets"
)

type app struct {
	viper      *viper.Viper
	configFile string
	settings   config.Settings
	logger     *slog.Logger
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand assembles the command tree. Each call gets its own viper
// instance so tests can run commands in isolation.
func NewRootCommand() *cobra.Command {
	a := &app{viper: config.New()}

	root := &cobra.Command{
		Use:   "widgetschema",
		Short: "Process agent-emitted widget schemas",
		Long: `widgetschema migrates, validates and resolves fallbacks for declarative widget
schemas so the result can be handed to a renderer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (yaml)")
	flags.String(config.KeyEvolution, "", "evolution config file (yaml)")
	flags.StringSlice(config.KeyManifest, nil, "directories holding widget manifests")
	flags.Bool(config.KeyDev, false, "include full diagnostics in error widgets")
	flags.String(config.KeyLogLevel, "warn", "log level (debug, info, warn, error)")
	for _, key := range []string{config.KeyEvolution, config.KeyManifest, config.KeyDev, config.KeyLogLevel} {
		_ = a.viper.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		newProcessCommand(a),
		newValidateCommand(a),
		newWidgetsCommand(a),
		newLintCommand(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	if err := config.ReadFile(a.viper, a.configFile); err != nil {
		return err
	}
	settings, err := config.Resolve(a.viper)
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: settings.LogLevel}))
	return nil
}

func (a *app) registry() (*registry.Registry, error) {
	reg := widgets.NewRegistry()
	for _, dir := range a.settings.ManifestDirs {
		if err := widgets.RegisterManifest(reg, os.DirFS(dir)); err != nil {
			return nil, fmt.Errorf("manifest %s: %w", dir, err)
		}
	}
	return reg, nil
}

func (a *app) evolution() (evolution.Config, error) {
	if a.settings.EvolutionFile == "" {
		return evolution.DefaultConfig(), nil
	}
	return evolution.LoadConfigFile(a.settings.EvolutionFile)
}

func (a *app) processor(extra ...processor.Option) (*processor.Processor, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	cfg, err := a.evolution()
	if err != nil {
		return nil, err
	}
	return widgetschema.NewProcessor(
		widgetschema.WithRegistry(reg),
		widgetschema.WithEvolution(cfg),
		widgetschema.WithProcessorOptions(
			processor.WithLogger(a.logger),
			processor.WithDevMode(a.settings.DevMode),
		),
		widgetschema.WithProcessorOptions(extra...),
	)
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
