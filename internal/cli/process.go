package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-widgetschema/pkg/metrics"
	"github.com/goliatone/go-widgetschema/pkg/processor"
	"github.com/goliatone/go-widgetschema/pkg/schema"
)

func newProcessCommand(a *app) *cobra.Command {
	var withMetrics bool

	cmd := &cobra.Command{
		Use:   "process <file>...",
		Short: "Process schema files and print the results as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				gatherer *prometheus.Registry
				extra    []processor.Option
			)
			if withMetrics {
				gatherer = prometheus.NewRegistry()
				extra = append(extra, processor.WithObserver(metrics.New(metrics.WithRegistry(gatherer))))
			}

			p, err := a.processor(extra...)
			if err != nil {
				return err
			}

			results := make([]processor.Result, 0, len(args))
			for _, path := range args {
				widget, err := schema.DecodeFile(path)
				if err != nil {
					return err
				}
				results = append(results, p.Process(widget))
			}

			var output any = results
			if len(results) == 1 {
				output = results[0]
			}
			if err := writeJSON(cmd.OutOrStdout(), output); err != nil {
				return err
			}
			if gatherer != nil {
				return writeMetrics(cmd.ErrOrStderr(), gatherer)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "print processing counters to stderr in Prometheus text format")
	return cmd
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return err
		}
	}
	return nil
}

func newValidateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Migrate and validate a schema file without resolving fallbacks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.processor()
			if err != nil {
				return err
			}
			widget, err := schema.DecodeFile(args[0])
			if err != nil {
				return err
			}
			result, err := p.Validate(widget)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("%s: %d validation error(s)", args[0], len(result.Errors))
			}
			return nil
		},
	}
}
