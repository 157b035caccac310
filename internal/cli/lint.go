package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-widgetschema/pkg/registry"
	"github.com/goliatone/go-widgetschema/pkg/widgets"
)

type violation struct {
	dir     string
	widget  string
	message string
}

func newLintCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <dir>...",
		Short: "Check widget manifests for broken fallbacks and sentinel overrides",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := widgets.NewRegistry()
			builtins := make(map[string]struct{})
			for _, id := range reg.List() {
				builtins[id] = struct{}{}
			}

			var violations []violation
			declared := make(map[string]string)
			for _, dir := range args {
				registrations, err := widgets.LoadManifest(os.DirFS(dir))
				if err != nil {
					return fmt.Errorf("lint %s: %w", dir, err)
				}
				for _, r := range registrations {
					if r.ID == registry.TextWidget || r.ID == registry.ErrorWidget {
						violations = append(violations, violation{dir: dir, widget: r.ID, message: "overrides a sentinel widget"})
					} else if _, ok := builtins[r.ID]; ok {
						violations = append(violations, violation{dir: dir, widget: r.ID, message: "overrides a built-in widget"})
					}
					if prev, ok := declared[r.ID]; ok {
						violations = append(violations, violation{dir: dir, widget: r.ID, message: "also declared in " + prev})
					}
					declared[r.ID] = dir
					reg.MustRegister(r)
				}
			}

			for id, dir := range declared {
				r, _ := reg.Lookup(id)
				switch {
				case r.FallbackWidgetID == "":
				case r.FallbackWidgetID == id:
					violations = append(violations, violation{dir: dir, widget: id, message: "falls back to itself"})
				case !reg.Has(r.FallbackWidgetID):
					violations = append(violations, violation{dir: dir, widget: id, message: fmt.Sprintf("fallback %q is not registered", r.FallbackWidgetID)})
				}
			}

			if len(violations) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d widget(s) ok\n", len(declared))
				return nil
			}

			sort.Slice(violations, func(i, j int) bool {
				if violations[i].dir == violations[j].dir {
					if violations[i].widget == violations[j].widget {
						return violations[i].message < violations[j].message
					}
					return violations[i].widget < violations[j].widget
				}
				return violations[i].dir < violations[j].dir
			})
			for _, v := range violations {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s -> %s\n", v.dir, v.widget, v.message)
			}
			return fmt.Errorf("found %d manifest violation(s)", len(violations))
		},
	}
}
