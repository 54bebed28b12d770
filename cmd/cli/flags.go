package main

import (
	"github.com/spf13/cobra"

	"github.com/sanvivo/price-dashboard/internal/dashboard"
	"github.com/sanvivo/price-dashboard/internal/groups"
	"github.com/sanvivo/price-dashboard/internal/viewmode"
)

// viewFlags select which rows a command shows
type viewFlags struct {
	onlyChanges    bool
	hideDesignated bool
	group          string
	watch          bool
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.onlyChanges, "only-changes", false, "Show only products whose price changed or that are new")
	cmd.Flags().BoolVar(&f.hideDesignated, "hide-designated", false, "Hide the designated pharmacy's own offers")
	cmd.Flags().StringVar(&f.group, "group", groups.AllProducts, "Select a product group")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Show only products of the selected group")
}

// apply loads saved groups and dispatches the selected filters
func (f *viewFlags) apply(cmd *cobra.Command) error {
	app.loadGroups(cmd.Context())

	actions := []dashboard.Action{
		dashboard.SetFilter{Name: dashboard.FilterShowOnlyChanges, Value: f.onlyChanges},
		dashboard.SetFilter{Name: dashboard.FilterHideDesignatedPharmacy, Value: f.hideDesignated},
		dashboard.SelectGroup{Name: f.group},
	}
	if f.watch {
		actions = append(actions, dashboard.SetViewMode{Mode: viewmode.GroupOnly})
	}

	for _, action := range actions {
		if _, err := app.dispatch(action); err != nil {
			return err
		}
	}
	return nil
}

func noColor() bool {
	return cfg != nil && cfg.Logging.NoColor
}
