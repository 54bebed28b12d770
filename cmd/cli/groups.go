package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sanvivo/price-dashboard/internal/dashboard"
)

// groupsCmd represents the groups command
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage saved product groups",
	Long: `Manage the product groups saved in local storage. The default group
"My Favorites" always exists and cannot be deleted; "all" is reserved.`,
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups and their products",
	Args:  cobra.NoArgs,
	RunE:  runGroupsList,
}

var groupsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an empty group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateGroups(cmd, dashboard.AddGroup{Name: args[0]}, "Created group %q", args[0])
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateGroups(cmd, dashboard.DeleteGroup{Name: args[0]}, "Deleted group %q", args[0])
	},
}

var groupsAddProductCmd = &cobra.Command{
	Use:   "add-product <group> <product-id>",
	Short: "Add a product to a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateGroups(cmd, dashboard.AddProduct{Group: args[0], ID: args[1]}, "Added %s to %q", args[1], args[0])
	},
}

var groupsRemoveProductCmd = &cobra.Command{
	Use:   "remove-product <group> <product-id>",
	Short: "Remove a product from a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateGroups(cmd, dashboard.RemoveProduct{Group: args[0], ID: args[1]}, "Removed %s from %q", args[1], args[0])
	},
}

var groupsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all saved groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.store.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Groups reset to defaults")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
	groupsCmd.AddCommand(groupsListCmd, groupsAddCmd, groupsDeleteCmd, groupsAddProductCmd, groupsRemoveProductCmd, groupsResetCmd)
}

func runGroupsList(cmd *cobra.Command, args []string) error {
	s := app.loadGroups(cmd.Context())

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tPRODUCTS\tIDS")
	for _, name := range s.Groups.Names() {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", name, s.Groups.Size(name), strings.Join(s.Groups.Members(name), ", "))
	}
	return tw.Flush()
}

// mutateGroups applies a group action; unchanged collections are reported,
// not treated as failures
func mutateGroups(cmd *cobra.Command, action dashboard.Action, format string, args ...any) error {
	app.loadGroups(cmd.Context())

	_, effects := app.runtime.Dispatch(action)
	out := cmd.OutOrStdout()
	if !dashboard.Changed(effects) {
		fmt.Fprintln(out, "Nothing changed")
		return nil
	}
	if err := app.saves.err; err != nil {
		return fmt.Errorf("change was not saved: %w", err)
	}
	fmt.Fprintf(out, format+"\n", args...)
	return nil
}
