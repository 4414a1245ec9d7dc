package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
	"github.com/spf13/cobra"
)

type cartridgeInfo struct {
	Name string `json:"name"          yaml:"name"`
	Type string `json:"type"          yaml:"type"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// NewCartridgesCommand creates the cartridges command group.
func NewCartridgesCommand() *cobra.Command {
	var domainID string

	cmd := &cobra.Command{
		Use:     "cartridges",
		Aliases: []string{"cartridge"},
		Short:   "Manage embedded cartridges",
		Long:    "List, add and remove the add-on cartridges embedded in an application",
	}

	cmd.PersistentFlags().StringVarP(&domainID, "domain", "d", "", "domain of the application")

	cmd.AddCommand(newCartridgesListCommand(&domainID))
	cmd.AddCommand(newCartridgesAddCommand(&domainID))
	cmd.AddCommand(newCartridgesRemoveCommand(&domainID))

	return cmd
}

func newCartridgesListCommand(domainID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list APP",
		Short: "List embedded cartridges",
		Long:  "List the cartridges embedded in an application",
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			cartridges, err := app.EmbeddedCartridges(ctx)
			if err != nil {
				return fmt.Errorf("failed to list cartridges: %w", err)
			}

			infos := make([]cartridgeInfo, 0, len(cartridges))
			rows := make([][]string, 0, len(cartridges))

			for _, cartridge := range cartridges {
				info := cartridgeInfo{Name: cartridge.Name(), Type: cartridge.Type(), URL: cartridge.URL()}
				infos = append(infos, info)
				rows = append(rows, []string{info.Name, info.Type, orNotAvailable(info.URL)})
			}

			return render(cmd.OutOrStdout(), infos, []string{"Name", "Type", "URL"}, rows)
		}),
	}
}

func newCartridgesAddCommand(domainID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add APP CARTRIDGE",
		Short: "Embed a cartridge",
		Long:  "Embed an add-on cartridge such as a database into an application",
		Args:  cobra.ExactArgs(2),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			cartridge, err := app.AddEmbeddedCartridge(ctx, args[1])
			if err != nil {
				return fmt.Errorf("failed to add cartridge: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %s to application %s\n", cartridge.Name(), app.Name())
			printCreationLog(cmd, cartridge)

			return nil
		}),
	}
}

func newCartridgesRemoveCommand(domainID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove APP CARTRIDGE",
		Short: "Remove an embedded cartridge",
		Long:  "Remove an embedded cartridge from an application",
		Args:  cobra.ExactArgs(2),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			cartridge, err := app.EmbeddedCartridge(ctx, args[1])
			if err != nil {
				return fmt.Errorf("failed to get cartridge: %w", err)
			}

			if cartridge == nil {
				return fmt.Errorf("cartridge '%s' in application '%s': %w", args[1], app.Name(), ErrCartridgeNotFound)
			}

			if err := cartridge.Destroy(ctx); err != nil {
				return fmt.Errorf("failed to remove cartridge: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from application %s\n", args[1], app.Name())

			return nil
		}),
	}
}
