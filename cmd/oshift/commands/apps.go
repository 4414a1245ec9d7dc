package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
	"github.com/spf13/cobra"
)

type appInfo struct {
	Name           string   `json:"name"                      yaml:"name"`
	UUID           string   `json:"uuid"                      yaml:"uuid"`
	Domain         string   `json:"domain"                    yaml:"domain"`
	Cartridge      string   `json:"cartridge"                 yaml:"cartridge"`
	Scalable       bool     `json:"scalable"                  yaml:"scalable"`
	GearProfile    string   `json:"gear_profile,omitempty"    yaml:"gear_profile,omitempty"`
	ApplicationURL string   `json:"application_url,omitempty" yaml:"application_url,omitempty"`
	GitURL         string   `json:"git_url,omitempty"         yaml:"git_url,omitempty"`
	Aliases        []string `json:"aliases,omitempty"         yaml:"aliases,omitempty"`
	CreatedAt      string   `json:"created_at,omitempty"      yaml:"created_at,omitempty"`
}

func newAppInfo(app openshift.Application) appInfo {
	info := appInfo{
		Name:           app.Name(),
		UUID:           app.UUID(),
		Cartridge:      app.Cartridge(),
		Scalable:       app.Scale() == openshift.ScaleEnabled,
		GearProfile:    app.GearProfile().String(),
		ApplicationURL: app.ApplicationURL(),
		GitURL:         app.GitURL(),
		Aliases:        app.Aliases(),
	}

	if domain := app.Domain(); domain != nil {
		info.Domain = domain.ID()
	}

	if created := app.CreationTime(); !created.IsZero() {
		info.CreatedAt = created.Format(time.RFC3339)
	}

	return info
}

// NewAppsCommand creates the apps command group.
func NewAppsCommand() *cobra.Command {
	var domainID string

	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"app", "applications"},
		Short:   "Manage applications",
		Long:    "List and manage the applications of a domain. Without --domain the first domain of the account is used.",
	}

	cmd.PersistentFlags().StringVarP(&domainID, "domain", "d", "", "domain of the application")

	cmd.AddCommand(newAppsListCommand(&domainID))
	cmd.AddCommand(newAppsShowCommand(&domainID))
	cmd.AddCommand(newAppsCreateCommand(&domainID))
	cmd.AddCommand(newAppsDeleteCommand(&domainID))
	cmd.AddCommand(newAppsStartCommand(&domainID))
	cmd.AddCommand(newAppsStopCommand(&domainID))
	cmd.AddCommand(newAppsLifecycleCommand(&domainID, "restart", "Restart an application", openshift.Application.Restart))
	cmd.AddCommand(newAppsLifecycleCommand(&domainID, "scale-up", "Add a gear to a scalable application", openshift.Application.ScaleUp))
	cmd.AddCommand(newAppsLifecycleCommand(&domainID, "scale-down", "Remove a gear from a scalable application", openshift.Application.ScaleDown))
	cmd.AddCommand(newAppsAliasCommand(&domainID))
	cmd.AddCommand(newAppsGearsCommand(&domainID))
	cmd.AddCommand(newAppsWaitCommand(&domainID))
	cmd.AddCommand(newAppsAvailableCommand(&domainID))

	return cmd
}

func newAppsListCommand(domainID *string) *cobra.Command {
	var cartridge string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications",
		Long:  "List the applications of a domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			domain, err := resolveDomain(ctx, s.conn, *domainID)
			if err != nil {
				return err
			}

			var apps []openshift.Application
			if cartridge != "" {
				apps, err = domain.ApplicationsByCartridge(ctx, cartridge)
			} else {
				apps, err = domain.Applications(ctx)
			}

			if err != nil {
				return fmt.Errorf("failed to list applications: %w", err)
			}

			infos := make([]appInfo, 0, len(apps))
			rows := make([][]string, 0, len(apps))

			for _, app := range apps {
				info := newAppInfo(app)
				infos = append(infos, info)
				rows = append(rows, []string{info.Name, info.Cartridge, yesNo(info.Scalable), orNotAvailable(info.ApplicationURL)})
			}

			return render(cmd.OutOrStdout(), infos, []string{"Name", "Cartridge", "Scalable", "URL"}, rows)
		},
	}

	cmd.Flags().StringVar(&cartridge, "cartridge", "", "only list applications running this framework cartridge")

	return cmd
}

func newAppsShowCommand(domainID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show application details",
		Long:  "Display the details of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			app, err := resolveApplication(ctx, s.conn, *domainID, args[0])
			if err != nil {
				return err
			}

			info := newAppInfo(app)
			rows := [][]string{
				{"Name", info.Name},
				{"UUID", orNotAvailable(info.UUID)},
				{"Domain", info.Domain},
				{"Cartridge", info.Cartridge},
				{"Scalable", yesNo(info.Scalable)},
				{"Gear Profile", orNotAvailable(info.GearProfile)},
				{"URL", orNotAvailable(info.ApplicationURL)},
				{"Git URL", orNotAvailable(info.GitURL)},
				{"Aliases", orNotAvailable(strings.Join(info.Aliases, ", "))},
				{"Created", orNotAvailable(info.CreatedAt)},
			}

			return render(cmd.OutOrStdout(), info, []string{"Property", "Value"}, rows)
		},
	}
}

func newAppsCreateCommand(domainID *string) *cobra.Command {
	var (
		scale       bool
		gearProfile string
		wait        bool
		waitTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create NAME CARTRIDGE",
		Short: "Create an application",
		Long:  "Create an application running the given framework cartridge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			domain, err := resolveDomain(ctx, s.conn, *domainID)
			if err != nil {
				return err
			}

			var opts []openshift.CreateApplicationOption
			if cmd.Flags().Changed("scale") {
				opts = append(opts, openshift.WithScale(openshift.ParseApplicationScale(scale)))
			}

			if gearProfile != "" {
				opts = append(opts, openshift.WithGearProfile(openshift.GearProfile(gearProfile)))
			}

			app, err := domain.CreateApplication(ctx, args[0], args[1], opts...)
			if err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created application %s at %s\n", app.Name(), orNotAvailable(app.ApplicationURL()))
			printCreationLog(cmd, app)

			if wait {
				return waitForApplication(ctx, cmd, app, waitTimeout)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&scale, "scale", false, "create a scalable application")
	cmd.Flags().StringVar(&gearProfile, "gear-profile", "", "gear size (see 'apps available')")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the application answers its health check")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", constants.DefaultAccessibleTimeout, "how long to wait with --wait")

	return cmd
}

func newAppsDeleteCommand(domainID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an application",
		Long:  "Delete an application and all of its gears",
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			if err := app.Destroy(ctx); err != nil {
				return fmt.Errorf("failed to delete application: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted application %s\n", app.Name())

			return nil
		}),
	}
}

func newAppsStartCommand(domainID *string) *cobra.Command {
	return newAppsLifecycleCommand(domainID, "start", "Start an application", openshift.Application.Start)
}

func newAppsStopCommand(domainID *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "stop NAME",
		Short: "Stop an application",
		Long:  "Stop an application. With --force the processes are killed.",
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			if err := app.Stop(ctx, force); err != nil {
				return fmt.Errorf("failed to stop application: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Application %s: stop done\n", app.Name())

			return nil
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force stop")

	return cmd
}

func newAppsLifecycleCommand(domainID *string, use, short string, action func(openshift.Application, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Long:  short,
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			if err := action(app, ctx); err != nil {
				return fmt.Errorf("failed to %s application: %w", use, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Application %s: %s done\n", app.Name(), use)

			return nil
		}),
	}
}

func newAppsAliasCommand(domainID *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage application aliases",
		Long:  "Add and remove custom DNS names of an application",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME ALIAS",
		Short: "Add an alias",
		Args:  cobra.ExactArgs(2),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			alias := args[1]
			if err := app.AddAlias(ctx, alias); err != nil {
				return fmt.Errorf("failed to add alias: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added alias %s to %s\n", alias, app.Name())

			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove NAME ALIAS",
		Short: "Remove an alias",
		Args:  cobra.ExactArgs(2),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			alias := args[1]
			if err := app.RemoveAlias(ctx, alias); err != nil {
				return fmt.Errorf("failed to remove alias: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed alias %s from %s\n", alias, app.Name())

			return nil
		}),
	})

	return cmd
}

func newAppsGearsCommand(domainID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "gears NAME",
		Short: "List the gears of an application",
		Long:  "List the gears an application runs on with their cartridge components",
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			gears, err := app.Gears(ctx)
			if err != nil {
				return fmt.Errorf("failed to list gears: %w", err)
			}

			var rows [][]string

			for _, gear := range gears {
				for _, component := range gear.Components {
					rows = append(rows, []string{
						gear.UUID,
						component.Name,
						formatPort(component.InternalPort),
						orNotAvailable(component.ProxyHost),
						formatPort(component.ProxyPort),
					})
				}
			}

			return render(cmd.OutOrStdout(), gears, []string{"Gear", "Component", "Internal Port", "Proxy Host", "Proxy Port"}, rows)
		}),
	}
}

func newAppsWaitCommand(domainID *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait NAME",
		Short: "Wait for an application to become accessible",
		Long:  "Probe the health check address of an application until it answers or the timeout elapses",
		Args:  cobra.ExactArgs(1),
		RunE: withApplication(domainID, func(ctx context.Context, cmd *cobra.Command, args []string, app openshift.Application) error {
			return waitForApplication(ctx, cmd, app, timeout)
		}),
	}

	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultAccessibleTimeout, "how long to wait")

	return cmd
}

func newAppsAvailableCommand(domainID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "available",
		Short: "List cartridges and gear profiles offered for new applications",
		Long:  "List the framework cartridges and gear profiles the broker accepts when creating an application",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			domain, err := resolveDomain(ctx, s.conn, *domainID)
			if err != nil {
				return err
			}

			cartridges, err := domain.AvailableCartridgeNames(ctx)
			if err != nil {
				return fmt.Errorf("failed to list cartridges: %w", err)
			}

			profiles, err := domain.AvailableGearProfiles(ctx)
			if err != nil {
				return fmt.Errorf("failed to list gear profiles: %w", err)
			}

			available := struct {
				Cartridges   []string                `json:"cartridges"    yaml:"cartridges"`
				GearProfiles []openshift.GearProfile `json:"gear_profiles" yaml:"gear_profiles"`
			}{Cartridges: cartridges, GearProfiles: profiles}

			rows := make([][]string, 0, len(cartridges)+len(profiles))
			for _, name := range cartridges {
				rows = append(rows, []string{"cartridge", name})
			}

			for _, profile := range profiles {
				rows = append(rows, []string{"gear profile", profile.String()})
			}

			return render(cmd.OutOrStdout(), available, []string{"Kind", "Name"}, rows)
		},
	}
}

// withApplication opens a session and resolves the application named by the
// first argument before running fn.
func withApplication(domainID *string, fn func(context.Context, *cobra.Command, []string, openshift.Application) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		app, err := resolveApplication(ctx, s.conn, *domainID, args[0])
		if err != nil {
			return err
		}

		return fn(ctx, cmd, args, app)
	}
}

func waitForApplication(ctx context.Context, cmd *cobra.Command, app openshift.Application, timeout time.Duration) error {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Waiting up to %s for %s\n", timeout, orNotAvailable(app.HealthCheckURL()))

	if !app.WaitForAccessible(ctx, timeout) {
		return fmt.Errorf("%s after %s: %w", app.Name(), timeout, ErrNotAccessible)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Application %s is accessible\n", app.Name())

	return nil
}

func formatPort(port openshift.FlexString) string {
	if port.Int() == 0 {
		return NotAvailable
	}

	return strconv.Itoa(port.Int())
}
