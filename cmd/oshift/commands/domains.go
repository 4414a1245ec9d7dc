package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

type domainInfo struct {
	ID     string `json:"id"     yaml:"id"`
	Suffix string `json:"suffix" yaml:"suffix"`
}

// NewDomainsCommand creates the domains command group.
func NewDomainsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "domains",
		Aliases: []string{"domain"},
		Short:   "Manage domains",
		Long:    "List and manage the domains (namespaces) of the account",
	}

	cmd.AddCommand(newDomainsListCommand())
	cmd.AddCommand(newDomainsCreateCommand())
	cmd.AddCommand(newDomainsRenameCommand())
	cmd.AddCommand(newDomainsDeleteCommand())

	return cmd
}

func newDomainsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List domains",
		Long:  "List all domains of the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			domains, err := s.conn.Domains(ctx)
			if err != nil {
				return fmt.Errorf("failed to list domains: %w", err)
			}

			infos := make([]domainInfo, 0, len(domains))
			rows := make([][]string, 0, len(domains))

			for _, domain := range domains {
				infos = append(infos, domainInfo{ID: domain.ID(), Suffix: domain.Suffix()})
				rows = append(rows, []string{domain.ID(), domain.Suffix()})
			}

			return render(cmd.OutOrStdout(), infos, []string{"ID", "Suffix"}, rows)
		},
	}
}

func newDomainsCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create ID",
		Short: "Create a domain",
		Long:  "Create a new domain with the given id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			domain, err := s.conn.CreateDomain(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to create domain: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created domain %s\n", domain.ID())
			printCreationLog(cmd, domain)

			return nil
		},
	}
}

func newDomainsRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NEW_ID",
		Short: "Rename a domain",
		Long:  "Change the id of an existing domain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			domain, err := resolveDomain(ctx, s.conn, args[0])
			if err != nil {
				return err
			}

			if err := domain.Rename(ctx, args[1]); err != nil {
				return fmt.Errorf("failed to rename domain: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Renamed domain %s to %s\n", args[0], domain.ID())

			return nil
		},
	}
}

func newDomainsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a domain",
		Long:  "Delete a domain. With --force the domain's applications are deleted too.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			domain, err := resolveDomain(ctx, s.conn, args[0])
			if err != nil {
				return err
			}

			if err := domain.Destroy(ctx, force); err != nil {
				return fmt.Errorf("failed to delete domain: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted domain %s\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "also delete the domain's applications")

	return cmd
}
