package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/openshift-client/pkg/osclient"
	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var savePassword bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to an OpenShift broker",
		Long: `Verify credentials against an OpenShift broker and remember the server
and login in the configuration file. The password is only stored with
--save-password; otherwise it is prompted for or read from OSHIFT_PASSWORD
and any stored password is removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			if config.Server == "" {
				return ErrServerRequired
			}

			config.Server = osclient.NormalizeServer(config.Server)

			if config.Token == "" {
				if config.Username == "" {
					username, err := promptLine(cmd, "Login: ")
					if err != nil {
						return err
					}

					config.Username = username
				}

				if config.Password == "" {
					password, err := promptPassword("Password: ")
					if err != nil {
						return err
					}

					config.Password = password
				}
			}

			clientConfig, err := clientConfigFor(config)
			if err != nil {
				return err
			}

			clientConfig.FetchLinksOnInit = true

			ctx := context.Background()

			conn, err := osclient.New(ctx, clientConfig)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			user, err := conn.User(ctx)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			if !savePassword {
				config.Password = ""
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s\n", config.Server, user.Login())

			return nil
		},
	}

	cmd.Flags().BoolVar(&savePassword, "save-password", false, "store the password in the configuration file")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget stored credentials",
		Long:  "Remove the stored password and token from the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Password = ""
			config.Token = ""

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated account",
		Long:  "Display the login and gear usage of the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := s.conn.User(ctx)
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			info := struct {
				Server        string `json:"server"         yaml:"server"`
				Login         string `json:"login"          yaml:"login"`
				MaxGears      int    `json:"max_gears"      yaml:"max_gears"`
				ConsumedGears int    `json:"consumed_gears" yaml:"consumed_gears"`
			}{
				Server:        s.conn.Server(),
				Login:         user.Login(),
				MaxGears:      user.MaxGears(),
				ConsumedGears: user.ConsumedGears(),
			}

			rows := [][]string{
				{"Server", info.Server},
				{"Login", info.Login},
				{"Max Gears", strconv.Itoa(info.MaxGears)},
				{"Consumed Gears", strconv.Itoa(info.ConsumedGears)},
			}

			return render(cmd.OutOrStdout(), info, []string{"Property", "Value"}, rows)
		},
	}
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	_, _ = fmt.Fprint(os.Stderr, prompt)

	reader := bufio.NewReader(cmd.InOrStdin())

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}
