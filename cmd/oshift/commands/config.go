package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	Server   string `json:"server,omitempty"   yaml:"server,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Token    string `json:"token,omitempty"    yaml:"token,omitempty"`
	Output   string `json:"output,omitempty"   yaml:"output,omitempty"`
	Verbose  bool   `json:"verbose"            yaml:"verbose"`
	Strict   bool   `json:"strict"             yaml:"strict"`
	Proxy    string `json:"proxy,omitempty"    yaml:"proxy,omitempty"`
	Timeout  string `json:"timeout,omitempty"  yaml:"timeout,omitempty"`
	NATSURL  string `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the oshift configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			masked := *config

			if masked.Password != "" {
				masked.Password = "***"
			}

			if masked.Token != "" {
				masked.Token = "***"
			}

			rows := [][]string{
				{"Server", orNotAvailable(masked.Server)},
				{"Username", orNotAvailable(masked.Username)},
				{"Password", orNotAvailable(masked.Password)},
				{"Token", orNotAvailable(masked.Token)},
				{"Output", orNotAvailable(masked.Output)},
				{"Verbose", strconv.FormatBool(masked.Verbose)},
				{"Strict", strconv.FormatBool(masked.Strict)},
				{"Proxy", orNotAvailable(masked.Proxy)},
				{"Timeout", orNotAvailable(masked.Timeout)},
				{"NATS URL", orNotAvailable(masked.NATSURL)},
			}

			return render(cmd.OutOrStdout(), masked, []string{"Property", "Value"}, rows)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Keys: server, username, password, token, output, verbose, strict, proxy, timeout, nats_url`,
		Args: cobra.ExactArgs(constants.KeyValueArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if err := setConfigValue(config, args[0], args[1]); err != nil {
				return err
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so the default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if err := unsetConfigValue(config, args[0]); err != nil {
				return err
			}

			if err := saveConfigStruct(config); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		Server:   viper.GetString("server"),
		Username: viper.GetString("username"),
		Password: viper.GetString("password"),
		Token:    viper.GetString("token"),
		Output:   viper.GetString("output"),
		Verbose:  viper.GetBool("verbose"),
		Strict:   viper.GetBool("strict"),
		Proxy:    viper.GetString("proxy"),
		Timeout:  viper.GetString("timeout"),
		NATSURL:  viper.GetString("nats_url"),
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "server":
		config.Server = value
	case "username":
		config.Username = value
	case "password":
		config.Password = value
	case "token":
		config.Token = value
	case "output":
		switch value {
		case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			config.Output = value
		default:
			return fmt.Errorf("invalid output format %q (use table, json or yaml)", value)
		}
	case "verbose", "strict":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}

		if key == "verbose" {
			config.Verbose = enabled
		} else {
			config.Strict = enabled
		}
	case "proxy":
		config.Proxy = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}

		config.Timeout = value
	case "nats_url":
		config.NATSURL = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	return nil
}

func unsetConfigValue(config *Config, key string) error {
	switch key {
	case "verbose":
		config.Verbose = false
	case "strict":
		config.Strict = false
	case "output":
		config.Output = ""
	default:
		return setConfigValue(config, key, "")
	}

	return nil
}

// configFilePath returns the file the configuration is saved to.
func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(home, constants.ConfigDirName)

	if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, constants.ConfigFileName), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Keep the running process in sync with the file.
	viper.Set("server", config.Server)
	viper.Set("username", config.Username)
	viper.Set("password", config.Password)
	viper.Set("token", config.Token)
	viper.Set("output", config.Output)
	viper.Set("verbose", config.Verbose)
	viper.Set("strict", config.Strict)
	viper.Set("proxy", config.Proxy)
	viper.Set("timeout", config.Timeout)
	viper.Set("nats_url", config.NATSURL)

	return nil
}
