package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/internal/events"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
	"github.com/fivetwenty-io/openshift-client/pkg/osclient"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Yes          = "yes"
	No           = "no"
)

// Common static errors used throughout the commands package.
var (
	ErrServerRequired      = errors.New("broker server is required (use --server or 'oshift login')")
	ErrNoDomain            = errors.New("the account has no domain yet (use 'oshift domains create')")
	ErrDomainNotFound      = errors.New("domain not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrCartridgeNotFound   = errors.New("cartridge not found")
	ErrKeyNotFound         = errors.New("SSH key not found")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
	ErrNotAccessible       = errors.New("application did not become accessible")
	ErrInvalidPublicKey    = errors.New("invalid SSH public key")
)

// connectFunc builds the connection commands talk to. Tests replace it.
var connectFunc = connect

// session is an open connection plus whatever must be released with it.
type session struct {
	conn    openshift.Connection
	closers []func()
}

func (s *session) Close() {
	for _, closeFn := range s.closers {
		closeFn()
	}
}

// openSession creates a connection from the loaded configuration.
func openSession(ctx context.Context) (*session, error) {
	return connectFunc(ctx, loadConfig())
}

func connect(ctx context.Context, config *Config) (*session, error) {
	if config.Server == "" {
		return nil, ErrServerRequired
	}

	clientConfig, err := clientConfigFor(config)
	if err != nil {
		return nil, err
	}

	s := &session{}

	notifiers := events.Fanout{}
	if config.Verbose {
		notifiers = append(notifiers, &events.LogNotifier{Logger: clientConfig.Logger})
	}

	if config.NATSURL != "" {
		natsNotifier, err := events.Connect(config.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}

		s.closers = append(s.closers, natsNotifier.Close)
		notifiers = append(notifiers, natsNotifier)
	}

	if len(notifiers) > 0 {
		clientConfig.Notifier = notifiers
	}

	conn, err := osclient.New(ctx, clientConfig)
	if err != nil {
		s.Close()

		return nil, err
	}

	s.conn = conn

	return s, nil
}

// clientConfigFor maps the CLI configuration onto a client configuration.
func clientConfigFor(config *Config) (*openshift.Config, error) {
	clientConfig := &openshift.Config{
		Server:                 config.Server,
		Username:               config.Username,
		Password:               config.Password,
		Token:                  config.Token,
		ProxyURL:               config.Proxy,
		StrictParameterOptions: config.Strict,
		Debug:                  config.Verbose,
		Logger:                 newCLILogger(os.Stderr, config.Verbose),
		ClientID:               "oshift",
	}

	if config.Timeout != "" {
		timeout, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", config.Timeout, err)
		}

		clientConfig.HTTPTimeout = timeout
	}

	if clientConfig.Token == "" && clientConfig.Username != "" && clientConfig.Password == "" {
		password, err := promptPassword(fmt.Sprintf("Password for %s: ", clientConfig.Username))
		if err != nil {
			return nil, err
		}

		clientConfig.Password = password
	}

	return clientConfig, nil
}

// promptPassword reads a password from the terminal without echo. Without a
// terminal the password stays empty and the broker rejects the request.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}

	_, _ = fmt.Fprint(os.Stderr, prompt)

	password, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(password), nil
}

// resolveDomain returns the domain with the given id, or the default domain
// when id is empty.
func resolveDomain(ctx context.Context, conn openshift.Connection, id string) (openshift.Domain, error) {
	if id == "" {
		domain, err := conn.DefaultDomain(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get default domain: %w", err)
		}

		if domain == nil {
			return nil, ErrNoDomain
		}

		return domain, nil
	}

	domain, err := conn.Domain(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}

	if domain == nil {
		return nil, fmt.Errorf("domain '%s': %w", id, ErrDomainNotFound)
	}

	return domain, nil
}

func resolveApplication(ctx context.Context, conn openshift.Connection, domainID, name string) (openshift.Application, error) {
	domain, err := resolveDomain(ctx, conn, domainID)
	if err != nil {
		return nil, err
	}

	app, err := domain.Application(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	if app == nil {
		return nil, fmt.Errorf("application '%s' in domain '%s': %w", name, domain.ID(), ErrApplicationNotFound)
	}

	return app, nil
}

// render writes value as JSON or YAML, or the rows as a table.
func render(w io.Writer, value interface{}, header []string, rows [][]string) error {
	switch viper.GetString("output") {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		return encoder.Encode(value)
	default:
		cells := make([]any, len(header))
		for i, title := range header {
			cells[i] = title
		}

		table := tablewriter.NewWriter(w)
		table.Header(cells...)

		for _, row := range rows {
			_ = table.Append(row)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// printCreationLog shows the messages the broker attached to a new resource.
func printCreationLog(cmd *cobra.Command, resource openshift.Resource) {
	output := viper.GetString("output")
	if !resource.HasCreationLog() || (output != "" && output != constants.FormatTable) {
		return
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), resource.CreationLog())
}

func yesNo(value bool) string {
	if value {
		return Yes
	}

	return No
}

func orNotAvailable(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

// cliLogger writes client log lines to the terminal. Debug and info lines
// only show in verbose mode.
type cliLogger struct {
	log *logrus.Logger
}

func newCLILogger(w io.Writer, verbose bool) *cliLogger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	log.SetLevel(logrus.WarnLevel)

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return &cliLogger{log: log}
}

func (l *cliLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *cliLogger) Info(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *cliLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *cliLogger) Error(msg string, fields map[string]interface{}) {
	l.log.WithFields(logrus.Fields(fields)).Error(msg)
}
