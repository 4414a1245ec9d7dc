package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Broker addressing.
const (
	// ServicePath is the fixed REST prefix every broker resource lives under.
	ServicePath = "/broker/rest/"

	// APIEntryPath is the well known address of the root link catalog,
	// relative to the service root.
	APIEntryPath = "/api"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "openshift-client-go"

	// MediaTypeJSON is the accepted response media type.
	MediaTypeJSON = "application/json"

	// MediaTypeForm is the content type of request bodies.
	MediaTypeForm = "application/x-www-form-urlencoded"

	// RequestIDHeader carries a per request correlation id.
	RequestIDHeader = "X-Request-Id"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ExtendedHTTPTimeout is used for application creation, which provisions gears.
	ExtendedHTTPTimeout = 3 * time.Minute

	// ProbeTimeout bounds a single health check probe.
	ProbeTimeout = 5 * time.Second
)

// Retry limits.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 500 * time.Millisecond

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Time intervals and delays.
const (
	// HealthPollInterval is the pause between two availability probes.
	HealthPollInterval = 100 * time.Millisecond

	// DefaultAccessibleTimeout is how long the CLI waits for a new application.
	DefaultAccessibleTimeout = 3 * time.Minute
)

// Broker parameter names.
const (
	ParamName        = "name"
	ParamCartridge   = "cartridge"
	ParamScale       = "scale"
	ParamGearProfile = "gear_profile"
	ParamID          = "id"
	ParamForce       = "force"
	ParamType        = "type"
	ParamContent     = "content"
	ParamEvent       = "event"
	ParamAlias       = "alias"
)

// Application events sent through the event relations.
const (
	EventStart       = "start"
	EventStop        = "stop"
	EventForceStop   = "force-stop"
	EventRestart     = "restart"
	EventScaleUp     = "scale-up"
	EventScaleDown   = "scale-down"
	EventAddAlias    = "add-alias"
	EventRemoveAlias = "remove-alias"
)

// Event subjects.
const (
	// EventSubjectPrefix prefixes the subject lifecycle events are published on.
	EventSubjectPrefix = "oshift"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// CLI configuration.
const (
	// ConfigDirName is the directory under the user's home holding the CLI config.
	ConfigDirName = ".oshift"
	// ConfigFileName is the name of the CLI config file.
	ConfigFileName = "config.yml"
	// EnvPrefix prefixes environment variables overriding CLI settings.
	EnvPrefix = "OSHIFT"
	// KeyValueArgumentCount is the number of arguments of a "set KEY VALUE" command.
	KeyValueArgumentCount = 2
)
