package openshift

import (
	"context"
	"time"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// EventAction is what happened to a resource.
type EventAction string

// Event actions.
const (
	ActionCreated   EventAction = "created"
	ActionUpdated   EventAction = "updated"
	ActionDestroyed EventAction = "destroyed"
)

// ResourceKind names the type of resource an event refers to.
type ResourceKind string

// Resource kinds.
const (
	ResourceDomain      ResourceKind = "domain"
	ResourceApplication ResourceKind = "application"
	ResourceCartridge   ResourceKind = "cartridge"
	ResourceSSHKey      ResourceKind = "key"
)

// Event describes a successful lifecycle change made through the client.
type Event struct {
	Resource ResourceKind `json:"resource"         yaml:"resource"`
	Action   EventAction  `json:"action"           yaml:"action"`
	Name     string       `json:"name"             yaml:"name"`
	Parent   string       `json:"parent,omitempty" yaml:"parent,omitempty"`
	Detail   string       `json:"detail,omitempty" yaml:"detail,omitempty"`
	Time     time.Time    `json:"time"             yaml:"time"`
}

// Notifier receives lifecycle events. Notification failures are logged and
// never fail the operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Config represents client configuration for building a Connection.
//
// # Authentication
//
// Token takes precedence over Username and Password. With neither, requests
// are sent anonymously and the broker usually answers 401, reported as an
// invalid credentials error.
type Config struct {
	// Server: base URL of the broker (e.g., "https://openshift.example.com").
	// osclient.New trims a trailing slash and adds "https://" if no scheme
	// is present.
	Server string

	// Username and Password are sent with HTTP basic authentication.
	Username string
	Password string
	// Token: bearer token sent instead of basic authentication.
	Token string

	// Optional configurations
	// ProxyURL: HTTP proxy used for every request. Empty means the
	// environment's proxy settings.
	ProxyURL string
	// HTTPTimeout: per request timeout. Requests that exceed it fail with a
	// timeout error.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries of GET requests on transient
	// failures (>=500, 429 and connection errors). Mutating requests are
	// never retried.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// ClientID: identifies the calling tool; prefixed to the User-Agent.
	ClientID string
	// StrictParameterOptions: reject parameter values outside the valid
	// options a link declares, before sending the request.
	StrictParameterOptions bool
	// Notifier: optional receiver of lifecycle events.
	Notifier Notifier
	// FetchLinksOnInit: when true, the root link catalog is fetched while
	// connecting, so bad credentials surface immediately.
	FetchLinksOnInit bool
}
