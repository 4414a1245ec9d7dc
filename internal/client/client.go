package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/openshift-client/internal/auth"
	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/internal/http"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

// Static errors for err113 compliance.
var (
	ErrInvalidProxyURL = errors.New("invalid proxy URL")
)

// createCredentials picks the credentials based on config.
func createCredentials(config *openshift.Config) auth.Credentials {
	if config.Token != "" {
		return auth.NewBearerCredentials(config.Token)
	}

	if config.Username != "" || config.Password != "" {
		return &auth.BasicCredentials{Username: config.Username, Password: config.Password}
	}

	return nil // No authentication
}

// userAgent combines the client id and the configured or default agent.
func userAgent(config *openshift.Config) string {
	agent := config.UserAgent
	if agent == "" {
		agent = constants.DefaultUserAgent
	}

	if config.ClientID != "" {
		agent = config.ClientID + " " + agent
	}

	return agent
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *openshift.Config) ([]http.Option, error) {
	httpOpts := []http.Option{http.WithUserAgent(userAgent(config))}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.ProxyURL != "" {
		proxy, err := url.Parse(config.ProxyURL)
		if err != nil || proxy.Host == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxyURL, config.ProxyURL)
		}

		httpOpts = append(httpOpts, http.WithProxy(proxy))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts, nil
}

// New creates a connection to the broker described by config. The root link
// catalog is fetched on first use, or right away with FetchLinksOnInit.
func New(ctx context.Context, config *openshift.Config) (*Connection, error) {
	if config == nil {
		return nil, openshift.ErrConfigRequired
	}

	if strings.TrimSpace(config.Server) == "" {
		return nil, openshift.ErrServerRequired
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.Server, createCredentials(config), httpOpts...)

	var logger openshift.Logger = noopLogger{}
	if config.Logger != nil {
		logger = config.Logger
	}

	service := NewRestService(httpClient, config.Server, logger, config.StrictParameterOptions)

	rt := &runtime{
		service:  service,
		logger:   logger,
		notifier: config.Notifier,
		poller:   NewPoller(httpClient, constants.HealthPollInterval),
	}

	conn := newConnection(rt, config.Server)

	logger.Debug("Connection created", map[string]interface{}{
		"server":       config.Server,
		"service_root": service.ServiceRoot(),
	})

	if config.FetchLinksOnInit {
		_, err = conn.Links(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching API links: %w", err)
		}
	}

	return conn, nil
}

// loggerAdapter adapts openshift.Logger to http.Logger.
type loggerAdapter struct {
	logger openshift.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
