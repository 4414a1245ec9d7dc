package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/openshift-client/internal/auth"
	"github.com/fivetwenty-io/openshift-client/internal/constants"
	oshttp "github.com/fivetwenty-io/openshift-client/internal/http"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

// RestService resolves links to broker addresses, performs the calls and
// maps transport failures to *openshift.Error values.
type RestService struct {
	httpClient  *oshttp.Client
	baseURL     string
	serviceRoot string
	logger      openshift.Logger
	strict      bool
}

// NewRestService creates a dispatcher for the broker at baseURL.
func NewRestService(httpClient *oshttp.Client, baseURL string, logger openshift.Logger, strict bool) *RestService {
	baseURL = strings.TrimSuffix(baseURL, "/")

	if logger == nil {
		logger = noopLogger{}
	}

	return &RestService{
		httpClient:  httpClient,
		baseURL:     baseURL,
		serviceRoot: baseURL + constants.ServicePath,
		logger:      logger,
		strict:      strict,
	}
}

// ServiceRoot returns the address every relative href is resolved against.
func (s *RestService) ServiceRoot() string {
	return s.serviceRoot
}

// ResolveURL turns a link href into a fully qualified address. Absolute
// hrefs are used as is, hrefs starting with the service path are prefixed
// with the base URL and anything else is relative to the service root.
func (s *RestService) ResolveURL(href string) string {
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}

	if strings.HasPrefix(href, constants.ServicePath) {
		return s.baseURL + href
	}

	return s.serviceRoot + strings.TrimPrefix(href, "/")
}

// Dispatch sends params as link describes. GET and DELETE ignore params
// unless bodyOnDelete asks for the body carrying DELETE.
func (s *RestService) Dispatch(ctx context.Context, rel openshift.Relation, link openshift.Link, params *openshift.Parameters, bodyOnDelete bool) (*oshttp.Response, error) {
	target := s.ResolveURL(link.Href)

	var (
		resp *oshttp.Response
		err  error
	)

	switch link.Method {
	case openshift.MethodGet:
		resp, err = s.httpClient.Get(ctx, target, nil)
	case openshift.MethodPost:
		resp, err = s.httpClient.Post(ctx, target, params.Encode())
	case openshift.MethodPut:
		resp, err = s.httpClient.Put(ctx, target, params.Encode())
	case openshift.MethodDelete:
		if bodyOnDelete {
			resp, err = s.httpClient.DeleteWithBody(ctx, target, params.Encode())
		} else {
			resp, err = s.httpClient.Delete(ctx, target)
		}
	default:
		return nil, &openshift.Error{
			Kind:     openshift.KindRequestValidation,
			Message:  fmt.Sprintf("unsupported method %q for link %q", link.Method, rel),
			Relation: rel,
			Href:     target,
		}
	}

	if err != nil {
		return nil, s.mapError(rel, target, resp, err)
	}

	return resp, nil
}

// mapError translates every transport failure to exactly one error kind.
func (s *RestService) mapError(rel openshift.Relation, target string, resp *oshttp.Response, err error) error {
	domainErr := &openshift.Error{
		Kind:     openshift.KindEndpoint,
		Relation: rel,
		Href:     target,
		Cause:    err,
	}

	var (
		timeoutErr *oshttp.TimeoutError
		statusErr  *oshttp.StatusError
	)

	switch {
	case errors.As(err, &timeoutErr):
		domainErr.Kind = openshift.KindTimeout
		domainErr.Message = fmt.Sprintf("request for link %q timed out", rel)
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrTokenExpired):
		domainErr.Kind = openshift.KindInvalidCredentials
		domainErr.Message = "credentials are not usable"
	case errors.As(err, &statusErr):
		messages := brokerMessages(statusErr.Body)
		domainErr.Kind = kindForStatus(statusErr.StatusCode, messages)
		domainErr.Message = strings.ReplaceAll(messages.Texts(), "\n", "; ")

		if domainErr.Message == "" {
			domainErr.Message = fmt.Sprintf("link %q failed with status %d", rel, statusErr.StatusCode)
		}
	default:
		domainErr.Message = fmt.Sprintf("request for link %q failed", rel)
	}

	fields := map[string]interface{}{
		"relation": string(rel),
		"url":      target,
		"kind":     domainErr.Kind.String(),
	}
	if resp != nil {
		fields["status"] = resp.StatusCode
	}

	s.logger.Debug("Broker request failed", fields)

	return domainErr
}

func kindForStatus(status int, messages openshift.Messages) openshift.ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return openshift.KindInvalidCredentials
	case http.StatusNotFound:
		return openshift.KindNotFound
	case http.StatusConflict:
		return openshift.KindConflict
	case http.StatusUnprocessableEntity:
		if hasDuplicateExitCode(messages) {
			return openshift.KindConflict
		}

		return openshift.KindEndpoint
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return openshift.KindTimeout
	default:
		return openshift.KindEndpoint
	}
}

// Broker exit codes reporting a name or key that is already taken.
const (
	exitApplicationExists = 100
	exitNamespaceExists   = 103
	exitKeyNameExists     = 120
	exitKeyContentExists  = 121
)

func hasDuplicateExitCode(messages openshift.Messages) bool {
	for _, msg := range messages {
		switch msg.ExitCode {
		case exitApplicationExists, exitNamespaceExists, exitKeyNameExists, exitKeyContentExists:
			return true
		}
	}

	return false
}

// brokerMessages decodes the messages of an error body, if any.
func brokerMessages(body []byte) openshift.Messages {
	if len(body) == 0 {
		return nil
	}

	var env struct {
		Messages openshift.Messages `json:"messages"`
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}

	return env.Messages
}
