package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	oshttp "github.com/fivetwenty-io/openshift-client/internal/http"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

// envelope is the wrapper every broker response body uses.
type envelope struct {
	Type     string             `json:"type"`
	Status   string             `json:"status"`
	Data     json.RawMessage    `json:"data"`
	Messages openshift.Messages `json:"messages"`
}

// result is the typed outcome of a call. Data is nil when the response
// carried no payload; that is distinct from an empty object.
type result[T any] struct {
	Data     *T
	Messages openshift.Messages
	Status   string
}

// HasData reports whether the response carried a payload.
func (r *result[T]) HasData() bool {
	return r != nil && r.Data != nil
}

// unmarshal parses a broker body. An empty body, or a null or missing data
// member, yields a result without data.
func unmarshal[T any](body []byte) (*result[T], error) {
	res := &result[T]{}

	if len(bytes.TrimSpace(body)) == 0 {
		return res, nil
	}

	var env envelope

	err := json.Unmarshal(body, &env)
	if err != nil {
		return nil, fmt.Errorf("parsing response envelope: %w", err)
	}

	res.Messages = env.Messages
	res.Status = env.Status

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return res, nil
	}

	var data T

	err = json.Unmarshal(env.Data, &data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s data: %w", env.Type, err)
	}

	res.Data = &data

	return res, nil
}

// ignored accepts any payload for calls whose response data is not used.
type ignored = json.RawMessage

// callOptions tune a single call.
type callOptions struct {
	bodyOnDelete bool
	timeout      time.Duration
}

type callOption func(*callOptions)

// withBodyOnDelete sends the parameters with a DELETE.
func withBodyOnDelete() callOption {
	return func(o *callOptions) {
		o.bodyOnDelete = true
	}
}

// withTimeout replaces the client timeout for one call. An earlier deadline
// on the caller's context still applies.
func withTimeout(d time.Duration) callOption {
	return func(o *callOptions) {
		o.timeout = d
	}
}

// execute resolves rel in the owner's catalog, validates params and
// dispatches the call, decoding the response data into T.
func execute[T any](ctx context.Context, owner *resource, rel openshift.Relation, params *openshift.Parameters, opts ...callOption) (*result[T], error) {
	link, err := owner.link(ctx, rel)
	if err != nil {
		return nil, err
	}

	return call[T](ctx, owner.service, rel, link, params, opts...)
}

// call validates and dispatches link, decoding the response data into T.
func call[T any](ctx context.Context, service *RestService, rel openshift.Relation, link openshift.Link, params *openshift.Parameters, opts ...callOption) (*result[T], error) {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	if params == nil {
		params = openshift.NewParameters()
	}

	err := openshift.Validate(link, params, openshift.WithStrictOptions(service.strict))
	if err != nil {
		var domainErr *openshift.Error
		if errors.As(err, &domainErr) {
			domainErr.Relation = rel
		}

		return nil, err
	}

	if o.timeout > 0 {
		ctx = oshttp.WithRequestTimeout(ctx, o.timeout)
	}

	resp, err := service.Dispatch(ctx, rel, link, params, o.bodyOnDelete)
	if err != nil {
		return nil, err
	}

	res, err := unmarshal[T](resp.Body)
	if err != nil {
		return nil, &openshift.Error{
			Kind:     openshift.KindEndpoint,
			Message:  fmt.Sprintf("unexpected response for link %q", rel),
			Relation: rel,
			Href:     service.ResolveURL(link.Href),
			Cause:    err,
		}
	}

	return res, nil
}
