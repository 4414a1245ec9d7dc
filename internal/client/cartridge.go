package client

import (
	"context"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

// EmbeddedCartridge is an add-on such as a database embedded in an application.
type EmbeddedCartridge struct {
	resource
	application *Application

	name          string
	cartridgeType string
	url           string
}

var _ openshift.EmbeddedCartridge = (*EmbeddedCartridge)(nil)

func newEmbeddedCartridge(rt *runtime, app *Application, dto cartridgeDTO, messages openshift.Messages) *EmbeddedCartridge {
	c := &EmbeddedCartridge{
		application:   app,
		name:          dto.Name,
		cartridgeType: dto.Type,
		url:           dto.URL,
	}
	c.resource = newResource(rt, dto.Links, messages, func() string { return "cartridge " + c.name })

	return c
}

// Name returns the cartridge name, e.g. "mysql-5.1".
func (c *EmbeddedCartridge) Name() string { return c.name }

// Type returns the cartridge type as reported by the broker.
func (c *EmbeddedCartridge) Type() string { return c.cartridgeType }

// URL returns the connection address, when the cartridge exposes one.
func (c *EmbeddedCartridge) URL() string { return c.url }

// Application returns the application the cartridge is embedded in.
func (c *EmbeddedCartridge) Application() openshift.Application {
	return c.application
}

// Destroy removes the cartridge from its application. The parameters travel
// in the DELETE body.
func (c *EmbeddedCartridge) Destroy(ctx context.Context) error {
	err := c.application.cartridges.remove(
		func(other *EmbeddedCartridge) bool { return other == c },
		func() error {
			params := openshift.NewParameters().Add(constants.ParamName, c.name)
			_, err := execute[ignored](ctx, &c.resource, openshift.RelDelete, params, withBodyOnDelete())

			return err
		})
	if err != nil {
		return err
	}

	c.notify(ctx, openshift.ResourceCartridge, openshift.ActionDestroyed, c.name, c.application.Name())

	return nil
}
