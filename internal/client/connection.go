package client

import (
	"context"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

var (
	// bootstrapLink addresses the root link catalog.
	bootstrapLink = openshift.Link{
		Rel:    "Get API",
		Href:   constants.APIEntryPath,
		Method: openshift.MethodGet,
	}

	rootRequired = []openshift.Relation{openshift.RelListDomains, openshift.RelAddDomain}
	rootExpected = []openshift.Relation{openshift.RelGetUser}
)

// Connection is the root resource. Its catalog comes from the API entry point.
type Connection struct {
	resource
	server  string
	domains *lazyCollection[*Domain]
	user    *lazyCollection[*User]
}

var _ openshift.Connection = (*Connection)(nil)

func newConnection(rt *runtime, server string) *Connection {
	c := &Connection{server: server}
	c.resource = newResource(rt, nil, nil, func() string { return "API " + rt.service.ServiceRoot() })
	c.catalog.replace(nil)
	c.catalog.resolver = c.fetchRoot
	c.domains = newLazyCollection(c.loadDomains)
	c.user = newLazyCollection(c.loadUser)

	return c
}

// fetchRoot reads the root catalog and checks the relations the client relies on.
func (c *Connection) fetchRoot(ctx context.Context) (openshift.Links, error) {
	res, err := call[openshift.Links](ctx, c.service, openshift.RelAPI, bootstrapLink, nil)
	if err != nil {
		return nil, err
	}

	links := openshift.Links{}
	if res.HasData() {
		links = *res.Data
	}

	err = c.checkRelations(links, rootRequired, rootExpected)
	if err != nil {
		return nil, err
	}

	c.runtime.logger.Debug("Root links resolved", map[string]interface{}{
		"links": len(links),
	})

	return links, nil
}

// Server returns the broker address.
func (c *Connection) Server() string {
	return c.server
}

// Links returns the root catalog, fetching it on first use.
func (c *Connection) Links(ctx context.Context) (openshift.Links, error) {
	links, err := c.catalog.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return links.Clone(), nil
}

func (c *Connection) loadUser(ctx context.Context) ([]*User, error) {
	res, err := execute[userDTO](ctx, &c.resource, openshift.RelGetUser, nil)
	if err != nil {
		return nil, err
	}

	if !res.HasData() {
		return []*User{}, nil
	}

	return []*User{newUser(c.runtime, *res.Data)}, nil
}

// User returns the authenticated account.
func (c *Connection) User(ctx context.Context) (openshift.User, error) {
	users, err := c.user.list(ctx)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, &openshift.Error{
			Kind:     openshift.KindEndpoint,
			Message:  "broker returned no user",
			Relation: openshift.RelGetUser,
		}
	}

	return users[0], nil
}

func (c *Connection) loadDomains(ctx context.Context) ([]*Domain, error) {
	res, err := execute[[]domainDTO](ctx, &c.resource, openshift.RelListDomains, nil)
	if err != nil {
		return nil, err
	}

	if !res.HasData() {
		return []*Domain{}, nil
	}

	domains := make([]*Domain, 0, len(*res.Data))
	for _, dto := range *res.Data {
		domains = append(domains, newDomain(c.runtime, c, dto, nil))
	}

	c.runtime.logger.Debug("Domains loaded", map[string]interface{}{"count": len(domains)})

	return domains, nil
}

// Domains returns the account's domains, loading them on first use.
func (c *Connection) Domains(ctx context.Context) ([]openshift.Domain, error) {
	domains, err := c.domains.list(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]openshift.Domain, 0, len(domains))
	for _, d := range domains {
		out = append(out, d)
	}

	return out, nil
}

// Domain returns the domain with the given id, or nil.
func (c *Connection) Domain(ctx context.Context, id string) (openshift.Domain, error) {
	d, found, err := c.domains.find(ctx, func(d *Domain) bool { return d.ID() == id })
	if err != nil || !found {
		return nil, err
	}

	return d, nil
}

// DefaultDomain returns the first domain, or nil when there is none.
func (c *Connection) DefaultDomain(ctx context.Context) (openshift.Domain, error) {
	domains, err := c.domains.list(ctx)
	if err != nil || len(domains) == 0 {
		return nil, err
	}

	return domains[0], nil
}

// HasDomain reports whether a domain with the given id exists.
func (c *Connection) HasDomain(ctx context.Context, id string) (bool, error) {
	d, err := c.Domain(ctx, id)

	return d != nil, err
}

// CreateDomain creates a domain with the given namespace id.
func (c *Connection) CreateDomain(ctx context.Context, id string) (openshift.Domain, error) {
	if id == "" {
		return nil, openshift.NewValidationError(openshift.ErrNameRequired, "domain id is required")
	}

	d, err := c.domains.create(ctx,
		func(d *Domain) bool { return d.ID() == id },
		func() error { return openshift.NewConflictError("domain %q already exists", id) },
		func() (*Domain, error) {
			params := openshift.NewParameters().Add(constants.ParamID, id)

			res, err := execute[domainDTO](ctx, &c.resource, openshift.RelAddDomain, params)
			if err != nil {
				return nil, err
			}

			dto := domainDTO{ID: id}
			if res.HasData() {
				dto = *res.Data
			}

			return newDomain(c.runtime, c, dto, res.Messages), nil
		})
	if err != nil {
		return nil, err
	}

	d.notify(ctx, openshift.ResourceDomain, openshift.ActionCreated, d.ID(), "")

	return d, nil
}

// Refresh discards the root catalog, the user and the domains. They are
// fetched again on next use.
func (c *Connection) Refresh(_ context.Context) error {
	c.catalog.replace(nil)
	c.domains.invalidate()
	c.user.invalidate()

	return nil
}
