package client

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

var domainExpected = []openshift.Relation{
	openshift.RelGet,
	openshift.RelListApplications,
	openshift.RelAddApplication,
	openshift.RelUpdate,
	openshift.RelDelete,
}

// Domain is a namespace owning applications.
type Domain struct {
	resource
	conn *Connection

	mu     sync.RWMutex
	id     string
	suffix string

	applications *lazyCollection[*Application]
}

var _ openshift.Domain = (*Domain)(nil)

func newDomain(rt *runtime, conn *Connection, dto domainDTO, messages openshift.Messages) *Domain {
	d := &Domain{
		conn:   conn,
		id:     dto.ID,
		suffix: dto.Suffix,
	}
	d.resource = newResource(rt, dto.Links, messages, func() string { return "domain " + d.ID() })
	d.applications = newLazyCollection(d.loadApplications)
	d.logMissingRelations(d.catalog.current(), domainExpected)

	return d
}

// ID returns the namespace.
func (d *Domain) ID() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.id
}

// Suffix returns the DNS suffix application hosts are created under.
func (d *Domain) Suffix() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.suffix
}

func (d *Domain) apply(dto domainDTO) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if dto.ID != "" {
		d.id = dto.ID
	}

	if dto.Suffix != "" {
		d.suffix = dto.Suffix
	}
}

// Rename changes the namespace.
func (d *Domain) Rename(ctx context.Context, id string) error {
	if id == "" {
		return openshift.NewValidationError(openshift.ErrNameRequired, "domain id is required")
	}

	old := d.ID()
	params := openshift.NewParameters().Add(constants.ParamID, id)

	res, err := execute[domainDTO](ctx, &d.resource, openshift.RelUpdate, params)
	if err != nil {
		return err
	}

	dto := domainDTO{ID: id}
	if res.HasData() {
		dto = *res.Data
	}

	d.apply(dto)

	if dto.Links != nil {
		d.catalog.replace(dto.Links)
	}

	d.runtime.notify(ctx, openshift.Event{
		Resource: openshift.ResourceDomain,
		Action:   openshift.ActionUpdated,
		Name:     d.ID(),
		Detail:   "renamed from " + old,
	})

	return nil
}

// Destroy deletes the domain. force also deletes its applications.
func (d *Domain) Destroy(ctx context.Context, force bool) error {
	err := d.conn.domains.remove(
		func(other *Domain) bool { return other == d },
		func() error {
			if !force {
				_, err := execute[ignored](ctx, &d.resource, openshift.RelDelete, nil)

				return err
			}

			params := openshift.NewParameters().Add(constants.ParamForce, true)
			_, err := execute[ignored](ctx, &d.resource, openshift.RelDelete, params, withBodyOnDelete())

			return err
		})
	if err != nil {
		return err
	}

	d.applications.invalidate()
	d.notify(ctx, openshift.ResourceDomain, openshift.ActionDestroyed, d.ID(), "")

	return nil
}

func (d *Domain) loadApplications(ctx context.Context) ([]*Application, error) {
	res, err := execute[[]applicationDTO](ctx, &d.resource, openshift.RelListApplications, nil)
	if err != nil {
		return nil, err
	}

	if !res.HasData() {
		return []*Application{}, nil
	}

	apps := make([]*Application, 0, len(*res.Data))
	for _, dto := range *res.Data {
		apps = append(apps, newApplication(d.runtime, d, dto, nil))
	}

	d.runtime.logger.Debug("Applications loaded", map[string]interface{}{
		"domain": d.ID(),
		"count":  len(apps),
	})

	return apps, nil
}

// Applications returns the domain's applications, loading them on first use.
func (d *Domain) Applications(ctx context.Context) ([]openshift.Application, error) {
	apps, err := d.applications.list(ctx)
	if err != nil {
		return nil, err
	}

	return asApplications(apps), nil
}

// Application returns the application with the given name, or nil.
func (d *Domain) Application(ctx context.Context, name string) (openshift.Application, error) {
	app, found, err := d.applications.find(ctx, func(a *Application) bool { return a.Name() == name })
	if err != nil || !found {
		return nil, err
	}

	return app, nil
}

// HasApplication reports whether an application with the given name exists.
func (d *Domain) HasApplication(ctx context.Context, name string) (bool, error) {
	app, err := d.Application(ctx, name)

	return app != nil, err
}

// ApplicationsByCartridge returns the applications running on cartridge.
func (d *Domain) ApplicationsByCartridge(ctx context.Context, cartridge string) ([]openshift.Application, error) {
	apps, err := d.applications.list(ctx)
	if err != nil {
		return nil, err
	}

	matching := make([]*Application, 0, len(apps))

	for _, app := range apps {
		if app.Cartridge() == cartridge {
			matching = append(matching, app)
		}
	}

	return asApplications(matching), nil
}

// CreateApplication creates an application. Scale and gear profile are sent
// only when given, after the name and cartridge.
func (d *Domain) CreateApplication(ctx context.Context, name, cartridge string, opts ...openshift.CreateApplicationOption) (openshift.Application, error) {
	if name == "" {
		return nil, openshift.NewValidationError(openshift.ErrNameRequired, "application name is required")
	}

	if cartridge == "" {
		return nil, openshift.NewValidationError(openshift.ErrTypeRequired, "application cartridge is required")
	}

	var options openshift.CreateApplicationOptions
	for _, opt := range opts {
		opt(&options)
	}

	app, err := d.applications.create(ctx,
		func(a *Application) bool { return a.Name() == name },
		func() error {
			return openshift.NewConflictError("application %q already exists in domain %q", name, d.ID())
		},
		func() (*Application, error) {
			params := applicationParameters(name, cartridge, options)

			res, err := execute[applicationDTO](ctx, &d.resource, openshift.RelAddApplication, params,
				withTimeout(constants.ExtendedHTTPTimeout))
			if err != nil {
				return nil, err
			}

			dto := applicationDTO{Name: name, Framework: cartridge}
			if res.HasData() {
				dto = *res.Data
			}

			return newApplication(d.runtime, d, dto, res.Messages), nil
		})
	if err != nil {
		return nil, err
	}

	app.notify(ctx, openshift.ResourceApplication, openshift.ActionCreated, name, d.ID())

	return app, nil
}

// applicationParameters assembles the create call's parameters in a fixed order.
func applicationParameters(name, cartridge string, options openshift.CreateApplicationOptions) *openshift.Parameters {
	return openshift.NewParameters().
		Add(constants.ParamName, name).
		Add(constants.ParamCartridge, cartridge).
		AddOptional(constants.ParamScale, options.Scale).
		AddOptional(constants.ParamGearProfile, options.GearProfile)
}

// AvailableCartridgeNames lists the cartridges an application can be created with.
func (d *Domain) AvailableCartridgeNames(ctx context.Context) ([]string, error) {
	link, err := d.link(ctx, openshift.RelAddApplication)
	if err != nil {
		return nil, err
	}

	param, ok := link.RequiredParam(constants.ParamCartridge)
	if !ok {
		return []string{}, nil
	}

	return append([]string{}, param.ValidOptions...), nil
}

// AvailableGearProfiles lists the gear profiles an application can be created with.
func (d *Domain) AvailableGearProfiles(ctx context.Context) ([]openshift.GearProfile, error) {
	link, err := d.link(ctx, openshift.RelAddApplication)
	if err != nil {
		return nil, err
	}

	profiles := []openshift.GearProfile{}

	param, ok := link.OptionalParam(constants.ParamGearProfile)
	if !ok {
		return profiles, nil
	}

	for _, option := range param.ValidOptions {
		profiles = append(profiles, openshift.GearProfile(option))
	}

	return profiles, nil
}

// Refresh reloads the domain and discards the cached applications.
func (d *Domain) Refresh(ctx context.Context) error {
	res, err := execute[domainDTO](ctx, &d.resource, openshift.RelGet, nil)
	if err != nil {
		return err
	}

	if res.HasData() {
		d.apply(*res.Data)
		d.catalog.replace(resolvedLinks(res.Data.Links))
	}

	d.applications.invalidate()

	return nil
}

func asApplications(apps []*Application) []openshift.Application {
	out := make([]openshift.Application, 0, len(apps))
	for _, app := range apps {
		out = append(out, app)
	}

	return out
}
