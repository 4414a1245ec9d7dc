package client

import (
	"context"
	"sync"
	"time"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

var applicationExpected = []openshift.Relation{
	openshift.RelGet,
	openshift.RelDelete,
	openshift.RelStart,
	openshift.RelStop,
	openshift.RelRestart,
	openshift.RelListCartridges,
	openshift.RelAddCartridge,
	openshift.RelGetGears,
}

// Application is an application deployed in a domain.
type Application struct {
	resource
	domain *Domain
	health healthCheck

	mu             sync.RWMutex
	name           string
	uuid           string
	cartridge      string
	creationTime   time.Time
	applicationURL string
	gitURL         string
	scale          openshift.ApplicationScale
	gearProfile    openshift.GearProfile
	aliases        []string

	cartridges *lazyCollection[*EmbeddedCartridge]
	gears      *lazyCollection[openshift.Gear]
}

var _ openshift.Application = (*Application)(nil)

func newApplication(rt *runtime, domain *Domain, dto applicationDTO, messages openshift.Messages) *Application {
	app := &Application{
		domain: domain,
		name:   dto.Name,
		health: healthCheckFor(dto.Framework),
	}
	app.resource = newResource(rt, dto.Links, messages, func() string { return "application " + app.Name() })
	app.apply(dto)
	app.cartridges = newLazyCollection(app.loadCartridges)
	app.gears = newLazyCollection(app.loadGears)
	app.logMissingRelations(app.catalog.current(), applicationExpected)

	return app
}

// apply copies the server computed fields of dto. The name never changes.
func (a *Application) apply(dto applicationDTO) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if dto.UUID != "" {
		a.uuid = dto.UUID
	}

	if dto.Framework != "" {
		a.cartridge = dto.Framework
	}

	if dto.CreationTime != "" {
		created, err := time.Parse(time.RFC3339, dto.CreationTime)
		if err == nil {
			a.creationTime = created
		}
	}

	if dto.ApplicationURL != "" {
		a.applicationURL = dto.ApplicationURL
	}

	if dto.GitURL != "" {
		a.gitURL = dto.GitURL
	}

	a.scale = openshift.ParseApplicationScale(dto.Scalable)

	if dto.GearProfile != "" {
		a.gearProfile = dto.GearProfile
	}

	a.aliases = append([]string{}, dto.Aliases...)
}

// Name returns the application name.
func (a *Application) Name() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.name
}

// UUID returns the server assigned id.
func (a *Application) UUID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.uuid
}

// Cartridge returns the framework cartridge, e.g. "jbossas-7".
func (a *Application) Cartridge() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.cartridge
}

// CreationTime returns when the application was created.
func (a *Application) CreationTime() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.creationTime
}

// ApplicationURL returns the public address.
func (a *Application) ApplicationURL() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.applicationURL
}

// GitURL returns the repository address.
func (a *Application) GitURL() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.gitURL
}

// HealthCheckURL returns the address probed by WaitForAccessible.
func (a *Application) HealthCheckURL() string {
	return a.health.url(a.ApplicationURL())
}

// Scale reports whether the application is scalable.
func (a *Application) Scale() openshift.ApplicationScale {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.scale
}

// GearProfile returns the gear size.
func (a *Application) GearProfile() openshift.GearProfile {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.gearProfile
}

// Aliases returns a copy of the DNS aliases.
func (a *Application) Aliases() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return append([]string{}, a.aliases...)
}

// HasAlias reports whether name is one of the aliases.
func (a *Application) HasAlias(name string) bool {
	for _, alias := range a.Aliases() {
		if alias == name {
			return true
		}
	}

	return false
}

// Domain returns the owning domain.
func (a *Application) Domain() openshift.Domain {
	return a.domain
}

// Start starts the application.
func (a *Application) Start(ctx context.Context) error {
	return a.event(ctx, openshift.RelStart, constants.EventStart, nil)
}

// Stop stops the application, forcefully when force is set.
func (a *Application) Stop(ctx context.Context, force bool) error {
	if force {
		return a.event(ctx, openshift.RelForceStop, constants.EventForceStop, nil)
	}

	return a.event(ctx, openshift.RelStop, constants.EventStop, nil)
}

// Restart restarts the application.
func (a *Application) Restart(ctx context.Context) error {
	return a.event(ctx, openshift.RelRestart, constants.EventRestart, nil)
}

// ScaleUp adds a gear.
func (a *Application) ScaleUp(ctx context.Context) error {
	return a.event(ctx, openshift.RelScaleUp, constants.EventScaleUp, nil)
}

// ScaleDown removes a gear.
func (a *Application) ScaleDown(ctx context.Context) error {
	return a.event(ctx, openshift.RelScaleDown, constants.EventScaleDown, nil)
}

// AddAlias adds a DNS alias.
func (a *Application) AddAlias(ctx context.Context, alias string) error {
	if alias == "" {
		return openshift.NewValidationError(openshift.ErrNameRequired, "alias is required")
	}

	return a.event(ctx, openshift.RelAddAlias, constants.EventAddAlias, func(aliases []string) []string {
		for _, existing := range aliases {
			if existing == alias {
				return aliases
			}
		}

		return append(aliases, alias)
	}, alias)
}

// RemoveAlias removes a DNS alias.
func (a *Application) RemoveAlias(ctx context.Context, alias string) error {
	if alias == "" {
		return openshift.NewValidationError(openshift.ErrNameRequired, "alias is required")
	}

	return a.event(ctx, openshift.RelRemoveAlias, constants.EventRemoveAlias, func(aliases []string) []string {
		kept := make([]string, 0, len(aliases))

		for _, existing := range aliases {
			if existing != alias {
				kept = append(kept, existing)
			}
		}

		return kept
	}, alias)
}

// event posts an application event. When the broker answers with the
// application, its representation replaces the local fields; otherwise
// updateAliases, if set, is applied locally.
func (a *Application) event(ctx context.Context, rel openshift.Relation, name string, updateAliases func([]string) []string, alias ...string) error {
	params := openshift.NewParameters().Add(constants.ParamEvent, name)
	if len(alias) > 0 {
		params.Add(constants.ParamAlias, alias[0])
	}

	res, err := execute[applicationDTO](ctx, &a.resource, rel, params)
	if err != nil {
		return err
	}

	switch {
	case res.HasData():
		a.apply(*res.Data)
	case updateAliases != nil:
		a.mu.Lock()
		a.aliases = updateAliases(append([]string{}, a.aliases...))
		a.mu.Unlock()
	}

	a.runtime.notify(ctx, openshift.Event{
		Resource: openshift.ResourceApplication,
		Action:   openshift.ActionUpdated,
		Name:     a.Name(),
		Parent:   a.domain.ID(),
		Detail:   name,
	})

	return nil
}

func (a *Application) loadCartridges(ctx context.Context) ([]*EmbeddedCartridge, error) {
	res, err := execute[[]cartridgeDTO](ctx, &a.resource, openshift.RelListCartridges, nil)
	if err != nil {
		return nil, err
	}

	if !res.HasData() {
		return []*EmbeddedCartridge{}, nil
	}

	cartridges := make([]*EmbeddedCartridge, 0, len(*res.Data))

	for _, dto := range *res.Data {
		if dto.Type == cartridgeTypeStandalone {
			continue
		}

		cartridges = append(cartridges, newEmbeddedCartridge(a.runtime, a, dto, nil))
	}

	return cartridges, nil
}

// EmbeddedCartridges returns the embedded cartridges, loading them on first use.
func (a *Application) EmbeddedCartridges(ctx context.Context) ([]openshift.EmbeddedCartridge, error) {
	cartridges, err := a.cartridges.list(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]openshift.EmbeddedCartridge, 0, len(cartridges))
	for _, c := range cartridges {
		out = append(out, c)
	}

	return out, nil
}

// EmbeddedCartridge returns the embedded cartridge with the given name, or nil.
func (a *Application) EmbeddedCartridge(ctx context.Context, name string) (openshift.EmbeddedCartridge, error) {
	c, found, err := a.cartridges.find(ctx, func(c *EmbeddedCartridge) bool { return c.Name() == name })
	if err != nil || !found {
		return nil, err
	}

	return c, nil
}

// HasEmbeddedCartridge reports whether a cartridge with the given name is embedded.
func (a *Application) HasEmbeddedCartridge(ctx context.Context, name string) (bool, error) {
	c, err := a.EmbeddedCartridge(ctx, name)

	return c != nil, err
}

// AddEmbeddedCartridge embeds the named cartridge.
func (a *Application) AddEmbeddedCartridge(ctx context.Context, name string) (openshift.EmbeddedCartridge, error) {
	if name == "" {
		return nil, openshift.NewValidationError(openshift.ErrNameRequired, "cartridge name is required")
	}

	c, err := a.cartridges.create(ctx,
		func(c *EmbeddedCartridge) bool { return c.Name() == name },
		func() error {
			return openshift.NewConflictError("cartridge %q is already embedded in application %q", name, a.Name())
		},
		func() (*EmbeddedCartridge, error) {
			params := openshift.NewParameters().Add(constants.ParamName, name)

			res, err := execute[cartridgeDTO](ctx, &a.resource, openshift.RelAddCartridge, params,
				withTimeout(constants.ExtendedHTTPTimeout))
			if err != nil {
				return nil, err
			}

			dto := cartridgeDTO{Name: name}
			if res.HasData() {
				dto = *res.Data
			}

			return newEmbeddedCartridge(a.runtime, a, dto, res.Messages), nil
		})
	if err != nil {
		return nil, err
	}

	c.notify(ctx, openshift.ResourceCartridge, openshift.ActionCreated, name, a.Name())

	return c, nil
}

func (a *Application) loadGears(ctx context.Context) ([]openshift.Gear, error) {
	res, err := execute[[]openshift.Gear](ctx, &a.resource, openshift.RelGetGears, nil)
	if err != nil {
		return nil, err
	}

	if !res.HasData() {
		return []openshift.Gear{}, nil
	}

	return *res.Data, nil
}

// Gears returns the gears the application runs on, loading them on first use.
func (a *Application) Gears(ctx context.Context) ([]openshift.Gear, error) {
	return a.gears.list(ctx)
}

// WaitForAccessible probes the health check address until it passes or
// timeout elapses.
func (a *Application) WaitForAccessible(ctx context.Context, timeout time.Duration) bool {
	target := a.HealthCheckURL()
	if target == "" {
		return false
	}

	a.runtime.logger.Debug("Waiting for application", map[string]interface{}{
		"application": a.Name(),
		"url":         target,
		"timeout":     timeout.String(),
	})

	return a.runtime.poller.WaitFor(ctx, target, a.health.isHealthy, timeout)
}

// Destroy deletes the application and drops it from the domain's cached applications.
func (a *Application) Destroy(ctx context.Context) error {
	err := a.domain.applications.remove(
		func(other *Application) bool { return other == a },
		func() error {
			_, err := execute[ignored](ctx, &a.resource, openshift.RelDelete, nil)

			return err
		})
	if err != nil {
		return err
	}

	a.notify(ctx, openshift.ResourceApplication, openshift.ActionDestroyed, a.Name(), a.domain.ID())

	return nil
}

// Refresh reloads the application and discards the cached cartridges and gears.
func (a *Application) Refresh(ctx context.Context) error {
	res, err := execute[applicationDTO](ctx, &a.resource, openshift.RelGet, nil)
	if err != nil {
		return err
	}

	if res.HasData() {
		a.apply(*res.Data)
		a.catalog.replace(resolvedLinks(res.Data.Links))
	}

	a.cartridges.invalidate()
	a.gears.invalidate()

	return nil
}
