package openshift

import (
	"context"
	"time"
)

// Resource is the capability shared by every broker resource.
type Resource interface {
	// Links returns a copy of the resource's link catalog. A nil result means
	// the catalog has not been resolved yet.
	Links() Links
	// Messages returns the messages the broker attached when the resource was created.
	Messages() Messages
	// CreationLog concatenates the texts of Messages.
	CreationLog() string
	HasCreationLog() bool
}

// Connection is the root of the resource graph. It owns the domains of the
// authenticated account.
type Connection interface {
	Server() string
	Links(ctx context.Context) (Links, error)
	User(ctx context.Context) (User, error)
	Domains(ctx context.Context) ([]Domain, error)
	// Domain returns nil without error when no domain has the given id.
	Domain(ctx context.Context, id string) (Domain, error)
	DefaultDomain(ctx context.Context) (Domain, error)
	HasDomain(ctx context.Context, id string) (bool, error)
	CreateDomain(ctx context.Context, id string) (Domain, error)
	Refresh(ctx context.Context) error
}

// User is the authenticated account. It owns the SSH keys.
type User interface {
	Resource
	Login() string
	MaxGears() int
	ConsumedGears() int
	SSHKeys(ctx context.Context) ([]SSHKey, error)
	// SSHKey returns nil without error when no key has the given name.
	SSHKey(ctx context.Context, name string) (SSHKey, error)
	HasSSHKey(ctx context.Context, name string) (bool, error)
	AddSSHKey(ctx context.Context, name string, key PublicKey) (SSHKey, error)
	Refresh(ctx context.Context) error
}

// Domain is a namespace owning applications.
type Domain interface {
	Resource
	ID() string
	Suffix() string
	Rename(ctx context.Context, id string) error
	Destroy(ctx context.Context, force bool) error
	Applications(ctx context.Context) ([]Application, error)
	// Application returns nil without error when no application has the given name.
	Application(ctx context.Context, name string) (Application, error)
	HasApplication(ctx context.Context, name string) (bool, error)
	ApplicationsByCartridge(ctx context.Context, cartridge string) ([]Application, error)
	CreateApplication(ctx context.Context, name, cartridge string, opts ...CreateApplicationOption) (Application, error)
	AvailableCartridgeNames(ctx context.Context) ([]string, error)
	AvailableGearProfiles(ctx context.Context) ([]GearProfile, error)
	Refresh(ctx context.Context) error
}

// Application is a deployed application within a domain.
type Application interface {
	Resource
	Name() string
	UUID() string
	Cartridge() string
	CreationTime() time.Time
	ApplicationURL() string
	GitURL() string
	HealthCheckURL() string
	Scale() ApplicationScale
	GearProfile() GearProfile
	Aliases() []string
	HasAlias(name string) bool
	Domain() Domain

	Start(ctx context.Context) error
	Stop(ctx context.Context, force bool) error
	Restart(ctx context.Context) error
	ScaleUp(ctx context.Context) error
	ScaleDown(ctx context.Context) error
	AddAlias(ctx context.Context, alias string) error
	RemoveAlias(ctx context.Context, alias string) error

	EmbeddedCartridges(ctx context.Context) ([]EmbeddedCartridge, error)
	// EmbeddedCartridge returns nil without error when no cartridge has the given name.
	EmbeddedCartridge(ctx context.Context, name string) (EmbeddedCartridge, error)
	HasEmbeddedCartridge(ctx context.Context, name string) (bool, error)
	AddEmbeddedCartridge(ctx context.Context, name string) (EmbeddedCartridge, error)
	Gears(ctx context.Context) ([]Gear, error)

	// WaitForAccessible probes the health check address until it answers as
	// expected or timeout elapses.
	WaitForAccessible(ctx context.Context, timeout time.Duration) bool
	Destroy(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// EmbeddedCartridge is an add-on cartridge embedded into an application.
type EmbeddedCartridge interface {
	Resource
	Name() string
	Type() string
	URL() string
	Application() Application
	Destroy(ctx context.Context) error
}

// SSHKey is a public key registered for the user.
type SSHKey interface {
	Resource
	Name() string
	Type() string
	Content() string
	Update(ctx context.Context, key PublicKey) error
	Destroy(ctx context.Context) error
}

// CreateApplicationOptions are the optional axes of an application create call.
type CreateApplicationOptions struct {
	Scale       ApplicationScale
	GearProfile GearProfile
}

// CreateApplicationOption configures CreateApplication.
type CreateApplicationOption func(*CreateApplicationOptions)

// WithScale requests a scalable or non scalable application.
func WithScale(scale ApplicationScale) CreateApplicationOption {
	return func(o *CreateApplicationOptions) {
		o.Scale = scale
	}
}

// WithGearProfile requests the gear size of the application.
func WithGearProfile(profile GearProfile) CreateApplicationOption {
	return func(o *CreateApplicationOptions) {
		o.GearProfile = profile
	}
}
