package client

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

var userExpected = []openshift.Relation{openshift.RelListKeys, openshift.RelAddKey}

// User is the authenticated account and owner of the SSH keys.
type User struct {
	resource

	mu            sync.RWMutex
	login         string
	maxGears      int
	consumedGears int

	keys *lazyCollection[*SSHKey]
}

var _ openshift.User = (*User)(nil)

func newUser(rt *runtime, dto userDTO) *User {
	u := &User{}
	u.resource = newResource(rt, dto.Links, nil, func() string { return "user " + u.Login() })
	u.apply(dto)
	u.keys = newLazyCollection(u.loadKeys)
	u.logMissingRelations(u.catalog.current(), userExpected)

	return u
}

func (u *User) apply(dto userDTO) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.login = dto.Login
	u.maxGears = dto.MaxGears
	u.consumedGears = dto.ConsumedGears
}

// Login returns the account name.
func (u *User) Login() string {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return u.login
}

// MaxGears returns the gear quota.
func (u *User) MaxGears() int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return u.maxGears
}

// ConsumedGears returns the number of gears in use.
func (u *User) ConsumedGears() int {
	u.mu.RLock()
	defer u.mu.RUnlock()

	return u.consumedGears
}

func (u *User) loadKeys(ctx context.Context) ([]*SSHKey, error) {
	res, err := execute[[]sshKeyDTO](ctx, &u.resource, openshift.RelListKeys, nil)
	if err != nil {
		return nil, err
	}

	if !res.HasData() {
		return []*SSHKey{}, nil
	}

	keys := make([]*SSHKey, 0, len(*res.Data))
	for _, dto := range *res.Data {
		keys = append(keys, newSSHKey(u.runtime, u, dto, nil))
	}

	return keys, nil
}

// SSHKeys returns the registered keys, loading them on first use.
func (u *User) SSHKeys(ctx context.Context) ([]openshift.SSHKey, error) {
	keys, err := u.keys.list(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]openshift.SSHKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, k)
	}

	return out, nil
}

// SSHKey returns the key with the given name, or nil.
func (u *User) SSHKey(ctx context.Context, name string) (openshift.SSHKey, error) {
	k, found, err := u.keys.find(ctx, func(k *SSHKey) bool { return k.Name() == name })
	if err != nil || !found {
		return nil, err
	}

	return k, nil
}

// HasSSHKey reports whether a key with the given name is registered.
func (u *User) HasSSHKey(ctx context.Context, name string) (bool, error) {
	k, err := u.SSHKey(ctx, name)

	return k != nil, err
}

// AddSSHKey registers a public key under name.
func (u *User) AddSSHKey(ctx context.Context, name string, key openshift.PublicKey) (openshift.SSHKey, error) {
	if name == "" {
		return nil, openshift.NewValidationError(openshift.ErrNameRequired, "key name is required")
	}

	if key.Type == "" {
		return nil, openshift.NewValidationError(openshift.ErrTypeRequired, "key type is required")
	}

	k, err := u.keys.create(ctx,
		func(k *SSHKey) bool { return k.Name() == name },
		func() error { return openshift.NewConflictError("key %q already exists", name) },
		func() (*SSHKey, error) {
			params := openshift.NewParameters().
				Add(constants.ParamName, name).
				Add(constants.ParamType, key.Type).
				Add(constants.ParamContent, key.Content)

			res, err := execute[sshKeyDTO](ctx, &u.resource, openshift.RelAddKey, params)
			if err != nil {
				return nil, err
			}

			dto := sshKeyDTO{Name: name, Type: key.Type, Content: key.Content}
			if res.HasData() {
				dto = *res.Data
			}

			return newSSHKey(u.runtime, u, dto, res.Messages), nil
		})
	if err != nil {
		return nil, err
	}

	k.notify(ctx, openshift.ResourceSSHKey, openshift.ActionCreated, name, u.Login())

	return k, nil
}

// Refresh reloads the account and discards the cached keys.
func (u *User) Refresh(ctx context.Context) error {
	res, err := execute[userDTO](ctx, &u.resource, openshift.RelGet, nil)
	if err != nil {
		return err
	}

	if res.HasData() {
		u.apply(*res.Data)
		u.catalog.replace(resolvedLinks(res.Data.Links))
	}

	u.keys.invalidate()

	return nil
}

// resolvedLinks treats a representation without links as offering none.
func resolvedLinks(links openshift.Links) openshift.Links {
	if links == nil {
		return openshift.Links{}
	}

	return links
}
