package client

import (
	"context"
	"sync"

	"github.com/fivetwenty-io/openshift-client/internal/constants"
	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
)

// SSHKey is a public key registered with the user.
type SSHKey struct {
	resource
	user *User

	mu      sync.RWMutex
	name    string
	keyType string
	content string
}

var _ openshift.SSHKey = (*SSHKey)(nil)

func newSSHKey(rt *runtime, user *User, dto sshKeyDTO, messages openshift.Messages) *SSHKey {
	k := &SSHKey{
		user:    user,
		name:    dto.Name,
		keyType: dto.Type,
		content: dto.Content,
	}
	k.resource = newResource(rt, dto.Links, messages, func() string { return "key " + k.Name() })

	return k
}

// Name returns the key name.
func (k *SSHKey) Name() string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.name
}

// Type returns the key algorithm, e.g. "ssh-rsa".
func (k *SSHKey) Type() string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.keyType
}

// Content returns the base64 key material.
func (k *SSHKey) Content() string {
	k.mu.RLock()
	defer k.mu.RUnlock()

	return k.content
}

// Update replaces the key type and material.
func (k *SSHKey) Update(ctx context.Context, key openshift.PublicKey) error {
	if key.Type == "" {
		return openshift.NewValidationError(openshift.ErrTypeRequired, "key type is required")
	}

	params := openshift.NewParameters().
		Add(constants.ParamType, key.Type).
		Add(constants.ParamContent, key.Content)

	res, err := execute[sshKeyDTO](ctx, &k.resource, openshift.RelUpdate, params)
	if err != nil {
		return err
	}

	k.mu.Lock()
	k.keyType = key.Type
	k.content = key.Content

	if res.HasData() && res.Data.Type != "" {
		k.keyType = res.Data.Type
		k.content = res.Data.Content
	}
	k.mu.Unlock()

	if res.HasData() && res.Data.Links != nil {
		k.catalog.replace(res.Data.Links)
	}

	k.notify(ctx, openshift.ResourceSSHKey, openshift.ActionUpdated, k.Name(), k.user.Login())

	return nil
}

// Destroy removes the key and drops it from the user's cached keys.
func (k *SSHKey) Destroy(ctx context.Context) error {
	err := k.user.keys.remove(
		func(other *SSHKey) bool { return other == k },
		func() error {
			_, err := execute[ignored](ctx, &k.resource, openshift.RelDelete, nil)

			return err
		})
	if err != nil {
		return err
	}

	k.notify(ctx, openshift.ResourceSSHKey, openshift.ActionDestroyed, k.Name(), k.user.Login())

	return nil
}
