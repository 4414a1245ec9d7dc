package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/fivetwenty-io/openshift-client/pkg/openshift"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
)

type keyInfo struct {
	Name        string `json:"name"        yaml:"name"`
	Type        string `json:"type"        yaml:"type"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
}

// NewKeysCommand creates the keys command group.
func NewKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keys",
		Aliases: []string{"key", "sshkeys"},
		Short:   "Manage SSH keys",
		Long:    "List and manage the SSH public keys registered for the account",
	}

	cmd.AddCommand(newKeysListCommand())
	cmd.AddCommand(newKeysAddCommand())
	cmd.AddCommand(newKeysUpdateCommand())
	cmd.AddCommand(newKeysDeleteCommand())

	return cmd
}

func newKeysListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List SSH keys",
		Long:  "List the SSH keys of the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := s.conn.User(ctx)
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			keys, err := user.SSHKeys(ctx)
			if err != nil {
				return fmt.Errorf("failed to list keys: %w", err)
			}

			infos := make([]keyInfo, 0, len(keys))
			rows := make([][]string, 0, len(keys))

			for _, key := range keys {
				info := keyInfo{
					Name:        key.Name(),
					Type:        key.Type(),
					Fingerprint: fingerprint(openshift.PublicKey{Type: key.Type(), Content: key.Content()}),
				}
				infos = append(infos, info)
				rows = append(rows, []string{info.Name, info.Type, info.Fingerprint})
			}

			return render(cmd.OutOrStdout(), infos, []string{"Name", "Type", "Fingerprint"}, rows)
		},
	}
}

func newKeysAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME FILE",
		Short: "Add an SSH key",
		Long:  "Register the public key in FILE (authorized_keys format) under NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			publicKey, err := readPublicKey(args[1])
			if err != nil {
				return err
			}

			ctx := context.Background()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			user, err := s.conn.User(ctx)
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}

			key, err := user.AddSSHKey(ctx, args[0], publicKey)
			if err != nil {
				return fmt.Errorf("failed to add key: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added key %s (%s)\n", key.Name(), key.Type())

			return nil
		},
	}
}

func newKeysUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update NAME FILE",
		Short: "Replace an SSH key",
		Long:  "Replace the material of the key NAME with the public key in FILE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			publicKey, err := readPublicKey(args[1])
			if err != nil {
				return err
			}

			return withKey(cmd, args[0], func(ctx context.Context, key openshift.SSHKey) error {
				if err := key.Update(ctx, publicKey); err != nil {
					return fmt.Errorf("failed to update key: %w", err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated key %s\n", key.Name())

				return nil
			})
		},
	}
}

func newKeysDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an SSH key",
		Long:  "Remove an SSH key from the account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKey(cmd, args[0], func(ctx context.Context, key openshift.SSHKey) error {
				if err := key.Destroy(ctx); err != nil {
					return fmt.Errorf("failed to delete key: %w", err)
				}

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted key %s\n", key.Name())

				return nil
			})
		},
	}
}

func withKey(cmd *cobra.Command, name string, fn func(context.Context, openshift.SSHKey) error) error {
	ctx := context.Background()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	user, err := s.conn.User(ctx)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	key, err := user.SSHKey(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}

	if key == nil {
		return fmt.Errorf("key '%s': %w", name, ErrKeyNotFound)
	}

	return fn(ctx, key)
}

// readPublicKey loads a public key file such as ~/.ssh/id_rsa.pub.
func readPublicKey(path string) (openshift.PublicKey, error) {
	// #nosec G304 -- the path is supplied by the user on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return openshift.PublicKey{}, fmt.Errorf("failed to read key file: %w", err)
	}

	return parsePublicKey(data)
}

// parsePublicKey splits an authorized_keys line into the algorithm and the
// base64 material the broker stores.
func parsePublicKey(data []byte) (openshift.PublicKey, error) {
	key, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return openshift.PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}

	return openshift.PublicKey{
		Type:    key.Type(),
		Content: base64.StdEncoding.EncodeToString(key.Marshal()),
	}, nil
}

// fingerprint returns the SHA256 fingerprint of a stored key, or N/A when
// the material cannot be decoded.
func fingerprint(key openshift.PublicKey) string {
	raw, err := base64.StdEncoding.DecodeString(key.Content)
	if err != nil {
		return NotAvailable
	}

	publicKey, err := ssh.ParsePublicKey(raw)
	if err != nil {
		return NotAvailable
	}

	return ssh.FingerprintSHA256(publicKey)
}
