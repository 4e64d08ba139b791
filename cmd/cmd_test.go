package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// device is a secure element stand-in rooted in a temp dir.
type device struct {
	dir    string
	config string
}

func newDevice(t *testing.T, helperBody string) *device {
	t.Helper()
	dir := t.TempDir()

	helper := filepath.Join(dir, "trustm_cert")
	require.NoError(t, os.WriteFile(helper, []byte("#!/bin/sh\n"+helperBody+"\n"), 0o755))

	config := fmt.Sprintf(`root_path: %[1]s
cert_path: %[1]s/trustzone_cert
key_path: %[1]s/trustzone_key
sign_path: %[1]s/trustzone_sign
verify_path: %[1]s/trustzone_verify
encrypt_path: %[1]s/trustzone_encrypt
decrypt_path: %[1]s/trustzone_decrypt
hmac_path: %[1]s/trustzone_hmac
helper_timeout: 5s
`, dir)
	configPath := filepath.Join(dir, "trustzone.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o644))

	return &device{dir: dir, config: configPath}
}

func (d *device) path(name string) string {
	return filepath.Join(d.dir, name)
}

func (d *device) set(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(d.path(name), []byte(content), 0o644))
}

// run executes the app against the device and captures both streams.
func (d *device) run(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	app := NewApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	argv := append([]string{"trustzonectl", "--config", d.config}, args...)
	err := app.Run(context.Background(), argv)
	return stdout.String(), stderr.String(), err
}

func findFlag(cmd *cli.Command, name string) cli.Flag {
	for _, f := range cmd.Flags {
		for _, n := range f.Names() {
			if n == name {
				return f
			}
		}
	}
	return nil
}

func findCommand(cmd *cli.Command, name string) *cli.Command {
	for _, c := range cmd.Commands {
		if c.Name == name {
			return c
		}
	}
	return nil
}
