package cmd

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/mecha-org/trustzone-ctrl/pkg/trustzone"
	"github.com/mecha-org/trustzone-ctrl/testdata"
)

func TestCertCommand(t *testing.T) {
	cmd := CertCommand()

	require.NotNil(t, cmd)
	require.Equal(t, "cert", cmd.Name)
	require.Len(t, cmd.Commands, 4)

	read := findCommand(cmd, "read")
	require.NotNil(t, read)
	for _, name := range []string{"output", "region"} {
		f, ok := findFlag(read, name).(*cli.StringFlag)
		require.True(t, ok, "read is missing --%s", name)
		assert.True(t, f.Required)
	}

	write := findCommand(cmd, "write")
	require.NotNil(t, write)
	assert.NotNil(t, findFlag(write, "file"))
	assert.NotNil(t, findFlag(write, "data"))
}

func TestCertRead(t *testing.T) {
	t.Run("helper exports certificate", func(t *testing.T) {
		dev := newDevice(t, `printf 'CERT-DATA' > "$4"`)

		out, _, err := dev.run("cert", "read", "--output", dev.path("hello_world.crt"), "--region", "0xe0e0")
		require.NoError(t, err)
		assert.Equal(t, "CERT-DATA\n", out)
	})

	t.Run("helper fails", func(t *testing.T) {
		dev := newDevice(t, `echo "region locked" >&2; exit 1`)

		out, _, err := dev.run("--format", "json", "cert", "read", "--output", dev.path("hello_world.crt"), "--region", "0xe0e0")
		require.Error(t, err)
		assert.True(t, trustzone.IsKind(err, trustzone.KindUnableToReadTrustZoneCert))

		var res Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.False(t, res.OK)
		assert.Equal(t, "read_trustzone_cert", res.Operation)
		assert.Equal(t, "UnableToReadTrustZoneCert", res.ErrorKind)
		assert.Contains(t, res.Message, "region locked")
	})

	t.Run("root path flag overrides config", func(t *testing.T) {
		dev := newDevice(t, `exit 1`)
		other := newDevice(t, `printf 'OTHER-CERT' > "$4"`)

		out, _, err := dev.run("--root-path", other.dir, "cert", "read", "--output", dev.path("out.crt"), "--region", "0xe0e0")
		require.NoError(t, err)
		assert.Equal(t, "OTHER-CERT\n", out)
	})
}

func TestCertStorageCommands(t *testing.T) {
	dev := newDevice(t, `exit 0`)

	t.Run("write requires exactly one source", func(t *testing.T) {
		_, _, err := dev.run("cert", "write")
		assert.ErrorContains(t, err, "either --file or --data must be provided")

		_, _, err = dev.run("cert", "write", "--file", "x.pem", "--data", "CERT")
		assert.ErrorContains(t, err, "only one of --file or --data should be provided")
	})

	t.Run("write data then raw read", func(t *testing.T) {
		out, _, err := dev.run("cert", "write", "--data", "CERT-DATA")
		require.NoError(t, err)
		assert.Contains(t, out, "certificate stored")

		raw, err := os.ReadFile(dev.path("trustzone_cert"))
		require.NoError(t, err)
		assert.Equal(t, "CERT-DATA", string(raw))
	})

	t.Run("write file then show", func(t *testing.T) {
		certFile := dev.path("device_cert.pem")
		require.NoError(t, os.WriteFile(certFile, []byte(testdata.DeviceCertPEM), 0o644))

		_, _, err := dev.run("cert", "write", "--file", certFile)
		require.NoError(t, err)

		out, _, err := dev.run("cert", "show")
		require.NoError(t, err)
		assert.Equal(t, testdata.DeviceCertPEM, out)
	})

	t.Run("missing certificate file", func(t *testing.T) {
		_, _, err := dev.run("cert", "write", "--file", dev.path("absent.pem"))
		assert.ErrorContains(t, err, "failed to read certificate file")
	})

	t.Run("remove then show", func(t *testing.T) {
		out, _, err := dev.run("cert", "remove")
		require.NoError(t, err)
		assert.Contains(t, out, "certificate removed")

		out, _, err = dev.run("--format", "json", "cert", "show")
		require.Error(t, err)
		assert.True(t, trustzone.IsKind(err, trustzone.KindFileReadError))

		var res Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, "FileReadError", res.ErrorKind)

		_, _, err = dev.run("cert", "remove")
		assert.True(t, trustzone.IsKind(err, trustzone.KindUnableToRemoveTrustZoneCert))
	})
}
