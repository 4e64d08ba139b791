package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mecha-org/trustzone-ctrl/cmd"
)

func TestMainApp(t *testing.T) {
	t.Run("app structure", func(t *testing.T) {
		app := cmd.NewApp()

		require.Equal(t, "trustzonectl", app.Name)
		require.Equal(t, 9, len(app.Commands))

		names := make(map[string]bool)
		for _, c := range app.Commands {
			names[c.Name] = true
		}
		for _, want := range []string{"cert", "key", "sign", "verify", "encrypt", "decrypt", "hmac", "info", "demo"} {
			require.True(t, names[want], "missing command %s", want)
		}
	})

	t.Run("help command", func(t *testing.T) {
		var buf bytes.Buffer
		app := cmd.NewApp()
		app.Writer = &buf

		err := app.Run(context.Background(), []string{"trustzonectl", "--help"})
		require.NoError(t, err)

		output := buf.String()
		require.Contains(t, output, "trustzonectl")
		require.Contains(t, output, "COMMANDS:")
		require.Contains(t, output, "--root-path")
	})
}
