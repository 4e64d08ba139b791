package cmd

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecha-org/trustzone-ctrl/pkg/trustzone"
)

func TestNewResult(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		res := newResult(trustzone.OpSign, "SIG", nil)
		assert.Equal(t, Result{Operation: "sign_trustzone_data", OK: true, Value: "SIG"}, res)
	})

	t.Run("trust operation error", func(t *testing.T) {
		err := &trustzone.TrustOperationError{Kind: trustzone.KindUnableToSignTrust, Message: "unable to read signed_data: EIO"}
		res := newResult(trustzone.OpSign, "", err)
		assert.False(t, res.OK)
		assert.Equal(t, "UnableToSignTrust", res.ErrorKind)
		assert.Equal(t, err.Error(), res.Message)
	})

	t.Run("plain error", func(t *testing.T) {
		res := newResult(trustzone.OpSign, "", errors.New("boom"))
		assert.Empty(t, res.ErrorKind)
		assert.Equal(t, "boom", res.Message)
	})
}

func TestOutputFormats(t *testing.T) {
	dev := newDevice(t, `exit 0`)
	dev.set(t, "trustzone_hmac", "HMAC-VALUE")

	t.Run("cbor", func(t *testing.T) {
		out, _, err := dev.run("--format", "cbor", "hmac")
		require.NoError(t, err)

		var res Result
		require.NoError(t, cbor.Unmarshal([]byte(out), &res))
		assert.True(t, res.OK)
		assert.Equal(t, "generate_trustzone_hmac", res.Operation)
		assert.Equal(t, "HMAC-VALUE", res.Value)
	})

	t.Run("unsupported", func(t *testing.T) {
		out, _, err := dev.run("--format", "xml", "hmac")
		assert.ErrorContains(t, err, `unsupported format "xml"`)
		assert.Empty(t, out)
	})

	t.Run("invalid log level", func(t *testing.T) {
		_, _, err := dev.run("--log-level", "loud", "hmac")
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("logs go to stderr", func(t *testing.T) {
		out, errOut, err := dev.run("--log-level", "info", "hmac")
		require.NoError(t, err)
		assert.Equal(t, "HMAC-VALUE\n", out)
		assert.Contains(t, errOut, "generate_trustzone_hmac")
		assert.NotContains(t, errOut, "HMAC-VALUE")
	})
}
