package trustzone

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrInvalidUTF8 is returned when the element hands back text that is not
// valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Transport is the only I/O boundary to the secure element. Implementations
// report raw failures only; classification happens in the Controller.
type Transport interface {
	// RunHelper runs the privileged helper and returns its standard output.
	RunHelper(ctx context.Context, helper string, args ...string) ([]byte, error)
	// ReadFile returns the current content of a device path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// WriteFile replaces the content of a device path.
	WriteFile(ctx context.Context, path string, data []byte) error
	// RemoveFile erases a device path.
	RemoveFile(ctx context.Context, path string) error
	// Stat describes a device path without reading it.
	Stat(ctx context.Context, path string) (fs.FileInfo, error)
}

const (
	defaultFileMode fs.FileMode = 0o644
	helperWaitDelay             = time.Second
)

// DeviceTransport talks to the element through the local filesystem and a
// helper binary.
type DeviceTransport struct {
	// Timeout bounds a single helper run. Zero means no limit beyond the
	// caller's context.
	Timeout time.Duration
	// FileMode is used when WriteFile creates a path. Defaults to 0644.
	FileMode fs.FileMode
}

var _ Transport = (*DeviceTransport)(nil)

// NewDeviceTransport creates a DeviceTransport with the given helper timeout.
func NewDeviceTransport(timeout time.Duration) *DeviceTransport {
	return &DeviceTransport{Timeout: timeout, FileMode: defaultFileMode}
}

// RunHelper implements Transport.
func (t *DeviceTransport) RunHelper(ctx context.Context, helper string, args ...string) ([]byte, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, helper, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Orphaned grandchildren must not keep the pipes open forever.
	cmd.WaitDelay = helperWaitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrapf(ctxErr, "error executing %s", helper)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Wrapf(err, "error executing %s (stderr: %s)", helper, msg)
		}
		return nil, errors.Wrapf(err, "error executing %s", helper)
	}

	if !utf8.Valid(stdout.Bytes()) {
		return nil, errors.Wrapf(ErrInvalidUTF8, "output of %s", helper)
	}
	return stdout.Bytes(), nil
}

// ReadFile implements Transport.
func (t *DeviceTransport) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, errors.Wrapf(ErrInvalidUTF8, "content of %s", path)
	}
	return data, nil
}

// WriteFile implements Transport.
func (t *DeviceTransport) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	mode := t.FileMode
	if mode == 0 {
		mode = defaultFileMode
	}
	return os.WriteFile(path, data, mode)
}

// RemoveFile implements Transport.
func (t *DeviceTransport) RemoveFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "remove %s", path)
	}
	return os.Remove(path)
}

// Stat implements Transport.
func (t *DeviceTransport) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	return os.Stat(path)
}
