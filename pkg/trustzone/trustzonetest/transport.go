// Package trustzonetest provides a scripted trustzone.Transport for tests.
package trustzonetest

import (
	"context"
	"io/fs"
	"sync"
	"time"

	"github.com/mecha-org/trustzone-ctrl/pkg/trustzone"
)

// Call records one transport interaction.
type Call struct {
	Method string
	Path   string
	Args   []string
	Data   []byte
}

// Transport keeps device files in memory. The helper writes HelperOutput to
// the path given after "-o".
type Transport struct {
	mu sync.Mutex

	Files        map[string][]byte
	HelperOutput []byte
	HelperStdout []byte
	HelperErr    error
	// Errors fails any interaction with the keyed path (or helper).
	Errors map[string]error
	// Hook runs inside every call before it completes, while the caller's
	// locks are held.
	Hook func(c Call)

	calls []Call
}

var _ trustzone.Transport = (*Transport)(nil)

// New creates an empty Transport.
func New() *Transport {
	return &Transport{
		Files:  make(map[string][]byte),
		Errors: make(map[string]error),
	}
}

// Fail makes every interaction with path return err.
func (t *Transport) Fail(path string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Errors[path] = err
}

// Set stores content at path.
func (t *Transport) Set(path, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Files[path] = []byte(content)
}

// Calls returns the recorded interactions.
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Call(nil), t.calls...)
}

// CallsTo returns the recorded interactions of one method.
func (t *Transport) CallsTo(method string) []Call {
	var out []Call
	for _, c := range t.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (t *Transport) record(c Call) error {
	t.mu.Lock()
	t.calls = append(t.calls, c)
	hook := t.Hook
	err := t.Errors[c.Path]
	t.mu.Unlock()

	if hook != nil {
		hook(c)
	}
	return err
}

// RunHelper implements trustzone.Transport.
func (t *Transport) RunHelper(ctx context.Context, helper string, args ...string) ([]byte, error) {
	if err := t.record(Call{Method: "RunHelper", Path: helper, Args: args}); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.HelperErr != nil {
		return nil, t.HelperErr
	}
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-o" && t.HelperOutput != nil {
			t.Files[args[i+1]] = append([]byte(nil), t.HelperOutput...)
		}
	}
	return t.HelperStdout, nil
}

// ReadFile implements trustzone.Transport.
func (t *Transport) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := t.record(Call{Method: "ReadFile", Path: path}); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	data, ok := t.Files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteFile implements trustzone.Transport.
func (t *Transport) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := t.record(Call{Method: "WriteFile", Path: path, Data: data}); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.Files[path] = append([]byte(nil), data...)
	return nil
}

// RemoveFile implements trustzone.Transport.
func (t *Transport) RemoveFile(ctx context.Context, path string) error {
	if err := t.record(Call{Method: "RemoveFile", Path: path}); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.Files[path]; !ok {
		return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
	}
	delete(t.Files, path)
	return nil
}

// Stat implements trustzone.Transport.
func (t *Transport) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := t.record(Call{Method: "Stat", Path: path}); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	data, ok := t.Files[path]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return fileInfo{name: path, size: int64(len(data))}, nil
}

type fileInfo struct {
	name string
	size int64
}

func (f fileInfo) Name() string       { return f.name }
func (f fileInfo) Size() int64        { return f.size }
func (f fileInfo) Mode() fs.FileMode  { return 0o644 }
func (f fileInfo) ModTime() time.Time { return time.Time{} }
func (f fileInfo) IsDir() bool        { return false }
func (f fileInfo) Sys() any           { return nil }
