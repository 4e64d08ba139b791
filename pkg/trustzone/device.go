package trustzone

import (
	"context"
	"io/fs"
	"sort"

	"github.com/pkg/errors"
)

// DeviceInfo describes which parts of the element's host-side interface are
// present.
type DeviceInfo struct {
	RootPath      string       `json:"rootPath" cbor:"rootPath"`
	HelperPath    string       `json:"helperPath" cbor:"helperPath"`
	HelperPresent bool         `json:"helperPresent" cbor:"helperPresent"`
	Paths         []PathStatus `json:"paths" cbor:"paths"`
}

// PathStatus reports a single device path.
type PathStatus struct {
	Name    string `json:"name" cbor:"name"`
	Path    string `json:"path" cbor:"path"`
	Present bool   `json:"present" cbor:"present"`
}

// Info probes the helper and every device path. Missing paths are reported,
// not treated as failures.
func (c *Controller) Info(ctx context.Context) (*DeviceInfo, error) {
	log := c.begin(OpInfo)

	info := &DeviceInfo{
		RootPath:   c.cfg.RootPath,
		HelperPath: c.cfg.HelperPath,
	}

	present, err := c.present(ctx, c.cfg.HelperPath)
	if err != nil {
		return nil, c.fail(log, OpInfo, err, "unable to stat helper")
	}
	info.HelperPresent = present

	paths := c.cfg.DevicePaths()
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		present, err := c.present(ctx, paths[name])
		if err != nil {
			return nil, c.fail(log, OpInfo, err, "unable to stat %s", name)
		}
		info.Paths = append(info.Paths, PathStatus{Name: name, Path: paths[name], Present: present})
	}

	log.Info().Bool("helper_present", info.HelperPresent).Msg("device probed")
	return info, nil
}

func (c *Controller) present(ctx context.Context, path string) (bool, error) {
	_, err := c.transport.Stat(ctx, path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
