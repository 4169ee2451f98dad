// Package outdir manages the directory segments are written to.
package outdir

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/disk"
)

// DefaultFor returns the directory next to source named after its base
// name without extension: /v/holiday.mkv -> /v/holiday.
func DefaultFor(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(source), base)
}

// Ensure creates dir and any missing parents. An existing directory is
// not an error.
func Ensure(dir string) error {
	if dir == "" {
		return errors.New("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// FreeBytes reports the space available to unprivileged users on the
// filesystem holding dir.
func FreeBytes(dir string) (uint64, error) {
	usage, err := disk.Usage(dir)
	if err != nil {
		return 0, errors.Wrapf(err, "disk usage for %s", dir)
	}
	return usage.Free, nil
}

// FileSize returns the size of path in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return info.Size(), nil
}
