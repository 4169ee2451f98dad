package ffmpeg

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// ErrToolNotFound is returned when no candidate location holds the tool.
var ErrToolNotFound = errors.New("tool not found")

// Tools holds the resolved executable paths.
type Tools struct {
	FFmpeg  string
	FFprobe string
}

// Locator resolves tool executables. Candidates are tried in order: the
// running program's directory, the bundle directory, the working
// directory, then PATH.
type Locator struct {
	ExeDir    string
	BundleDir string
	WorkDir   string
	LookPath  func(file string) (string, error)
}

// NewLocator fills the search directories from the running process.
// bundleDir overrides the platform default.
func NewLocator(bundleDir string) *Locator {
	l := &Locator{LookPath: exec.LookPath}

	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		l.ExeDir = filepath.Dir(exe)
		l.BundleDir = defaultBundleDir(l.ExeDir)
	}
	if bundleDir != "" {
		l.BundleDir = bundleDir
	}
	if wd, err := os.Getwd(); err == nil {
		l.WorkDir = wd
	}
	return l
}

// defaultBundleDir points at Contents/Resources when the program runs from
// a macOS application bundle.
func defaultBundleDir(exeDir string) string {
	if filepath.Base(exeDir) == "MacOS" && strings.HasSuffix(filepath.Dir(filepath.Dir(exeDir)), ".app") {
		return filepath.Join(filepath.Dir(exeDir), "Resources")
	}
	return ""
}

// Find returns the path of the named tool.
func (l *Locator) Find(name string) (string, error) {
	file := executableName(name)

	for _, dir := range []string{l.ExeDir, l.BundleDir, l.WorkDir} {
		if dir == "" {
			continue
		}
		if candidate := filepath.Join(dir, file); isFile(candidate) {
			return candidate, nil
		}
	}

	if l.LookPath != nil {
		if path, err := l.LookPath(file); err == nil {
			return path, nil
		}
	}
	return "", errors.Wrap(ErrToolNotFound, name)
}

// Locate resolves ffmpeg and ffprobe. ffprobe is taken from ffmpeg's
// directory when present so both come from the same build.
func (l *Locator) Locate(ffmpegName, ffprobeName string) (*Tools, error) {
	ffmpegPath, err := l.Find(ffmpegName)
	if err != nil {
		return nil, err
	}

	sibling := filepath.Join(filepath.Dir(ffmpegPath), executableName(ffprobeName))
	if isFile(sibling) {
		return &Tools{FFmpeg: ffmpegPath, FFprobe: sibling}, nil
	}

	ffprobePath, err := l.Find(ffprobeName)
	if err != nil {
		return nil, err
	}
	return &Tools{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
}

func executableName(name string) string {
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
