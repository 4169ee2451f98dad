// Package logging builds the hclog logger shared by the CLI and the
// orchestration packages.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

const Name = "video-segmenter"

// Options controls logger construction.
type Options struct {
	Verbose bool
	JSON    bool
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New returns a logger at Info level, or Debug when verbose. Color is used
// only for plain-text output on a terminal.
func New(opts Options) hclog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	level := hclog.Info
	if opts.Verbose {
		level = hclog.Debug
	}

	color := hclog.AutoColor
	if opts.JSON {
		color = hclog.ColorOff
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:            Name,
		Level:           level,
		Output:          out,
		JSONFormat:      opts.JSON,
		Color:           color,
		IncludeLocation: opts.Verbose,
	})
}
