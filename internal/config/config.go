package config

import (
	"os"
	"time"

	"github.com/ZacxDev/video-segmenter/pkg/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SplitOptions defines options for splitting a video into segments
type SplitOptions struct {
	InputPath string `yaml:"-"`
	// OutputDir defaults to a directory next to the input named after it.
	OutputDir      string             `yaml:"output_dir"`
	SegmentSeconds int                `yaml:"segment_seconds"`
	Aspect         types.AspectTarget `yaml:"aspect"`
	Pad            bool               `yaml:"pad"`
	Mode           types.EncodeMode   `yaml:"mode"`
	SegmentTimeout time.Duration      `yaml:"segment_timeout"`
	ProbeTimeout   time.Duration      `yaml:"probe_timeout"`
	// BundleDir is searched for ffmpeg/ffprobe after the executable's own
	// directory. Empty means the platform default.
	BundleDir   string `yaml:"bundle_dir"`
	MetricsFile string `yaml:"metrics_file"`
	Verbose     bool   `yaml:"verbose"`
	LogJSON     bool   `yaml:"log_json"`
}

const (
	// Segment length bounds, in seconds
	MinSegmentSeconds     = 1
	MaxSegmentSeconds     = 3600
	DefaultSegmentSeconds = 60

	DefaultProbeTimeout = 30 * time.Second

	// Resolution assumed when ffprobe cannot report one
	FallbackWidth  = 1920
	FallbackHeight = 1080

	// Precise mode encoder settings
	PreciseVideoCodec   = "libx264"
	PreciseAudioCodec   = "aac"
	PreciseCRF          = 23
	PrecisePreset       = "medium"
	PreciseAudioBitrate = "192k"
	PrecisePixFmt       = "yuv420p"
	PreciseContainer    = "mp4"

	FFmpegBinary  = "ffmpeg"
	FFprobeBinary = "ffprobe"
)

// DefaultOptions returns options matching the desktop tool's defaults:
// one-minute segments, original framing, crop when reframing, fast mode.
func DefaultOptions() SplitOptions {
	return SplitOptions{
		SegmentSeconds: DefaultSegmentSeconds,
		Aspect:         types.AspectOriginal,
		Mode:           types.EncodeModeFast,
		ProbeTimeout:   DefaultProbeTimeout,
	}
}

// LoadFile overlays the YAML file at path onto opts. Keys absent from the
// file keep their current value.
func LoadFile(path string, opts *SplitOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return errors.Wrapf(err, "parsing config %s", path)
	}
	return nil
}

// Validate checks the caller-facing constraints. It normalizes an empty
// aspect to original and an empty mode to fast.
func (o *SplitOptions) Validate() error {
	if o.InputPath == "" {
		return errors.New("input path is required")
	}
	if o.SegmentSeconds < MinSegmentSeconds || o.SegmentSeconds > MaxSegmentSeconds {
		return errors.Errorf("segment duration %ds out of range (%d-%d)",
			o.SegmentSeconds, MinSegmentSeconds, MaxSegmentSeconds)
	}

	if o.Mode == "" {
		o.Mode = types.EncodeModeFast
	}
	mode, err := types.ParseEncodeMode(string(o.Mode))
	if err != nil {
		return errors.WithStack(err)
	}
	o.Mode = mode

	aspect, err := types.ParseAspectTarget(string(o.Aspect))
	if err != nil {
		return errors.WithStack(err)
	}
	o.Aspect = aspect

	if o.SegmentTimeout < 0 {
		return errors.New("segment timeout must not be negative")
	}
	if o.ProbeTimeout < 0 {
		return errors.New("probe timeout must not be negative")
	}
	return nil
}
