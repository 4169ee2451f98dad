package ffmpeg

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZacxDev/video-segmenter/internal/geometry"
	"github.com/ZacxDev/video-segmenter/internal/segment"
	"github.com/ZacxDev/video-segmenter/pkg/types"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ErrFilterNeedsEncode is returned when a geometry filter is combined with
// stream copy.
var ErrFilterNeedsEncode = errors.New("geometry filter requires precise mode")

// CommandSpec describes one segment invocation.
type CommandSpec struct {
	Segment    segment.Segment
	SourcePath string
	OutputPath string
	Mode       types.EncodeMode
	// Geometry is nil when the source framing is kept.
	Geometry *geometry.Plan
}

// Command is a ready-to-run ffmpeg invocation.
type Command struct {
	Binary     string
	Args       []string
	OutputPath string
	Mode       types.EncodeMode

	stream *ffmpeg.Stream
}

// String renders the command as a shell-pasteable line.
func (c *Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Binary))
	for _, a := range c.Args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

// Builder produces ffmpeg argument lists. It does no I/O.
type Builder struct {
	FFmpeg string
}

// NewBuilder creates a builder for the ffmpeg at path.
func NewBuilder(path string) *Builder {
	if path == "" {
		path = "ffmpeg"
	}
	return &Builder{FFmpeg: path}
}

// Build returns the invocation that writes spec.Segment to spec.OutputPath.
func (b *Builder) Build(spec CommandSpec) (*Command, error) {
	if spec.SourcePath == "" || spec.OutputPath == "" {
		return nil, errors.New("source and output paths are required")
	}
	if spec.Segment.Duration <= 0 {
		return nil, errors.Errorf("segment %d has no duration", spec.Segment.Index)
	}

	codec := GetCodecSettings(spec.Mode)
	if spec.Geometry != nil && !codec.SupportsFilter {
		return nil, errors.WithStack(ErrFilterNeedsEncode)
	}

	input := ffmpeg.Input(spec.SourcePath, ffmpeg.KwArgs{
		"accurate_seek": "",
		"ss":            formatSeconds(spec.Segment.Start),
	})

	outputKwargs := ffmpeg.KwArgs{
		"t":   formatSeconds(spec.Segment.Duration),
		"c:v": codec.VideoCodec,
		"c:a": codec.AudioCodec,
	}
	for k, v := range codec.OutputKwargs {
		outputKwargs[k] = v
	}
	if spec.Geometry != nil {
		outputKwargs["vf"] = spec.Geometry.Filter()
	}

	// One video stream and, when present, one audio stream. Extra tracks
	// in the source are dropped.
	streams := []*ffmpeg.Stream{input.Get("v:0"), input.Get("a:0?")}

	stream := ffmpeg.Output(streams, spec.OutputPath, outputKwargs).
		GlobalArgs("-hide_banner").
		OverWriteOutput().
		SetFfmpegPath(b.FFmpeg)

	return &Command{
		Binary:     b.FFmpeg,
		Args:       stream.GetArgs(),
		OutputPath: spec.OutputPath,
		Mode:       spec.Mode,
		stream:     stream,
	}, nil
}

// SegmentFileName returns the output name for segment index of source:
// {base}_{index:03d}{ext}, where ext is the source extension in fast mode
// and .mp4 in precise mode.
func SegmentFileName(source string, index int, mode types.EncodeMode) string {
	base := filepath.Base(source)
	ext := filepath.Ext(base)
	base = strings.TrimSuffix(base, ext)

	if codec := GetCodecSettings(mode); codec.FileExtension != "" {
		ext = codec.FileExtension
	}
	return fmt.Sprintf("%s_%03d%s", base, index, ext)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quoteArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"'()?") {
		return strconv.Quote(s)
	}
	return s
}
