package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZacxDev/video-segmenter/internal/config"
	"github.com/ZacxDev/video-segmenter/internal/logging"
	"github.com/ZacxDev/video-segmenter/internal/metrics"
	"github.com/ZacxDev/video-segmenter/internal/processor"
	"github.com/ZacxDev/video-segmenter/pkg/types"
	"github.com/ZacxDev/video-segmenter/pkg/videoprocessor"
	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	rootCmd = &cobra.Command{
		Use:   "video-segmenter",
		Short: "Split a video into fixed-length segments",
		Long: `video-segmenter cuts one video into consecutive segments of equal length
using ffmpeg. Segments can be stream-copied (fast) or re-encoded to H.264/AAC
(precise), and optionally reframed to another aspect ratio.

ffmpeg and ffprobe are looked up next to this program, in the bundle
directory (--ffmpeg-dir), in the working directory, then on PATH.

Examples:
  # Split into one-minute segments next to the source
  video-segmenter split -i holiday.mkv

  # 30-second vertical segments for short-form platforms
  video-segmenter split -i holiday.mkv -o ./shorts -d 30 -a 9:16

  # Show the ffmpeg commands without running them
  video-segmenter plan -i holiday.mkv -d 15 -m precise`,
		SilenceUsage: true,
	}

	splitCmd = &cobra.Command{
		Use:   "split",
		Short: "Split a video into segments",
		Long: fmt.Sprintf(`Split a video file into segments of --duration seconds.

Supported aspect targets:
%s
Reframing always re-encodes; fast mode is switched to precise when an
aspect target other than original is requested.`, formatSupportedAspects()),
		RunE: runSplit,
	}

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Print the ffmpeg commands a split would run",
		RunE:  runPlan,
	}

	probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Print the duration and resolution of a video",
		RunE:  runProbe,
	}
)

func formatSupportedAspects() string {
	var sb strings.Builder
	for _, aspect := range videoprocessor.GetSupportedAspects() {
		sb.WriteString(fmt.Sprintf("- %s\n", aspect))
	}
	return sb.String()
}

func addSplitFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", "", "Input video file")
	fs.StringP("output", "o", "", "Output directory (default: a directory named after the input, next to it)")
	fs.IntP("duration", "d", config.DefaultSegmentSeconds,
		fmt.Sprintf("Segment length in seconds (%d-%d)", config.MinSegmentSeconds, config.MaxSegmentSeconds))
	fs.StringP("aspect", "a", string(types.AspectOriginal),
		fmt.Sprintf("Output aspect (%s)", strings.Join(videoprocessor.GetSupportedAspects(), ", ")))
	fs.Bool("pad", false, "Fit the whole frame with black bars instead of cropping")
	fs.StringP("mode", "m", string(types.EncodeModeFast), "Encode mode (fast, precise)")
	fs.Duration("segment-timeout", 0, "Kill ffmpeg if one segment takes longer than this (0 disables)")
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML file with default options")
	rootCmd.PersistentFlags().String("ffmpeg-dir", "", "Directory holding bundled ffmpeg and ffprobe")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("log-json", false, "Log in JSON")

	addSplitFlags(splitCmd.Flags())
	splitCmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file when the run ends")
	addSplitFlags(planCmd.Flags())
	probeCmd.Flags().StringP("input", "i", "", "Input video file")

	splitCmd.MarkFlagRequired("input")
	planCmd.MarkFlagRequired("input")
	probeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(probeCmd)
}

// loadOptions starts from the defaults, overlays --config, then applies
// only the flags the user actually set.
func loadOptions(cmd *cobra.Command) (config.SplitOptions, error) {
	opts := config.DefaultOptions()
	flags := cmd.Flags()

	if path, _ := flags.GetString("config"); path != "" {
		if err := config.LoadFile(path, &opts); err != nil {
			return opts, err
		}
	}

	opts.InputPath, _ = flags.GetString("input")
	if flags.Changed("output") {
		opts.OutputDir, _ = flags.GetString("output")
	}
	if flags.Changed("duration") {
		opts.SegmentSeconds, _ = flags.GetInt("duration")
	}
	if flags.Changed("aspect") {
		v, _ := flags.GetString("aspect")
		aspect, err := types.ParseAspectTarget(v)
		if err != nil {
			return opts, errors.WithStack(err)
		}
		opts.Aspect = aspect
	}
	if flags.Changed("pad") {
		opts.Pad, _ = flags.GetBool("pad")
	}
	if flags.Changed("mode") {
		v, _ := flags.GetString("mode")
		mode, err := types.ParseEncodeMode(v)
		if err != nil {
			return opts, errors.WithStack(err)
		}
		opts.Mode = mode
	}
	if flags.Changed("segment-timeout") {
		opts.SegmentTimeout, _ = flags.GetDuration("segment-timeout")
	}
	if flags.Changed("ffmpeg-dir") {
		opts.BundleDir, _ = flags.GetString("ffmpeg-dir")
	}
	if flags.Lookup("metrics-file") != nil && flags.Changed("metrics-file") {
		opts.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if flags.Changed("verbose") {
		opts.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("log-json") {
		opts.LogJSON, _ = flags.GetBool("log-json")
	}

	return opts, opts.Validate()
}

func newLogger(opts config.SplitOptions) hclog.Logger {
	return logging.New(logging.Options{Verbose: opts.Verbose, JSON: opts.LogJSON})
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runSplit(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(opts)

	rt := videoprocessor.Runtime{Logger: logger}
	var reg *prometheus.Registry
	if opts.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		rt.Observer = metrics.NewRecorder(reg)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	result, runErr := videoprocessor.SplitVideo(ctx, opts, rt, eventPrinter(logger, cmd))

	if reg != nil {
		if err := metrics.WriteTextfile(opts.MetricsFile, reg); err != nil {
			logger.Error("failed to write metrics", "path", opts.MetricsFile, "error", err)
		}
	}

	if runErr != nil {
		return errors.New(result.Message())
	}
	return nil
}

// eventPrinter routes run events to the logger and the final summary to
// stdout.
func eventPrinter(logger hclog.Logger, cmd *cobra.Command) func(videoprocessor.Event) {
	return func(e videoprocessor.Event) {
		switch ev := e.(type) {
		case processor.LogEvent:
			logger.Info(ev.Message)
		case processor.NoticeEvent:
			logger.Warn(ev.Message, "code", ev.Code)
		case processor.ProgressEvent:
			logger.Info("progress", "percent", ev.Percent, "completed", ev.Completed, "total", ev.Total)
		case processor.SegmentEvent:
			if ev.Result.Outcome == processor.Warned {
				logger.Warn("segment finished with warnings",
					"segment", ev.Result.Segment.Index+1, "output", ev.Result.OutputPath)
			}
		case processor.TerminalEvent:
			if ev.Result.Status == processor.StatusCompleted {
				fmt.Fprintln(cmd.OutOrStdout(), ev.Result.Message())
			}
		}
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(opts)

	ctx, stop := signalContext(cmd)
	defer stop()

	dry, err := videoprocessor.PlanCommands(ctx, opts, videoprocessor.Runtime{Logger: logger})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	r := dry.Result
	fmt.Fprintf(out, "# source: %s (%.3fs, %s)\n", r.Source.Path, r.Source.Duration, r.Source.Resolution())
	if r.Geometry != nil {
		fmt.Fprintf(out, "# geometry: %s\n", r.Geometry)
	}
	if r.Mode != r.RequestedMode {
		fmt.Fprintf(out, "# mode: %s (requested %s)\n", r.Mode, r.RequestedMode)
	} else {
		fmt.Fprintf(out, "# mode: %s\n", r.Mode)
	}
	fmt.Fprintf(out, "# segments: %d -> %s\n", len(dry.Commands), r.OutputDir)
	for _, c := range dry.Commands {
		fmt.Fprintln(out, c.String())
	}
	return nil
}

func runProbe(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	bundleDir, _ := cmd.Flags().GetString("ffmpeg-dir")

	ctx, stop := signalContext(cmd)
	defer stop()

	media, err := videoprocessor.ProbeVideo(ctx, input, bundleDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:       %s\n", media.Path)
	fmt.Fprintf(out, "duration:   %.3f\n", media.Duration)
	fmt.Fprintf(out, "resolution: %s\n", media.Resolution())
	if media.ResolutionFallback {
		fmt.Fprintf(out, "note:       resolution unavailable (%s), default assumed\n", media.FallbackReason)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
