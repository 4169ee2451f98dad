package ffmpeg

import (
	"strconv"

	"github.com/ZacxDev/video-segmenter/internal/config"
	"github.com/ZacxDev/video-segmenter/pkg/types"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type CodecSettings struct {
	VideoCodec string
	AudioCodec string
	// FileExtension is empty when the source extension is kept.
	FileExtension  string
	OutputKwargs   ffmpeg.KwArgs
	SupportsFilter bool
}

var codecPresets = map[types.EncodeMode]CodecSettings{
	types.EncodeModeFast: {
		VideoCodec:     "copy",
		AudioCodec:     "copy",
		SupportsFilter: false,
	},
	types.EncodeModePrecise: {
		VideoCodec:    config.PreciseVideoCodec,
		AudioCodec:    config.PreciseAudioCodec,
		FileExtension: "." + config.PreciseContainer,
		OutputKwargs: ffmpeg.KwArgs{
			"preset":   config.PrecisePreset,
			"crf":      strconv.Itoa(config.PreciseCRF),
			"b:a":      config.PreciseAudioBitrate,
			"pix_fmt":  config.PrecisePixFmt,
			"format":   config.PreciseContainer,
			"movflags": "+faststart",
		},
		SupportsFilter: true,
	},
}

// GetCodecSettings returns the settings for mode. Unknown modes get the
// precise settings, which can always be applied.
func GetCodecSettings(mode types.EncodeMode) CodecSettings {
	if settings, ok := codecPresets[mode]; ok {
		return settings
	}
	return codecPresets[types.EncodeModePrecise]
}
