package types

import (
	"fmt"
	"strings"
)

// EncodeMode selects how each segment is written.
type EncodeMode string

const (
	// EncodeModeFast stream-copies audio and video. Cuts land where the
	// container allows and no filter can be applied.
	EncodeModeFast EncodeMode = "fast"
	// EncodeModePrecise re-encodes to H.264/AAC in an MP4 container.
	EncodeModePrecise EncodeMode = "precise"
)

// AspectTarget is the output frame shape requested by the caller.
type AspectTarget string

const (
	AspectOriginal AspectTarget = "original"
	Aspect16x9     AspectTarget = "16:9"
	Aspect9x16     AspectTarget = "9:16"
	Aspect4x5      AspectTarget = "4:5"
	Aspect1x1      AspectTarget = "1:1"
)

// ParseEncodeMode accepts "fast" or "precise" in any case.
func ParseEncodeMode(s string) (EncodeMode, error) {
	switch EncodeMode(strings.ToLower(strings.TrimSpace(s))) {
	case EncodeModeFast:
		return EncodeModeFast, nil
	case EncodeModePrecise:
		return EncodeModePrecise, nil
	}
	return "", fmt.Errorf("unsupported encode mode: %q (supported: fast, precise)", s)
}

// ParseAspectTarget accepts the ratio names plus a few aliases ("16x9",
// "vertical", "square", ...). An empty string means original.
func ParseAspectTarget(s string) (AspectTarget, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "x", ":")
	switch v {
	case "", "original", "source":
		return AspectOriginal, nil
	case "16:9", "horizontal", "landscape":
		return Aspect16x9, nil
	case "9:16", "vertical", "portrait":
		return Aspect9x16, nil
	case "4:5", "instagram":
		return Aspect4x5, nil
	case "1:1", "square":
		return Aspect1x1, nil
	}
	return "", fmt.Errorf("unsupported aspect target: %q", s)
}
