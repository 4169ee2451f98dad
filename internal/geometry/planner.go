package geometry

import (
	"fmt"

	"github.com/ZacxDev/video-segmenter/pkg/types"
	"github.com/pkg/errors"
)

// FitMode decides how the source fills a frame of a different shape.
type FitMode int

const (
	// Crop scales the source to cover the frame and trims the overflow,
	// centered.
	Crop FitMode = iota
	// Pad scales the source to fit inside the frame and fills the rest
	// with black bars, centered.
	Pad
)

func (m FitMode) String() string {
	if m == Pad {
		return "pad"
	}
	return "crop"
}

// FitModeFor maps the caller's pad switch onto a FitMode.
func FitModeFor(pad bool) FitMode {
	if pad {
		return Pad
	}
	return Crop
}

// Plan is the target frame for a reframed run.
type Plan struct {
	Target types.AspectTarget
	// Width and Height are the truncated ratio arithmetic, before any
	// encoder adjustment.
	Width  int
	Height int
	Mode   FitMode
}

// EncodeWidth is Width rounded down to an even value, minimum 2. 4:2:0
// encoders reject odd frame sizes.
func (p *Plan) EncodeWidth() int {
	return evenFloor(p.Width)
}

// EncodeHeight is Height rounded down to an even value, minimum 2.
func (p *Plan) EncodeHeight() int {
	return evenFloor(p.Height)
}

// Filter returns the -vf filter chain for the plan.
func (p *Plan) Filter() string {
	w, h := p.EncodeWidth(), p.EncodeHeight()
	if p.Mode == Pad {
		return fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
			w, h, w, h,
		)
	}
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		w, h, w, h,
	)
}

func (p *Plan) String() string {
	return fmt.Sprintf("%s %dx%d (%s)", p.Target, p.EncodeWidth(), p.EncodeHeight(), p.Mode)
}

// Compute returns the frame plan for a source of srcWidth x srcHeight. The
// original target yields a nil plan: no transform is applied.
func Compute(srcWidth, srcHeight int, target types.AspectTarget, mode FitMode) (*Plan, error) {
	if target == types.AspectOriginal || target == "" {
		return nil, nil
	}
	if srcWidth <= 0 || srcHeight <= 0 {
		return nil, errors.Errorf("invalid source resolution %dx%d", srcWidth, srcHeight)
	}

	r, err := Get(target)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	width, height := r.Dimensions(srcWidth, srcHeight)
	return &Plan{
		Target: target,
		Width:  width,
		Height: height,
		Mode:   mode,
	}, nil
}

func evenFloor(v int) int {
	v = v - (v % 2)
	if v < 2 {
		return 2
	}
	return v
}
