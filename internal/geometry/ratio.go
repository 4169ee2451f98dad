package geometry

import (
	"fmt"

	"github.com/ZacxDev/video-segmenter/pkg/types"
	"golang.org/x/exp/slices"
)

// Ratio defines the interface for an output aspect-ratio class
type Ratio interface {
	// Target returns the aspect target this class implements
	Target() types.AspectTarget

	// Dimensions returns the output frame size for a source of the given
	// size. Companion dimensions are truncated, not rounded.
	Dimensions(srcWidth, srcHeight int) (width, height int)
}

var ratios = make(map[types.AspectTarget]Ratio)

// Register adds a ratio class to the registry
func Register(r Ratio) {
	ratios[r.Target()] = r
}

// Get returns a ratio class by target
func Get(target types.AspectTarget) (Ratio, error) {
	r, ok := ratios[target]
	if !ok {
		return nil, fmt.Errorf("unsupported aspect target: %s", target)
	}
	return r, nil
}

// Supported returns every accepted target name, original first.
func Supported() []string {
	names := make([]string, 0, len(ratios))
	for target := range ratios {
		names = append(names, string(target))
	}
	slices.Sort(names)
	return append([]string{string(types.AspectOriginal)}, names...)
}

// floorRatio returns floor(v * num / den) for positive inputs.
func floorRatio(v, num, den int) int {
	return v * num / den
}
