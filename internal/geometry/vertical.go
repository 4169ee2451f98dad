package geometry

import "github.com/ZacxDev/video-segmenter/pkg/types"

// Vertical is the 9:16 portrait frame used by short-form platforms.
type Vertical struct{}

func init() {
	Register(&Vertical{})
}

func (r *Vertical) Target() types.AspectTarget {
	return types.Aspect9x16
}

func (r *Vertical) Dimensions(srcWidth, srcHeight int) (int, int) {
	height := min(srcHeight, 1920)
	return floorRatio(height, 9, 16), height
}
