package geometry

import "github.com/ZacxDev/video-segmenter/pkg/types"

type Horizontal struct{}

func init() {
	Register(&Horizontal{})
}

func (r *Horizontal) Target() types.AspectTarget {
	return types.Aspect16x9
}

func (r *Horizontal) Dimensions(srcWidth, srcHeight int) (int, int) {
	width := min(srcWidth, 1920)
	return width, floorRatio(width, 9, 16)
}
