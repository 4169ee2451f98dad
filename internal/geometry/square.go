package geometry

import "github.com/ZacxDev/video-segmenter/pkg/types"

type Square struct{}

func init() {
	Register(&Square{})
}

func (r *Square) Target() types.AspectTarget {
	return types.Aspect1x1
}

func (r *Square) Dimensions(srcWidth, srcHeight int) (int, int) {
	side := min(srcWidth, srcHeight, 1080)
	return side, side
}
