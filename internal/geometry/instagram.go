package geometry

import "github.com/ZacxDev/video-segmenter/pkg/types"

// InstagramPortrait is the 4:5 feed frame, capped at 1080x1350.
type InstagramPortrait struct{}

func init() {
	Register(&InstagramPortrait{})
}

func (r *InstagramPortrait) Target() types.AspectTarget {
	return types.Aspect4x5
}

func (r *InstagramPortrait) Dimensions(srcWidth, srcHeight int) (int, int) {
	height := min(srcHeight, 1350)
	return floorRatio(height, 4, 5), height
}
