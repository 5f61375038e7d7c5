package bantypes

import (
	"image"
)

// Frame 表示一帧图像
type Frame struct {
	Index int
	Image image.Image
}

// FrameSVG 表示一帧经过描摹的矢量预览
type FrameSVG struct {
	FrameIndex int
	SVGData    string
}

// Origin 像素的来源分类，决定使用哪一路随机流
type Origin int

const (
	WhiteOrigin Origin = iota
	BlackOrigin
)

func (o Origin) String() string {
	if o == BlackOrigin {
		return "black"
	}
	return "white"
}

// Classify 只看红色通道：恰好为 0 时是黑色来源
func Classify(r uint8) Origin {
	if r == 0 {
		return BlackOrigin
	}
	return WhiteOrigin
}
