package frame2noise

import (
	"image"
	"image/color"

	bantypes "github.com/TcePrepK/BadAppleNoised/type"
)

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

type Option func(t *Transformer)

// WithSeeds 替换白色流与黑色流的种子
func WithSeeds(whiteSeed, blackSeed uint64) Option {
	return func(t *Transformer) {
		t.whiteSeed = whiteSeed
		t.blackSeed = blackSeed
	}
}

// WithLockstep 每个像素同时从两路流各抽一次，只使用来源对应的那一次
func WithLockstep() Option {
	return func(t *Transformer) {
		t.lockstep = true
	}
}

// Transformer 把一帧图像映射为纯黑白的噪点图像
type Transformer struct {
	whiteSeed uint64
	blackSeed uint64
	lockstep  bool
}

func New(opts ...Option) *Transformer {
	t := Transformer{
		whiteSeed: WhiteSeed,
		blackSeed: BlackSeed,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return &t
}

var defaultTransformer = New()

// Transform 使用默认种子处理一帧
func Transform(index uint, img image.Image) *image.RGBA {
	return defaultTransformer.Transform(index, img)
}

// Transform 输出与输入尺寸相同，结果只取决于 (index, img)
func (t *Transformer) Transform(index uint, img image.Image) *image.RGBA {
	out, _, _ := t.transform(index, img)
	return out
}

func (t *Transformer) transform(index uint, img image.Image) (*image.RGBA, *Stream, *Stream) {
	bounds := img.Bounds()
	whiteStream := NewStream(t.whiteSeed)
	blackStream := NewStream(t.blackSeed)

	// 白色流按帧号前进 index*width 步，黑色流每帧都从头开始
	whiteStream.Burn(uint64(index) * uint64(bounds.Dx()))

	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			src := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			origin := bantypes.Classify(src.R)

			var filled bool
			if t.lockstep {
				w, b := whiteStream.Bool(), blackStream.Bool()
				filled = w
				if origin == bantypes.BlackOrigin {
					filled = b
				}
			} else if origin == bantypes.BlackOrigin {
				filled = blackStream.Bool()
			} else {
				filled = whiteStream.Bool()
			}

			if filled {
				out.SetRGBA(x, y, black)
			} else {
				out.SetRGBA(x, y, white)
			}
		}
	}
	return out, whiteStream, blackStream
}
