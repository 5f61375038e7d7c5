package noise2svg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/gotranspile/gotrace"
	"github.com/rustyoz/svg"

	bantypes "github.com/TcePrepK/BadAppleNoised/type"
)

// ConvertToSVG 使用 gotrace 将噪点帧的黑色像素描摹成 SVG
func ConvertToSVG(frame bantypes.Frame) (bantypes.FrameSVG, error) {
	if frame.Image == nil {
		return bantypes.FrameSVG{}, fmt.Errorf("frame %d has no image", frame.Index)
	}
	svgStr, err := traceGrayToSVG(mask(frame.Image))
	if err != nil {
		return bantypes.FrameSVG{}, fmt.Errorf("trace frame %d: %w", frame.Index, err)
	}
	return bantypes.FrameSVG{FrameIndex: frame.Index, SVGData: svgStr}, nil
}

// mask 黑=黑色像素，白=其他，坐标从 (0,0) 开始
func mask(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			v := uint8(255)
			if r>>8 == 0 {
				v = 0
			}
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: v})
		}
	}
	return gray
}

// traceGrayToSVG 核心：使用 gotrace 将 image.Gray 转 SVG 字符串
func traceGrayToSVG(mask *image.Gray) (string, error) {
	bm := gotrace.BitmapFromGray(mask, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	sz := mask.Bounds().Size()
	if err := gotrace.Render("svg", nil, &buf, paths, sz.X, sz.Y); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// ViewBox 从 SVG 读取 viewBox 的宽高
func ViewBox(svgData string) (int, int, error) {
	parsed, err := svg.ParseSvg(svgData, "frame", 1.0)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(strings.ReplaceAll(parsed.ViewBox, ",", " "))
	if len(fields) != 4 {
		return 0, 0, fmt.Errorf("unexpected viewBox %q", parsed.ViewBox)
	}
	w, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("viewBox width: %w", err)
	}
	h, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("viewBox height: %w", err)
	}
	return int(math.Round(w)), int(math.Round(h)), nil
}

// CheckSize 确认 SVG 的 viewBox 与帧尺寸一致
func CheckSize(svgData string, size image.Point) error {
	w, h, err := ViewBox(svgData)
	if err != nil {
		return err
	}
	if w != size.X || h != size.Y {
		return fmt.Errorf("svg viewBox %dx%d does not match frame %dx%d", w, h, size.X, size.Y)
	}
	return nil
}
