package ffmpegio

import (
	"context"
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/TcePrepK/BadAppleNoised/config"
)

// ExtractStream 构造抽帧命令：按固定帧率从 0 开始编号输出图片序列
func ExtractStream(cfg config.Config) *ffmpeg.Stream {
	vf := fmt.Sprintf("fps=%d", cfg.FPS)
	if cfg.Width > 0 {
		vf += fmt.Sprintf(",scale=%d:-1", cfg.Width)
	}
	return ffmpeg.Input(cfg.InputVideo).
		Output(cfg.Frames().Template(), ffmpeg.KwArgs{
			"vf":           vf,
			"start_number": 0,
			"vsync":        "vfr",
		})
}

func ExtractFrames(ctx context.Context, tool Tool, cfg config.Config) error {
	return tool.Run(ctx, ExtractStream(cfg))
}
