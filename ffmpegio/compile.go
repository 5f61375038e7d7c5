package ffmpegio

import (
	"context"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/TcePrepK/BadAppleNoised/config"
)

// CompileStream 构造合成命令：以抽帧时的帧率把处理后的图片序列编码成视频
func CompileStream(cfg config.Config) *ffmpeg.Stream {
	return ffmpeg.Input(cfg.ModifiedFrames().Template(), ffmpeg.KwArgs{
		"framerate": cfg.FPS,
	}).
		Output(cfg.OutputVideo, ffmpeg.KwArgs{
			"c:v":     cfg.Codec,
			"crf":     cfg.CRF,
			"preset":  cfg.Preset,
			"pix_fmt": cfg.PixFmt,
		}).
		OverWriteOutput()
}

func CompileVideo(ctx context.Context, tool Tool, cfg config.Config) error {
	return tool.Run(ctx, CompileStream(cfg))
}
