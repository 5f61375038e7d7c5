package ffmpegio

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Tool 是对外部 ffmpeg 的窄接口：传入命令，返回错误与诊断输出
type Tool interface {
	Run(ctx context.Context, stream *ffmpeg.Stream) error
	Probe(path string) (string, error)
}

// ToolError 保存 ffmpeg 非零退出时的参数和 stderr
type ToolError struct {
	Args        []string
	Diagnostics string
	Err         error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("ffmpeg %s: %v", strings.Join(e.Args, " "), e.Err)
	if d := strings.TrimSpace(e.Diagnostics); d != "" {
		msg += "\n" + d
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// Exec 直接调用本机的 ffmpeg / ffprobe
type Exec struct{}

func (Exec) Run(ctx context.Context, stream *ffmpeg.Stream) error {
	var diag bytes.Buffer
	cmd := stream.WithErrorOutput(&diag)
	cmd.Context = ctx
	if err := cmd.Run(); err != nil {
		return &ToolError{Args: stream.GetArgs(), Diagnostics: diag.String(), Err: err}
	}
	return nil
}

func (Exec) Probe(path string) (string, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return "", fmt.Errorf("ffprobe error: %w", err)
	}
	return out, nil
}
