package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/TcePrepK/BadAppleNoised/frame2noise"
	"github.com/TcePrepK/BadAppleNoised/framestore"
)

type Config struct {
	InputVideo        string
	FramesDir         string
	ModifiedFramesDir string
	VectorDir         string // 为空时不输出 SVG 预览
	OutputVideo       string
	FramePattern      string

	FPS    int
	Width  int // 0 表示保持原始宽度
	Codec  string
	CRF    int
	Preset string
	PixFmt string

	WhiteSeed uint64
	BlackSeed uint64
	Lockstep  bool

	Parallel int
	Serial   bool
}

// Default 返回固定的输入输出文件名，零参数运行即使用这些值
func Default() Config {
	return Config{
		InputVideo:        "BadApple.mp4",
		FramesDir:         "frames",
		ModifiedFramesDir: "modified_frames",
		OutputVideo:       "output.mp4",
		FramePattern:      framestore.DefaultPattern,
		FPS:               30,
		Codec:             "libx264",
		CRF:               23,
		Preset:            "medium",
		PixFmt:            "yuv420p",
		WhiteSeed:         frame2noise.WhiteSeed,
		BlackSeed:         frame2noise.BlackSeed,
		Parallel:          4,
	}
}

func (c Config) Validate() error {
	if c.InputVideo == "" {
		return errors.New("input video is required")
	}
	if c.OutputVideo == "" {
		return errors.New("output video is required")
	}
	if c.FramesDir == "" || c.ModifiedFramesDir == "" {
		return errors.New("frame directories are required")
	}
	if c.FramesDir == c.ModifiedFramesDir || c.FramesDir == c.VectorDir || c.ModifiedFramesDir == c.VectorDir {
		return errors.New("frame directories must be distinct")
	}
	if strings.Count(c.FramePattern, "%") != 1 || !strings.Contains(c.FramePattern, "d") {
		return fmt.Errorf("frame pattern %q must contain exactly one integer verb", c.FramePattern)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.Width < 0 {
		return fmt.Errorf("width must not be negative, got %d", c.Width)
	}
	if c.CRF < 0 || c.CRF > 51 {
		return fmt.Errorf("crf must be within 0..51, got %d", c.CRF)
	}
	return nil
}

// Workers 返回实际的并行度
func (c Config) Workers() int {
	if c.Serial || c.Parallel <= 1 {
		return 1
	}
	return c.Parallel
}

func (c Config) Frames() framestore.Store {
	return framestore.New(c.FramesDir, c.FramePattern)
}

func (c Config) ModifiedFrames() framestore.Store {
	return framestore.New(c.ModifiedFramesDir, c.FramePattern)
}

// TransformOptions 把种子与抽样方式转成 frame2noise 的选项
func (c Config) TransformOptions() []frame2noise.Option {
	opts := []frame2noise.Option{frame2noise.WithSeeds(c.WhiteSeed, c.BlackSeed)}
	if c.Lockstep {
		opts = append(opts, frame2noise.WithLockstep())
	}
	return opts
}

// ParseSeed 按十进制解析一个无符号 64 位种子，负数与越界值视为错误
func ParseSeed(s string) (uint64, error) {
	seed, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q: %w", s, err)
	}
	return seed, nil
}
