package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/TcePrepK/BadAppleNoised/config"
	"github.com/TcePrepK/BadAppleNoised/ffmpegio"
	"github.com/TcePrepK/BadAppleNoised/frame2noise"
	"github.com/TcePrepK/BadAppleNoised/framestore"
	"github.com/TcePrepK/BadAppleNoised/noise2svg"
	bantypes "github.com/TcePrepK/BadAppleNoised/type"
)

var (
	ErrSetup   = errors.New("setup failed")
	ErrExtract = errors.New("frame extraction failed")
	ErrDecode  = errors.New("frame decode failed")
	ErrEncode  = errors.New("frame encode failed")
	ErrCompile = errors.New("video compilation failed")
)

// Report 一次运行的结果；CompileErr 不是致命错误
type Report struct {
	Frames     int
	Width      int
	Height     int
	Output     string
	CompileErr error
}

type Pipeline struct {
	cfg         config.Config
	tool        ffmpegio.Tool
	transformer *frame2noise.Transformer
	src         framestore.Store
	dst         framestore.Store
}

func New(cfg config.Config, tool ffmpegio.Tool) *Pipeline {
	if tool == nil {
		tool = ffmpegio.Exec{}
	}
	return &Pipeline{
		cfg:         cfg,
		tool:        tool,
		transformer: frame2noise.New(cfg.TransformOptions()...),
		src:         cfg.Frames(),
		dst:         cfg.ModifiedFrames(),
	}
}

func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{Output: p.cfg.OutputVideo}
	if err := p.cfg.Validate(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrSetup, err)
	}

	if err := p.clean(); err != nil {
		return report, fmt.Errorf("%w: %w", ErrSetup, err)
	}
	log.Println("Cleaned up frames directory.")

	if info, err := ffmpegio.ProbeVideo(p.tool, p.cfg.InputVideo); err != nil {
		log.Printf("Probe skipped: %v\n", err)
	} else {
		log.Printf("Source %dx%d, %d frames at %.2f fps, expecting ~%d frames at %d fps\n",
			info.Width, info.Height, info.Frames, info.FrameRate, info.ExpectedFrames(p.cfg.FPS), p.cfg.FPS)
	}

	log.Println("Extracting frames from the original video...")
	if err := ffmpegio.ExtractFrames(ctx, p.tool, p.cfg); err != nil {
		return report, fmt.Errorf("%w: %w", ErrExtract, err)
	}

	log.Println("Processing frames...")
	var err error
	if p.cfg.Workers() == 1 {
		err = p.processSerial(ctx, &report)
	} else {
		err = p.processParallel(ctx, &report)
	}
	if err != nil {
		return report, err
	}
	log.Printf("Processed %d frames.\n", report.Frames)

	log.Println("Compiling modified frames into a new video...")
	if err := ffmpegio.CompileVideo(ctx, p.tool, p.cfg); err != nil {
		report.CompileErr = fmt.Errorf("%w: %w", ErrCompile, err)
		return report, nil
	}
	log.Printf("Video successfully created: %s\n", p.cfg.OutputVideo)
	return report, nil
}

// clean 删除上一次的输出视频和所有中间目录
func (p *Pipeline) clean() error {
	if err := framestore.RemoveFile(p.cfg.OutputVideo); err != nil {
		return err
	}
	if err := p.src.Reset(); err != nil {
		return err
	}
	if err := p.dst.Reset(); err != nil {
		return err
	}
	if p.cfg.VectorDir != "" {
		return os.RemoveAll(p.cfg.VectorDir)
	}
	return nil
}

// processSerial 从 0 开始逐帧处理，遇到第一个不存在的帧号即停止
func (p *Pipeline) processSerial(ctx context.Context, report *Report) error {
	for i := 0; p.src.Exists(i); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := p.src.Load(i)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
		frame := bantypes.Frame{Index: i, Image: p.transformer.Transform(uint(i), img)}
		if err := p.write(frame, report); err != nil {
			return err
		}
		report.Frames++
	}
	return nil
}

// processParallel 先数出连续的帧，再按批并行变换
func (p *Pipeline) processParallel(ctx context.Context, report *Report) error {
	total := p.src.Count()
	batchSize := p.cfg.Workers() * 8

	for start := 0; start < total; start += batchSize {
		end := min(start+batchSize, total)
		batch := make([]bantypes.Frame, 0, end-start)
		for i := start; i < end; i++ {
			img, err := p.src.Load(i)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrDecode, err)
			}
			batch = append(batch, bantypes.Frame{Index: i, Image: img})
		}

		out, err := frame2noise.TransformAll(ctx, batch, p.cfg.Workers(), p.transformer)
		if err != nil {
			return err
		}
		for _, frame := range out {
			if err := p.write(frame, report); err != nil {
				return err
			}
			report.Frames++
		}
	}
	return nil
}

func (p *Pipeline) write(frame bantypes.Frame, report *Report) error {
	if report.Frames == 0 {
		size := frame.Image.Bounds().Size()
		report.Width, report.Height = size.X, size.Y
	}
	if err := p.dst.Save(frame.Index, frame.Image); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if p.cfg.VectorDir == "" {
		return nil
	}
	return p.writeSVG(frame)
}

func (p *Pipeline) writeSVG(frame bantypes.Frame) error {
	if err := os.MkdirAll(p.cfg.VectorDir, os.ModePerm); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	fsvg, err := noise2svg.ConvertToSVG(frame)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := noise2svg.CheckSize(fsvg.SVGData, frame.Image.Bounds().Size()); err != nil {
		return fmt.Errorf("%w: frame %d: %w", ErrEncode, frame.Index, err)
	}
	name := fmt.Sprintf(p.cfg.FramePattern, frame.Index)
	name = name[:len(name)-len(filepath.Ext(name))] + ".svg"
	if err := os.WriteFile(filepath.Join(p.cfg.VectorDir, name), []byte(fsvg.SVGData), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}
