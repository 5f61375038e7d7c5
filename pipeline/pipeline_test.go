package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/TcePrepK/BadAppleNoised/config"
	"github.com/TcePrepK/BadAppleNoised/ffmpegio"
	"github.com/TcePrepK/BadAppleNoised/frame2noise"
	"github.com/TcePrepK/BadAppleNoised/pipeline"
)

// fakeFFmpeg 抽帧时写出 frames 张图片，合成时只记录参数
type fakeFFmpeg struct {
	cfg        config.Config
	frames     int
	gapAfter   int // >0 时在该帧号之后再多写一张不连续的帧
	extractErr error
	compileErr error
	corrupt    int // >=0 时把该帧写成无法解码的文件
	compiled   [][]string
}

func source(index int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 12, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 12; x++ {
			r := uint8(0)
			if (x+y+index)%3 != 0 {
				r = 180
			}
			img.Set(x, y, color.NRGBA{R: r, G: 40, B: 90, A: 255})
		}
	}
	return img
}

func (f *fakeFFmpeg) Run(_ context.Context, stream *ffmpeg.Stream) error {
	args := stream.GetArgs()
	if args[len(args)-1] == f.cfg.Frames().Template() {
		if f.extractErr != nil {
			return &ffmpegio.ToolError{Args: args, Diagnostics: "BadApple.mp4: No such file or directory", Err: f.extractErr}
		}
		store := f.cfg.Frames()
		for i := 0; i < f.frames; i++ {
			if i == f.corrupt {
				if err := os.WriteFile(store.Path(i), []byte("garbage"), 0o644); err != nil {
					return err
				}
				continue
			}
			if err := store.Save(i, source(i)); err != nil {
				return err
			}
		}
		if f.gapAfter > 0 {
			return store.Save(f.gapAfter+2, source(0))
		}
		return nil
	}
	f.compiled = append(f.compiled, args)
	if f.compileErr != nil {
		return &ffmpegio.ToolError{Args: args, Diagnostics: "Could not open file", Err: f.compileErr}
	}
	return nil
}

func (f *fakeFFmpeg) Probe(string) (string, error) {
	return `{"streams":[{"codec_type":"video","width":12,"height":6,"nb_frames":"5","avg_frame_rate":"30/1"}]}`, nil
}

var _ = Describe("Pipeline", func() {
	var (
		cfg  config.Config
		tool *fakeFFmpeg
	)

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "badapple")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		cfg = config.Default()
		cfg.InputVideo = filepath.Join(dir, "BadApple.mp4")
		cfg.FramesDir = filepath.Join(dir, "frames")
		cfg.ModifiedFramesDir = filepath.Join(dir, "modified_frames")
		cfg.OutputVideo = filepath.Join(dir, "output.mp4")
		tool = &fakeFFmpeg{cfg: cfg, frames: 5, corrupt: -1}
	})

	run := func() (pipeline.Report, error) {
		tool.cfg = cfg
		return pipeline.New(cfg, tool).Run(context.Background())
	}

	expectTransformed := func(n int) {
		out := cfg.ModifiedFrames()
		Expect(out.Count()).To(Equal(n))
		for i := 0; i < n; i++ {
			img, err := out.Load(i)
			Expect(err).NotTo(HaveOccurred())
			want := frame2noise.Transform(uint(i), source(i))
			for y := 0; y < 6; y++ {
				for x := 0; x < 12; x++ {
					r, g, b, _ := img.At(x, y).RGBA()
					Expect(r>>8).To(BeEquivalentTo(want.RGBAAt(x, y).R), "frame %d pixel (%d,%d)", i, x, y)
					Expect(g).To(Equal(r))
					Expect(b).To(Equal(r))
				}
			}
		}
	}

	for _, serial := range []bool{true, false} {
		serial := serial
		It(fmt.Sprintf("transforms every contiguous frame and compiles the video (serial=%v)", serial), func() {
			cfg.Serial = serial
			report, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Frames).To(Equal(5))
			Expect(report.Width).To(Equal(12))
			Expect(report.Height).To(Equal(6))
			Expect(report.CompileErr).NotTo(HaveOccurred())
			Expect(tool.compiled).To(HaveLen(1))
			expectTransformed(5)
		})
	}

	It("stops at the first missing frame index", func() {
		tool.gapAfter = 4
		report, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Frames).To(Equal(5))
		Expect(cfg.ModifiedFrames().Exists(6)).To(BeFalse())

		cfg.Serial = true
		report, err = run()
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Frames).To(Equal(5))
	})

	It("starts from a clean slate", func() {
		Expect(os.WriteFile(cfg.OutputVideo, []byte("old"), 0o644)).To(Succeed())
		Expect(cfg.ModifiedFrames().Reset()).To(Succeed())
		Expect(cfg.ModifiedFrames().Save(9, source(0))).To(Succeed())

		_, err := run()
		Expect(err).NotTo(HaveOccurred())
		_, statErr := os.Stat(cfg.OutputVideo)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
		Expect(cfg.ModifiedFrames().Exists(9)).To(BeFalse())
	})

	It("aborts before processing when extraction fails", func() {
		tool.extractErr = errors.New("exit status 1")
		_, err := run()
		Expect(err).To(MatchError(pipeline.ErrExtract))
		var te *ffmpegio.ToolError
		Expect(errors.As(err, &te)).To(BeTrue())
		Expect(te.Diagnostics).To(ContainSubstring("No such file"))
		Expect(tool.compiled).To(BeEmpty())
		Expect(cfg.ModifiedFrames().Count()).To(BeZero())
	})

	It("aborts the run on an undecodable frame", func() {
		tool.corrupt = 2
		for _, serial := range []bool{true, false} {
			cfg.Serial = serial
			_, err := run()
			Expect(err).To(MatchError(pipeline.ErrDecode))
			Expect(tool.compiled).To(BeEmpty())
		}
	})

	It("aborts the run when a frame cannot be written", func() {
		p := pipeline.New(cfg, &blockingDst{fakeFFmpeg: tool, dir: cfg.ModifiedFramesDir})
		_, err := p.Run(context.Background())
		Expect(err).To(MatchError(pipeline.ErrEncode))
		Expect(tool.compiled).To(BeEmpty())
	})

	It("reports a compile failure without failing the run", func() {
		tool.compileErr = errors.New("exit status 1")
		report, err := run()
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Frames).To(Equal(5))
		Expect(report.CompileErr).To(MatchError(pipeline.ErrCompile))
		Expect(report.CompileErr.Error()).To(ContainSubstring("Could not open file"))
	})

	It("rejects an invalid configuration as a setup failure", func() {
		cfg.FPS = 0
		_, err := run()
		Expect(err).To(MatchError(pipeline.ErrSetup))
	})

	It("writes svg previews when a vector directory is set", func() {
		cfg.VectorDir = filepath.Join(filepath.Dir(cfg.FramesDir), "vectors")
		_, err := run()
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 5; i++ {
			data, err := os.ReadFile(filepath.Join(cfg.VectorDir, "frame_000"+string(rune('0'+i))+".svg"))
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("<svg"))
		}
	})

	It("uses the configured seeds and draw mode", func() {
		cfg.Lockstep = true
		_, err := run()
		Expect(err).NotTo(HaveOccurred())
		img, err := cfg.ModifiedFrames().Load(3)
		Expect(err).NotTo(HaveOccurred())
		want := frame2noise.New(frame2noise.WithLockstep()).Transform(3, source(3))
		r, _, _, _ := img.At(7, 2).RGBA()
		Expect(r >> 8).To(BeEquivalentTo(want.RGBAAt(7, 2).R))
	})
})

// blockingDst 抽帧后把输出目录替换成普通文件，使写帧失败
type blockingDst struct {
	*fakeFFmpeg
	dir string
}

func (b *blockingDst) Run(ctx context.Context, stream *ffmpeg.Stream) error {
	if err := b.fakeFFmpeg.Run(ctx, stream); err != nil {
		return err
	}
	if err := os.RemoveAll(b.dir); err != nil {
		return err
	}
	return os.WriteFile(b.dir, []byte("not a directory"), 0o644)
}
