package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/codegangsta/cli"

	"github.com/TcePrepK/BadAppleNoised/config"
	"github.com/TcePrepK/BadAppleNoised/ffmpegio"
	"github.com/TcePrepK/BadAppleNoised/pipeline"
)

func main() {
	def := config.Default()

	app := cli.NewApp()
	app.Name = "badapple-noised"
	app.Usage = "Re-renders a video as seeded black and white noise."
	app.UsageText = "badapple-noised [options]"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "input, i", Value: def.InputVideo, Usage: "source `VIDEO`"},
		cli.StringFlag{Name: "output, o", Value: def.OutputVideo, Usage: "compiled `VIDEO`"},
		cli.StringFlag{Name: "frames", Value: def.FramesDir, Usage: "`DIR` for extracted frames"},
		cli.StringFlag{Name: "modified-frames", Value: def.ModifiedFramesDir, Usage: "`DIR` for noised frames"},
		cli.StringFlag{Name: "svg", Usage: "optional `DIR` for traced svg previews"},
		cli.IntFlag{Name: "fps", Value: def.FPS, Usage: "sampling and output frame rate"},
		cli.IntFlag{Name: "width", Usage: "scale frames to `WIDTH` pixels, 0 keeps the source width"},
		cli.StringFlag{Name: "codec", Value: def.Codec, Usage: "output video codec"},
		cli.IntFlag{Name: "crf", Value: def.CRF, Usage: "encoder quality"},
		cli.StringFlag{Name: "preset", Value: def.Preset, Usage: "encoder preset"},
		cli.StringFlag{Name: "pix-fmt", Value: def.PixFmt, Usage: "output pixel format"},
		cli.StringFlag{Name: "white-seed", Value: strconv.FormatUint(def.WhiteSeed, 10), Usage: "unsigned 64-bit seed of the stream used for white-origin pixels"},
		cli.StringFlag{Name: "black-seed", Value: strconv.FormatUint(def.BlackSeed, 10), Usage: "unsigned 64-bit seed of the stream used for black-origin pixels"},
		cli.BoolFlag{Name: "lockstep", Usage: "draw from both streams for every pixel"},
		cli.IntFlag{Name: "parallel, p", Value: def.Parallel, Usage: "maximum number of frames transformed at once"},
		cli.BoolFlag{Name: "serial", Usage: "process frames one at a time"},
	}
	app.Action = func(c *cli.Context) error {
		cfg := def
		cfg.InputVideo = c.String("input")
		cfg.OutputVideo = c.String("output")
		cfg.FramesDir = c.String("frames")
		cfg.ModifiedFramesDir = c.String("modified-frames")
		cfg.VectorDir = c.String("svg")
		cfg.FPS = c.Int("fps")
		cfg.Width = c.Int("width")
		cfg.Codec = c.String("codec")
		cfg.CRF = c.Int("crf")
		cfg.Preset = c.String("preset")
		cfg.PixFmt = c.String("pix-fmt")
		var err error
		if cfg.WhiteSeed, err = config.ParseSeed(c.String("white-seed")); err != nil {
			return err
		}
		if cfg.BlackSeed, err = config.ParseSeed(c.String("black-seed")); err != nil {
			return err
		}
		cfg.Lockstep = c.Bool("lockstep")
		cfg.Parallel = c.Int("parallel")
		cfg.Serial = c.Bool("serial")
		return run(cfg)
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := pipeline.New(cfg, ffmpegio.Exec{}).Run(ctx)
	if err != nil {
		return err
	}
	if report.CompileErr != nil {
		// 合成失败只报告，不影响退出码
		log.Println("Error creating video:")
		log.Println(report.CompileErr)
	}
	return nil
}
