// Package main provides the CLI entry point for framecast.
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/draw"

	"github.com/user/framecast/pkg/adapters/avdecoder"
	"github.com/user/framecast/pkg/adapters/avencoder"
	"github.com/user/framecast/pkg/adapters/ggsource"
	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/backend"
	"github.com/user/framecast/pkg/config"
	"github.com/user/framecast/pkg/pixbuf"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/reader"
	"github.com/user/framecast/pkg/writer"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "framecast",
		Usage:   l10n.T("Decode, transcode and inspect video frame by frame"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   l10n.T("Path to a YAML configuration file"),
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   l10n.T("Execution backend (cpu, cuda)"),
			},
			&cli.StringFlag{
				Name:    "data-type",
				Aliases: []string{"t"},
				Usage:   l10n.T("Sample type of pixel buffers (uint8, float32, float16)"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   l10n.T("Log level (debug, info, warn, error)"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"Q"},
				Usage:   l10n.T("Suppress all log output"),
			},
		},
		Commands: []*cli.Command{
			infoCommand(),
			codecsCommand(),
			dumpCommand(),
			synthCommand(),
			transcodeCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges the optional config file with command-line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}
	if v := c.String("backend"); v != "" {
		cfg.Backend = v
	}
	if v := c.String("data-type"); v != "" {
		cfg.DataType = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if c.Bool("quiet") {
		cfg.Quiet = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) ports.Logger {
	if cfg.Quiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(cfg.ParseLogLevel())
}

func newFactory(cfg config.Config, log ports.Logger) (*backend.Factory, error) {
	b, err := cfg.ParseBackend()
	if err != nil {
		return nil, err
	}
	dtype, err := cfg.ParseDataType()
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(b, dtype, log)
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     l10n.T("Show stream properties of a video file"),
		ArgsUsage: "<input>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New(l10n.T("input file argument is required"))
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			f, err := newFactory(cfg, log)
			if err != nil {
				return err
			}
			s, err := reader.Open(f, c.Args().First(), log)
			if err != nil {
				return err
			}
			defer s.Close()

			p := s.Properties()
			fmt.Printf("%-14s %s\n", l10n.T("Codec:"), p.CodecName)
			fmt.Printf("%-14s %dx%d\n", l10n.T("Resolution:"), p.Width, p.Height)
			fmt.Printf("%-14s %.3f\n", l10n.T("FPS:"), p.FPS)
			fmt.Printf("%-14s %.3fs\n", l10n.T("Duration:"), p.Duration)
			fmt.Printf("%-14s %d\n", l10n.T("Frames:"), p.TotalFrames)
			fmt.Printf("%-14s %s\n", l10n.T("Pixel format:"), p.PixelFormat)
			fmt.Printf("%-14s %v\n", l10n.T("Has audio:"), p.HasAudio)
			return nil
		},
	}
}

func codecsCommand() *cli.Command {
	return &cli.Command{
		Name:  "codecs",
		Usage: l10n.T("List available decoders and encoders"),
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "decoders", Usage: l10n.T("List decoders only")},
			&cli.BoolFlag{Name: "encoders", Usage: l10n.T("List encoders only")},
		},
		Action: func(c *cli.Context) error {
			both := !c.Bool("decoders") && !c.Bool("encoders")
			if both || c.Bool("decoders") {
				printCodecList(l10n.T("Decoders:"), avdecoder.SupportedDecoders())
			}
			if both || c.Bool("encoders") {
				printCodecList(l10n.T("Encoders:"), avencoder.SupportedEncoders())
			}
			return nil
		},
	}
}

func printCodecList(header string, names []string) {
	sort.Strings(names)
	fmt.Println(header)
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     l10n.T("Export frames of a video as PNG thumbnails"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    l10n.T("Output directory for thumbnails"),
			},
			&cli.IntFlag{Name: "start", Usage: l10n.T("First frame of the range (negative counts from the end)")},
			&cli.IntFlag{Name: "end", Usage: l10n.T("Frame after the last one of the range (0 = end of stream)")},
			&cli.IntFlag{Name: "thumb-width", Value: 256, Usage: l10n.T("Thumbnail width in pixels (0 = full size)")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New(l10n.T("input file argument is required"))
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			f, err := newFactory(cfg, log)
			if err != nil {
				return err
			}
			s, err := reader.Open(f, c.Args().First(), log)
			if err != nil {
				return err
			}
			defer s.Close()

			if c.IsSet("start") || c.IsSet("end") {
				end := c.Int("end")
				if end == 0 {
					end = s.Len()
				}
				if err := s.SetRange(c.Int("start"), end); err != nil {
					return err
				}
			}

			outDir := c.String("out")
			if err := os.MkdirAll(outDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			log.Info("Decoding %s...", c.Args().First())
			if !s.Iterate() {
				return fmt.Errorf("seek to range start failed")
			}
			count := 0
			for {
				if err := c.Context.Err(); err != nil {
					log.Warn(l10n.T("Interrupted, shutting down..."))
					return err
				}
				buf, ok, err := s.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				path := filepath.Join(outDir, fmt.Sprintf("frame_%06d.png", count))
				if err := writeThumbnail(buf, c.Int("thumb-width"), path); err != nil {
					return err
				}
				count++
			}
			log.Info("Wrote %d frames", count)
			return nil
		},
	}
}

// writeThumbnail renders a buffer as a PNG, scaled down to thumbWidth when
// the frame is wider.
func writeThumbnail(buf *pixbuf.Buffer, thumbWidth int, path string) error {
	img, err := buf.Image()
	if err != nil {
		return err
	}

	var out image.Image = img
	if thumbWidth > 0 && buf.Width > thumbWidth {
		h := buf.Height * thumbWidth / buf.Width
		dst := image.NewRGBA(image.Rect(0, 0, thumbWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		out = dst
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return png.Encode(fh, out)
}

func synthCommand() *cli.Command {
	return &cli.Command{
		Name:  "synth",
		Usage: l10n.T("Encode a synthetic test animation"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    l10n.T("Output video file path"),
			},
			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Frame width in pixels")},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Frame height in pixels")},
			&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Number of frames to generate")},
			&cli.Float64Flag{Name: "fps", Usage: l10n.T("Frame rate of the output")},
			&cli.StringFlag{Name: "codec", Usage: l10n.T("Encoder name (e.g. libx264)")},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("width") {
				cfg.Synth.Width = c.Int("width")
			}
			if c.IsSet("height") {
				cfg.Synth.Height = c.Int("height")
			}
			if c.IsSet("frames") {
				cfg.Synth.Frames = c.Int("frames")
			}
			if c.IsSet("fps") {
				cfg.Synth.FPS = c.Float64("fps")
			}
			if c.IsSet("codec") {
				cfg.Codec = c.String("codec")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := newLogger(cfg)

			f, err := newFactory(cfg, log)
			if err != nil {
				return err
			}
			props := ports.VideoProperties{
				Width:     cfg.Synth.Width,
				Height:    cfg.Synth.Height,
				FPS:       cfg.Synth.FPS,
				CodecName: cfg.Codec,
			}
			out := c.String("out")
			w, err := writer.Create(f, out, props, cfg.EncoderOptions(), log)
			if err != nil {
				return err
			}
			defer w.Close()

			log.Info("Generating %d frames to %s...", cfg.Synth.Frames, out)
			src := ggsource.New(cfg.Synth.Width, cfg.Synth.Height, f.DataType())
			for i := 0; i < cfg.Synth.Frames; i++ {
				if err := c.Context.Err(); err != nil {
					log.Warn(l10n.T("Interrupted, shutting down..."))
					return err
				}
				buf, err := src.Next()
				if err != nil {
					return err
				}
				if !w.Write(buf) {
					return fmt.Errorf("encode frame %d failed", i)
				}
			}
			if err := w.Finalize(); err != nil {
				return err
			}
			log.Info("Output saved to %s", out)
			return nil
		},
	}
}

func transcodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "transcode",
		Usage:     l10n.T("Decode a video and re-encode it frame by frame"),
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    l10n.T("Output video file path"),
			},
			&cli.IntFlag{Name: "start", Usage: l10n.T("First frame of the range (negative counts from the end)")},
			&cli.IntFlag{Name: "end", Usage: l10n.T("Frame after the last one of the range (0 = end of stream)")},
			&cli.StringFlag{Name: "codec", Usage: l10n.T("Encoder name (e.g. libx264)")},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New(l10n.T("input file argument is required"))
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("codec") {
				cfg.Codec = c.String("codec")
			}
			log := newLogger(cfg)

			f, err := newFactory(cfg, log)
			if err != nil {
				return err
			}
			in := c.Args().First()
			s, err := reader.Open(f, in, log)
			if err != nil {
				return err
			}
			defer s.Close()

			if c.IsSet("start") || c.IsSet("end") {
				end := c.Int("end")
				if end == 0 {
					end = s.Len()
				}
				if err := s.SetRange(c.Int("start"), end); err != nil {
					return err
				}
			}

			props := s.Properties()
			props.CodecName = cfg.Codec
			out := c.String("out")
			w, err := writer.Create(f, out, props, cfg.EncoderOptions(), log)
			if err != nil {
				return err
			}
			defer w.Close()

			log.Info("Transcoding %s to %s...", in, out)
			if !s.Iterate() {
				return fmt.Errorf("seek to range start failed")
			}
			for {
				if err := c.Context.Err(); err != nil {
					log.Warn(l10n.T("Interrupted, shutting down..."))
					return err
				}
				buf, ok, err := s.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				if !w.Write(buf) {
					return fmt.Errorf("encode frame %d failed", w.FramesWritten())
				}
			}
			if err := w.Finalize(); err != nil {
				return err
			}
			log.Info("Wrote %d frames", w.FramesWritten())
			log.Info("Output saved to %s", out)
			return nil
		},
	}
}
