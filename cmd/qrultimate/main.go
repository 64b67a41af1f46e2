package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrultimate/internal/config"
	"github.com/cristianadrielbraun/qrultimate/internal/logger"
	"github.com/cristianadrielbraun/qrultimate/internal/logo"
	"github.com/cristianadrielbraun/qrultimate/internal/scan"
	"github.com/cristianadrielbraun/qrultimate/internal/server"
	"github.com/cristianadrielbraun/qrultimate/internal/settings"
	"github.com/cristianadrielbraun/qrultimate/internal/studio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "qrultimate",
		Usage: "render classic and styled QR codes, or serve the studio",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config.yaml (default ./config.yaml when present)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "development logging on stderr",
			},
		},
		Before: func(c *cli.Context) error {
			// stdout may carry the rendered image.
			return logger.Initialize(!c.Bool("verbose"), "stderr")
		},
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
		Commands: []*cli.Command{
			renderCommand(),
			serveCommand(),
			scanCommand(),
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "render one QR code to a file",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: settings.ModePro.String(), Usage: "classic or pro"},
			&cli.StringFlag{Name: "url", Aliases: []string{"u", "data"}, Usage: "destination text (placeholder when empty)"},
			&cli.StringFlag{Name: "fg", Usage: "foreground color, #rrggbb"},
			&cli.StringFlag{Name: "bg", Usage: "background color, #rrggbb or transparent"},
			&cli.StringFlag{Name: "level", Aliases: []string{"l"}, Usage: "error correction: L, M, Q or H"},
			&cli.IntFlag{Name: "margin", Usage: "margin in pixels, 0..50 step 5"},
			&cli.StringFlag{Name: "module", Usage: "pro module shape: square, rounded, dots"},
			&cli.StringFlag{Name: "corner", Usage: "pro finder shape: square, extra-rounded, dot"},
			&cli.IntFlag{Name: "size", Aliases: []string{"s"}, Usage: "edge in pixels (default 280 classic, 1000 pro)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: settings.FormatPNG.String(), Usage: "png, jpeg or svg"},
			&cli.PathFlag{Name: "logo", Usage: "image to embed at the center"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output path, - for stdout (default: export filename)"},
			&cli.BoolFlag{Name: "verify", Usage: "decode the result and fail when it does not scan back"},
			&cli.BoolFlag{Name: "terminal", Aliases: []string{"t"}, Usage: "also print the symbol to the terminal"},
		},
		Action: runRender,
	}
}

func renderSettings(c *cli.Context) (settings.Mode, settings.Settings, error) {
	mode, err := settings.ParseMode(c.String("mode"))
	if err != nil {
		return 0, settings.Settings{}, err
	}
	s := settings.Defaults(mode)
	s.Data = c.String("url")

	if c.IsSet("fg") {
		if s.Foreground, err = settings.ParseColor(c.String("fg")); err != nil {
			return 0, s, err
		}
	}
	if c.IsSet("bg") {
		s.Background = settings.ColorOr(c.String("bg"), s.Background)
	}
	if c.IsSet("level") {
		if s.Level, err = settings.ParseLevel(c.String("level")); err != nil {
			return 0, s, err
		}
	}
	if c.IsSet("margin") {
		s.Margin = c.Int("margin")
	}
	if c.IsSet("module") {
		if s.ModuleShape, err = settings.ParseModuleShape(c.String("module")); err != nil {
			return 0, s, err
		}
	}
	if c.IsSet("corner") {
		if s.CornerShape, err = settings.ParseCornerShape(c.String("corner")); err != nil {
			return 0, s, err
		}
	}
	if s.Format, err = settings.ParseFormat(c.String("format")); err != nil {
		return 0, s, err
	}
	return mode, s, nil
}

func runRender(c *cli.Context) error {
	if c.Bool("terminal") && c.String("out") == "-" {
		return errTerminalOnStdout
	}
	mode, s, err := renderSettings(c)
	if err != nil {
		return err
	}

	if path := c.Path("logo"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "open logo")
		}
		s.Logo, err = logo.Read(c.Context, f, filepath.Base(path), 0)
		f.Close()
		if err != nil {
			return err
		}
	}

	size := c.Int("size")
	if size == 0 {
		size = s.ExportSize
	}

	art, err := studio.Render(c.Context, mode, s, size)
	if err != nil {
		return err
	}
	if c.Bool("verify") {
		if err := studio.Verify(art, s.Effective()); err != nil {
			return errors.Wrap(err, "verify")
		}
	}

	out := c.String("out")
	if out == "" {
		out = art.Filename
	}
	if out == "-" {
		_, err = os.Stdout.Write(art.Data)
	} else {
		err = os.WriteFile(out, art.Data, 0o644)
	}
	if err != nil {
		return errors.Wrap(err, "write output")
	}
	logger.L().Info("rendered",
		zap.String(logger.ModeKey, mode.String()),
		zap.String("out", out),
		zap.Int("width", art.Width),
		zap.Int("height", art.Height),
	)

	if c.Bool("terminal") {
		return printTerminal(s)
	}
	return nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "start the HTTP studio",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides server.addr"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if c.IsSet("addr") {
				cfg.Addr = c.String("addr")
			}
			if err := logger.Initialize(cfg.Production); err != nil {
				return err
			}
			return server.Run(c.Context, cfg)
		},
	}
}

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "decode the QR code in an image file",
		ArgsUsage: "<image>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("scan takes exactly one image path")
			}
			f, err := os.Open(c.Args().First())
			if err != nil {
				return errors.Wrap(err, "open image")
			}
			defer f.Close()

			res, err := scan.DecodeReader(f)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, res.Text)
			return nil
		},
	}
}
