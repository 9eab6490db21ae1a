// Command spicectl runs the inpainting pipeline without the panel: it computes
// regions, extracts region exports, runs full generations on image files and
// edits the settings file. It can also serve a local stub backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/soocke/spice-go/config"
	"github.com/soocke/spice-go/domain/backend"
	"github.com/soocke/spice-go/domain/geometry"
	"github.com/soocke/spice-go/domain/host"
	"github.com/soocke/spice-go/domain/pipeline"
	"github.com/soocke/spice-go/domain/raster"
	"github.com/soocke/spice-go/domain/scratch"
	"github.com/soocke/spice-go/domain/sdstub"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "spice.json"
	}
	return filepath.Join(dir, "spice", "settings.json")
}

func main() {
	app := &cli.App{
		Name:  "spicectl",
		Usage: "Run region inpainting from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: defaultConfigPath(), Usage: "settings file (.json or .yaml)", EnvVars: []string{"SPICE_CONFIG"}},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before settings"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log pipeline details to stderr"},
		},
		Before: func(c *cli.Context) error {
			return config.LoadDotEnv(c.String("env-file"))
		},
		Commands: []*cli.Command{
			regionCommand(),
			extractCommand(),
			generateCommand(),
			settingsCommand(),
			stubCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}

func newLogger(c *cli.Context) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func regionCommand() *cli.Command {
	return &cli.Command{
		Name:  "region",
		Usage: "Print the square generation region for a selection",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "selection", Aliases: []string{"s"}, Required: true, Usage: "left,top,right,bottom"},
			&cli.StringFlag{Name: "canvas", Required: true, Usage: "WIDTHxHEIGHT"},
		},
		Action: func(c *cli.Context) error {
			sel, err := parseRect(c.String("selection"))
			if err != nil {
				return err
			}
			w, h, err := parseSize(c.String("canvas"))
			if err != nil {
				return err
			}
			region := geometry.ComputeRegion(sel, w, h)
			fmt.Fprintf(c.App.Writer, "%s %s (%dx%d)\n", cyan("region"), region.String(), region.Width(), region.Height())
			return nil
		},
	}
}

// session is one opened input image with its selection applied.
type session struct {
	host   *raster.Host
	doc    host.Document
	store  *scratch.Storage
	cfg    *config.Config
	logger *slog.Logger
}

func openSession(ctx context.Context, c *cli.Context) (*session, error) {
	logger := newLogger(c)
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	sel, err := parseRect(c.String("selection"))
	if err != nil {
		return nil, err
	}
	dir := cfg.ScratchDir
	if dir == "" {
		dir = scratch.DefaultDir()
	}
	store, err := scratch.New(dir, logger)
	if err != nil {
		return nil, err
	}

	h := raster.New(logger, raster.Options{})
	doc, err := h.Open(c.String("input"))
	if err != nil {
		return nil, err
	}
	err = h.ExecuteAsModal(ctx, "Select Region", func(context.Context) error {
		return doc.SetSelection(sel)
	})
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", sel.String(), err)
	}
	return &session{host: h, doc: doc, store: store, cfg: cfg, logger: logger}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Write the region image and mask that would be sent to the backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "source image"},
			&cli.StringFlag{Name: "selection", Aliases: []string{"s"}, Required: true, Usage: "left,top,right,bottom"},
			&cli.StringFlag{Name: "image", Value: "region.png", Usage: "output path for the region image"},
			&cli.StringFlag{Name: "mask", Value: "mask.png", Usage: "output path for the region mask"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := openSession(ctx, c)
			if err != nil {
				return err
			}
			sel, _ := s.doc.SelectionBounds().Get()
			region := geometry.ComputeRegion(sel, s.doc.Width(), s.doc.Height())

			ex := pipeline.NewExtractor(s.host, s.store, s.logger)
			outputs := []struct {
				kind pipeline.Kind
				path string
			}{
				{pipeline.KindMask, c.String("mask")},
				{pipeline.KindImage, c.String("image")},
			}
			for _, o := range outputs {
				data, err := ex.Extract(ctx, s.doc, region, o.kind)
				if err != nil {
					return fmt.Errorf("extract %s: %w", o.kind, err)
				}
				if err := os.WriteFile(o.path, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "%s %s -> %s\n", green("wrote"), o.kind, o.path)
			}
			fmt.Fprintf(c.App.Writer, "%s %s\n", cyan("region"), region.String())
			return nil
		},
	}
}

func defaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-inpainted.png"
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Inpaint the selection of an image and save the flattened result",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "source image"},
			&cli.StringFlag{Name: "selection", Aliases: []string{"s"}, Required: true, Usage: "left,top,right,bottom"},
			&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "generation prompt"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "result path (default <input>-inpainted.png)"},
			&cli.Float64Flag{Name: "denoise", Value: -1, Usage: "denoising strength 0..1 (default from settings)"},
			&cli.Float64Flag{Name: "control-end", Value: -1, Usage: "ControlNet guidance end 0..1 (default from settings)"},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signalContext()
			defer cancel()
			s, err := openSession(ctx, c)
			if err != nil {
				return err
			}
			inp, err := backend.New(s.cfg, s.logger)
			if err != nil {
				return err
			}
			gen := pipeline.NewGenerator(s.host, s.store, inp, s.logger, pipeline.Options{
				ProbeTimeout: backend.ProbeTimeout(s.cfg),
				Locker:       s.store,
			})
			out := c.App.Writer
			gen.AddListener(func(prev, next pipeline.Stage) {
				fmt.Fprintf(out, "%s %s\n", yellow("stage"), next.String())
			})

			req := pipeline.GenerateRequest{
				Prompt:     c.String("prompt"),
				Denoise:    s.cfg.Denoise,
				ControlEnd: s.cfg.ControlEnd,
			}
			if v := c.Float64("denoise"); v >= 0 {
				req.Denoise = min(v, 1)
			}
			if v := c.Float64("control-end"); v >= 0 {
				req.ControlEnd = min(v, 1)
			}
			res, err := gen.Generate(ctx, req)
			if err != nil {
				return errors.New(pipeline.Describe(err))
			}

			path := c.String("output")
			if path == "" {
				path = defaultOutput(c.String("input"))
			}
			if err := s.doc.ExportPNG(path); err != nil {
				return fmt.Errorf("save result: %w", err)
			}
			fmt.Fprintf(out, "%s region %s in %.1fs -> %s\n", green("done"), res.Region.String(), res.Duration.Seconds(), path)
			return nil
		},
	}
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change the settings file",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print every setting",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}
					for _, k := range cfg.Keys() {
						v, err := cfg.Get(k)
						if err != nil {
							return err
						}
						if strings.HasSuffix(k, "api_key") && v != "" {
							v = "********"
						}
						fmt.Fprintf(c.App.Writer, "%s = %v\n", cyan(k), v)
					}
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Assign one or more settings",
				ArgsUsage: "key=value [key=value...]",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("nothing to set")
					}
					path := c.String("config")
					cfg, err := config.Load(path)
					if err != nil {
						return err
					}
					for _, arg := range c.Args().Slice() {
						k, v, err := parseAssignment(arg)
						if err != nil {
							return err
						}
						if err := cfg.Set(k, v); err != nil {
							return err
						}
					}
					if err := cfg.Save(path); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s %s\n", green("saved"), path)
					return nil
				},
			},
		},
	}
}

func stubCommand() *cli.Command {
	return &cli.Command{
		Name:  "stub",
		Usage: "Serve a local img2img stand-in for testing the panel",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "127.0.0.1:7860", Usage: "listen address"},
			&cli.StringFlag{Name: "tint", Value: "#ff00ff", Usage: "color blended into masked pixels"},
		},
		Action: func(c *cli.Context) error {
			tint, err := parseHexColor(c.String("tint"))
			if err != nil {
				return err
			}
			logger := newLogger(c)
			srv := &http.Server{
				Addr:              c.String("addr"),
				Handler:           sdstub.New(logger, tint).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}
			ctx, cancel := signalContext()
			defer cancel()
			go func() {
				<-ctx.Done()
				shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				_ = srv.Shutdown(shutdownCtx)
			}()
			fmt.Fprintf(c.App.Writer, "%s http://%s%s\n", green("listening"), srv.Addr, sdstub.Img2ImgPath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
