package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/soocke/spice-go/app"
	"github.com/soocke/spice-go/config"
	"github.com/soocke/spice-go/debug"
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "spice.json"
	}
	return filepath.Join(dir, "spice", "settings.json")
}

func main() {
	cliApp := &cli.App{
		Name:  "spice",
		Usage: "Inpaint selected regions of an image with a Stable Diffusion backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: defaultConfigPath(), Usage: "settings file (.json or .yaml)", EnvVars: []string{"SPICE_CONFIG"}},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before settings"},
			&cli.BoolFlag{Name: "debug", Usage: "debug logging and runtime stats"},
		},
		Action: run,
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if err := config.LoadDotEnv(c.String("env-file")); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	cfgPath := c.String("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// Keep going with defaults; the file is left untouched.
		fmt.Fprintf(os.Stderr, "settings: %v\n", err)
	}
	cfg.ApplyEnv()
	if c.Bool("debug") {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(os.Stdout, level)
	if cfg.Debug {
		debug.StartGoroutineLogger(5*time.Second, logger)
		debug.StartMemLogger(5*time.Second, logger)
	}

	container, err := app.BuildContainer(cfg, cfgPath, logger)
	if err != nil {
		return err
	}
	application := app.NewApp("Spice", 720, 860, container)
	application.Start()
	return nil
}
