package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"bible-tui/internal/config"
	"bible-tui/internal/logging"
	"bible-tui/internal/source"
	"bible-tui/internal/theme"
	"bible-tui/internal/ui"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
)

func build() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s)", v, c)
}

type flags struct {
	configPath string
	source     string
	theme      string
	logLevel   string
	logFile    string
}

func main() {
	var (
		f         flags
		cfg       *config.Config
		logCloser func()
	)

	app := &cli.Command{
		Name:    "bible-tui",
		Usage:   "Read the Bible in your terminal",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("BIBLE_TUI_CONFIG"),
				Value:       config.DefaultPath(),
				Destination: &f.configPath,
			},
			&cli.StringFlag{
				Name:        "source",
				Aliases:     []string{"s"},
				Usage:       "URL or path of the JSON document (.gz, .xz and .zip accepted)",
				Sources:     cli.EnvVars("BIBLE_TUI_SOURCE"),
				Destination: &f.source,
			},
			&cli.StringFlag{
				Name:        "theme",
				Usage:       fmt.Sprintf("color theme %v", theme.Keys()),
				Sources:     cli.EnvVars("BIBLE_TUI_THEME"),
				Destination: &f.theme,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("BIBLE_TUI_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.logLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("BIBLE_TUI_LOG_FILE"),
				Value:       config.DefaultLogFile(),
				Destination: &f.logFile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logging.New(f.logLevel, f.logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err = config.Load(f.configPath)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if f.source != "" {
				cfg.Source = f.source
			}
			if f.theme != "" {
				cfg.Theme = f.theme
			}
			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid flags: %w", err)
			}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() > 0 {
				return fmt.Errorf("unexpected argument %q. Run 'bible-tui --help' for usage", c.Args().First())
			}
			return run(ctx, cfg)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Component("reader")
	logger.Info().Str("version", build()).Str("source", cfg.Source).Str("theme", cfg.Theme).Msg("starting")

	model := ui.NewModel(ui.Options{
		Source:            source.New(cfg.Source, source.WithTimeout(cfg.HTTPTimeout), source.WithUserAgent("bible-tui/"+version)),
		Theme:             theme.Get(cfg.Theme),
		Overscan:          cfg.Overscan,
		AnimationFrames:   cfg.Animation.Frames,
		AnimationInterval: cfg.Animation.Interval,
		Context:           ctx,
		Logger:            logger,
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
