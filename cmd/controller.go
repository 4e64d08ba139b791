package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/mecha-org/trustzone-ctrl/pkg/trustzone"
)

// GlobalFlags returns the flags shared by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "Path to a YAML configuration file",
			Sources: cli.EnvVars("TRUSTZONE_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "root-path",
			Usage:   "Mount point of the secure element's host-side interface",
			Sources: cli.EnvVars("TRUSTZONE_ROOT_PATH"),
		},
		&cli.DurationFlag{
			Name:  "helper-timeout",
			Usage: "Maximum run time of the certificate helper",
		},
		&cli.BoolFlag{
			Name:  "dedicated-error-kinds",
			Usage: "Report each crypto operation failure under its own error kind",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (trace, debug, info, warn, error)",
			Value: "warn",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Output format: text, json or cbor",
			Value: formatText,
		},
	}
}

// loadConfig layers defaults < config file < flags.
func loadConfig(cmd *cli.Command) (trustzone.Config, error) {
	var cfg trustzone.Config

	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return trustzone.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		cfg, err = trustzone.ParseConfig(data)
		if err != nil {
			return trustzone.Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if cmd.IsSet("root-path") {
		cfg.RootPath = cmd.String("root-path")
	}
	if cmd.IsSet("helper-timeout") {
		cfg.HelperTimeout = cmd.Duration("helper-timeout")
	}
	if cmd.Bool("dedicated-error-kinds") {
		cfg.ErrorMapping = trustzone.MappingDedicated
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return trustzone.Config{}, err
	}
	return cfg, nil
}

func newLogger(cmd *cli.Command) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
	}
	out := zerolog.ConsoleWriter{Out: errWriter(cmd), NoColor: color.NoColor}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

func newController(cmd *cli.Command) (*trustzone.Controller, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	ctrl, err := trustzone.New(cfg, trustzone.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create trust zone controller: %w", err)
	}
	return ctrl, nil
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
