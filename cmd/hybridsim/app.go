package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "HYBRIDSIM_"

// Config holds the process streams.
type Config struct {
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() Config {
	return Config{Stdout: os.Stdout, Stderr: os.Stderr}
}

func run(args []string, cfg Config) error {
	return newApp(cfg).Run(args)
}

func newApp(cfg Config) *cli.App {
	return &cli.App{
		Name:      "hybridsim",
		Usage:     "simulate hybrid post-quantum messaging between participants",
		Writer:    cfg.Stdout,
		ErrWriter: cfg.Stderr,
		Commands: []*cli.Command{
			{
				Name:    "run",
				Aliases: []string{"r"},
				Usage:   "Run a scenario and print statistics",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "scheme",
						Aliases: []string{"s"},
						Value:   defaultScenario().Scheme,
						Usage:   "primitive suite (" + schemeList() + ")",
						EnvVars: []string{envPrefix + "SCHEME"},
					},
					&cli.IntFlag{
						Name:    "users",
						Aliases: []string{"u"},
						Value:   defaultScenario().Users,
						Usage:   "number of participants",
						EnvVars: []string{envPrefix + "USERS"},
					},
					&cli.IntFlag{
						Name:    "messages",
						Aliases: []string{"m"},
						Value:   defaultScenario().Messages,
						Usage:   "number of blocks to send",
						EnvVars: []string{envPrefix + "MESSAGES"},
					},
					&cli.StringFlag{
						Name:    "mode",
						Value:   defaultScenario().Mode,
						Usage:   "encryptor type (mailbox, team)",
						EnvVars: []string{envPrefix + "MODE"},
					},
					&cli.StringFlag{
						Name:    "delivery",
						Value:   defaultScenario().Delivery,
						Usage:   "delivery mode (direct, json)",
						EnvVars: []string{envPrefix + "DELIVERY"},
					},
					&cli.IntFlag{
						Name:    "concurrency",
						Usage:   "parallel recipients per batch (0 = number of CPUs)",
						EnvVars: []string{envPrefix + "CONCURRENCY"},
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "YAML scenario file",
						EnvVars: []string{envPrefix + "CONFIG"},
					},
					&cli.StringFlag{
						Name:  "env-file",
						Usage: "dotenv file with " + envPrefix + "* settings",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print the report as JSON",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "log protocol events to stderr",
					},
				},
				Action: func(c *cli.Context) error {
					return runAction(c, cfg)
				},
			},
		},
	}
}

func runAction(c *cli.Context, cfg Config) error {
	scenario, err := loadScenario(c)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Stderr, c.Bool("verbose"))
	defer func() { _ = logger.Sync() }()

	report, err := simulate(c.Context, scenario, logger)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return report.writeJSON(cfg.Stdout)
	}
	return report.writeText(cfg.Stdout)
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	encCfg := zap.NewProductionEncoderConfig()
	if verbose {
		level = zapcore.DebugLevel
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core).Named("hybridsim")
}
