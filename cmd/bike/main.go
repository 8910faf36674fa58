package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/MingLLuo/BIKE-KEM/internal/config"
)

const (
	configFlag   = "config"
	logLevelFlag = "loglevel"
	paramsFlag   = "params"
	seedFlag     = "seed"
)

var Version = "DEV"

func main() {
	app := &cli.App{}
	app.Name = "bike"
	app.Usage = "BIKE key encapsulation from the command line"
	app.UsageText = "bike [global options] command [command options]"
	app.Version = Version
	app.Flags = flags()
	app.Commands = commands()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    configFlag,
			Usage:   "YAML file with defaults for the other flags",
			EnvVars: []string{"BIKE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    logLevelFlag,
			Usage:   "Application logging level {debug, info, warn, error, fatal}",
			EnvVars: []string{"BIKE_LOGLEVEL"},
		},
		&cli.StringFlag{
			Name:    paramsFlag,
			Usage:   "Parameter set {bike128, bike192, bike256}",
			EnvVars: []string{"BIKE_PARAMS"},
		},
		&cli.Int64Flag{
			Name:    seedFlag,
			Usage:   "Seed for reproducible runs, zero included. Never use for real keys",
			EnvVars: []string{"BIKE_SEED"},
		},
	}
}

// loadConfig reads the configuration file and lets explicitly set flags win over it.
func loadConfig(c *cli.Context) (*config.Configuration, error) {
	path := c.String(configFlag)
	if path == "" {
		path = config.FindDefaultConfigPath(".")
	}
	cfg, warnings, err := config.ReadConfigFile(path)
	if err != nil {
		return nil, err
	}

	if c.IsSet(logLevelFlag) {
		cfg.LogLevel = c.String(logLevelFlag)
	}
	if c.IsSet(paramsFlag) {
		cfg.Params = c.String(paramsFlag)
	}
	if c.IsSet(seedFlag) {
		seed := c.Int64(seedFlag)
		cfg.Seed = &seed
	}

	log := newLogger(cfg.LogLevel)
	if cfg.Source() != "" {
		log.Debug().Str("file", cfg.Source()).Msg("Loaded configuration")
	}
	if warnings != "" {
		log.Warn().Msgf("Your configuration file has unknown keys: %s", warnings)
	}
	return cfg, nil
}

func newLogger(level string) *zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return &log
}
