package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aravindsairam001/Autonomous-Drone-Painter/cmd/painter/app"
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/flightlink"
	"github.com/aravindsairam001/Autonomous-Drone-Painter/internal/wall"
)

// Exit codes distinguish failure classes for the launch scripts.
const (
	exitOK         = 0
	exitConfig     = 1
	exitConnection = 2
	exitMission    = 3
)

func main() {
	var logLevel slog.LevelVar
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &logLevel}))

	var configPath string
	var overrides app.Overrides
	flag.StringVar(&configPath, "c", "", "Path to the configuration file")
	flag.StringVar(&overrides.Pattern, "pattern", "", "Coverage pattern override. [vertical, horizontal]")
	flag.Float64Var(&overrides.VerticalSpeed, "vertical-speed", 0, "Vertical speed override, m/s")
	flag.Float64Var(&overrides.LateralSpeed, "lateral-speed", 0, "Lateral speed override, m/s")
	flag.Float64Var(&overrides.PositioningSpeed, "positioning-speed", 0, "Positioning speed override, m/s")
	flag.Float64Var(&overrides.Tolerance, "tolerance", 0, "Waypoint arrival radius override, meters")
	flag.Parse()

	if configPath == "" {
		logger.Error("no configuration file provided")
		os.Exit(exitConfig)
	}

	config, err := app.LoadConfig(configPath)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to load configuration file: %s", err.Error()), slog.String("path", configPath))
		os.Exit(exitConfig)
	}

	if err = config.Apply(overrides); err != nil {
		logger.Error(err.Error())
		os.Exit(exitConfig)
	}

	logLevel.Set(config.Settings.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = app.Run(ctx, config, logger); err != nil {
		logger.Error(err.Error())

		cancel()
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var cfgErr *wall.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		return exitConfig
	case errors.Is(err, flightlink.ErrConnection), errors.Is(err, flightlink.ErrCommandRejected):
		return exitConnection
	default:
		return exitMission
	}
}
