// Package util holds the setup steps shared by the commands.
package util

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/accbroadcast-go/log"
	"github.com/mpapenbr/accbroadcast-go/pkg/config"
	"github.com/mpapenbr/accbroadcast-go/pkg/utils"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// AddLogFlags registers the logging and telemetry flags of cmd
func AddLogFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&config.LogLevel,
		"log-level",
		"info",
		"controls the log level (debug, info, warn, error, fatal)")
	cmd.Flags().StringVar(&config.SQLLogLevel,
		"sql-log-level",
		"debug",
		"controls the log level for sql methods")
	cmd.Flags().StringVar(&config.LogFormat,
		"log-format",
		"text",
		"controls the log output format (json, text)")
	cmd.Flags().StringVar(&config.LogConfig,
		"log-config",
		"",
		"yaml file with per logger levels (reloaded on change)")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data (use 'stdout' for console)")
}

// SetupLogger installs the default logger according to the log flags.
// With a log config file the levels are taken from that file and the file is
// watched for changes until ctx is done.
func SetupLogger(ctx context.Context) *log.Logger {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	var logger *log.Logger
	if config.LogConfig != "" {
		logger = filteredLogger(ctx, opts)
	}
	if logger == nil {
		switch config.LogFormat {
		case "json":
			logger = log.New(os.Stderr,
				ParseLogLevel(config.LogLevel, log.InfoLevel), opts...)
		default:
			logger = log.DevLogger(os.Stderr,
				ParseLogLevel(config.LogLevel, log.DebugLevel), opts...)
		}
	}
	log.ResetDefault(logger)
	return logger
}

func filteredLogger(ctx context.Context, opts []log.Option) *log.Logger {
	cfg, err := log.LoadConfig(config.LogConfig)
	if err != nil {
		log.Warn("could not read log config, using log level",
			log.String("file", config.LogConfig), log.ErrorField(err))
		return nil
	}
	f, err := log.NewFilter(cfg)
	if err != nil {
		log.Warn("invalid log config, using log level",
			log.String("file", config.LogConfig), log.ErrorField(err))
		return nil
	}
	go func() {
		if err := log.WatchConfig(ctx, config.LogConfig, f); err != nil {
			log.Warn("log config is not watched", log.ErrorField(err))
		}
	}()
	return log.NewFiltered(os.Stderr, config.LogFormat, f, opts...)
}

// SQLLogger returns a logger for sql statements using the sql log level
func SQLLogger() *log.Logger {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	level := ParseLogLevel(config.SQLLogLevel, log.InfoLevel)
	if config.LogFormat == "json" {
		return log.New(os.Stderr, level, opts...).Named("sql")
	}
	return log.DevLogger(os.Stderr, level, opts...).Named("sql")
}

// SetupTelemetry starts exporting metrics and traces if enabled.
// The result is nil if telemetry is disabled or could not be set up.
func SetupTelemetry(ctx context.Context) *config.Telemetry {
	if !config.EnableTelemetry {
		return nil
	}
	log.Info("Enabling telemetry", log.String("endpoint", config.TelemetryEndpoint))
	telemetry, err := config.SetupTelemetry(ctx)
	if err != nil {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
		return nil
	}
	return telemetry
}

func ParseDuration(value string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Warn("Invalid duration value. Using default",
			log.String("value", value),
			log.Duration("default", defaultVal),
			log.ErrorField(err))
		return defaultVal
	}
	return d
}

// WaitForRequiredServices blocks until the configured database and NATS
// servers accept connections.
func WaitForRequiredServices(ctx context.Context) error {
	timeout := ParseDuration(config.WaitForServices, 60*time.Second)
	addrs := []string{}
	if config.DB != "" {
		if addr := utils.ExtractFromDBURL(config.DB); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	if config.NatsURL != "" {
		if addr := utils.ExtractFromNatsURL(config.NatsURL); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	if len(addrs) == 0 {
		return nil
	}
	log.Debug("Waiting for connection checks to return", log.Strings("addrs", addrs))
	if err := utils.WaitForServices(ctx, timeout, addrs...); err != nil {
		return err
	}
	log.Debug("Required services are available")
	return nil
}
