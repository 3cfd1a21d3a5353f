package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appconfig "github.com/dkessel/bomorder/internal/config"
	"github.com/dkessel/bomorder/pkg/interfaces/cli/commands"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig appconfig.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "warn"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "console"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return config.Build()
}

func main() {
	// Command line flags
	var (
		partsFile     = flag.String("parts", "", "Path to part namespace CSV file")
		posedFile     = flag.String("posed", "", "Path to posed parts CSV file")
		catalogFile   = flag.String("catalog", "", "Path to catalog snapshot CSV file")
		shippingFile  = flag.String("shipping", "", "Path to shipping policy CSV file (optional)")
		inventoryFile = flag.String("inventory", "", "Path to inventory CSV file (optional)")
		configFile    = flag.String("config", "", "Path to YAML configuration file (optional)")
		outputDir     = flag.String("output", "", "Output directory for results (optional)")
		format        = flag.String("format", "text", "Output format: text, json")
		logLevel      = flag.String("log-level", "", "Log level override: debug, info, warn, error")
		verbose       = flag.Bool("verbose", false, "Print the optimizer decision trace")
		help          = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	loggingConfig := appconfig.LoggingConfig{}
	if *configFile != "" {
		if conf, err := appconfig.LoadConfiguration(*configFile); err == nil {
			loggingConfig = conf.Logging
		}
	}

	logger, err := initializeLogger(loggingConfig, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	config := commands.Config{
		PartsFile:     *partsFile,
		PosedFile:     *posedFile,
		CatalogFile:   *catalogFile,
		ShippingFile:  *shippingFile,
		InventoryFile: *inventoryFile,
		ConfigFile:    *configFile,
		OutputDir:     *outputDir,
		Format:        *format,
		Verbose:       *verbose,
		Help:          *help,
	}

	cmd := commands.NewPlanCommand(config, logger)
	ctx := context.Background()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
