package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"mriopack/internal/config"
	"mriopack/internal/infrastructure"
	"mriopack/internal/schema"
	"mriopack/internal/services"
	"mriopack/pkg/contracts"
)

type rootOptions struct {
	configFile string
	logLevel   string
}

// env is what every command needs once configuration is loaded
type env struct {
	cfg       *config.Config
	paths     *config.Paths
	logger    *slog.Logger
	providers *infrastructure.OTelProviders
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "mriopack",
		Short:         "Convert multi-regional input-output tables into data packages",
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(infrastructure.EnsureTraceID(cmd.Context()))
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "configuration file (default: mriopack.yaml when present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newConvertCmd(opts),
		newInspectCmd(opts),
		newVerifyCmd(opts),
		newVersionsCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// setup loads the configuration and initializes logging and telemetry
func (o *rootOptions) setup(ctx context.Context) (*env, error) {
	path := o.configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	paths, err := cfg.ResolvePaths("")
	if err != nil {
		return nil, err
	}
	cfg.Logging.FilePath = paths.LogFile

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromTelemetry(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize opentelemetry: %w", err)
	}

	logger.DebugContext(ctx, "configuration loaded", slog.String("config_file", path))
	return &env{cfg: cfg, paths: paths, logger: logger, providers: providers}, nil
}

// close flushes telemetry and the log file
func (e *env) close(ctx context.Context) {
	if err := e.providers.Shutdown(ctx); err != nil {
		e.logger.WarnContext(ctx, "telemetry shutdown failed", slog.String("error", err.Error()))
	}
	_ = infrastructure.CloseLogFile()
}

// conversions returns the conversion service over the built-in registry,
// extended by the configured versions file when there is one
func (e *env) conversions() (*services.ConversionService, error) {
	versions := schema.Default()
	if e.paths.VersionsFile != "" {
		var err error
		if versions, err = schema.LoadFile(e.paths.VersionsFile); err != nil {
			return nil, err
		}
	}
	return services.NewConversionService(e.cfg.Conversion, versions, e.providers.Meter, e.logger)
}
