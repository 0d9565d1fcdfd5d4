package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greatbody/charlock/internal/backend"
	"github.com/greatbody/charlock/internal/config"
	"github.com/greatbody/charlock/internal/scan"
	"github.com/greatbody/charlock/internal/transcoder"
)

type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	detector   *transcoder.Detector
	converter  *transcoder.Converter
	normalizer *transcoder.Normalizer
	filter     *scan.Filter
}

var (
	configPath string
	verbose    bool
	a          = &app{}
)

var rootCmd = &cobra.Command{
	Use:           "charlock",
	Short:         "Detect and convert character encodings",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return a.setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = a.logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "charlock.json", "Path to config file (JSON or TOML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(detectCmd, detectAllCmd, convertCmd, normalizeCmd, encodingsCmd)
}

func (a *app) setup() error {
	var err error
	if verbose {
		a.logger, err = zap.NewDevelopment()
	} else {
		a.logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// Load configuration
	a.cfg, err = config.LoadConfig(configPath)
	if err != nil {
		a.logger.Debug("could not load config, using default values", zap.String("path", configPath), zap.Error(err))
		a.cfg = config.DefaultConfig()
	}

	registry := backend.NewRegistry()

	detectorOpts := []transcoder.DetectorOption{
		transcoder.WithDetectorLogger(a.logger),
		transcoder.WithStripTags(a.cfg.Detector.StripTags),
		transcoder.WithLimit(a.cfg.Detector.Limit),
	}
	if a.cfg.Detector.BinaryScanLength > 0 {
		detectorOpts = append(detectorOpts, transcoder.WithBinaryScanLength(a.cfg.Detector.BinaryScanLength))
	}
	a.detector, err = transcoder.NewDetector(backend.NewChardetService(), registry, detectorOpts...)
	if err != nil {
		return fmt.Errorf("init detector: %w", err)
	}

	converterOpts := []transcoder.ConverterOption{transcoder.WithConverterLogger(a.logger)}
	if a.cfg.Converter.MaxInputSize > 0 {
		converterOpts = append(converterOpts, transcoder.WithMaxInputSize(a.cfg.Converter.MaxInputSize))
	}
	a.converter, err = transcoder.NewConverter(backend.NewXTextService(registry), converterOpts...)
	if err != nil {
		return fmt.Errorf("init converter: %w", err)
	}

	a.normalizer = transcoder.NewNormalizer(a.detector, a.converter)
	a.filter = scan.NewFilter(a.cfg.Scan.Extensions)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
