package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"textclassd/internal/backend"
	"textclassd/internal/bundle"
	"textclassd/internal/config"
	"textclassd/internal/httpapi"
	"textclassd/internal/predictor"
	"textclassd/internal/registry"
)

// buildRootCmd constructs the Cobra command tree.
func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "textclassd",
		Short:         "Text classifier serving daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to config file (yaml, json or toml)")
	root.PersistentFlags().String("registry", defaultRegistryPath(), "Path to the model registry JSON file")
	root.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error")
	root.PersistentFlags().String("log-format", "json", "Log format: json|console")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP prediction server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
	serveCmd.Flags().String("addr", "", "HTTP listen address, e.g. :8000 (defaults TEXTCLASSD_ADDR or :8000)")
	serveCmd.Flags().String("onnx-library", "", "Path to the onnxruntime shared library (defaults TEXTCLASSD_ONNX_LIB)")
	serveCmd.Flags().Int("workers", 0, "Concurrent inference workers (0 = default)")
	serveCmd.Flags().Int("max-batch", 0, "Maximum texts per batch request (0 = default 100)")
	serveCmd.Flags().Bool("no-load", false, "Do not load the best model at startup")
	serveCmd.Flags().Bool("cors", false, "Enable permissive CORS for browser clients")
	serveCmd.Flags().StringSlice("cors-origins", []string{"*"}, "Allowed CORS origins")
	root.AddCommand(serveCmd)

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List model versions in the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			reg, err := registry.Load(cfg.RegistryPath)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tVAL_ACC\tCLASSES\tVOCAB\tSTATUS")
			for _, m := range reg.List() {
				fmt.Fprintf(w, "%s\t%.4f\t%d\t%d\t%s\n", m.Version, m.ValAccuracy, m.NumClasses, m.VocabSize, m.Status)
			}
			return w.Flush()
		},
	}
	root.AddCommand(modelsCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the daemon version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", httpapi.ServiceName, httpapi.ServiceVersion)
		},
	}
	root.AddCommand(versionCmd)

	return root
}

func defaultRegistryPath() string {
	if v := os.Getenv("TEXTCLASSD_REGISTRY"); v != "" {
		return v
	}
	return "models/registry.json"
}

// resolveConfig merges config file, environment and flags. Flags win over the
// file; the file wins over environment defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
	}

	if cfg.Addr == "" {
		cfg.Addr = os.Getenv("TEXTCLASSD_ADDR")
	}
	if cfg.OnnxLibrary == "" {
		cfg.OnnxLibrary = os.Getenv("TEXTCLASSD_ONNX_LIB")
	}

	flagStr := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	flagInt := func(name string, dst *int) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetInt(name)
		}
	}
	flagStr("addr", &cfg.Addr)
	flagStr("onnx-library", &cfg.OnnxLibrary)
	flagInt("workers", &cfg.Workers)
	flagInt("max-batch", &cfg.MaxBatchSize)
	if cmd.Flags().Changed("registry") || cfg.RegistryPath == "" {
		cfg.RegistryPath, _ = cmd.Flags().GetString("registry")
	}
	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat, _ = cmd.Flags().GetString("log-format")
	}
	if cmd.Flags().Changed("no-load") {
		noLoad, _ := cmd.Flags().GetBool("no-load")
		load := !noLoad
		cfg.LoadOnStart = &load
	}
	if cmd.Flags().Changed("cors") {
		cfg.CORSEnabled, _ = cmd.Flags().GetBool("cors")
	}
	if cmd.Flags().Changed("cors-origins") || len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins, _ = cmd.Flags().GetStringSlice("cors-origins")
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	return cfg, nil
}

func newLogger(cfg config.Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || cfg.LogLevel == "" {
		lvl = zerolog.InfoLevel
	}
	var out = os.Stderr
	if strings.EqualFold(cfg.LogFormat, "console") {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func runServe(cfg config.Config) error {
	log := newLogger(cfg)

	reg, err := registry.Load(cfg.RegistryPath)
	if err != nil {
		if !registry.IsNotFound(err) {
			return err
		}
		// A missing registry is not fatal: start empty and let model
		// publication populate it.
		log.Warn().Str("path", cfg.RegistryPath).Msg("registry file not found, starting empty")
		reg, err = registry.New(cfg.RegistryPath)
		if err != nil {
			return err
		}
	}

	open := backend.Open(backend.Options{LibraryPath: cfg.OnnxLibrary})
	loader := bundle.NewLoader(open, log)
	pred := predictor.New(reg, loader, log, predictor.Config{Workers: cfg.Workers})

	if cfg.LoadOnStart == nil || *cfg.LoadOnStart {
		if v, err := pred.LoadBest(context.Background()); err != nil {
			log.Warn().Err(err).Msg("no model loaded at startup")
		} else {
			log.Info().Str("version", v.Version).Float64("val_accuracy", v.ValAccuracy).Msg("model loaded")
		}
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetLogger(log)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetMaxBatchSize(cfg.MaxBatchSize)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
		[]string{"GET", "POST", "OPTIONS"}, []string{"Accept", "Content-Type"})

	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(pred)}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("registry", cfg.RegistryPath).Msg("textclassd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	return pred.Close()
}
