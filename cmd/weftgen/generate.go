package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpcf/weftgen/config"
	"github.com/cpcf/weftgen/engine"
	"github.com/cpcf/weftgen/lang"
	"github.com/cpcf/weftgen/processors"
)

type generateOptions struct {
	configPath string
	modelsPath string
	language   string
	output     string
}

func newGenerateCmd(newLogger func(io.Writer) *slog.Logger) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Clear the output directory and emit one file per model",
		Long: `Clear the output directory and emit one file per model.

The run configuration selects the target language, output root, and failure
handling. The models file lists already mapped data models:

  models:
    - template: pojo
      data:
        className: UserDTO
        package: com.example.model`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, newLogger(cmd.ErrOrStderr()))
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Run configuration file (YAML)")
	cmd.Flags().StringVarP(&opts.modelsPath, "models", "m", "", "Models file (YAML)")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Override the configured language")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Override the configured output directory")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("models")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOptions, logger *slog.Logger) error {
	cfg, err := loadRunConfig(opts)
	if err != nil {
		return err
	}

	var models config.ModelsFile
	if err := config.LoadYAML(opts.modelsPath, &models); err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}

	mode, err := cfg.Mode()
	if err != nil {
		return err
	}

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithFailureMode(mode),
		engine.WithKeepPartialFiles(cfg.KeepPartial),
		engine.WithManifest(cfg.Manifest),
	}
	if cfg.Workers > 0 {
		engineOpts = append(engineOpts, engine.WithWorkers(cfg.Workers))
	}
	if cfg.Templates != "" {
		engineOpts = append(engineOpts, engine.WithTemplateFS(os.DirFS(cfg.Templates)))
	}

	e := engine.New(engineOpts...)
	if cfg.Header {
		e.AddPostProcessor(processors.NewHeader(cfg.Language))
		e.AddPostProcessor(processors.NewNewline())
	}

	report, err := e.Run(cmd.Context(), cfg.MappingContext(), cfg.Output, models.Jobs())
	if report != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "generated %d file(s) in %s (%d failed, %d skipped)\n",
			len(report.Files), report.OutputRoot, len(report.Failed), report.Skipped)
	}
	return err
}

func loadRunConfig(opts generateOptions) (*config.RunConfig, error) {
	return config.LoadRunConfig(opts.configPath, func(cfg *config.RunConfig) error {
		if opts.language != "" {
			l, err := lang.Parse(opts.language)
			if err != nil {
				return err
			}
			cfg.Language = l
		}
		if opts.output != "" {
			cfg.Output = opts.output
		}
		return nil
	})
}
