package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nishad/ffqf/internal/config"
	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/export"
	"github.com/nishad/ffqf/internal/logging"
	"github.com/nishad/ffqf/internal/models"
	"github.com/nishad/ffqf/internal/paths"
	"github.com/nishad/ffqf/internal/resolver"
	"github.com/nishad/ffqf/internal/ui"
)

// Version info
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// options holds the command line flags.
type options struct {
	email      string
	output     string
	format     string
	logLevel   string
	configPath string
	strict     bool
	quiet      bool
	force      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ffqf [flags] [ACCESSION ...]",
		Short: "Find FASTQ files of INSDC accessions",
		Long: `ffqf resolves INSDC accessions (BioProjects, BioSamples, studies, samples,
experiments, submissions and runs) into the runs they contain and the
locations of their FASTQ, BAM and SRA files on AWS, GCP and NCBI.

Accessions are read from the arguments, or one per line from standard input.
Run information comes from the ENA portal API, file links from the NCBI
E-utilities.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Example: `  # Find the files of a biosample
  ffqf --email you@example.org SAMN11619543

  # Resolve a list of accessions into a table
  ffqf --email you@example.org --format table < accessions.txt

  # Write a SQLite database
  ffqf --email you@example.org -o runs.sqlite PRJNA63463 SRR390278`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, args, opts)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Configuration file (default: "+paths.GetConfigPath()+")")
	cmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", "INFO",
		"Log level ("+strings.Join(logging.Levels, "|")+")")
	cmd.PersistentFlags().StringVar(&opts.email, "email", "",
		"Email address sent to NCBI with every request")

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write results to this file instead of stdout")
	cmd.Flags().StringVar(&opts.format, "format", "",
		"Output format (JSON|TSV|CSV|TABLE|SQLITE; default: inferred from --output, else JSON)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when an accession cannot be mapped to runs")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not show progress")

	cmd.AddCommand(newConfigCmd(opts))

	return cmd
}

func runResolve(cmd *cobra.Command, args []string, opts *options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lvl, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), lvl)

	accessions := args
	if len(accessions) == 0 {
		if accessions, err = readAccessionsFromReader(cmd.InOrStdin()); err != nil {
			return fmt.Errorf("failed to read accessions: %w", err)
		}
	}
	if len(accessions) == 0 {
		logger.Error("No accessions given. Nothing to be done.")
		return reported(resolver.ErrNoAccessions)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	exportCfg := &export.Config{OutputPath: opts.output}
	if opts.format != "" {
		if exportCfg.Format, err = export.ParseFormat(opts.format); err != nil {
			return err
		}
	}

	exporter, err := export.NewExporter(exportCfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	res, err := resolver.New(cfg, opts.strict, logger)
	if err != nil {
		return err
	}

	var infos []*models.RunInformation
	resolve := func() error {
		var err error
		infos, err = res.Resolve(ctx, accessions)
		return err
	}

	if opts.quiet {
		err = resolve()
	} else {
		err = ui.ShowSpinner(cmd.ErrOrStderr(), "Resolving accessions", resolve)
	}

	switch {
	case errors.Is(err, resolver.ErrNoAccessions):
		logger.Error("No accessions given. Nothing to be done.")
		return reported(err)
	case err != nil:
		logger.Crit(err.Error(), "kind", errors.GetKind(err))
		return reported(err)
	}

	stats, err := exporter.Export(infos)
	if err != nil {
		return err
	}

	if opts.output != "" {
		logger.Info(fmt.Sprintf("Wrote %d runs with %d files.", stats.Runs, stats.Files),
			"output", opts.output, "format", exportCfg.Format, "size", humanize.Bytes(uint64(stats.Bytes)))
	}

	return nil
}

// loadConfig returns the layered configuration, finalized and validated.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := layerConfig(opts)
	if err != nil {
		return nil, err
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// layerConfig layers the configuration file, the .env file, the environment
// and the command line, in increasing precedence. The result is not validated.
func layerConfig(opts *options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = paths.GetConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	dotenv, err := config.ReadDotEnv(".env")
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(config.Lookup(dotenv)); err != nil {
		return nil, err
	}

	if opts.email != "" {
		cfg.NCBI.Email = opts.email
	}

	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !isReported(err) {
			printError("%v", err)
		}
		os.Exit(1)
	}
}
