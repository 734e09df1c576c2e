// Package main provides the vibe-trio command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-trio/internal/denovo"
	"github.com/inodb/vibe-trio/internal/familyfilter"
	"github.com/inodb/vibe-trio/internal/genome"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks errors caused by invalid command-line input.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vibe-trio",
		Short: "Trio inheritance filter and de novo scoring",
		Long: `vibe-trio removes alleles explained by Mendelian inheritance from a
proband's candidate set and scores apparent de novo events.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default ~/.vibe-trio.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.String("db", "", "DuckDB database path (default ~/.vibe-trio/trio.duckdb)")
	pf.String("assembly", string(genome.GRCh37), "Reference build of imported coordinates")
	viper.BindPFlag("db", pf.Lookup("db"))
	viper.BindPFlag("assembly", pf.Lookup("assembly"))

	root.AddCommand(newFilterCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newAnalysesCmd())
	root.AddCommand(newDenovoCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads the config file and environment.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".vibe-trio")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VIBE_TRIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("filter.allele_frequency", denovo.DefaultAlleleFrequency)
	viper.SetDefault("filter.mutation_prior", denovo.DefaultMutationPrior)
	viper.SetDefault("filter.transcript_inclusion", familyfilter.DefaultTranscriptInclusion)
	viper.SetDefault("filter.workers", runtime.NumCPU())
	viper.SetDefault("db_lock_timeout", 10*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// newLogger returns a production logger, or a development logger with --verbose.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

// filterConfig builds the family filter configuration from viper settings.
func filterConfig() familyfilter.Config {
	return familyfilter.Config{
		AlleleFrequency:     viper.GetFloat64("filter.allele_frequency"),
		MutationPrior:       viper.GetFloat64("filter.mutation_prior"),
		TranscriptInclusion: viper.GetString("filter.transcript_inclusion"),
		Workers:             viper.GetInt("filter.workers"),
	}
}

// dbPath returns the configured database path.
func dbPath() (string, error) {
	if p := viper.GetString("db"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".vibe-trio", "trio.duckdb"), nil
}

// assembly returns the configured reference build.
func assembly() genome.Build {
	return genome.ParseBuild(viper.GetString("assembly"))
}
