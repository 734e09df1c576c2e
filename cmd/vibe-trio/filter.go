package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-trio/internal/duckdb"
	"github.com/inodb/vibe-trio/internal/familyfilter"
	"github.com/inodb/vibe-trio/internal/genome"
	"github.com/inodb/vibe-trio/internal/output"
	"github.com/inodb/vibe-trio/internal/pedigree"
	"github.com/inodb/vibe-trio/internal/vcf"
)

// trioInput names the files describing one trio analysis.
type trioInput struct {
	vcfPath  string
	pedPath  string
	proband  string
	passOnly bool
}

func (in *trioInput) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.vcfPath, "vcf", "", "Multi-sample VCF with GT and PL fields (use '-' for stdin)")
	cmd.Flags().StringVar(&in.pedPath, "ped", "", "PED file describing the family")
	cmd.Flags().StringVar(&in.proband, "proband", "", "Proband sample (default: the single affected child)")
	cmd.Flags().BoolVar(&in.passOnly, "pass-only", false, "Skip VCF records that do not pass filters")
}

// load reads the VCF and PED into an analysis snapshot.
func (in *trioInput) load(analysisID, firstAlleleID int64, build genome.Build) (*familyfilter.Analysis, error) {
	if in.vcfPath == "" || in.pedPath == "" {
		return nil, &usageError{msg: "--vcf and --ped are required together"}
	}

	ped, err := pedigree.LoadPED(in.pedPath, in.proband)
	if err != nil {
		return nil, err
	}

	parser, err := vcf.NewParser(in.vcfPath)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	samples := make([]string, 0, len(ped.Members))
	for _, m := range ped.Members {
		samples = append(samples, m.ID)
	}

	imp, err := vcf.ReadGenotypes(parser, vcf.ImportOptions{
		Build:         build,
		FirstAlleleID: firstAlleleID,
		Samples:       samples,
		PassOnly:      in.passOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", in.vcfPath, err)
	}

	return &familyfilter.Analysis{
		ID:        analysisID,
		AlleleIDs: imp.AlleleIDs,
		Pedigree:  ped,
		Records:   imp.Records,
		Genes:     imp.Transcripts,
	}, nil
}

func newFilterCmd() *cobra.Command {
	var (
		in          trioInput
		analysisIDs []int64
		all         bool
		save        bool
		outputFile  string
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter alleles explained by inheritance",
		Long: `Remove alleles explained by de novo, recessive homozygous or compound
heterozygous inheritance from each analysis, and report de novo probabilities.

Input is either a VCF and PED file, or analyses stored in the database.`,
		Example: `  vibe-trio filter --vcf trio.vcf.gz --ped family.ped
  vibe-trio filter --analysis 3 --analysis 4 --save
  vibe-trio filter --all -o results.tsv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			f, err := familyfilter.New(filterConfig())
			if err != nil {
				return err
			}
			f.SetLogger(logger)

			var src familyfilter.Source
			var store *duckdb.Store
			ids := analysisIDs

			switch {
			case in.vcfPath != "" || in.pedPath != "":
				if len(ids) > 0 || all || save {
					return &usageError{msg: "--vcf/--ped cannot be combined with --analysis, --all or --save"}
				}
				a, err := in.load(1, 1, assembly())
				if err != nil {
					return err
				}
				src = familyfilter.Analyses{a.ID: a}
				ids = []int64{a.ID}
			case len(ids) > 0 || all:
				store, err = openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer store.Close()
				src = store
				if all {
					if ids, err = storedAnalysisIDs(cmd.Context(), store); err != nil {
						return err
					}
				}
			default:
				return &usageError{msg: "specify --vcf and --ped, --analysis, or --all"}
			}

			out := cmd.OutOrStdout()
			if outputFile != "" {
				file, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				out = file
			}

			var sink *duckdb.Store
			if save {
				sink = store
			}
			return runFilter(cmd.Context(), f, src, ids, sink, out, cmd.ErrOrStderr(), logger)
		},
	}

	in.addFlags(cmd)
	cmd.Flags().Int64SliceVar(&analysisIDs, "analysis", nil, "Stored analysis id (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Filter every stored analysis")
	cmd.Flags().BoolVar(&save, "save", false, "Store results in the database")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	cmd.Flags().Float64("allele-frequency", 0, "Population allele frequency for genotype priors")
	cmd.Flags().Float64("mutation-prior", 0, "Per-transmission de novo mutation probability")
	cmd.Flags().String("transcript-inclusion", "", "Regexp selecting transcripts for compound heterozygous genes")
	cmd.Flags().Int("workers", 0, "Analyses filtered concurrently")
	viper.BindPFlag("filter.allele_frequency", cmd.Flags().Lookup("allele-frequency"))
	viper.BindPFlag("filter.mutation_prior", cmd.Flags().Lookup("mutation-prior"))
	viper.BindPFlag("filter.transcript_inclusion", cmd.Flags().Lookup("transcript-inclusion"))
	viper.BindPFlag("filter.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

// runFilter filters the analyses and writes tab output in analysis order.
// Results are also persisted when sink is non-nil.
func runFilter(ctx context.Context, f *familyfilter.Filter, src familyfilter.Source, ids []int64,
	sink *duckdb.Store, out, summaryOut io.Writer, logger *zap.Logger) error {
	results, err := f.FilterAll(ctx, src, ids)
	if err != nil {
		return err
	}

	writer := output.NewTabWriter(out)
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	summary := output.NewSummary()
	for _, id := range slices.Sorted(maps.Keys(results)) {
		res := results[id]
		if err := writer.Write(res); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		summary.Add(res)

		if sink != nil {
			if err := sink.WriteResults(ctx, res); err != nil {
				return err
			}
			logger.Debug("results saved", zap.Int64("analysis", id))
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	summary.WriteSummary(summaryOut)
	return nil
}

func openStore(ctx context.Context) (*duckdb.Store, error) {
	path, err := dbPath()
	if err != nil {
		return nil, err
	}
	store, err := duckdb.OpenRetry(ctx, path, viper.GetDuration("db_lock_timeout"))
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return store, nil
}

func storedAnalysisIDs(ctx context.Context, store *duckdb.Store) ([]int64, error) {
	infos, err := store.Analyses(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids, nil
}
