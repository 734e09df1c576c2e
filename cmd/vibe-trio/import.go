package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-trio/internal/duckdb"
)

func newImportCmd() *cobra.Command {
	var (
		in         trioInput
		analysisID int64
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a trio VCF and PED file as a stored analysis",
		Long: `Import genotype calls, pedigree and CSQ transcript annotations into the
database. Alleles get ids after the largest stored allele id. Re-importing an
unchanged file into the same analysis is skipped unless --force is given.`,
		Example: `  vibe-trio import --vcf trio.vcf.gz --ped family.ped
  vibe-trio import --vcf trio.vcf --ped family.ped --analysis 12 --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.vcfPath == "" || in.pedPath == "" {
				return &usageError{msg: "--vcf and --ped are required"}
			}
			if in.vcfPath == "-" {
				return &usageError{msg: "import needs a VCF file, not stdin"}
			}

			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync()

			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			fp, err := duckdb.StatFile(in.vcfPath)
			if err != nil {
				return fmt.Errorf("stat vcf: %w", err)
			}

			if analysisID == 0 {
				if analysisID, err = store.NextAnalysisID(ctx); err != nil {
					return err
				}
			} else if !force {
				unchanged, err := store.SourceUnchanged(ctx, analysisID, fp)
				if err != nil {
					return err
				}
				if unchanged {
					logger.Info("source unchanged, skipping import",
						zap.Int64("analysis", analysisID),
						zap.String("vcf", fp.Path))
					return nil
				}
			}

			firstAlleleID, err := store.NextAlleleID(ctx)
			if err != nil {
				return err
			}

			a, err := in.load(analysisID, firstAlleleID, assembly())
			if err != nil {
				return err
			}
			if err := store.SaveAnalysis(ctx, a, assembly(), fp); err != nil {
				return fmt.Errorf("save analysis %d: %w", analysisID, err)
			}

			logger.Info("analysis imported",
				zap.Int64("analysis", analysisID),
				zap.Int("alleles", len(a.AlleleIDs)),
				zap.Int("samples", len(a.Pedigree.Members)))
			fmt.Fprintf(cmd.OutOrStdout(), "Imported analysis %d (%d alleles)\n", analysisID, len(a.AlleleIDs))
			return nil
		},
	}

	in.addFlags(cmd)
	cmd.Flags().Int64Var(&analysisID, "analysis", 0, "Analysis id (default: next free id)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-import even if the VCF is unchanged")

	return cmd
}

func newAnalysesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyses",
		Short: "List stored analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.Analyses(cmd.Context())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "#Analysis\tAssembly\tAlleles\tImported\tSource")
			for _, info := range infos {
				source := info.Source.Path
				if source == "" {
					source = "-"
				}
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
					info.ID, info.Build, info.Alleles, info.ImportedAt.Format("2006-01-02 15:04:05"), source)
			}
			return nil
		},
	}
}
