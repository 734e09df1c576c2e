package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-trio/internal/denovo"
)

func newDenovoCmd() *cobra.Command {
	var (
		father, mother, child []float64
		mode                  []int
		xMinusPAR, male       bool
	)

	cmd := &cobra.Command{
		Use:   "denovo",
		Short: "Compute a de novo posterior from trio genotype likelihoods",
		Long: `Compute the posterior probability of a de novo event from phred-scaled
genotype likelihoods (PL) of father, mother and child.

--mode gives the called state of father, mother and child: 0 = hom-ref,
1 = het, 2 = hom-alt. On X outside PAR the father, and a male child, are
hemizygous with states 0 = ref and 1 = alt.`,
		Example: `  vibe-trio denovo --father 0,30,300 --mother 0,30,300 --child 300,30,0 --mode 0,0,2
  vibe-trio denovo --father 0,30,300 --mother 0,30,300 --child 300,30,0 --mode 0,0,1 --x-minus-par --male`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(mode) != 3 {
				return &usageError{msg: fmt.Sprintf("--mode needs three states, got %d", len(mode))}
			}

			calc, err := denovo.NewCalculator(
				viper.GetFloat64("filter.allele_frequency"),
				viper.GetFloat64("filter.mutation_prior"),
			)
			if err != nil {
				return err
			}

			res, err := calc.Probability(denovo.Input{
				Father:      father,
				Mother:      mother,
				Child:       child,
				XMinusPAR:   xMinusPAR,
				ProbandMale: male,
				Mode:        [3]int{mode[0], mode[1], mode[2]},
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&father, "father", nil, "Father PL values")
	cmd.Flags().Float64SliceVar(&mother, "mother", nil, "Mother PL values")
	cmd.Flags().Float64SliceVar(&child, "child", nil, "Child PL values")
	cmd.Flags().IntSliceVar(&mode, "mode", nil, "Called father,mother,child states")
	cmd.Flags().BoolVar(&xMinusPAR, "x-minus-par", false, "Locus is on X outside the pseudoautosomal regions")
	cmd.Flags().BoolVar(&male, "male", false, "Child is male")

	return cmd
}
