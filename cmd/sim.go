package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/rand"
)

type simParams struct {
	logit bool

	n int
	p int
	q int

	cor      float64
	r2       float64
	xVar     float64
	betaSize float64

	outFile   string
	truthFile string
}

func simCmd(sp *startupParams) *cobra.Command {
	mp := &simParams{}

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Simulate a sparse regression dataset",
		Long: `Simulate a sparse regression problem and write it as a CSV dataset.

The design is equicorrelated Gaussian and the true coefficients
alternate +/-beta-size on the first q columns. Linear outcomes get
Gaussian noise sized to hit the target R2; with --logit the outcomes
are Bernoulli draws through the sigmoid instead.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(sp, mp)
		},
	}

	cmd.Flags().BoolVar(&mp.logit, "logit", false, "Simulate binary outcomes instead of continuous ones")

	cmd.Flags().IntVarP(&mp.n, "obs", "n", 200, "Number of observations")
	cmd.Flags().IntVarP(&mp.p, "preds", "p", 50, "Number of predictors")
	cmd.Flags().IntVarP(&mp.q, "support", "q", 5, "Number of nonzero true coefficients")

	cmd.Flags().Float64Var(&mp.cor, "cor", 0.5, "Pairwise correlation between predictors")
	cmd.Flags().Float64Var(&mp.r2, "r2", 0.9, "Target R2 (linear only)")
	cmd.Flags().Float64Var(&mp.xVar, "x-var", 1, "Per-column design variance (logit only)")
	cmd.Flags().Float64Var(&mp.betaSize, "beta-size", 1, "Magnitude of the nonzero coefficients")

	cmd.Flags().StringVarP(&mp.outFile, "out", "o", "", "CSV file to write the dataset to")
	cmd.Flags().StringVar(&mp.truthFile, "truth", "", "Also write the true coefficients to this file")

	cmd.MarkFlagRequired("out")

	return cmd
}

func runSim(sp *startupParams, mp *simParams) error {
	gen := rand.NewGenerator(sp.randomSeed)

	var ds *model.Dataset
	var truth *model.SimTruth
	var err error

	if mp.logit {
		ds, truth, err = model.SimLogit(gen, mp.n, mp.p, mp.q, mp.cor, mp.xVar, mp.betaSize)
	} else {
		ds, truth, err = model.SimLinear(gen, mp.n, mp.p, mp.q, mp.r2, mp.cor, mp.betaSize)
	}
	if err != nil {
		return err
	}

	sp.out.Printf("Simulated: n=%d, p=%d, support=%d, cor=%.2f\n", ds.N(), ds.P(), mp.q, mp.cor)
	if mp.logit {
		ones := 0
		for _, v := range ds.Y {
			if v == 1 {
				ones++
			}
		}
		sp.out.Printf("Outcomes : binary, %d/%d ones, realized R2 %.3f\n", ones, ds.N(), truth.R2)
	} else {
		sp.out.Printf("Outcomes : continuous, noise sigma2 %.4g for R2 %.2f\n", truth.Sigma2, truth.R2)
	}

	sp.out.Printf("Writing dataset to %s\n", mp.outFile)
	if err := ds.WriteCSVFile(mp.outFile); err != nil {
		return err
	}

	if len(mp.truthFile) > 0 {
		sp.out.Printf("Writing truth to %s\n", mp.truthFile)
		if err := model.WriteTruthFile(mp.truthFile, truth.Beta); err != nil {
			return err
		}
	}

	return nil
}
