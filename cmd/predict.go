package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fastbayes/fastbayes/model"
)

type predictParams struct {
	fitFile  string
	dataFile string
	outFile  string

	level  float64
	cutoff float64
}

func predictCmd(sp *startupParams) *cobra.Command {
	pp := &predictParams{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Posterior predictive summaries from a saved fit",
		Long: `Score new data against a fit saved with 'fit --save'.

The data file uses the same CSV layout as fit (outcome first, then
predictors); fill the outcome column with zeros if there are no
observed outcomes. Every row is pushed through the stored coefficient
trace, giving a posterior predictive mean, median, credible interval,
and standard deviation per row. Logistic fits also get class labels
from thresholding the mean probability, and an accuracy report when
the outcome column is binary.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(sp, pp)
		},
	}

	cmd.Flags().StringVarP(&pp.fitFile, "fit", "f", "", "Saved fit file to predict from")
	cmd.Flags().StringVarP(&pp.dataFile, "data", "d", "", "CSV dataset to predict for")
	cmd.Flags().StringVarP(&pp.outFile, "out", "o", "", "CSV file for the predictions (default is stdout)")

	cmd.Flags().Float64Var(&pp.level, "level", 0.95, "Central credible level for the interval bounds")
	cmd.Flags().Float64Var(&pp.cutoff, "cutoff", 0.5, "Probability cutoff for class labels (logistic fits)")

	cmd.MarkFlagRequired("fit")
	cmd.MarkFlagRequired("data")

	return cmd
}

func runPredict(sp *startupParams, pp *predictParams) error {
	fit, err := model.LoadFitFile(pp.fitFile)
	if err != nil {
		return err
	}
	sp.out.Printf("Fit     : %s from %s (%d samples, %d coefficients)\n",
		fit.Model, pp.fitFile, fit.Trace.Samples(), fit.Trace.P())

	ds, err := model.ReadDatasetCSV(pp.dataFile)
	if err != nil {
		return err
	}
	sp.out.Printf("Data    : %s (n=%d, p=%d)\n", pp.dataFile, ds.N(), ds.P())

	var pred *model.Prediction
	if fit.Logit {
		pred, err = model.PredictLogit(fit, ds.X, pp.level, pp.cutoff)
	} else {
		pred, err = model.PredictLinear(fit, ds.X, pp.level)
	}
	if err != nil {
		return err
	}

	if fit.Logit && ds.CheckBinary() == nil {
		acc, err := model.ClassAccuracy(pred.Class, ds.Y)
		if err != nil {
			return err
		}
		sp.out.Printf("Accuracy: %.4f at cutoff %.2f\n", acc, pp.cutoff)
	}

	if len(pp.outFile) > 0 {
		sp.out.Printf("Writing predictions to %s\n", pp.outFile)
		return pred.WriteCSVFile(pp.outFile)
	}
	return pred.WriteCSV(os.Stdout)
}
