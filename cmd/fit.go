package cmd

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fastbayes/fastbayes/model"
	"github.com/fastbayes/fastbayes/rand"
	"github.com/fastbayes/fastbayes/sampler"
)

// fitParams are the flags for the fit subcommand. The prior fields are
// only applied over the per-model defaults when the user actually set
// the flag, since the defaults differ across models.
type fitParams struct {
	dataFile  string
	modelName string
	saveFile  string
	truthFile string

	samples  int
	burnin   int
	thinning int
	window   int

	aSigma  float64
	bSigma  float64
	aTau    float64
	aLambda float64

	monitorAddr string
}

func fitCmd(sp *startupParams) *cobra.Command {
	fp := &fitParams{}

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a regression model to a CSV dataset",
		Long: `Fit a penalized Bayesian regression model by Gibbs sampling.

The dataset is a CSV file whose first column is the outcome and whose
remaining columns are the predictors (an optional header row is
skipped). Models:

  normal-lm        Gaussian prior, linear likelihood
  horseshoe-lm     horseshoe prior, linear likelihood
  horseshoe-hd-lm  horseshoe prior, direct p >= n coefficient draw
  horseshoe-ss-lm  horseshoe prior, slice-sampled shrinkage scales
  normal-logit     Gaussian prior, logistic likelihood
  horseshoe-logit  horseshoe prior, logistic likelihood
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(sp, fp, cmd.Flags())
		},
	}

	cmd.Flags().StringVarP(&fp.dataFile, "data", "d", "", "CSV dataset to fit")
	cmd.Flags().StringVarP(&fp.modelName, "model", "m", model.HorseshoeLinear, "Model to fit")
	cmd.Flags().StringVar(&fp.saveFile, "save", "", "Write the full fit (trace included) to this gob file")
	cmd.Flags().StringVar(&fp.truthFile, "truth", "", "Score the posterior mean against this true-coefficient file")

	cmd.Flags().IntVarP(&fp.samples, "samples", "s", 500, "Number of samples to keep")
	cmd.Flags().IntVarP(&fp.burnin, "burnin", "b", 500, "Number of burn-in sweeps to discard")
	cmd.Flags().IntVarP(&fp.thinning, "thinning", "t", 1, "Keep every t-th sweep")
	cmd.Flags().IntVarP(&fp.window, "window", "w", sampler.DefaultConvergenceWindow, "Sample window for the split-half check")

	cmd.Flags().Float64Var(&fp.aSigma, "a-sigma", 0, "Inverse-gamma shape for the noise variance (default depends on model)")
	cmd.Flags().Float64Var(&fp.bSigma, "b-sigma", 0, "Inverse-gamma rate for the noise variance (default depends on model)")
	cmd.Flags().Float64Var(&fp.aTau, "a-tau", 0, "Half-Cauchy scale for the global shrinkage (default depends on model)")
	cmd.Flags().Float64Var(&fp.aLambda, "a-lambda", 0, "Half-Cauchy scale for the local shrinkage (default depends on model)")

	cmd.Flags().StringVar(&fp.monitorAddr, "monitor", "", "Publish progress over HTTP at this address (e.g. :8000)")

	cmd.MarkFlagRequired("data")

	return cmd
}

// buildUpdater selects the sampler for the requested model, layering
// any explicitly-set prior flags over that model's defaults.
func buildUpdater(gen *rand.Generator, ds *model.Dataset, fp *fitParams, flags *pflag.FlagSet) (sampler.Updater, error) {
	switch fp.modelName {
	case model.NormalLinear:
		pr := model.DefaultNormalPrior()
		if flags.Changed("a-sigma") {
			pr.ASigma = fp.aSigma
		}
		if flags.Changed("b-sigma") {
			pr.BSigma = fp.bSigma
		}
		if flags.Changed("a-tau") {
			pr.ATau = fp.aTau
		}
		return sampler.NewNormalLinear(gen, ds, pr)

	case model.HorseshoeLinear, model.HorseshoeHD, model.HorseshoeSS:
		pr := model.DefaultHorseshoePrior()
		if flags.Changed("a-sigma") {
			pr.ASigma = fp.aSigma
		}
		if flags.Changed("b-sigma") {
			pr.BSigma = fp.bSigma
		}
		if flags.Changed("a-tau") {
			pr.ATau = fp.aTau
		}
		if flags.Changed("a-lambda") {
			pr.ALambda = fp.aLambda
		}
		switch fp.modelName {
		case model.HorseshoeHD:
			return sampler.NewHorseshoeLinearHD(gen, ds, pr)
		case model.HorseshoeSS:
			return sampler.NewHorseshoeLinearSS(gen, ds, pr)
		}
		return sampler.NewHorseshoeLinear(gen, ds, pr)

	case model.NormalLogit:
		pr := model.DefaultLogitPrior()
		if flags.Changed("a-tau") {
			pr.ATau = fp.aTau
		}
		return sampler.NewNormalLogit(gen, ds, pr, nil)

	case model.HorseshoeLogit:
		pr := model.DefaultHorseshoeLogitPrior()
		if flags.Changed("a-tau") {
			pr.ATau = fp.aTau
		}
		if flags.Changed("a-lambda") {
			pr.ALambda = fp.aLambda
		}
		return sampler.NewHorseshoeLogit(gen, ds, pr, nil)
	}

	return nil, errors.Errorf("Unknown model %s", fp.modelName)
}

func runFit(sp *startupParams, fp *fitParams, flags *pflag.FlagSet) error {
	ds, err := model.ReadDatasetCSV(fp.dataFile)
	if err != nil {
		return err
	}

	ctl := model.Control{Samples: fp.samples, Burnin: fp.burnin, Thinning: fp.thinning}

	sp.out.Printf("Data    : %s (n=%d, p=%d)\n", fp.dataFile, ds.N(), ds.P())
	sp.out.Printf("Model   : %s\n", fp.modelName)
	sp.out.Printf("Sampling: keep %d, burn %d, thin %d\n", ctl.Samples, ctl.Burnin, ctl.Thinning)
	sp.out.Printf("Rnd Seed: %d\n", sp.randomSeed)

	gen := rand.NewGenerator(sp.randomSeed)

	// the clock covers factorization setup and burn-in, both of which
	// happen before the first sample
	start := time.Now()
	upd, err := buildUpdater(gen, ds, fp, flags)
	if err != nil {
		return err
	}

	ch, err := sampler.NewChain(upd, ctl, fp.window)
	if err != nil {
		return err
	}
	sp.trace.Printf("Burn-in done after %v (%d sweeps)\n", time.Since(start), ch.TotalSweeps)

	var mon *monitor
	if len(fp.monitorAddr) > 0 {
		mon = &monitor{}
		if err := mon.Start(fp.monitorAddr); err != nil {
			return err
		}
		defer mon.Stop()

		mon.Model.Set(fp.modelName)
		mon.Obs.Set(int64(ds.N()))
		mon.Preds.Set(int64(ds.P()))
		mon.Samples.Set(int64(ctl.Samples))
		mon.BurnIn.Set(int64(ctl.Burnin))
		mon.Thinning.Set(int64(ctl.Thinning))
	}

	for !ch.Done() {
		if err := ch.Step(); err != nil {
			return err
		}

		if mon != nil {
			mon.Kept.Set(int64(ch.Kept()))
			mon.TotalSweeps.Set(ch.TotalSweeps)
			mon.RunTime.Set(time.Since(start).Seconds())
			mon.LastTau2.Set(ch.State.Tau2)
			if ch.State.Sigma2 > 0 {
				mon.LastSigma2.Set(ch.State.Sigma2)
			}
			if s, ok := sampler.SplitCheck(ch.Tau2History); ok {
				mon.SplitTau2.Set(s)
			}
			if s, ok := sampler.SplitCheck(ch.Sigma2History); ok {
				mon.SplitSigma2.Set(s)
			}
		}

		if ch.Kept()%100 == 0 {
			sp.trace.Printf("  kept %6d / %6d (tau2 %.5g)\n", ch.Kept(), ctl.Samples, ch.State.Tau2)
		}
	}

	fit, err := ch.Fit(fp.modelName, ds, time.Since(start))
	if err != nil {
		return err
	}

	sp.out.Printf("Finished: %d samples (%d sweeps) in %v\n", ch.Kept(), ch.TotalSweeps, fit.Elapsed)
	sp.out.Printf("PostMean: tau2 %.6g\n", fit.PostMean.Tau2)
	if !fit.Logit {
		sp.out.Printf("PostMean: sigma2 %.6g\n", fit.PostMean.Sigma2)
	}
	if s, ok := sampler.SplitCheck(ch.Tau2History); ok {
		sp.out.Printf("SplitChk: tau2 %.4f\n", s)
	}
	if s, ok := sampler.SplitCheck(ch.Sigma2History); ok {
		sp.out.Printf("SplitChk: sigma2 %.4f\n", s)
	}

	if len(fp.truthFile) > 0 {
		truth, err := model.ReadTruthFile(fp.truthFile)
		if err != nil {
			return err
		}
		rs, err := model.NewRecoverySuite(truth, fit.PostMean.Beta)
		if err != nil {
			return err
		}
		sp.out.Printf(
			"Recovery | SSE:%8.4f Zero:%8.4f Base:%8.4f Signs:%d/%d\n",
			rs.SSE, rs.ZeroSSE, rs.BaselineSSE, rs.SignHits, rs.Support,
		)
	}

	if len(fp.saveFile) > 0 {
		sp.out.Printf("Saving fit to %s\n", fp.saveFile)
		if err := model.SaveFitFile(fp.saveFile, fit); err != nil {
			return err
		}
	}

	return nil
}
