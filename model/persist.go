package model

import (
	"encoding/gob"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const fitStateVersion = 1

// fitState is the flat serializable form of a Fit. Trace matrices are
// stored as raw row-major data so the format does not depend on gonum
// internals.
type fitState struct {
	Version    int
	Model      string
	Logit      bool
	Samples    int
	P          int
	BetaData   []float64
	LambdaData []float64
	Sigma2     []float64
	Tau2       []float64
	PostMean   PostMean
	ElapsedNS  int64
}

// SaveFit serializes a fit, including its full trace, in gob format.
func SaveFit(w io.Writer, fit *Fit) error {
	if err := fit.Trace.Check(); err != nil {
		return errors.Wrapf(err, "Refusing to save fit %s", fit.Model)
	}

	m, p := fit.Trace.Beta.Dims()
	state := fitState{
		Version:   fitStateVersion,
		Model:     fit.Model,
		Logit:     fit.Logit,
		Samples:   m,
		P:         p,
		BetaData:  rawDenseData(fit.Trace.Beta),
		Sigma2:    fit.Trace.Sigma2,
		Tau2:      fit.Trace.Tau2,
		PostMean:  fit.PostMean,
		ElapsedNS: int64(fit.Elapsed),
	}
	if fit.Trace.Lambda != nil {
		state.LambdaData = rawDenseData(fit.Trace.Lambda)
	}

	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return errors.Wrapf(err, "Could not encode fit %s", fit.Model)
	}
	return nil
}

// LoadFit deserializes a fit written by SaveFit.
func LoadFit(r io.Reader) (*Fit, error) {
	var state fitState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, errors.Wrapf(err, "Could not decode fit")
	}

	if state.Version != fitStateVersion {
		return nil, errors.Errorf("Unsupported fit version %d (want %d)", state.Version, fitStateVersion)
	}
	if state.Samples < 1 || state.P < 1 || len(state.BetaData) != state.Samples*state.P {
		return nil, errors.Errorf("Fit trace data is corrupt: %d values for %d x %d",
			len(state.BetaData), state.Samples, state.P)
	}

	fit := &Fit{
		Model:    state.Model,
		Logit:    state.Logit,
		PostMean: state.PostMean,
		Trace: Trace{
			Beta:   mat.NewDense(state.Samples, state.P, state.BetaData),
			Sigma2: state.Sigma2,
			Tau2:   state.Tau2,
		},
		Elapsed: time.Duration(state.ElapsedNS),
	}
	if state.LambdaData != nil {
		if len(state.LambdaData) != state.Samples*state.P {
			return nil, errors.Errorf("Fit lambda data is corrupt: %d values for %d x %d",
				len(state.LambdaData), state.Samples, state.P)
		}
		fit.Trace.Lambda = mat.NewDense(state.Samples, state.P, state.LambdaData)
	}

	if err := fit.Trace.Check(); err != nil {
		return nil, errors.Wrapf(err, "Loaded fit %s is not valid", fit.Model)
	}
	return fit, nil
}

// SaveFitFile writes a fit to the named file.
func SaveFitFile(filename string, fit *Fit) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Could not CREATE fit file %s", filename)
	}

	if err := SaveFit(f, fit); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "Could not close fit file %s", filename)
}

// LoadFitFile reads a fit from the named file.
func LoadFitFile(filename string) (*Fit, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ fit from %s", filename)
	}
	defer f.Close()

	fit, err := LoadFit(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not load fit from %s", filename)
	}
	return fit, nil
}

func rawDenseData(d *mat.Dense) []float64 {
	raw := d.RawMatrix()
	out := make([]float64, len(raw.Data))
	copy(out, raw.Data)
	return out
}
