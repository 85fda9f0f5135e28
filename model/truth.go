package model

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseTruth reads a whitespace-separated list of true coefficient
// values, as written by the sim command.
func ParseTruth(data string) ([]float64, error) {
	fields := strings.Fields(data)
	if len(fields) < 1 {
		return nil, errors.Errorf("Truth data is empty")
	}

	beta := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Truth token %d (%q) is not a number", i, f)
		}
		beta[i] = v
	}
	return beta, nil
}

// ReadTruthFile reads true coefficients from the named file.
func ReadTruthFile(filename string) ([]float64, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ truth from %s", filename)
	}
	return ParseTruth(string(data))
}

// WriteTruthFile writes one coefficient per line to the named file.
func WriteTruthFile(filename string, beta []float64) error {
	var sb strings.Builder
	for _, b := range beta {
		fmt.Fprintf(&sb, "%g\n", b)
	}

	if err := os.WriteFile(filename, []byte(sb.String()), 0644); err != nil {
		return errors.Wrapf(err, "Could not WRITE truth to %s", filename)
	}
	return nil
}
