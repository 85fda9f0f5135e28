package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ParseDatasetCSV reads a dataset from CSV: the first column is the
// outcome, the remaining columns are the design matrix. A first row
// whose leading field does not parse as a number is skipped as a
// header.
func ParseDatasetCSV(r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE dataset CSV")
	}

	if len(records) > 0 {
		if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
			records = records[1:]
		}
	}
	if len(records) < 1 {
		return nil, errors.Errorf("Dataset CSV has no data rows")
	}

	cols := len(records[0])
	if cols < 2 {
		return nil, errors.Errorf("Dataset CSV has %d columns - need outcome plus at least one predictor", cols)
	}

	n := len(records)
	p := cols - 1
	y := make([]float64, n)
	data := make([]float64, n*p)

	for i, rec := range records {
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "Row %d field %d (%q) is not a number", i+1, j+1, field)
			}
			if j == 0 {
				y[i] = v
			} else {
				data[i*p+j-1] = v
			}
		}
	}

	ds := &Dataset{Y: y, X: mat.NewDense(n, p, data)}
	if err := ds.Check(); err != nil {
		return nil, errors.Wrapf(err, "Parsed dataset is not valid")
	}
	return ds, nil
}

// ReadDatasetCSV reads a dataset from the named CSV file.
func ReadDatasetCSV(filename string) (*Dataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ dataset from %s", filename)
	}
	defer f.Close()

	ds, err := ParseDatasetCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not parse dataset from %s", filename)
	}
	return ds, nil
}

// WriteCSV writes the dataset with a y,x1,...,xp header.
func (ds *Dataset) WriteCSV(w io.Writer) error {
	if err := ds.Check(); err != nil {
		return err
	}

	n, p := ds.X.Dims()
	cw := csv.NewWriter(w)

	header := make([]string, p+1)
	header[0] = "y"
	for j := 1; j <= p; j++ {
		header[j] = fmt.Sprintf("x%d", j)
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrapf(err, "Could not write dataset header")
	}

	rec := make([]string, p+1)
	for i := 0; i < n; i++ {
		rec[0] = strconv.FormatFloat(ds.Y[i], 'g', -1, 64)
		row := ds.X.RawRowView(i)
		for j, v := range row {
			rec[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "Could not write dataset row %d", i+1)
		}
	}

	cw.Flush()
	return errors.Wrapf(cw.Error(), "Could not flush dataset CSV")
}

// WriteCSVFile writes the dataset to the named file.
func (ds *Dataset) WriteCSVFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Could not CREATE dataset file %s", filename)
	}

	if err := ds.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "Could not close dataset file %s", filename)
}

// WriteCSV writes per-row prediction summaries, with a class column for
// logistic predictions.
func (pred *Prediction) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"mean", "median", "lower", "upper", "sd"}
	if pred.Class != nil {
		header = append(header, "class")
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrapf(err, "Could not write prediction header")
	}

	for i := range pred.Mean {
		rec := []string{
			strconv.FormatFloat(pred.Mean[i], 'g', -1, 64),
			strconv.FormatFloat(pred.Median[i], 'g', -1, 64),
			strconv.FormatFloat(pred.Lower[i], 'g', -1, 64),
			strconv.FormatFloat(pred.Upper[i], 'g', -1, 64),
			strconv.FormatFloat(pred.SD[i], 'g', -1, 64),
		}
		if pred.Class != nil {
			rec = append(rec, strconv.Itoa(pred.Class[i]))
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrapf(err, "Could not write prediction row %d", i+1)
		}
	}

	cw.Flush()
	return errors.Wrapf(cw.Error(), "Could not flush prediction CSV")
}

// WriteCSVFile writes the prediction summaries to the named file.
func (pred *Prediction) WriteCSVFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "Could not CREATE prediction file %s", filename)
	}

	if err := pred.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "Could not close prediction file %s", filename)
}
