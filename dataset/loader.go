// Package dataset loads held-out test sets from CSV or Excel files into gonum
// containers for evaluation.
//
// The first row is the header. One column, chosen by name, holds the class
// label; every other column is a numeric feature, in file order.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/clfeval/pkg/errors"
)

// Dataset is a feature matrix with its label vector.
type Dataset struct {
	Features     *mat.Dense
	Labels       *mat.VecDense
	FeatureNames []string
}

// Load reads path, dispatching on its extension (.csv or .xlsx).
func Load(path, labelColumn string) (*Dataset, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "load %s", path)
	}
	if err != nil {
		return nil, err
	}

	ds, err := FromRows(rows, labelColumn)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return ds, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read csv %s", path)
	}
	return rows, nil
}

// readXLSX returns the rows of the first sheet in the workbook.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "%s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %q of %s", sheets[0], path)
	}
	return rows, nil
}

// FromRows builds a Dataset from a header row followed by data rows.
func FromRows(rows [][]string, labelColumn string) (*Dataset, error) {
	if len(rows) < 2 {
		return nil, errors.Wrap(errors.ErrEmptyData, "need a header row and at least one data row")
	}

	header := make([]string, len(rows[0]))
	labelIdx := -1
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
		if header[i] == labelColumn {
			labelIdx = i
		}
	}
	if labelIdx < 0 {
		return nil, errors.NewValidationError("label_column", "not found in header", labelColumn)
	}

	names := make([]string, 0, len(header)-1)
	for i, h := range header {
		if i != labelIdx {
			names = append(names, h)
		}
	}
	if len(names) == 0 {
		return nil, errors.NewValueError("dataset.FromRows", "no feature columns besides "+labelColumn)
	}

	data := rows[1:]
	X := mat.NewDense(len(data), len(names), nil)
	y := mat.NewVecDense(len(data), nil)

	for r, row := range data {
		line := r + 2 // 1-based, after the header
		j := 0
		for c := range header {
			var cell string
			if c < len(row) {
				cell = strings.TrimSpace(row[c])
			}

			if c == labelIdx {
				v, err := parseLabel(cell)
				if err != nil {
					return nil, cellError(line, header[c], cell)
				}
				y.SetVec(r, v)
				continue
			}

			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, cellError(line, header[c], cell)
			}
			X.Set(r, j, v)
			j++
		}
	}

	return &Dataset{Features: X, Labels: y, FeatureNames: names}, nil
}

// parseLabel accepts numeric labels and the yes/no, true/false spellings
// common in churn exports.
func parseLabel(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "yes", "true":
		return 1, nil
	case "no", "false":
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func cellError(line int, column, value string) error {
	return errors.NewValueError("dataset.Load",
		fmt.Sprintf("row %d, column %q: cannot parse %q as a number", line, column, value))
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return d.Labels.Len()
}
