// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

// Package dataio reads prepared series and writes posterior ensembles,
// forecast summaries and impulse responses as CSV or console tables.
package dataio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"bvarsv/internal/bvar"
)

// LoadCSV loads a CSV file into a TimeSeries struct.
// The first row holds the variable names, every following row one period.
func LoadCSV(path string) (*bvar.TimeSeries, error) {
	// 1. Open file
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ts, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// ReadCSV parses a prepared series from r.
func ReadCSV(r io.Reader) (*bvar.TimeSeries, error) {
	// 2. Make CSV reader
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	// 3. Read header row
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) == 0 || (len(header) == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, fmt.Errorf("empty header")
	}
	N := len(header) // number of variables
	for j := range header {
		header[j] = strings.TrimSpace(header[j])
	}

	var (
		data  []float64 // flat data for mat.Dense
		times []float64 // time index
		row   int       // row counter
	)

	// 4. Read each data row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row+2, err) // +2 for header + 1-based
		}

		// Skip completely empty lines
		if len(record) == 1 && record[0] == "" {
			continue
		}

		if len(record) != N {
			return nil, fmt.Errorf(
				"row %d: expected %d columns, got %d",
				row+2, N, len(record),
			)
		}

		for j, s := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf(
					"parse float at row %d col %d (%q): %w",
					row+2, j+1, s, err,
				)
			}
			data = append(data, v)
		}

		// Simple time index: 0,1,2,...
		times = append(times, float64(row))
		row++
	}

	if row == 0 {
		return nil, fmt.Errorf("no data rows")
	}

	// 5. Build TimeSeries
	return &bvar.TimeSeries{
		Y:        mat.NewDense(row, N, data),
		Time:     times,
		VarNames: header,
	}, nil
}

// varName returns the name of column j, or Var<j+1> when names are missing.
func varName(names []string, n, j int) string {
	if len(names) == n {
		return names[j]
	}
	return fmt.Sprintf("Var%d", j+1)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
