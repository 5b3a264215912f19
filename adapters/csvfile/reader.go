// Package csvfile reads surveillance tables from delimited text files and
// writes the run outputs (predicted values, R0 intervals) back out as CSV.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"r0fit/domain/surveillance"
	"r0fit/internal/errors"
)

// Column names recognized in the observation header, case-insensitive.
const (
	colDepartment = "department"
	colWeek       = "week"
	colCases      = "cases"
	colR0         = "r0"
	colClimate    = "climate"
)

// Reader ingests observation and climate tables from CSV files.
type Reader struct{}

// NewReader creates a CSV reader adapter.
func NewReader() *Reader {
	return &Reader{}
}

// ReadObservations reads a header-led CSV with columns department, week,
// cases (extra columns ignored) and returns a validated table.
func (r *Reader) ReadObservations(path string) (*surveillance.Table, error) {
	rows, header, err := readAll(path)
	if err != nil {
		return nil, err
	}

	deptCol, err := findColumn(header, colDepartment)
	if err != nil {
		return nil, err
	}
	weekCol, err := findColumn(header, colWeek)
	if err != nil {
		return nil, err
	}
	casesCol, err := findColumn(header, colCases)
	if err != nil {
		return nil, err
	}

	obs := make([]surveillance.Observation, 0, len(rows))
	for i, rec := range rows {
		dept, err := parseInt(rec[deptCol], i, colDepartment)
		if err != nil {
			return nil, err
		}
		week, err := parseInt(rec[weekCol], i, colWeek)
		if err != nil {
			return nil, err
		}
		cases, err := parseFloat(rec[casesCol], i, colCases)
		if err != nil {
			return nil, err
		}
		obs = append(obs, surveillance.Observation{Department: dept, Week: week, Cases: cases})
	}

	table, err := surveillance.NewTable(obs)
	if err != nil {
		return nil, errors.Wrapf(err, "validating %s", path)
	}
	return table, nil
}

// ReadClimate reads a header-led CSV with columns department, r0, climate.
func (r *Reader) ReadClimate(path string) ([]surveillance.ClimateRecord, error) {
	rows, header, err := readAll(path)
	if err != nil {
		return nil, err
	}

	deptCol, err := findColumn(header, colDepartment)
	if err != nil {
		return nil, err
	}
	r0Col, err := findColumn(header, colR0)
	if err != nil {
		return nil, err
	}
	climateCol, err := findColumn(header, colClimate)
	if err != nil {
		return nil, err
	}

	records := make([]surveillance.ClimateRecord, 0, len(rows))
	for i, rec := range rows {
		dept, err := parseInt(rec[deptCol], i, colDepartment)
		if err != nil {
			return nil, err
		}
		r0, err := parseFloat(rec[r0Col], i, colR0)
		if err != nil {
			return nil, err
		}
		climate, err := parseInt(rec[climateCol], i, colClimate)
		if err != nil {
			return nil, err
		}
		records = append(records, surveillance.ClimateRecord{Department: dept, R0: r0, Climate: climate})
	}
	return records, nil
}

func readAll(path string) (rows [][]string, header []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err = cr.Read()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read header of %s", path)
	}

	rowNum := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "read %s row %d", path, rowNum+1)
		}
		rowNum++
		if len(rec) == 1 && rec[0] == "" {
			continue
		}
		if len(rec) != len(header) {
			return nil, nil, errors.InvalidInput(
				fmt.Sprintf("%s row %d: expected %d columns, got %d", path, rowNum, len(header), len(rec)))
		}
		rows = append(rows, rec)
	}

	if len(rows) == 0 {
		return nil, nil, errors.InvalidInput(fmt.Sprintf("no data rows in %s", path))
	}
	return rows, header, nil
}

func findColumn(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, nil
		}
	}
	return -1, errors.InvalidInput(fmt.Sprintf("missing %q column (header: %s)", name, strings.Join(header, ",")))
}

func parseInt(s string, row int, col string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "row %d: parse %s %q", row+2, col, s)
	}
	return v, nil
}

func parseFloat(s string, row int, col string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "row %d: parse %s %q", row+2, col, s)
	}
	return v, nil
}
