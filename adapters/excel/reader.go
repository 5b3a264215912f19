// Package excel reads surveillance tables from Excel workbooks, for teams
// that maintain their reporting line lists in spreadsheets.
package excel

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"r0fit/domain/surveillance"
	"r0fit/internal/errors"
)

// Reader ingests observation tables from the first sheet of a workbook.
// Expected columns (header row, case-insensitive): department, week, cases.
type Reader struct{}

// NewReader creates an Excel reader adapter.
func NewReader() *Reader {
	return &Reader{}
}

// ReadObservations reads the first sheet of the workbook at path.
func (r *Reader) ReadObservations(path string) (*surveillance.Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.InvalidInput(fmt.Sprintf("workbook not found: %s", path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("workbook %s has no sheets", path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s of %s", sheets[0], path)
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("workbook %s needs a header row and at least one data row", path))
	}

	header := rows[0]
	deptCol := columnIndex(header, "department")
	weekCol := columnIndex(header, "week")
	casesCol := columnIndex(header, "cases")
	if deptCol < 0 || weekCol < 0 || casesCol < 0 {
		return nil, errors.InvalidInput(
			fmt.Sprintf("workbook %s: header must contain department, week, cases (got %s)", path, strings.Join(header, ",")))
	}

	obs := make([]surveillance.Observation, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		if len(row) <= deptCol || len(row) <= weekCol || len(row) <= casesCol {
			return nil, errors.InvalidInput(fmt.Sprintf("workbook %s row %d: too few cells", path, i+2))
		}
		dept, err := strconv.Atoi(strings.TrimSpace(row[deptCol]))
		if err != nil {
			return nil, errors.Wrapf(err, "workbook %s row %d: parse department %q", path, i+2, row[deptCol])
		}
		week, err := strconv.Atoi(strings.TrimSpace(row[weekCol]))
		if err != nil {
			return nil, errors.Wrapf(err, "workbook %s row %d: parse week %q", path, i+2, row[weekCol])
		}
		cases, err := strconv.ParseFloat(strings.TrimSpace(row[casesCol]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "workbook %s row %d: parse cases %q", path, i+2, row[casesCol])
		}
		obs = append(obs, surveillance.Observation{Department: dept, Week: week, Cases: cases})
	}

	table, err := surveillance.NewTable(obs)
	if err != nil {
		return nil, errors.Wrapf(err, "validating %s", path)
	}
	return table, nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
