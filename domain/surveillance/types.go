// Package surveillance holds the observational data model: weekly cumulative
// case counts reported per geographic department.
package surveillance

import (
	"fmt"
	"math"

	"r0fit/internal/errors"
)

// Observation is a single reported record: cumulative case count for one
// department at one week index.
type Observation struct {
	Department int     `json:"department"`
	Week       int     `json:"week"`
	Cases      float64 `json:"cases"`
}

// LnCases returns the log-transformed case count.
func (o Observation) LnCases() float64 {
	return math.Log(o.Cases)
}

// Table is a validated set of observations ready for model fitting.
// Department ids are dense integers 1..Departments, every department has at
// least one week-0 record, and all counts are strictly positive.
type Table struct {
	Observations []Observation
	Departments  int

	// Intercepts holds the observed intercept per department (index j-1):
	// the mean log case count over that department's week-0 records.
	Intercepts []float64
}

// NewTable validates raw observations and derives per-department intercepts.
func NewTable(obs []Observation) (*Table, error) {
	if len(obs) == 0 {
		return nil, errors.ValidationError("no observations")
	}

	maxDept := 0
	for _, o := range obs {
		if o.Department < 1 {
			return nil, errors.ValidationError(fmt.Sprintf("department id %d: ids must start at 1", o.Department))
		}
		if o.Week < 0 {
			return nil, errors.ValidationError(fmt.Sprintf("department %d: negative week index %d", o.Department, o.Week))
		}
		if !(o.Cases > 0) {
			return nil, errors.ValidationError(fmt.Sprintf("department %d week %d: case count %v must be positive", o.Department, o.Week, o.Cases))
		}
		if o.Department > maxDept {
			maxDept = o.Department
		}
	}

	seen := make([]bool, maxDept)
	week0Sum := make([]float64, maxDept)
	week0N := make([]int, maxDept)
	for _, o := range obs {
		seen[o.Department-1] = true
		if o.Week == 0 {
			week0Sum[o.Department-1] += o.LnCases()
			week0N[o.Department-1]++
		}
	}

	for j := 0; j < maxDept; j++ {
		if !seen[j] {
			return nil, errors.ValidationError(fmt.Sprintf("department ids are not dense: no observations for department %d", j+1))
		}
		if week0N[j] == 0 {
			return nil, errors.ValidationError(fmt.Sprintf("department %d has no week-0 observation; intercept is undefined", j+1))
		}
	}

	intercepts := make([]float64, maxDept)
	for j := 0; j < maxDept; j++ {
		intercepts[j] = week0Sum[j] / float64(week0N[j])
	}

	return &Table{
		Observations: obs,
		Departments:  maxDept,
		Intercepts:   intercepts,
	}, nil
}

// ByDepartment returns the observations belonging to department j (1-based).
func (t *Table) ByDepartment(j int) []Observation {
	var out []Observation
	for _, o := range t.Observations {
		if o.Department == j {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of observations.
func (t *Table) Len() int { return len(t.Observations) }

// ClimateRecord pairs a department's estimated reproduction number with its
// climate classification, the input of the one-way ANOVA model.
type ClimateRecord struct {
	Department int     `json:"department"`
	R0         float64 `json:"r0"`
	Climate    int     `json:"climate"`
}

// ValidateClimate checks that climate classes are dense integers 1..K and
// returns K.
func ValidateClimate(records []ClimateRecord) (int, error) {
	if len(records) == 0 {
		return 0, errors.ValidationError("no climate records")
	}
	maxClass := 0
	for _, r := range records {
		if r.Climate < 1 {
			return 0, errors.ValidationError(fmt.Sprintf("department %d: climate class %d must be >= 1", r.Department, r.Climate))
		}
		if r.Climate > maxClass {
			maxClass = r.Climate
		}
	}
	seen := make([]bool, maxClass)
	for _, r := range records {
		seen[r.Climate-1] = true
	}
	for k, ok := range seen {
		if !ok {
			return 0, errors.ValidationError(fmt.Sprintf("climate classes are not dense: class %d unused", k+1))
		}
	}
	if maxClass < 2 {
		return 0, errors.ValidationError("ANOVA needs at least two climate classes")
	}
	return maxClass, nil
}
