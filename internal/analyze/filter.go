package analyze

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Criteria selects series from a set of analysis results. Nil fields
// are not applied. Bounded numeric criteria reject results whose
// corresponding statistic is absent.
type Criteria struct {
	MinNumPoints *int     `yaml:"min_num_points"`
	MaxNumPoints *int     `yaml:"max_num_points"`
	MinMeanPrice *float64 `yaml:"min_mean_price"`
	MaxMeanPrice *float64 `yaml:"max_mean_price"`
	MinStdDev    *float64 `yaml:"min_std_dev_price"`
	MaxStdDev    *float64 `yaml:"max_std_dev_price"`

	// ExcludeIssues rejects a result when any entry appears as a
	// substring of its joined issue list. RequireIssues demands that
	// every entry appears.
	ExcludeIssues []string `yaml:"exclude_issues"`
	RequireIssues []string `yaml:"require_issues"`

	// MaxIrregularDeltaSeconds caps the largest gap between
	// consecutive points. Results without delta statistics fail.
	MaxIrregularDeltaSeconds *int64 `yaml:"max_irregular_delta_seconds"`
}

// LoadCriteria reads filter criteria from a YAML file.
func LoadCriteria(path string) (*Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading criteria file: %w", err)
	}
	var c Criteria
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing criteria file %s: %w", path, err)
	}
	return &c, nil
}

// Apply returns the filenames of results that pass every configured
// criterion, preserving input order.
func (c *Criteria) Apply(results []Result) []string {
	var passed []string
	for i := range results {
		if c.matches(&results[i]) {
			passed = append(passed, results[i].Filename)
		}
	}
	return passed
}

func (c *Criteria) matches(r *Result) bool {
	if c.MinNumPoints != nil && r.NumPoints < *c.MinNumPoints {
		return false
	}
	if c.MaxNumPoints != nil && r.NumPoints > *c.MaxNumPoints {
		return false
	}
	if c.MinMeanPrice != nil && (r.MeanPrice == nil || *r.MeanPrice < *c.MinMeanPrice) {
		return false
	}
	if c.MaxMeanPrice != nil && (r.MeanPrice == nil || *r.MeanPrice > *c.MaxMeanPrice) {
		return false
	}
	if c.MinStdDev != nil && (r.StdDevPrice == nil || *r.StdDevPrice < *c.MinStdDev) {
		return false
	}
	if c.MaxStdDev != nil && (r.StdDevPrice == nil || *r.StdDevPrice > *c.MaxStdDev) {
		return false
	}

	if len(c.ExcludeIssues) > 0 || len(c.RequireIssues) > 0 {
		joined := strings.Join(r.Issues, "; ")
		for _, excl := range c.ExcludeIssues {
			if strings.Contains(joined, excl) {
				return false
			}
		}
		for _, req := range c.RequireIssues {
			if !strings.Contains(joined, req) {
				return false
			}
		}
	}

	if c.MaxIrregularDeltaSeconds != nil {
		if r.TimeDeltas == nil || r.TimeDeltas.MaxDeltaSeconds > *c.MaxIrregularDeltaSeconds {
			return false
		}
	}
	return true
}
