package analyze

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCriteria_Apply(t *testing.T) {
	results := []Result{
		{
			Filename:    "rich.json",
			NumPoints:   100,
			MeanPrice:   floatPtr(0.5),
			StdDevPrice: floatPtr(0.1),
			TimeDeltas:  &TimeDeltaStats{MinDeltaSeconds: 60, MaxDeltaSeconds: 60, NumDeltas: 99},
		},
		{
			Filename:    "constant.json",
			NumPoints:   50,
			MeanPrice:   floatPtr(0.9),
			StdDevPrice: floatPtr(0.0),
			TimeDeltas:  &TimeDeltaStats{MinDeltaSeconds: 60, MaxDeltaSeconds: 60, NumDeltas: 49},
			Issues:      []string{"Price is constant throughout the file (StdDev is 0)."},
		},
		{
			Filename: "empty.json",
			Issues:   []string{"History list is empty."},
		},
		{
			Filename:    "gappy.json",
			NumPoints:   80,
			MeanPrice:   floatPtr(0.4),
			StdDevPrice: floatPtr(0.2),
			TimeDeltas:  &TimeDeltaStats{MinDeltaSeconds: 60, MaxDeltaSeconds: 3600, NumDeltas: 79},
		},
	}

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name:     "no criteria passes everything",
			criteria: Criteria{},
			want:     []string{"rich.json", "constant.json", "empty.json", "gappy.json"},
		},
		{
			name:     "min num points",
			criteria: Criteria{MinNumPoints: intPtr(60)},
			want:     []string{"rich.json", "gappy.json"},
		},
		{
			name:     "mean price bounds reject missing stat",
			criteria: Criteria{MinMeanPrice: floatPtr(0.3), MaxMeanPrice: floatPtr(0.6)},
			want:     []string{"rich.json", "gappy.json"},
		},
		{
			name:     "min std dev rejects constant series",
			criteria: Criteria{MinStdDev: floatPtr(0.05)},
			want:     []string{"rich.json", "gappy.json"},
		},
		{
			name:     "exclude issues",
			criteria: Criteria{ExcludeIssues: []string{"Price is constant", "History list is empty."}},
			want:     []string{"rich.json", "gappy.json"},
		},
		{
			name:     "require issues",
			criteria: Criteria{RequireIssues: []string{"Price is constant"}},
			want:     []string{"constant.json"},
		},
		{
			name:     "max irregular delta rejects gaps and missing stats",
			criteria: Criteria{MaxIrregularDeltaSeconds: int64Ptr(120)},
			want:     []string{"rich.json", "constant.json"},
		},
		{
			name: "combined criteria",
			criteria: Criteria{
				MinNumPoints:             intPtr(10),
				ExcludeIssues:            []string{"Price is constant"},
				MaxIrregularDeltaSeconds: int64Ptr(120),
			},
			want: []string{"rich.json"},
		},
		{
			name:     "nothing passes",
			criteria: Criteria{MinNumPoints: intPtr(1000)},
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.criteria.Apply(results)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadCriteria(t *testing.T) {
	path := filepath.Join(t.TempDir(), "criteria.yaml")
	content := `
min_num_points: 10
max_mean_price: 0.95
exclude_issues:
  - "Price is constant"
max_irregular_delta_seconds: 300
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCriteria(path)
	if err != nil {
		t.Fatalf("LoadCriteria() error = %v", err)
	}
	if c.MinNumPoints == nil || *c.MinNumPoints != 10 {
		t.Errorf("MinNumPoints = %v, want 10", c.MinNumPoints)
	}
	if c.MaxNumPoints != nil {
		t.Errorf("MaxNumPoints = %v, want nil", c.MaxNumPoints)
	}
	if c.MaxMeanPrice == nil || *c.MaxMeanPrice != 0.95 {
		t.Errorf("MaxMeanPrice = %v, want 0.95", c.MaxMeanPrice)
	}
	if len(c.ExcludeIssues) != 1 || c.ExcludeIssues[0] != "Price is constant" {
		t.Errorf("ExcludeIssues = %v", c.ExcludeIssues)
	}
	if c.MaxIrregularDeltaSeconds == nil || *c.MaxIrregularDeltaSeconds != 300 {
		t.Errorf("MaxIrregularDeltaSeconds = %v, want 300", c.MaxIrregularDeltaSeconds)
	}
}

func TestLoadCriteria_Missing(t *testing.T) {
	if _, err := LoadCriteria(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadCriteria_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("min_num_points: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCriteria(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
