package analyze

import (
	"fmt"
	"io"
	"strings"
)

// GlobalStats aggregates per-series results across a whole run.
type GlobalStats struct {
	TotalFiles         int
	Processed          int
	ErrorFiles         int
	EmptyFiles         int
	ConstantPriceFiles int
	LowDataPointFiles  int

	MinNumPoints    *float64
	MaxNumPoints    *float64
	MeanNumPoints   *float64
	MedianNumPoints *float64
	StdDevNumPoints *float64

	AverageOfMeans   *float64
	StdDevOfMeans    *float64
	AverageOfStdDevs *float64
	StdDevOfStdDevs  *float64
}

// Aggregate computes the global statistics over all results.
func Aggregate(results []Result) GlobalStats {
	g := GlobalStats{TotalFiles: len(results), Processed: len(results)}

	var numPoints, means, stdDevs []float64
	for i := range results {
		r := &results[i]
		numPoints = append(numPoints, float64(r.NumPoints))

		if r.HasIssue("File not found") || r.HasIssue("Invalid JSON") || r.HasIssue("Error processing file") {
			g.ErrorFiles++
		}
		if r.HasIssue("No 'history' key found") || r.HasIssue("History list is empty.") ||
			r.HasIssue("No valid price data points found") {
			g.EmptyFiles++
		}
		if r.StdDevPrice != nil && *r.StdDevPrice == 0 && r.NumPoints >= 2 {
			g.ConstantPriceFiles++
		}
		if r.HasIssue("Very few data points") {
			g.LowDataPointFiles++
		}

		if r.MeanPrice != nil {
			means = append(means, *r.MeanPrice)
		}
		if r.StdDevPrice != nil {
			stdDevs = append(stdDevs, *r.StdDevPrice)
		}
	}

	if len(numPoints) > 0 {
		lo, hi := minMax(numPoints)
		m := mean(numPoints)
		md := median(numPoints)
		g.MinNumPoints, g.MaxNumPoints = &lo, &hi
		g.MeanNumPoints, g.MedianNumPoints = &m, &md
		if len(numPoints) >= 2 {
			sd := sampleStdDev(numPoints)
			g.StdDevNumPoints = &sd
		}
	}
	if len(means) > 0 {
		m := mean(means)
		g.AverageOfMeans = &m
		if len(means) >= 2 {
			sd := sampleStdDev(means)
			g.StdDevOfMeans = &sd
		}
	}
	if len(stdDevs) > 0 {
		m := mean(stdDevs)
		g.AverageOfStdDevs = &m
		if len(stdDevs) >= 2 {
			sd := sampleStdDev(stdDevs)
			g.StdDevOfStdDevs = &sd
		}
	}

	return g
}

// WriteSummary renders the human-readable report: one section per file
// followed by the global statistics. Regenerated wholesale each run.
func WriteSummary(w io.Writer, results []Result, globals GlobalStats) error {
	bw := &errWriter{w: w}

	bw.printf("Price History Analysis Summary\n")
	bw.printf("=============================\n\n")

	for i := range results {
		r := &results[i]
		bw.printf("File: %s\n", r.Filename)
		bw.printf("  Number of Data Points: %d\n", r.NumPoints)
		bw.printf("  Mean Price: %s\n", fmtFloat(r.MeanPrice, 4))
		bw.printf("  Std Dev Price: %s\n", fmtFloat(r.StdDevPrice, 4))

		if r.MinTime != nil && r.MaxTime != nil {
			bw.printf("  Time Range: %s to %s\n", *r.MinTime, *r.MaxTime)
		} else {
			bw.printf("  Time Range: N/A\n")
		}

		if td := r.TimeDeltas; td != nil {
			bw.printf("  Timestamp Differences (seconds):\n")
			bw.printf("    Min: %d, Max: %d, Mean: %.2f, Median: %v\n",
				td.MinDeltaSeconds, td.MaxDeltaSeconds, td.MeanDeltaSeconds, td.MedianDeltaSeconds)
			if len(td.IrregularDeltas) > 0 {
				bw.printf("    Irregular deltas (delta: count): %v\n", td.IrregularDeltas)
			}
		} else {
			bw.printf("  Timestamp Differences (seconds): N/A (Not enough data or error)\n")
		}

		if len(r.Issues) > 0 {
			bw.printf("  Issues: %s\n", strings.Join(r.Issues, "; "))
		} else {
			bw.printf("  Issues: None\n")
		}
		bw.printf("%s\n", strings.Repeat("-", 30))
	}

	bw.printf("\nOverall Statistics\n")
	bw.printf("==================\n")
	bw.printf("Total files found: %d\n", globals.TotalFiles)
	bw.printf("Total files processed: %d\n", globals.Processed)
	bw.printf("Files with read/parse errors: %d\n", globals.ErrorFiles)
	bw.printf("Files with no history/data points: %d\n", globals.EmptyFiles)
	bw.printf("Files with constant price: %d\n", globals.ConstantPriceFiles)
	bw.printf("Files with very few data points (<%d): %d\n\n", fewPointsThreshold, globals.LowDataPointFiles)

	bw.printf("Global Data Characteristics (across all processed files):\n")
	bw.printf("  Number of Points:\n")
	bw.printf("    Min: %s\n", fmtFloat(globals.MinNumPoints, 0))
	bw.printf("    Max: %s\n", fmtFloat(globals.MaxNumPoints, 0))
	bw.printf("    Mean: %s\n", fmtFloat(globals.MeanNumPoints, 2))
	bw.printf("    Median: %s\n", fmtFloat(globals.MedianNumPoints, 1))
	bw.printf("    Std Dev: %s\n", fmtFloat(globals.StdDevNumPoints, 2))
	bw.printf("  Mean Prices (of files with valid means):\n")
	bw.printf("    Average of Means: %s\n", fmtFloat(globals.AverageOfMeans, 4))
	bw.printf("    Std Dev of Means: %s\n", fmtFloat(globals.StdDevOfMeans, 4))
	bw.printf("  Standard Deviations (of files with valid std devs):\n")
	bw.printf("    Average of Std Devs: %s\n", fmtFloat(globals.AverageOfStdDevs, 4))
	bw.printf("    Std Dev of Std Devs: %s\n", fmtFloat(globals.StdDevOfStdDevs, 4))

	return bw.err
}

func fmtFloat(v *float64, decimals int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

// errWriter latches the first write error so every printf call does
// not need its own check.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
