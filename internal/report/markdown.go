// Package report writes training reports in Markdown format.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/discochess/movequality/internal/analysis"
	"github.com/discochess/movequality/internal/artifact"
	"github.com/discochess/movequality/internal/nn"
)

// MarkdownReport generates training reports in Markdown format.
type MarkdownReport struct {
	w io.Writer
}

// NewMarkdownReport creates a new Markdown report writer.
func NewMarkdownReport(w io.Writer) *MarkdownReport {
	return &MarkdownReport{w: w}
}

// WriteHeader writes the report header.
func (r *MarkdownReport) WriteHeader(title string, generated time.Time) {
	fmt.Fprintf(r.w, "# %s\n\n", title)
	fmt.Fprintf(r.w, "Generated: %s\n\n", generated.Format(time.RFC3339))
}

// WriteDataset writes the dataset section.
func (r *MarkdownReport) WriteDataset(games, positions, train, test int) {
	fmt.Fprintln(r.w, "## Dataset")
	fmt.Fprintln(r.w)
	fmt.Fprintf(r.w, "- **Decisive games:** %d\n", games)
	fmt.Fprintf(r.w, "- **Positions:** %d (%d train, %d held out)\n", positions, train, test)
	fmt.Fprintln(r.w, "- **Label:** final result from the side to move (1 = won, 0 = lost)")
	fmt.Fprintln(r.w)
}

// WriteArtifact writes the artifact metadata table.
func (r *MarkdownReport) WriteArtifact(location string, meta artifact.Metadata) {
	fmt.Fprintln(r.w, "## Artifact")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Field | Value |")
	fmt.Fprintln(r.w, "|-------|-------|")
	fmt.Fprintf(r.w, "| Location | `%s` |\n", location)
	fmt.Fprintf(r.w, "| ID | `%s` |\n", meta.ID)
	fmt.Fprintf(r.w, "| Kind | %s |\n", meta.Kind)
	fmt.Fprintf(r.w, "| Inputs | %d |\n", meta.Inputs)
	fmt.Fprintf(r.w, "| Test accuracy | %.4f |\n", meta.TestAccuracy)
	fmt.Fprintln(r.w)
}

// WriteHistory writes one table row per training epoch.
func (r *MarkdownReport) WriteHistory(history []nn.EpochStats) {
	fmt.Fprintln(r.w, "## Training")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Epoch | Loss | Accuracy | Val Loss | Val Accuracy |")
	fmt.Fprintln(r.w, "|-------|------|----------|----------|--------------|")
	for _, e := range history {
		if e.HasValidation {
			fmt.Fprintf(r.w, "| %d | %.4f | %.4f | %.4f | %.4f |\n", e.Epoch, e.Loss, e.Accuracy, e.ValLoss, e.ValAccuracy)
		} else {
			fmt.Fprintf(r.w, "| %d | %.4f | %.4f | - | - |\n", e.Epoch, e.Loss, e.Accuracy)
		}
	}
	fmt.Fprintln(r.w)
}

// WriteSeparation writes the statistics comparing won and lost positions.
func (r *MarkdownReport) WriteSeparation(s *analysis.Separation) {
	fmt.Fprintln(r.w, "## Score Separation")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "| Metric | Won | Lost |")
	fmt.Fprintln(r.w, "|--------|-----|------|")
	fmt.Fprintf(r.w, "| N | %d | %d |\n", s.Won.N, s.Lost.N)
	fmt.Fprintf(r.w, "| Mean | %.4f | %.4f |\n", s.Won.Mean, s.Lost.Mean)
	fmt.Fprintf(r.w, "| Median | %.4f | %.4f |\n", s.Won.Median, s.Lost.Median)
	fmt.Fprintf(r.w, "| Std Dev | %.4f | %.4f |\n", s.Won.StdDev, s.Lost.StdDev)
	fmt.Fprintln(r.w)

	fmt.Fprintf(r.w, "- **AUC:** %.4f\n", s.AUC)
	fmt.Fprintf(r.w, "- **Mann-Whitney U:** %.2f (z=%.2f, p=%.4f)\n",
		s.MannWhitney.U, s.MannWhitney.Z, s.MannWhitney.PValue)
	fmt.Fprintf(r.w, "- **Effect size (Cohen's d):** %.2f (%s)\n",
		s.EffectSize.CohensD, s.EffectSize.Interpretation)
	fmt.Fprintf(r.w, "- **%.0f%% CI for mean difference:** [%.4f, %.4f]\n",
		s.Bootstrap.Confidence*100, s.Bootstrap.LowerBound, s.Bootstrap.UpperBound)
	fmt.Fprintln(r.w)

	if s.Separated() {
		fmt.Fprintln(r.w, "Positions from won games score significantly higher than positions from lost games.")
	} else {
		fmt.Fprintln(r.w, "No statistically significant separation between won and lost positions (p >= 0.05).")
	}
	fmt.Fprintln(r.w)
}

// WriteDistributionChart writes an ASCII histogram of scores in [0, 1].
func (r *MarkdownReport) WriteDistributionChart(name string, scores []float64) {
	fmt.Fprintf(r.w, "### %s Distribution\n\n", name)
	fmt.Fprintln(r.w, "```")

	hist := makeHistogram(scores, 10)
	maxCount := 0
	for _, count := range hist {
		maxCount = max(maxCount, count)
	}

	width := 40
	for i, count := range hist {
		barLen := 0
		if maxCount > 0 {
			barLen = count * width / maxCount
		}
		bar := strings.Repeat("█", barLen)
		fmt.Fprintf(r.w, "%.1f-%.1f │ %s %d\n", float64(i)/10, float64(i+1)/10, bar, count)
	}

	fmt.Fprintln(r.w, "```")
	fmt.Fprintln(r.w)
}

// makeHistogram buckets scores in [0, 1] into equal-width buckets.
func makeHistogram(scores []float64, buckets int) []int {
	hist := make([]int, buckets)
	for _, s := range scores {
		bucket := int(s * float64(buckets))
		bucket = min(max(bucket, 0), buckets-1)
		hist[bucket]++
	}
	return hist
}

// WriteFooter writes the report footer.
func (r *MarkdownReport) WriteFooter() {
	fmt.Fprintln(r.w, "---")
	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, "*Report generated by chessml*")
}
