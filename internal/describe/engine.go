// Package describe computes descriptive statistics over a dataset: summary
// statistics overall and per group, frequency and cross-frequency tables,
// and IQR-fence outlier sets. All computations skip missing values; an empty
// column yields an explicitly undefined result, never zeros.
package describe

import (
	"sort"

	"github.com/montanaflynn/stats"

	dstats "statpipe/domain/stats"
	"statpipe/domain/table"
)

// Summarize computes count, mean, median, min, max, sample standard
// deviation and quartiles over the non-missing values of a numeric or
// ordinal column.
func Summarize(ds *table.Dataset, column string) (dstats.Summary, error) {
	values, _, err := ds.NumericValues(column)
	if err != nil {
		return dstats.Summary{}, err
	}
	return summarizeValues(column, values), nil
}

// SummarizeBy computes summaries independently per group label. Each group
// uses only the rows where both the measured and grouping column are
// non-missing, so the group row-sets partition the pairwise-complete set.
func SummarizeBy(ds *table.Dataset, column, groupBy string) (map[string]dstats.Summary, error) {
	valueCol, err := ds.Column(column)
	if err != nil {
		return nil, err
	}
	groupCol, err := ds.Column(groupBy)
	if err != nil {
		return nil, err
	}
	groups := make(map[string][]float64)
	for pos := 0; pos < ds.RowCount(); pos++ {
		f, okV := valueCol.Values[pos].Float()
		label, okG := groupCol.Values[pos].Label()
		if okV && okG {
			groups[label] = append(groups[label], f)
		}
	}
	result := make(map[string]dstats.Summary, len(groups))
	for label, values := range groups {
		result[label] = summarizeValues(column, values)
	}
	return result, nil
}

// Frequency computes an ordered label -> count/percentage table for a
// categorical column, sorted by count descending then label for
// deterministic output.
func Frequency(ds *table.Dataset, column string) (dstats.FrequencyTable, error) {
	labels, _, err := ds.Labels(column)
	if err != nil {
		return dstats.FrequencyTable{}, err
	}
	counts := make(map[string]int, len(labels))
	for _, label := range labels {
		counts[label]++
	}
	entries := make([]dstats.FrequencyEntry, 0, len(counts))
	for label, count := range counts {
		pct := 0.0
		if len(labels) > 0 {
			pct = 100 * float64(count) / float64(len(labels))
		}
		entries = append(entries, dstats.FrequencyEntry{Label: label, Count: count, Percent: pct})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Label < entries[j].Label
	})
	return dstats.FrequencyTable{Column: column, Total: len(labels), Entries: entries}, nil
}

// CrossFrequency computes a two-dimensional count table plus row-normalized
// percentages over the pairwise-complete rows of two categorical columns.
func CrossFrequency(ds *table.Dataset, rowColumn, colColumn string) (dstats.CrossTable, error) {
	rowCol, err := ds.Column(rowColumn)
	if err != nil {
		return dstats.CrossTable{}, err
	}
	colCol, err := ds.Column(colColumn)
	if err != nil {
		return dstats.CrossTable{}, err
	}

	type pair struct{ row, col string }
	pairCounts := make(map[pair]int)
	rowSet := make(map[string]bool)
	colSet := make(map[string]bool)
	total := 0
	for pos := 0; pos < ds.RowCount(); pos++ {
		r, okR := rowCol.Values[pos].Label()
		c, okC := colCol.Values[pos].Label()
		if !okR || !okC {
			continue
		}
		pairCounts[pair{r, c}]++
		rowSet[r] = true
		colSet[c] = true
		total++
	}

	rowLabels := sortedLabels(rowSet)
	colLabels := sortedLabels(colSet)

	counts := make([][]int, len(rowLabels))
	percents := make([][]float64, len(rowLabels))
	rowMargins := make([]int, len(rowLabels))
	colMargins := make([]int, len(colLabels))
	for i, r := range rowLabels {
		counts[i] = make([]int, len(colLabels))
		percents[i] = make([]float64, len(colLabels))
		for j, c := range colLabels {
			n := pairCounts[pair{r, c}]
			counts[i][j] = n
			rowMargins[i] += n
			colMargins[j] += n
		}
		for j := range colLabels {
			if rowMargins[i] > 0 {
				percents[i][j] = 100 * float64(counts[i][j]) / float64(rowMargins[i])
			}
		}
	}

	return dstats.CrossTable{
		RowColumn:   rowColumn,
		ColColumn:   colColumn,
		RowLabels:   rowLabels,
		ColLabels:   colLabels,
		Counts:      counts,
		RowPercents: percents,
		Total:       total,
		RowMargins:  rowMargins,
		ColMargins:  colMargins,
	}, nil
}

// Outliers detects values beyond the boxplot fences Q1-1.5*IQR and
// Q3+1.5*IQR, paired with their originating row identifiers.
func Outliers(ds *table.Dataset, column string) (dstats.OutlierSet, error) {
	values, rowIDs, err := ds.NumericValues(column)
	if err != nil {
		return dstats.OutlierSet{}, err
	}
	if len(values) == 0 {
		return dstats.OutlierSet{Column: column, Reason: "no non-missing values"}, nil
	}
	q1, q3 := quartiles(values)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr
	set := dstats.OutlierSet{
		Column:     column,
		Q1:         q1,
		Q3:         q3,
		LowerFence: lower,
		UpperFence: upper,
		Defined:    true,
	}
	for i, v := range values {
		if v < lower || v > upper {
			set.Outliers = append(set.Outliers, dstats.Outlier{RowID: rowIDs[i], Value: v})
		}
	}
	return set, nil
}

func summarizeValues(column string, values []float64) dstats.Summary {
	if len(values) == 0 {
		return dstats.UndefinedSummary(column, "no non-missing values")
	}
	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	stdDev := 0.0
	if len(values) >= 2 {
		stdDev, _ = stats.StandardDeviationSample(values)
	}
	q1, q3 := quartiles(values)
	return dstats.Summary{
		Column:  column,
		Count:   len(values),
		Mean:    mean,
		Median:  median,
		Min:     min,
		Max:     max,
		StdDev:  stdDev,
		Q1:      q1,
		Q3:      q3,
		Defined: true,
	}
}

// quartiles returns Q1 and Q3 by the median-of-halves convention. A single
// observation is its own quartile.
func quartiles(values []float64) (float64, float64) {
	if len(values) < 2 {
		return values[0], values[0]
	}
	q, err := stats.Quartile(values)
	if err != nil {
		return values[0], values[0]
	}
	return q.Q1, q.Q3
}

func sortedLabels(set map[string]bool) []string {
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
