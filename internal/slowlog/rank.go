package slowlog

import "sort"

// maxRankedRecords caps how many records survive ranking.
const maxRankedRecords = 50

// RankByDuration sorts records by duration descending (stable, so equal
// durations keep their log order) and caps the result at 50.
func RankByDuration(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].QueryTime > sorted[j].QueryTime
	})
	if len(sorted) > maxRankedRecords {
		sorted = sorted[:maxRankedRecords]
	}
	return sorted
}

// Top returns the first n records of an already ranked slice.
func Top(records []Record, n int) []Record {
	if n < 0 {
		n = 0
	}
	if len(records) > n {
		return records[:n]
	}
	return records
}
