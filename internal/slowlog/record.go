package slowlog

import "time"

// Record is one parsed slow-query event. A record is only emitted once its
// duration has been populated; the remaining fields stay nil when the source
// format does not carry them (Postgres logs have no lock or row counters).
type Record struct {
	Timestamp    *time.Time `json:"timestamp"`
	QueryTime    float64    `json:"query_time"`
	LockTime     *float64   `json:"lock_time"`
	RowsSent     *int64     `json:"rows_sent"`
	RowsExamined *int64     `json:"rows_examined"`
	SQL          string     `json:"sql"`
}
