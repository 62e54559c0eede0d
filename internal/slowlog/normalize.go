package slowlog

import "strings"

const (
	// maxStatementLen bounds statement text so one pathological query cannot
	// blow up the tool response.
	maxStatementLen = 1500

	// collapseThreshold is the IN-list size above which the value list is
	// collapsed to first-three plus last-two.
	collapseThreshold = 5
)

// NormalizeStatement bounds a statement's text. Two literal-text transforms,
// no SQL parsing:
//
//  1. An `IN (` value list (keyword matched case-insensitively) with more
//     than five comma-separated elements is collapsed to the first three and
//     last two around an ellipsis. Only the first `IN (` occurrence is
//     handled; later clauses and nested parens are left as-is.
//  2. Text longer than 1500 characters is cut at 1500 with a marker.
func NormalizeStatement(sql string) string {
	if idx := strings.Index(strings.ToUpper(sql), "IN ("); idx >= 0 {
		before := sql[:idx+4]
		rest := sql[idx+4:]
		if close := strings.Index(rest, ")"); close >= 0 {
			values := strings.Split(rest[:close], ",")
			if len(values) > collapseThreshold {
				collapsed := strings.Join(values[:3], ",") + ", ... " + strings.Join(values[len(values)-2:], ",")
				sql = before + collapsed + ")" + rest[close+1:]
			}
		}
	}

	if len(sql) > maxStatementLen {
		sql = sql[:maxStatementLen] + "... [truncated]"
	}
	return sql
}
