package slowlog

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// mysqlTimeLayout matches the slow-log header, e.g. "2024-01-15T10:30:00.123456Z".
const mysqlTimeLayout = "2006-01-02T15:04:05.000000Z"

var mysqlMetricRe = regexp.MustCompile(`(\w+): (\d+\.?\d*)`)

// ParseMySQLSlowLog parses the row-oriented MySQL slow-log format. Each
// record opens with a "# Time:" header; the next "# Time:" header finalizes
// the previous record, so a trailing record with no terminator is dropped.
// Statement capture starts at a line beginning with "select" (any case) and
// stops at a blank line; "SET timestamp=" and "use " bookkeeping lines are
// discarded.
func ParseMySQLSlowLog(raw string) []Record {
	var (
		records  []Record
		current  Record
		hasTime  bool
		capture  bool
		sqlLines []string
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "# Time:"):
			if hasTime && len(sqlLines) > 0 {
				current.SQL = NormalizeStatement(strings.TrimSpace(strings.Join(sqlLines, " ")))
				records = append(records, current)
			}

			current = Record{}
			hasTime = false
			capture = false
			sqlLines = nil

			ts := strings.TrimSpace(strings.TrimPrefix(line, "# Time:"))
			if parsed, err := time.Parse(mysqlTimeLayout, ts); err == nil {
				parsed = parsed.UTC()
				current.Timestamp = &parsed
			}

		case strings.HasPrefix(line, "# Query_time:"):
			for _, m := range mysqlMetricRe.FindAllStringSubmatch(strings.ReplaceAll(line, "# ", ""), -1) {
				name, value := m[1], m[2]
				switch name {
				case "Query_time":
					if f, err := strconv.ParseFloat(value, 64); err == nil {
						current.QueryTime = f
						hasTime = true
					}
				case "Lock_time":
					if f, err := strconv.ParseFloat(value, 64); err == nil {
						current.LockTime = &f
					}
				case "Rows_sent":
					if n, err := strconv.ParseInt(value, 10, 64); err == nil {
						current.RowsSent = &n
					}
				case "Rows_examined":
					if n, err := strconv.ParseInt(value, 10, 64); err == nil {
						current.RowsExamined = &n
					}
				}
			}

		case strings.HasPrefix(line, "SET timestamp="), strings.HasPrefix(line, "use "):
			// Session bookkeeping emitted between the header and the statement.

		case line == "":
			capture = false

		case strings.HasPrefix(line, "#"):
			// Other comment lines (e.g. "# User@Host:") carry nothing we need.

		default:
			if strings.HasPrefix(strings.ToLower(line), "select") {
				capture = true
				sqlLines = append(sqlLines, line)
			} else if capture {
				sqlLines = append(sqlLines, line)
			}
		}
	}

	return records
}
