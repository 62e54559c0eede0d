package slowlog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// postgresBlockStartRe marks the first line of a log event. Continuation
	// lines of a multi-line statement do not match and are buffered into the
	// current block.
	postgresBlockStartRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} UTC:`)

	// postgresDurationRe extracts duration and statement from a completed
	// block. (?s) lets the statement span the block's buffered newlines.
	postgresDurationRe = regexp.MustCompile(`(?s)LOG:  duration: (\d+\.?\d*) ms  statement: (.*)`)
)

// ParsePostgresLog parses the timestamped-block Postgres log format. Lines
// are grouped into blocks at timestamp boundaries; blocks without a
// "duration: ... statement: ..." payload (checkpoints, connection noise) are
// dropped. Unlike the MySQL format the final block has no terminator, so it
// is flushed at end of input.
func ParsePostgresLog(raw string) []Record {
	var (
		records []Record
		buffer  []string
	)

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		block := strings.Join(buffer, "\n")
		m := postgresDurationRe.FindStringSubmatch(block)
		if m == nil {
			return
		}
		duration, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return
		}
		records = append(records, Record{
			QueryTime: duration,
			SQL:       NormalizeStatement(m[2]),
		})
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if postgresBlockStartRe.MatchString(line) {
			flush()
			buffer = []string{line}
		} else if len(buffer) > 0 {
			buffer = append(buffer, line)
		}
	}
	flush()

	return records
}
