package slowlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mysqlSample = `# Time: 2024-01-15T10:30:00.123456Z
# User@Host: admin[admin] @  [10.0.0.1]
# Query_time: 10.5  Lock_time: 0.1 Rows_sent: 100  Rows_examined: 1000
SET timestamp=1705314600;
SELECT * FROM users WHERE status = 'active';
# Time: 2024-01-15T10:31:00.000000Z
`

func TestParseMySQLSlowLog_SingleRecord(t *testing.T) {
	records := ParseMySQLSlowLog(mysqlSample)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, 10.5, rec.QueryTime)
	assert.Equal(t, "SELECT * FROM users WHERE status = 'active';", rec.SQL)

	require.NotNil(t, rec.LockTime)
	assert.Equal(t, 0.1, *rec.LockTime)
	require.NotNil(t, rec.RowsSent)
	assert.Equal(t, int64(100), *rec.RowsSent)
	require.NotNil(t, rec.RowsExamined)
	assert.Equal(t, int64(1000), *rec.RowsExamined)

	require.NotNil(t, rec.Timestamp)
	want := time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.UTC)
	assert.True(t, rec.Timestamp.Equal(want))
}

func TestParseMySQLSlowLog_TrailingRecordIsDropped(t *testing.T) {
	// Without a following "# Time:" header the last record never finalizes.
	noTerminator := `# Time: 2024-01-15T10:30:00.123456Z
# Query_time: 10.5  Lock_time: 0.1 Rows_sent: 100  Rows_examined: 1000
SELECT * FROM users;
`
	assert.Empty(t, ParseMySQLSlowLog(noTerminator))
}

func TestParseMySQLSlowLog_MultilineStatementJoinedWithSpaces(t *testing.T) {
	raw := `# Time: 2024-01-15T10:30:00.000000Z
# Query_time: 2.0  Lock_time: 0.0 Rows_sent: 1  Rows_examined: 5
SELECT id, name
FROM users
WHERE id = 7;
# Time: 2024-01-15T10:31:00.000000Z
`
	records := ParseMySQLSlowLog(raw)
	require.Len(t, records, 1)
	assert.Equal(t, "SELECT id, name FROM users WHERE id = 7;", records[0].SQL)
}

func TestParseMySQLSlowLog_BlankLineStopsCapture(t *testing.T) {
	raw := `# Time: 2024-01-15T10:30:00.000000Z
# Query_time: 2.0  Lock_time: 0.0 Rows_sent: 1  Rows_examined: 5
SELECT id
FROM users;

AND this_line_is_noise;
# Time: 2024-01-15T10:31:00.000000Z
`
	records := ParseMySQLSlowLog(raw)
	require.Len(t, records, 1)
	assert.Equal(t, "SELECT id FROM users;", records[0].SQL)
}

func TestParseMySQLSlowLog_NonSelectStatementsNotCaptured(t *testing.T) {
	raw := `# Time: 2024-01-15T10:30:00.000000Z
# Query_time: 2.0  Lock_time: 0.0 Rows_sent: 0  Rows_examined: 5
UPDATE users SET status = 'stale';
# Time: 2024-01-15T10:31:00.000000Z
`
	assert.Empty(t, ParseMySQLSlowLog(raw))
}

func TestParseMySQLSlowLog_BadTimestampTolerated(t *testing.T) {
	raw := `# Time: not-a-timestamp
# Query_time: 3.5  Lock_time: 0.0 Rows_sent: 1  Rows_examined: 1
select 1;
# Time: 2024-01-15T10:31:00.000000Z
`
	records := ParseMySQLSlowLog(raw)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Timestamp)
	assert.Equal(t, 3.5, records[0].QueryTime)
}

const postgresSample = `2024-01-15 10:30:00 UTC::@:[123]:LOG:  duration: 250.5 ms  statement: SELECT * FROM orders
WHERE total > 100
2024-01-15 10:30:05 UTC::@:[123]:LOG:  checkpoint starting: time
2024-01-15 10:30:10 UTC::@:[123]:LOG:  duration: 42.0 ms  statement: SELECT 1`

func TestParsePostgresLog(t *testing.T) {
	records := ParsePostgresLog(postgresSample)
	require.Len(t, records, 2)

	assert.Equal(t, 250.5, records[0].QueryTime)
	assert.Equal(t, "SELECT * FROM orders\nWHERE total > 100", records[0].SQL)
	assert.Nil(t, records[0].Timestamp)
	assert.Nil(t, records[0].LockTime)

	// The final block has no terminator but is still flushed.
	assert.Equal(t, 42.0, records[1].QueryTime)
	assert.Equal(t, "SELECT 1", records[1].SQL)
}

func TestParsePostgresLog_NonStatementBlocksDropped(t *testing.T) {
	raw := `2024-01-15 10:30:00 UTC::@:[123]:LOG:  connection received: host=10.0.0.1
2024-01-15 10:30:01 UTC::@:[123]:LOG:  checkpoint complete`
	assert.Empty(t, ParsePostgresLog(raw))
}

func TestParsePostgresLog_LeadingNoiseBeforeFirstBlockIgnored(t *testing.T) {
	raw := `stray continuation line with no block
2024-01-15 10:30:00 UTC::@:[123]:LOG:  duration: 5.0 ms  statement: SELECT now()`
	records := ParsePostgresLog(raw)
	require.Len(t, records, 1)
	assert.Equal(t, 5.0, records[0].QueryTime)
}

func TestEngineFromName(t *testing.T) {
	tests := []struct {
		name   string
		engine Engine
	}{
		{"mysql", EngineMySQL},
		{"aurora-mysql", EngineMySQL},
		{"postgres", EnginePostgres},
		{"aurora-postgresql", EnginePostgres},
		{"mariadb", EngineUnsupported},
		{"oracle-ee", EngineUnsupported},
		{"", EngineUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.engine, EngineFromName(tt.name))
		})
	}
}
