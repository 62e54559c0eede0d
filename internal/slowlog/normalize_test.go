package slowlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatement_CollapsesLongInList(t *testing.T) {
	got := NormalizeStatement("SELECT * FROM users WHERE id IN (1,2,3,4,5,6,7)")
	assert.Equal(t, "SELECT * FROM users WHERE id IN (1,2,3, ... 6,7)", got)
}

func TestNormalizeStatement_ShortInListUntouched(t *testing.T) {
	sql := "SELECT * FROM users WHERE id IN (1,2,3,4,5)"
	assert.Equal(t, sql, NormalizeStatement(sql))
}

func TestNormalizeStatement_KeywordCaseInsensitive(t *testing.T) {
	got := NormalizeStatement("select * from users where id in (1,2,3,4,5,6,7)")
	assert.Equal(t, "select * from users where id in (1,2,3, ... 6,7)", got)
}

func TestNormalizeStatement_OnlyFirstOccurrenceCollapsed(t *testing.T) {
	got := NormalizeStatement("SELECT 1 WHERE a IN (1,2,3,4,5,6,7) AND b IN (8,9,10,11,12,13,14)")
	assert.Equal(t, "SELECT 1 WHERE a IN (1,2,3, ... 6,7) AND b IN (8,9,10,11,12,13,14)", got)
}

func TestNormalizeStatement_PreservesTrailerAfterList(t *testing.T) {
	got := NormalizeStatement("SELECT 1 WHERE a IN (1,2,3,4,5,6,7) ORDER BY a")
	assert.Equal(t, "SELECT 1 WHERE a IN (1,2,3, ... 6,7) ORDER BY a", got)
}

func TestNormalizeStatement_TruncatesOverlongText(t *testing.T) {
	long := strings.Repeat("x", 2000)
	got := NormalizeStatement(long)
	assert.Len(t, got, 1500+len("... [truncated]"))
	assert.Equal(t, strings.Repeat("x", 1500)+"... [truncated]", got)
}

func TestNormalizeStatement_UnclosedListUntouched(t *testing.T) {
	sql := "SELECT * FROM users WHERE id IN (1,2,3,4,5,6,7"
	assert.Equal(t, sql, NormalizeStatement(sql))
}

func TestRankByDuration(t *testing.T) {
	records := []Record{
		{QueryTime: 5},
		{QueryTime: 50},
		{QueryTime: 1},
		{QueryTime: 20},
	}
	ranked := RankByDuration(records)

	durations := make([]float64, len(ranked))
	for i, r := range ranked {
		durations[i] = r.QueryTime
	}
	assert.Equal(t, []float64{50, 20, 5, 1}, durations)

	// Input order is untouched.
	assert.Equal(t, 5.0, records[0].QueryTime)
}

func TestRankByDuration_StableForEqualDurations(t *testing.T) {
	records := []Record{
		{QueryTime: 10, SQL: "first"},
		{QueryTime: 10, SQL: "second"},
	}
	ranked := RankByDuration(records)
	assert.Equal(t, "first", ranked[0].SQL)
	assert.Equal(t, "second", ranked[1].SQL)
}

func TestRankByDuration_CapsAtFifty(t *testing.T) {
	records := make([]Record, 60)
	for i := range records {
		records[i] = Record{QueryTime: float64(i)}
	}
	ranked := RankByDuration(records)
	assert.Len(t, ranked, 50)
	assert.Equal(t, 59.0, ranked[0].QueryTime)
}

func TestTop(t *testing.T) {
	records := []Record{{QueryTime: 3}, {QueryTime: 2}, {QueryTime: 1}}
	assert.Len(t, Top(records, 5), 3)
	assert.Len(t, Top(records, 2), 2)
	assert.Empty(t, Top(records, 0))
}
