// Package slowlog retrieves and parses RDS slow-query logs. The pipeline is
// fetch (paginated log download) -> parse (engine-specific state machine) ->
// normalize (bounded statement text) -> rank (duration descending).
package slowlog

import "strings"

// Engine selects the log format. Engine families outside these two have no
// slow-log support here.
type Engine int

const (
	EngineUnsupported Engine = iota
	EngineMySQL
	EnginePostgres
)

// EngineFromName classifies an RDS engine name. Matching is substring-based
// so Aurora variants ("aurora-mysql", "aurora-postgresql") map to their
// family.
func EngineFromName(name string) Engine {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "mysql"):
		return EngineMySQL
	case strings.Contains(n, "postgres"):
		return EnginePostgres
	default:
		return EngineUnsupported
	}
}

func (e Engine) String() string {
	switch e {
	case EngineMySQL:
		return "mysql"
	case EnginePostgres:
		return "postgres"
	default:
		return "unsupported"
	}
}
