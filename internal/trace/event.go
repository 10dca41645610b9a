package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope indicates the granularity of the event; lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // one CLI invocation, one directory compile
	ScopePass                    // load, lower, graph of one file
	ScopeUnit                    // lowering of one source unit
	ScopeNode                    // definitions and generated loop helpers
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeUnit: "unit", ScopeNode: "node"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // stamped by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for a root span
	Unit     string // source path the work belongs to, empty above the file level
	Depth    int    // spans between this event and the root
	Name     string // "compile", "lower", "unit:f.py", "while"
	Detail   string
	Failed   bool // the span ended with an error, see Span.Fail
	Extra    map[string]string
}
