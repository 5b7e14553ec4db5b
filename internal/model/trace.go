package model

import "time"

// TraceStatus mirrors the coarse ok/error outcome of a trace or span.
type TraceStatus string

const (
	StatusOK    TraceStatus = "ok"
	StatusError TraceStatus = "error"
)

// RootSpanSentinel is the wire value "root" for a span with no parent.
// Nothing in this module reads it: the writer and the store mark a root
// span with an empty ParentSpanID.
const RootSpanSentinel = "root"

// Trace is the top-level row keyed by TraceID. EndTime/DurationMs are
// derived — they advance monotonically as spans are observed.
type Trace struct {
	TraceID     string
	ServiceName string
	StartTime   time.Time
	EndTime     *time.Time
	DurationMs  *float64
	Status      TraceStatus
	ErrorFlag   bool
}

// Span is a single leg of a trace, linked to its parent (if any) by
// ParentSpanID. The tree is reconstructed at read time by following
// ParentSpanID back to the root.
type Span struct {
	SpanID        string
	TraceID       string
	ParentSpanID  string // empty means root
	ServiceName   string
	OperationName string
	StartTime     time.Time
	EndTime       *time.Time
	DurationMs    float64
	Tags          Tags
	Logs          []string
	Status        TraceStatus
	ErrorFlag     bool
}

// SpanNode is a read-time, depth-annotated view of a Span used to
// reconstruct the span tree for a trace.
type SpanNode struct {
	Span
	Depth    int
	Children []*SpanNode
}

// BuildSpanTree reconstructs the span forest for a trace from a flat
// slice of spans, following ParentSpanID back-pointers. Orphaned spans
// (parent not present in the slice) are treated as additional roots,
// since tracing is best-effort per §1's non-goals.
func BuildSpanTree(spans []Span) []*SpanNode {
	nodes := make(map[string]*SpanNode, len(spans))
	for _, s := range spans {
		nodes[s.SpanID] = &SpanNode{Span: s}
	}

	var roots []*SpanNode
	for _, n := range nodes {
		if n.ParentSpanID == "" {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[n.ParentSpanID]
		if !ok {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	for _, r := range roots {
		annotateDepth(r, 0)
	}
	return roots
}

func annotateDepth(n *SpanNode, depth int) {
	n.Depth = depth
	for _, c := range n.Children {
		annotateDepth(c, depth+1)
	}
}
