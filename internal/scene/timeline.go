package scene

// Event is one directive in the render stream. Times are seconds from the start.
type Event struct {
	Stage   int            `json:"stage"`
	Start   float64        `json:"start"`
	End     float64        `json:"end"`
	Kind    string         `json:"kind"`
	Targets []string       `json:"targets,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	// Spans staggers the targets of a lagged animation; nil when all share Start and End.
	Spans []Span `json:"spans,omitempty"`
}

// Span is when one target of a lagged animation runs.
type Span struct {
	Target string  `json:"target"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

// Event kinds besides animation kinds.
const (
	EventAdd  = "add"
	EventWait = "wait"
)

// StageMark is the time span of one stage and how many shapes it left visible.
type StageMark struct {
	Index   int     `json:"index"`
	Label   string  `json:"label"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Visible int     `json:"visible"`
}

// Timeline is the full render directive stream of one run.
type Timeline struct {
	Choreography string      `json:"choreography"`
	Title        string      `json:"title"`
	Seed         int64       `json:"seed"`
	Seeded       bool        `json:"seeded"`
	Duration     float64     `json:"duration"`
	Stages       []StageMark `json:"stages"`
	Events       []Event     `json:"events"`
}

// Meta describes a run to renderers before the first stage.
type Meta struct {
	Name   string
	Title  string
	Seed   int64
	Seeded bool
}

// Frame is the visual state at the end of one stage.
type Frame struct {
	Index  int
	Label  string
	Time   float64
	Shapes []*Shape
}
