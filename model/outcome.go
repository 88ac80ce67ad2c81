package model

// Outcome is the terminal state of one drive attempt. Failures never abort
// the pass; the orchestrator records them and moves on.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeSkipped
	OutcomeFailed
	OutcomeCached
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDone:
		return "done"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeCached:
		return "cached"
	default:
		return "unknown"
	}
}

// Summary is the best-effort result of one orchestration pass over a
// classroom. It is always returned, even when every individual drive failed.
type Summary struct {
	Activities map[Kind][]Activity
	Leaves     []Leaf
	Outcomes   map[Outcome]int
}

func NewSummary() *Summary {
	return &Summary{
		Activities: make(map[Kind][]Activity),
		Outcomes:   make(map[Outcome]int),
	}
}

func (s *Summary) Add(a Activity) {
	s.Activities[a.Kind] = append(s.Activities[a.Kind], a)
}

func (s *Summary) Record(o Outcome) {
	s.Outcomes[o]++
}

// Total counts every classified activity, the unknown bucket included.
func (s *Summary) Total() int {
	n := 0
	for _, items := range s.Activities {
		n += len(items)
	}
	return n
}
