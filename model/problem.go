// model/problem.go
package model

// Option is one choice of a choice-type question. Keys are unique within a
// problem and come from the A-F alphabet.
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Problem is one quiz question with its decoded text and per-question
// completion flag. SubmitTime > 0 means the platform already has an answer.
type Problem struct {
	ProblemID  int64    `json:"problem_id"`
	Type       int      `json:"type"`
	Value      string   `json:"value"`
	Options    []Option `json:"options"`
	SubmitTime int64    `json:"submit_time"`
}

func (p Problem) Answered() bool {
	return p.SubmitTime > 0
}

// SubmitAnswer is a resolved, submittable answer. Exactly one of the two
// forms is populated: Choices for choice/judgement/essay types, Blanks for
// fill-in-blank (1-indexed by blank position).
type SubmitAnswer struct {
	Choices []string
	Blanks  map[int]string
}

// Empty reports an unresolvable answer; such questions are left unsubmitted.
func (a SubmitAnswer) Empty() bool {
	return len(a.Choices) == 0 && len(a.Blanks) == 0
}

// Payload returns the wire form the submit endpoint expects.
func (a SubmitAnswer) Payload() interface{} {
	if a.Blanks != nil {
		return a.Blanks
	}
	return a.Choices
}
