// services/answer.go
package services

import (
	"strings"

	"github.com/alphabatem/common/context"
	"github.com/hailin-dev/rainclass/dto"
	"github.com/hailin-dev/rainclass/model"
	"github.com/hailin-dev/rainclass/shared"
)

// AnswerService turns a raw answer text into the submittable form each
// question type requires. Resolution is pure: no network, no state.
type AnswerService struct {
	context.DefaultService
}

const ANSWER_SVC = "answer_svc"

var trueSynonyms = map[string]bool{
	"正确": true, "对": true, "是": true,
	"true": true, "True": true, "TRUE": true,
}

var falseSynonyms = map[string]bool{
	"错误": true, "错": true, "否": true,
	"false": true, "False": true, "FALSE": true,
}

func (svc AnswerService) Id() string {
	return ANSWER_SVC
}

func (svc *AnswerService) Start() error {
	return nil
}

// Resolve maps (question, raw answer text) to a submittable answer.
// An empty result signals "could not resolve"; the question is then left
// unsubmitted rather than guessed at.
func (svc *AnswerService) Resolve(p model.Problem, raw string) model.SubmitAnswer {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.SubmitAnswer{}
	}

	switch p.Type {
	case shared.QuestionTypeJudgement:
		return model.SubmitAnswer{Choices: resolveJudgement(p.Options, raw)}
	case shared.QuestionTypeSingleChoice:
		return model.SubmitAnswer{Choices: resolveSingle(p.Options, raw)}
	case shared.QuestionTypeMultiChoice:
		return model.SubmitAnswer{Choices: resolveMulti(p.Options, raw)}
	case shared.QuestionTypeFillBlank:
		return model.SubmitAnswer{Blanks: resolveBlanks(raw)}
	default:
		return model.SubmitAnswer{Choices: []string{raw}}
	}
}

// BuildQuery normalizes a problem into the lookup service descriptor.
// Choice questions that arrive without options are reclassified as
// open-response before querying.
func (svc *AnswerService) BuildQuery(p model.Problem) dto.QuestionQuery {
	q := dto.QuestionQuery{Value: p.Value, Type: p.Type}

	choice := p.Type == shared.QuestionTypeSingleChoice || p.Type == shared.QuestionTypeMultiChoice
	if !choice {
		return q
	}
	if len(p.Options) == 0 {
		q.Type = shared.QuestionTypeEssay
		return q
	}

	opts := make(map[string]string, len(p.Options))
	for _, o := range p.Options {
		opts[o.Key] = o.Value
	}
	q.Options = opts
	return q
}

func resolveJudgement(options []model.Option, raw string) []string {
	if trueSynonyms[raw] {
		return []string{"true"}
	}
	if falseSynonyms[raw] {
		return []string{"false"}
	}

	clean := cleanText(raw)
	for _, opt := range options {
		if strings.Contains(cleanText(opt.Value), clean) {
			return []string{opt.Key}
		}
	}
	return []string{raw}
}

func resolveSingle(options []model.Option, raw string) []string {
	if key, ok := asOptionKey(raw); ok {
		return []string{key}
	}

	for _, opt := range options {
		if raw == opt.Value {
			return []string{opt.Key}
		}
	}
	clean := cleanText(raw)
	for _, opt := range options {
		if clean == cleanText(opt.Value) {
			return []string{opt.Key}
		}
	}
	return nil
}

func resolveMulti(options []model.Option, raw string) []string {
	var items []string
	switch {
	case strings.Contains(raw, ","):
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
	case isAlpha(raw) && len(raw) > 1:
		for _, r := range raw {
			items = append(items, string(r))
		}
	default:
		items = []string{raw}
	}

	var keys []string
	for _, item := range items {
		if resolved := resolveSingle(options, item); len(resolved) > 0 {
			keys = append(keys, resolved...)
		}
		// unresolved elements are dropped silently
	}
	return keys
}

func resolveBlanks(raw string) map[int]string {
	split := func(r rune) bool { return r == '|' || r == ',' }

	blanks := make(map[int]string)
	idx := 1
	for _, part := range strings.FieldsFunc(raw, split) {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		blanks[idx] = part
		idx++
	}
	return blanks
}

// asOptionKey accepts a bare option letter in either case.
func asOptionKey(s string) (string, bool) {
	if len(s) != 1 {
		return "", false
	}
	upper := strings.ToUpper(s)
	if strings.Contains(shared.OptionKeyAlphabet, upper) {
		return upper, true
	}
	return "", false
}

func cleanText(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", ""))
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return s != ""
}
