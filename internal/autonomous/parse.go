package autonomous

import (
	"encoding/json"
	"regexp"
	"strings"
)

// parseTier records which fallback produced a step decision.
type parseTier int

const (
	tierNative parseTier = iota
	tierDirect
	tierFenced
	tierRawText
)

// stepDecision is one parsed model turn: either a tool invocation or a
// final answer, never both.
type stepDecision struct {
	Thought     string         `json:"thought"`
	Tool        string         `json:"tool"`
	Params      map[string]any `json:"params"`
	FinalAnswer string         `json:"final_answer"`
}

func (d *stepDecision) isFinal() bool { return d.Tool == "" }

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// parseStep decodes a model reply into a step decision. Three tiers:
// the whole reply as JSON, then a fenced code block, then the raw text
// treated as a final answer. Raw text never fails, so the loop always
// makes progress.
func parseStep(content string) (*stepDecision, parseTier) {
	trimmed := strings.TrimSpace(content)

	var d stepDecision
	if err := json.Unmarshal([]byte(trimmed), &d); err == nil {
		return &d, tierDirect
	}

	if m := fencedBlockRe.FindStringSubmatch(trimmed); m != nil {
		var fd stepDecision
		if err := json.Unmarshal([]byte(m[1]), &fd); err == nil {
			return &fd, tierFenced
		}
	}

	return &stepDecision{FinalAnswer: trimmed}, tierRawText
}
