package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/goose-agent/goose/pkg/models"
)

// RepetitionInspector is the repetition stage of the tool inspection
// pipeline: it breaks loops where the model issues the same tool
// call with the same arguments more than MaxConsecutive times in a row.
type RepetitionInspector struct {
	maxConsecutive int
	normalize      bool

	mu   sync.Mutex
	last map[string]repetitionState
}

type repetitionState struct {
	name  string
	args  string
	count int
}

// NewRepetitionInspector builds a RepetitionInspector. maxConsecutive <= 0
// disables the check (every call is approved). normalize, when true,
// compares arguments after round-tripping them through JSON so that
// semantically identical calls with different key order or whitespace are
// still treated as repeats.
func NewRepetitionInspector(maxConsecutive int, normalize bool) *RepetitionInspector {
	return &RepetitionInspector{
		maxConsecutive: maxConsecutive,
		normalize:      normalize,
		last:           make(map[string]repetitionState),
	}
}

func (r *RepetitionInspector) Name() string { return "repetition" }

func (r *RepetitionInspector) Inspect(_ context.Context, agentID string, tc models.ToolCall) InspectionResult {
	if r.maxConsecutive <= 0 {
		return InspectionResult{Decision: InspectionApproved, Stage: r.Name()}
	}

	args := r.normalizedArgs(tc.Input)

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.last[agentID]
	if st.name == tc.Name && st.args == args {
		st.count++
	} else {
		st = repetitionState{name: tc.Name, args: args, count: 1}
	}
	r.last[agentID] = st

	if st.count > r.maxConsecutive {
		return InspectionResult{
			Decision: InspectionDenied,
			Reason:   fmt.Sprintf("tool %q repeated %d times in a row with identical arguments", tc.Name, st.count),
			Stage:    r.Name(),
		}
	}
	return InspectionResult{Decision: InspectionApproved, Stage: r.Name()}
}

// Reset clears the tracked call history for an agent, e.g. after a turn
// completes or a session resets.
func (r *RepetitionInspector) Reset(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.last, agentID)
}

func (r *RepetitionInspector) normalizedArgs(input json.RawMessage) string {
	if !r.normalize || len(input) == 0 {
		return string(input)
	}
	var generic any
	if err := json.Unmarshal(input, &generic); err != nil {
		return string(input)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return string(input)
	}
	return string(canonical)
}
