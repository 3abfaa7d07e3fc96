package session

// CompletionRule decides whether a phase's work is substantively done.
//
// Rules are pure functions of the phase result, injectable per phase id via
// [Machine.RegisterRule], so each can be tested in isolation. A rule
// returning false does not trap the user: the time-based escape hatch in
// [Machine.Advance] still applies.
type CompletionRule func(PhaseResult) bool

// DefaultRule accepts a phase once it has recorded at least one insight or
// one structured output.
func DefaultRule(result PhaseResult) bool {
	return len(result.Insights) > 0 || result.StructuredOutputs > 0
}

// MinInsights builds a rule requiring at least n recorded insights.
func MinInsights(n int) CompletionRule {
	return func(result PhaseResult) bool {
		return len(result.Insights) >= n
	}
}

// MinOutputs builds a rule requiring at least n structured outputs.
func MinOutputs(n int) CompletionRule {
	return func(result PhaseResult) bool {
		return result.StructuredOutputs >= n
	}
}
