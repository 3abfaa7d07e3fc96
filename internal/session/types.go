// Package session holds the session data model and the phase state machine.
//
// A [Session] is one user's live execution of a pathway. It is created by
// the orchestrator and mutated only through [Machine.Advance]; the
// orchestrator exclusively owns the Session and hands the machine a mutable
// reference for the duration of one Advance call.
//
// Key types:
//   - [Session] - live pathway execution state
//   - [Machine] - deterministic phase/template transition function
//   - [CompletionRule] - injectable per-phase completion predicate
package session

import "time"

// Status is a session's lifecycle status.
type Status string

// Session statuses. Completed and abandoned are terminal.
const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Session is one user's live execution of a pathway.
type Session struct {
	// ID is the unique session identifier.
	ID string `yaml:"id"`

	// UserID is the owning user.
	UserID string `yaml:"user_id"`

	// WorkspaceID is the owning workspace.
	WorkspaceID string `yaml:"workspace_id"`

	// PathwayID is the pathway this session executes.
	PathwayID string `yaml:"pathway_id"`

	// Templates is the pathway's ordered template-id list, fixed at creation.
	Templates []string `yaml:"templates"`

	// CurrentTemplate is always a member of Templates.
	CurrentTemplate string `yaml:"current_template"`

	// CurrentPhase is always a phase of CurrentTemplate.
	CurrentPhase string `yaml:"current_phase"`

	// StartedAt is when the session began.
	StartedAt time.Time `yaml:"started_at"`

	// Allocations records per-phase time budgets and timer state, keyed by
	// phase id.
	Allocations map[string]TimeAllocation `yaml:"allocations"`

	// Context accumulates user responses and elicitation history.
	Context Context `yaml:"context"`

	// Outputs accumulates phase outputs, generated documents, and action
	// items.
	Outputs Outputs `yaml:"outputs"`

	// Progress is recomputed after every advancement and is monotonically
	// non-decreasing for the life of the session.
	Progress Progress `yaml:"progress"`

	// Metadata carries status and timestamps.
	Metadata Metadata `yaml:"metadata"`
}

// TimeAllocation is one phase's time budget and timer state.
type TimeAllocation struct {
	// Minutes is the allocated budget.
	Minutes int `yaml:"minutes"`

	// StartedAt is when the phase timer began. Zero until the phase starts.
	StartedAt time.Time `yaml:"started_at,omitempty"`

	// CompletedAt is when the phase finished. Zero while in progress.
	CompletedAt time.Time `yaml:"completed_at,omitempty"`
}

// Context is the accumulated free-form session history.
type Context struct {
	// Responses are the user inputs, in order.
	Responses []Response `yaml:"responses,omitempty"`

	// Elicitations records menu choices the user made.
	Elicitations []ElicitationEvent `yaml:"elicitations,omitempty"`
}

// Response is one user input folded into the session.
type Response struct {
	PhaseID string    `yaml:"phase_id"`
	Input   string    `yaml:"input"`
	At      time.Time `yaml:"at"`
}

// ElicitationEvent records one elicitation menu choice.
type ElicitationEvent struct {
	PhaseID  string    `yaml:"phase_id"`
	Choice   int       `yaml:"choice"`
	Category string    `yaml:"category,omitempty"`
	At       time.Time `yaml:"at"`
}

// Outputs is the accumulated session output state.
type Outputs struct {
	// PhaseResults holds the merged analysis results per phase id.
	PhaseResults map[string]PhaseResult `yaml:"phase_results,omitempty"`

	// Documents are the generated final documents.
	Documents []Document `yaml:"documents,omitempty"`

	// ActionItems are the extracted action items.
	ActionItems []ActionItem `yaml:"action_items,omitempty"`
}

// PhaseResult is the analysis outcome for one advancement.
//
// This is the narrow, typed view the state machine needs; pathway-specific
// richness stays in the external analysis layer.
type PhaseResult struct {
	// Insights are the insights extracted from the user's input.
	Insights []string `yaml:"insights,omitempty"`

	// Recommendations are suggested directions for the user.
	Recommendations []string `yaml:"recommendations,omitempty"`

	// Questions are follow-up questions for the user.
	Questions []string `yaml:"questions,omitempty"`

	// StructuredOutputs counts structured outputs produced this phase.
	StructuredOutputs int `yaml:"structured_outputs,omitempty"`

	// Confidence is the analyzer's confidence in this result.
	Confidence float64 `yaml:"confidence,omitempty"`
}

// Merge folds another result into this one, accumulating lists and keeping
// the higher confidence.
func (r *PhaseResult) Merge(other PhaseResult) {
	r.Insights = append(r.Insights, other.Insights...)
	r.Recommendations = append(r.Recommendations, other.Recommendations...)
	r.Questions = append(r.Questions, other.Questions...)
	r.StructuredOutputs += other.StructuredOutputs
	if other.Confidence > r.Confidence {
		r.Confidence = other.Confidence
	}
}

// Document is one generated final document.
type Document struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
	Format  string `yaml:"format"`
}

// ActionItem is one extracted action item.
type ActionItem struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Priority    string `yaml:"priority,omitempty"`
}

// Progress is the recomputed completion view of a session.
type Progress struct {
	// Overall is the completion ratio in [0, 1].
	Overall float64 `yaml:"overall"`

	// ByPhase maps phase id to completion ratio.
	ByPhase map[string]float64 `yaml:"by_phase,omitempty"`

	// ByTemplate maps template id to completion ratio.
	ByTemplate map[string]float64 `yaml:"by_template,omitempty"`

	// CurrentStep is a human-readable label for where the session is.
	CurrentStep string `yaml:"current_step,omitempty"`

	// NextSteps are short hints for what comes next.
	NextSteps []string `yaml:"next_steps,omitempty"`
}

// Metadata carries session status and timestamps.
type Metadata struct {
	Status      Status    `yaml:"status"`
	CreatedAt   time.Time `yaml:"created_at"`
	UpdatedAt   time.Time `yaml:"updated_at"`
	CompletedAt time.Time `yaml:"completed_at,omitempty"`
}

// Terminal reports whether the session can no longer advance.
func (m Metadata) Terminal() bool {
	return m.Status == StatusCompleted || m.Status == StatusAbandoned
}

// Clone returns a deep copy of the session.
//
// The orchestrator advances a clone and swaps it in only after persistence
// succeeds, so a cancelled or failed advance leaves the original untouched.
func (s *Session) Clone() *Session {
	c := *s
	c.Templates = append([]string(nil), s.Templates...)

	c.Allocations = make(map[string]TimeAllocation, len(s.Allocations))
	for k, v := range s.Allocations {
		c.Allocations[k] = v
	}

	c.Context.Responses = append([]Response(nil), s.Context.Responses...)
	c.Context.Elicitations = append([]ElicitationEvent(nil), s.Context.Elicitations...)

	c.Outputs.Documents = append([]Document(nil), s.Outputs.Documents...)
	c.Outputs.ActionItems = append([]ActionItem(nil), s.Outputs.ActionItems...)
	c.Outputs.PhaseResults = make(map[string]PhaseResult, len(s.Outputs.PhaseResults))
	for k, v := range s.Outputs.PhaseResults {
		cp := v
		cp.Insights = append([]string(nil), v.Insights...)
		cp.Recommendations = append([]string(nil), v.Recommendations...)
		cp.Questions = append([]string(nil), v.Questions...)
		c.Outputs.PhaseResults[k] = cp
	}

	c.Progress.ByPhase = make(map[string]float64, len(s.Progress.ByPhase))
	for k, v := range s.Progress.ByPhase {
		c.Progress.ByPhase[k] = v
	}
	c.Progress.ByTemplate = make(map[string]float64, len(s.Progress.ByTemplate))
	for k, v := range s.Progress.ByTemplate {
		c.Progress.ByTemplate[k] = v
	}
	c.Progress.NextSteps = append([]string(nil), s.Progress.NextSteps...)

	return &c
}
