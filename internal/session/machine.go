package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/hollandkevint/ideally-sub002/internal/template"
	"github.com/hollandkevint/ideally-sub002/internal/timebox"
)

// ErrSessionComplete indicates an advance was attempted on a session in a
// terminal status.
var ErrSessionComplete = errors.New("session is already finished")

// ErrTemplateNotCached indicates a session references a template the
// template set has not loaded.
var ErrTemplateNotCached = errors.New("template not cached")

// NextAction tells the caller what an advancement decided.
type NextAction string

// Advancement outcomes.
const (
	// ActionContinuePhase means the phase was not eligible to advance.
	ActionContinuePhase NextAction = "continue_phase"

	// ActionAdvancePhase means the session moved to the next phase of the
	// current template.
	ActionAdvancePhase NextAction = "advance_phase"

	// ActionCompleteTemplate means the current template finished and the
	// session moved to the first phase of the next template.
	ActionCompleteTemplate NextAction = "complete_template"

	// ActionCompleteSession means every phase of every template is done.
	// The caller is responsible for marking the session completed and
	// generating final documents.
	ActionCompleteSession NextAction = "complete_session"
)

// Transition is the outcome of one [Machine.Advance] call.
type Transition struct {
	// Action is the decided next action.
	Action NextAction

	// Advanced is false when the phase was not eligible to move on.
	Advanced bool

	// FromPhase and ToPhase describe the phase movement. Equal when the
	// session did not advance.
	FromPhase string
	ToPhase   string

	// FromTemplate and ToTemplate describe the template movement.
	FromTemplate string
	ToTemplate   string

	// Remaining is the unchanged remaining phase time when Advanced is
	// false.
	Remaining time.Duration
}

// TemplateSet resolves template ids to validated templates.
//
// [template.Store] satisfies this; the orchestrator preloads every template
// of a session's pathway at creation, so lookups here hit the cache.
type TemplateSet interface {
	GetCached(templateID string) (*template.Template, bool)
}

// Machine computes session phase transitions.
//
// Advance is deterministic and free of external side effects given the
// session state, the phase result, and the clock: all mutation is applied
// to the session the caller hands in.
type Machine struct {
	templates   TemplateSet
	rules       map[string]CompletionRule
	defaultRule CompletionRule
	now         func() time.Time
}

// NewMachine creates a [Machine] over the given template set with
// [DefaultRule] as the fallback completion rule.
func NewMachine(templates TemplateSet) *Machine {
	return &Machine{
		templates:   templates,
		rules:       make(map[string]CompletionRule),
		defaultRule: DefaultRule,
		now:         time.Now,
	}
}

// RegisterRule installs a phase-specific completion rule.
func (m *Machine) RegisterRule(phaseID string, rule CompletionRule) {
	m.rules[phaseID] = rule
}

// SetClock overrides the clock. Intended for tests.
func (m *Machine) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Machine) ruleFor(phaseID string) CompletionRule {
	if rule, ok := m.rules[phaseID]; ok {
		return rule
	}
	return m.defaultRule
}

// StartPhase initializes the timer and allocation for the given phase.
func (m *Machine) StartPhase(sess *Session, phase *template.Phase) {
	if sess.Allocations == nil {
		sess.Allocations = make(map[string]TimeAllocation)
	}
	alloc := sess.Allocations[phase.ID]
	alloc.Minutes = phase.TimeMinutes
	alloc.StartedAt = m.now()
	sess.Allocations[phase.ID] = alloc
}

// Advance evaluates the current phase and applies the resulting transition
// to sess.
//
// The phase is eligible to advance when its completion rule accepts the
// phase result, or when at least half of its time allocation has elapsed —
// the escape hatch that keeps a stalled user moving. An ineligible phase
// leaves the session untouched and reports the remaining time.
func (m *Machine) Advance(sess *Session, result PhaseResult) (Transition, error) {
	if sess.Metadata.Terminal() {
		return Transition{}, fmt.Errorf("session %s is %s and cannot advance: %w", sess.ID, sess.Metadata.Status, ErrSessionComplete)
	}

	tpl, ok := m.templates.GetCached(sess.CurrentTemplate)
	if !ok {
		return Transition{}, fmt.Errorf("session %s: current template %q is not loaded: %w", sess.ID, sess.CurrentTemplate, ErrTemplateNotCached)
	}
	tplIdx := indexOf(sess.Templates, sess.CurrentTemplate)
	if tplIdx < 0 {
		return Transition{}, fmt.Errorf("session %s: current template %q is not in the session's template list", sess.ID, sess.CurrentTemplate)
	}
	phaseIdx := tpl.PhaseIndex(sess.CurrentPhase)
	if phaseIdx < 0 {
		return Transition{}, fmt.Errorf("session %s: current phase %q is not in template %q", sess.ID, sess.CurrentPhase, sess.CurrentTemplate)
	}
	phase := &tpl.Phases[phaseIdx]

	alloc := sess.Allocations[phase.ID]
	tracker := timebox.Tracker{
		Allocation: time.Duration(alloc.Minutes) * time.Minute,
		Start:      alloc.StartedAt,
		Now:        m.now,
	}

	if !m.ruleFor(phase.ID)(result) && !tracker.HalfElapsed() {
		return Transition{
			Action:       ActionContinuePhase,
			Advanced:     false,
			FromPhase:    phase.ID,
			ToPhase:      phase.ID,
			FromTemplate: tpl.ID,
			ToTemplate:   tpl.ID,
			Remaining:    tracker.Remaining(),
		}, nil
	}

	now := m.now()
	alloc.CompletedAt = now
	sess.Allocations[phase.ID] = alloc
	setRatio(&sess.Progress.ByPhase, phase.ID, 1.0)

	tr := Transition{
		Advanced:     true,
		FromPhase:    phase.ID,
		FromTemplate: tpl.ID,
	}

	switch {
	case phaseIdx+1 < len(tpl.Phases):
		next := &tpl.Phases[phaseIdx+1]
		sess.CurrentPhase = next.ID
		m.StartPhase(sess, next)
		setRatio(&sess.Progress.ByTemplate, tpl.ID, float64(phaseIdx+1)/float64(len(tpl.Phases)))
		tr.Action = ActionAdvancePhase
		tr.ToPhase = next.ID
		tr.ToTemplate = tpl.ID

	case tplIdx+1 < len(sess.Templates):
		nextTpl, ok := m.templates.GetCached(sess.Templates[tplIdx+1])
		if !ok {
			return Transition{}, fmt.Errorf("session %s: next template %q is not loaded: %w", sess.ID, sess.Templates[tplIdx+1], ErrTemplateNotCached)
		}
		setRatio(&sess.Progress.ByTemplate, tpl.ID, 1.0)
		first := &nextTpl.Phases[0]
		sess.CurrentTemplate = nextTpl.ID
		sess.CurrentPhase = first.ID
		m.StartPhase(sess, first)
		tr.Action = ActionCompleteTemplate
		tr.ToPhase = first.ID
		tr.ToTemplate = nextTpl.ID

	default:
		setRatio(&sess.Progress.ByTemplate, tpl.ID, 1.0)
		tr.Action = ActionCompleteSession
		tr.ToPhase = phase.ID
		tr.ToTemplate = tpl.ID
	}

	m.recomputeProgress(sess, tr.Action)
	sess.Metadata.UpdatedAt = now

	return tr, nil
}

// recomputeProgress rebuilds the progress view from per-template ratios.
// Overall completion never decreases.
func (m *Machine) recomputeProgress(sess *Session, action NextAction) {
	total := len(sess.Templates)
	if total == 0 {
		return
	}

	var sum float64
	for _, tid := range sess.Templates {
		sum += sess.Progress.ByTemplate[tid]
	}
	overall := sum / float64(total)
	if overall > sess.Progress.Overall {
		sess.Progress.Overall = overall
	}

	if action == ActionCompleteSession {
		sess.Progress.CurrentStep = "Session complete"
		sess.Progress.NextSteps = nil
		return
	}

	tpl, ok := m.templates.GetCached(sess.CurrentTemplate)
	if !ok {
		return
	}
	idx := tpl.PhaseIndex(sess.CurrentPhase)
	if idx < 0 {
		return
	}

	sess.Progress.CurrentStep = fmt.Sprintf("%s: phase %d of %d (%s)",
		tpl.Name, idx+1, len(tpl.Phases), tpl.Phases[idx].Name)

	var next []string
	for _, p := range tpl.Phases[idx+1:] {
		if len(next) == 3 {
			break
		}
		next = append(next, p.Name)
	}
	if len(next) < 3 {
		if tplIdx := indexOf(sess.Templates, sess.CurrentTemplate); tplIdx >= 0 && tplIdx+1 < len(sess.Templates) {
			if nextTpl, ok := m.templates.GetCached(sess.Templates[tplIdx+1]); ok {
				next = append(next, fmt.Sprintf("Start %s", nextTpl.Name))
			}
		}
	}
	sess.Progress.NextSteps = next
}

func setRatio(m *map[string]float64, key string, ratio float64) {
	if *m == nil {
		*m = make(map[string]float64)
	}
	if ratio > (*m)[key] {
		(*m)[key] = ratio
	}
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
