// Package template loads, parses, validates, and caches phase template
// definitions.
//
// A template is a reusable definition of an ordered set of phases plus the
// outputs a session is expected to produce. Templates come from a byte
// [Source] (embedded assets, a directory, or anything byte-addressable),
// are deserialized against the struct schema in this file, and then pass a
// separate semantic validation stage before being cached.
//
// Parsing and validation are deliberately two distinct stages: [Parse] turns
// bytes into a [Template] or fails structurally, [Validate] checks the
// semantic rules and reports every violation at once.
//
// Key types:
//   - [Template] - validated, immutable template definition
//   - [Store] - caching loader keyed by template id
//   - [ValidationError] - carries the template id and all violated rules
package template

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Template is a validated phase template definition.
//
// Instances returned by [Store.Load] are shared and must be treated as
// immutable.
type Template struct {
	// ID is the template identifier, matching the id it is loaded under.
	ID string `koanf:"id"`

	// Name is the human-readable template name.
	Name string `koanf:"name"`

	// Version is the template definition version string.
	Version string `koanf:"version"`

	// Phases is the ordered list of phases a session works through.
	Phases []Phase `koanf:"phases"`

	// Outputs declares the artifacts a completed template produces.
	Outputs []Output `koanf:"outputs"`

	// Metadata carries authoring information and the overall time estimate.
	Metadata Metadata `koanf:"metadata"`
}

// Metadata carries template authoring information.
type Metadata struct {
	Author string `koanf:"author"`

	Tags []string `koanf:"tags"`

	// Difficulty is a free-form difficulty label (e.g., "beginner").
	Difficulty string `koanf:"difficulty"`

	// TimeEstimate is the expected total session time in minutes.
	TimeEstimate int `koanf:"time_estimate"`
}

// Phase is one bounded step within a template.
type Phase struct {
	// ID is the phase identifier, unique within the template.
	ID string `koanf:"id"`

	// Name is the human-readable phase name.
	Name string `koanf:"name"`

	// Description explains what the phase is for.
	Description string `koanf:"description"`

	// Order is the 1-based position declared in the source. Optional; when
	// set it should match the phase's list position.
	Order int `koanf:"order"`

	// TimeMinutes is the phase's time allocation in minutes.
	TimeMinutes int `koanf:"time_minutes"`

	// Prompts are the questions put to the user during the phase, in order.
	Prompts []string `koanf:"prompts"`

	// Elicitation is an optional numbered-choice menu offered at a decision
	// point within the phase.
	Elicitation []ElicitationChoice `koanf:"elicitation"`

	// Outputs lists the ids of outputs this phase is required to produce.
	Outputs []string `koanf:"outputs"`

	// Transitions are optional phase transition rules.
	Transitions []TransitionRule `koanf:"transitions"`
}

// ElicitationChoice is one entry in a phase's elicitation menu.
type ElicitationChoice struct {
	// Number is the 1-based menu number presented to the user.
	Number int `koanf:"number"`

	// Label is the choice text.
	Label string `koanf:"label"`

	// Category tags the kind of exploration the choice triggers.
	Category string `koanf:"category"`

	// TimeMinutes is the extra time associated with taking this choice.
	TimeMinutes int `koanf:"time_minutes"`
}

// TransitionRule is an optional condition-to-phase transition hint.
type TransitionRule struct {
	// When names the condition (e.g., "insights_exhausted").
	When string `koanf:"when"`

	// Next is the phase id to transition to when the condition holds.
	Next string `koanf:"next"`
}

// Output declares an artifact a template produces.
type Output struct {
	ID string `koanf:"id"`

	Name string `koanf:"name"`

	Description string `koanf:"description"`
}

// PhaseByID returns the phase with the given id, or nil.
func (t *Template) PhaseByID(id string) *Phase {
	for i := range t.Phases {
		if t.Phases[i].ID == id {
			return &t.Phases[i]
		}
	}
	return nil
}

// PhaseIndex returns the list position of the phase with the given id,
// or -1 if the template has no such phase.
func (t *Template) PhaseIndex(id string) int {
	for i := range t.Phases {
		if t.Phases[i].ID == id {
			return i
		}
	}
	return -1
}

// Parse deserializes template YAML bytes against the [Template] schema.
//
// Parse is purely structural: it does not apply the semantic rules, which
// belong to [Validate].
func Parse(data []byte) (*Template, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var t Template
	if err := k.Unmarshal("", &t); err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}
	return &t, nil
}

// Validate applies the semantic rules to a parsed template.
//
// All violations are collected rather than failing on the first, so a
// template author sees everything wrong in one pass. Warnings are advisory
// (the template is still usable); the only warning today is a phase order
// field that disagrees with list position.
func Validate(t *Template) (violations, warnings []string) {
	if strings.TrimSpace(t.Name) == "" {
		violations = append(violations, "metadata.name must not be empty")
	}
	if t.Metadata.TimeEstimate <= 0 {
		violations = append(violations, "metadata.time_estimate must be greater than zero")
	}

	if len(t.Phases) == 0 {
		violations = append(violations, "template must declare at least one phase")
	}
	for i, p := range t.Phases {
		pos := i + 1
		if strings.TrimSpace(p.ID) == "" {
			violations = append(violations, fmt.Sprintf("phase %d: id must not be empty", pos))
		}
		if strings.TrimSpace(p.Name) == "" {
			violations = append(violations, fmt.Sprintf("phase %d: name must not be empty", pos))
		}
		if len(p.Prompts) == 0 {
			violations = append(violations, fmt.Sprintf("phase %d: at least one prompt is required", pos))
		}
		if p.Order != 0 && p.Order != pos {
			warnings = append(warnings, fmt.Sprintf("phase %q: order %d does not match list position %d", p.ID, p.Order, pos))
		}
		for _, c := range p.Elicitation {
			if c.Number <= 0 {
				violations = append(violations, fmt.Sprintf("phase %q: elicitation choice %q must have a positive number", p.ID, c.Label))
			}
		}
	}

	for i, o := range t.Outputs {
		pos := i + 1
		if strings.TrimSpace(o.ID) == "" {
			violations = append(violations, fmt.Sprintf("output %d: id must not be empty", pos))
		}
		if strings.TrimSpace(o.Name) == "" {
			violations = append(violations, fmt.Sprintf("output %d: name must not be empty", pos))
		}
	}

	return violations, warnings
}
