// Package pathway defines the strategic pathways a session can follow.
//
// A pathway is a named workflow with a fixed, ordered sequence of template
// ids. Pathways are immutable configuration: they are built once at startup
// into a [Registry] and handed to the components that need them. There is no
// package-level mutable state.
//
// Key types:
//   - [Pathway] - one strategic workflow definition
//   - [Registry] - lookup table with a stable enumeration order
package pathway

import "errors"

// ErrUnknownPathway is a sentinel error indicating a pathway id is not
// present in the registry. Likely a typo in a session config or a stale id.
var ErrUnknownPathway = errors.New("unknown pathway")

// Built-in pathway ids.
const (
	NewIdea       = "new-idea"
	BusinessModel = "business-model"
	Optimize      = "optimize"
)

// Pathway is an immutable strategic workflow definition.
type Pathway struct {
	// ID is the stable pathway identifier (e.g., "new-idea").
	ID string

	// Name is the human-readable display name.
	Name string

	// Templates is the ordered list of template ids the pathway visits.
	Templates []string

	// ExpectedOutcome describes what a completed session produces.
	ExpectedOutcome string

	// TargetUser describes who the pathway is designed for.
	TargetUser string
}

// Registry holds pathways with a stable enumeration order.
//
// The order matters: intent scoring iterates pathways in registry order and
// resolves ties by it, so repeated calls stay deterministic.
type Registry struct {
	order []string
	byID  map[string]*Pathway
}

// NewRegistry builds a registry from the given pathways, preserving order.
func NewRegistry(pathways ...Pathway) *Registry {
	r := &Registry{
		byID: make(map[string]*Pathway, len(pathways)),
	}
	for i := range pathways {
		p := pathways[i]
		if _, dup := r.byID[p.ID]; dup {
			continue
		}
		r.order = append(r.order, p.ID)
		r.byID[p.ID] = &p
	}
	return r
}

// DefaultRegistry returns the built-in pathway set.
//
// Pathways are ordered from exploratory to targeted; [Registry.Default]
// returns the first entry, which doubles as the fallback recommendation
// when routing has no signal to work with.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Pathway{
			ID:              NewIdea,
			Name:            "New Idea Exploration",
			Templates:       []string{"idea-exploration"},
			ExpectedOutcome: "A refined concept with market positioning and next steps",
			TargetUser:      "Someone with an early idea that needs shaping",
		},
		Pathway{
			ID:              BusinessModel,
			Name:            "Business Model Analysis",
			Templates:       []string{"business-model-canvas"},
			ExpectedOutcome: "A validated revenue model and monetization strategy",
			TargetUser:      "Someone working out how an idea makes money",
		},
		Pathway{
			ID:              Optimize,
			Name:            "Feature Refinement",
			Templates:       []string{"feature-refinement"},
			ExpectedOutcome: "A prioritized improvement plan for an existing product",
			TargetUser:      "Someone improving something that already exists",
		},
	)
}

// Get returns the pathway for the given id.
func (r *Registry) Get(id string) (*Pathway, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// All returns the pathways in registry order.
func (r *Registry) All() []*Pathway {
	out := make([]*Pathway, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Default returns the first pathway in registry order.
//
// This is the recommendation of last resort for empty routing input.
func (r *Registry) Default() *Pathway {
	if len(r.order) == 0 {
		return nil
	}
	return r.byID[r.order[0]]
}

// Len returns the number of registered pathways.
func (r *Registry) Len() int {
	return len(r.order)
}
