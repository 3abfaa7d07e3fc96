package intent

// profile holds the scoring configuration for one pathway.
//
// Keyword tiers carry different point weights (see tierPoints in router.go):
// primary keywords are the pathway's core vocabulary, secondary keywords are
// strong supporting signals, contextual keywords are weak hints. Affinity
// tables map the classified category/scope/urgency to alignment values.
type profile struct {
	primary    []string
	secondary  []string
	contextual []string

	// rationale completes the generated reasoning sentence for this pathway.
	rationale string

	categoryAffinity map[Category]float64
	scopeAffinity    map[Scope]float64

	// urgencyAffinity is a signed adjustment in [-1, 1]; negative values
	// penalize the pathway under that urgency.
	urgencyAffinity map[Urgency]float64
}

// defaultProfiles returns the scoring profiles for the built-in pathways,
// keyed by pathway id.
func defaultProfiles() map[string]profile {
	return map[string]profile{
		"new-idea": {
			primary:    []string{"new", "idea", "startup", "concept", "brainstorm"},
			secondary:  []string{"create", "invent", "launch", "imagine", "explore"},
			contextual: []string{"early", "beginning", "scratch", "greenfield"},
			rationale:  "exploring and shaping a brand-new idea",
			categoryAffinity: map[Category]float64{
				CategoryIdeation:     1.0,
				CategoryValidation:   0.5,
				CategoryOptimization: 0.2,
				CategoryPlanning:     0.55,
			},
			scopeAffinity: map[Scope]float64{
				ScopeFeature:  0.4,
				ScopeProduct:  0.9,
				ScopeBusiness: 0.7,
				ScopeMarket:   0.6,
			},
			// New ideas need room to explore; heavy urgency is a mild
			// signal the user wants a targeted pathway instead.
			urgencyAffinity: map[Urgency]float64{
				UrgencyLow:    0.2,
				UrgencyMedium: 0.1,
				UrgencyHigh:   -0.2,
			},
		},
		"business-model": {
			primary:    []string{"revenue", "business", "model", "monetize", "pricing"},
			secondary:  []string{"customers", "profit", "subscription", "sales", "margin"},
			contextual: []string{"b2b", "b2c", "saas", "enterprise"},
			rationale:  "working out how the idea makes money",
			categoryAffinity: map[Category]float64{
				CategoryIdeation:     0.4,
				CategoryValidation:   0.8,
				CategoryOptimization: 0.5,
				CategoryPlanning:     0.8,
			},
			scopeAffinity: map[Scope]float64{
				ScopeFeature:  0.2,
				ScopeProduct:  0.5,
				ScopeBusiness: 1.0,
				ScopeMarket:   0.8,
			},
			urgencyAffinity: map[Urgency]float64{
				UrgencyLow:    0.0,
				UrgencyMedium: 0.15,
				UrgencyHigh:   0.1,
			},
		},
		"optimize": {
			primary:    []string{"improve", "optimize", "refine", "fix", "existing"},
			secondary:  []string{"better", "enhance", "streamline", "performance", "iterate"},
			contextual: []string{"current", "legacy", "bottleneck", "friction"},
			rationale:  "improving something that already exists",
			categoryAffinity: map[Category]float64{
				CategoryIdeation:     0.2,
				CategoryValidation:   0.5,
				CategoryOptimization: 1.0,
				CategoryPlanning:     0.6,
			},
			scopeAffinity: map[Scope]float64{
				ScopeFeature:  1.0,
				ScopeProduct:  0.8,
				ScopeBusiness: 0.4,
				ScopeMarket:   0.3,
			},
			urgencyAffinity: map[Urgency]float64{
				UrgencyLow:    0.0,
				UrgencyMedium: 0.2,
				UrgencyHigh:   0.3,
			},
		},
	}
}
