package intent

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/hollandkevint/ideally-sub002/internal/pathway"
)

// Signal weights. They sum to 1.0 and sit on top of the tuning base score.
const (
	weightKeyword  = 0.30
	weightCategory = 0.25
	weightScope    = 0.20
	weightContext  = 0.15
	weightUrgency  = 0.10
)

// Keyword tier point values.
const (
	pointsPrimary    = 10
	pointsSecondary  = 7
	pointsContextual = 5
)

// Tuning holds the confidence-normalization constants.
//
// These are heuristics, deliberately exposed as tunables: the floor keeps a
// plausible match from reporting as low-confidence, the cap keeps the router
// from claiming certainty, and the boost lifts weak-signal inputs so the top
// recommendation is still actionable.
type Tuning struct {
	// BaseScore is the per-pathway starting score before weighted signals.
	BaseScore float64

	// MinTopScore triggers the uniform boost: when the best raw score is
	// below it, every score is scaled so the best reaches exactly it.
	MinTopScore float64

	// FloorThreshold marks a pathway as a plausible match: raw scores above
	// it are floored at ConfidenceFloor after normalization.
	FloorThreshold float64

	// ConfidenceFloor is the minimum confidence reported for plausible matches.
	ConfidenceFloor float64

	// ScoreCap is the maximum confidence ever reported.
	ScoreCap float64
}

// DefaultTuning returns the stock normalization constants.
func DefaultTuning() Tuning {
	return Tuning{
		BaseScore:       0.5,
		MinTopScore:     0.5,
		FloorThreshold:  0.3,
		ConfidenceFloor: 0.5,
		ScoreCap:        0.95,
	}
}

// Recommendation is the ranked routing result for one input.
type Recommendation struct {
	// Pathway is the primary recommended pathway id.
	Pathway string

	// Confidence is the primary pathway's normalized score, the maximum
	// across all pathways, in [0, ScoreCap].
	Confidence float64

	// Reasoning is a human-readable explanation of the recommendation.
	Reasoning string

	// Alternatives are up to two next-ranked pathways.
	Alternatives []Alternative

	// Analysis is the classification the scores were derived from.
	Analysis Analysis
}

// Alternative is a ranked non-primary pathway suggestion.
type Alternative struct {
	Pathway    string
	Confidence float64
	Reasoning  string
}

// Router scores free-text input against every known pathway.
//
// Create with [NewRouter]. Routing is deterministic for fixed input and
// configuration, and never fails: inputs with no usable signal degrade to
// the registry's default pathway at floor confidence.
type Router struct {
	registry *pathway.Registry
	profiles map[string]profile
	tuning   Tuning
	log      *zap.Logger
}

// NewRouter creates a [Router] over the given pathway registry.
func NewRouter(registry *pathway.Registry, tuning Tuning, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		registry: registry,
		profiles: defaultProfiles(),
		tuning:   tuning,
		log:      log.Named("intent"),
	}
}

// scoredPathway pairs a pathway with its raw and normalized scores.
type scoredPathway struct {
	pathway *pathway.Pathway
	raw     float64
	final   float64
}

// AnalyzeIntent classifies the text and returns a ranked pathway
// recommendation.
//
// Empty input does not error: it returns the default pathway at floor
// confidence with a reasoning string noting the missing signal.
func (r *Router) AnalyzeIntent(text string) Recommendation {
	text = strings.TrimSpace(text)
	if text == "" {
		def := r.registry.Default()
		return Recommendation{
			Pathway:    def.ID,
			Confidence: r.tuning.ConfidenceFloor,
			Reasoning: fmt.Sprintf(
				"No input to analyze, so there is not enough signal to rank pathways; defaulting to %s.", def.Name),
		}
	}

	analysis := Classify(text)
	normalized := strings.ToLower(text)

	scored := make([]scoredPathway, 0, r.registry.Len())
	for _, p := range r.registry.All() {
		raw := r.scorePathway(p.ID, normalized, analysis)
		scored = append(scored, scoredPathway{pathway: p, raw: raw})
	}

	r.normalize(scored)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].final > scored[j].final
	})

	primary := scored[0]
	rec := Recommendation{
		Pathway:    primary.pathway.ID,
		Confidence: primary.final,
		Reasoning:  r.reasoningFor(primary.pathway, primary.final, analysis),
		Analysis:   analysis,
	}
	for _, alt := range scored[1:] {
		if len(rec.Alternatives) == 2 {
			break
		}
		rec.Alternatives = append(rec.Alternatives, Alternative{
			Pathway:    alt.pathway.ID,
			Confidence: alt.final,
			Reasoning:  r.reasoningFor(alt.pathway, alt.final, analysis),
		})
	}

	r.log.Debug("intent analyzed",
		zap.String("pathway", rec.Pathway),
		zap.Float64("confidence", rec.Confidence),
		zap.String("category", string(analysis.Category)),
		zap.String("scope", string(analysis.Scope)))

	return rec
}

// scorePathway combines the five weighted signals for one pathway, each
// normalized to [0, 1] before weighting (urgency is signed). The result is
// clamped to [0, 1].
func (r *Router) scorePathway(pathwayID, normalized string, a Analysis) float64 {
	prof := r.profiles[pathwayID]

	score := r.tuning.BaseScore
	score += weightKeyword * keywordSignal(prof, normalized)
	score += weightCategory * prof.categoryAffinity[a.Category]
	score += weightScope * prof.scopeAffinity[a.Scope]
	score += weightContext * contextSignal(normalized)
	score += weightUrgency * prof.urgencyAffinity[a.Urgency]

	return clamp(score, 0, 1)
}

// keywordSignal scores tiered keyword matches as matched points over the
// maximum possible points for the pathway.
func keywordSignal(prof profile, normalized string) float64 {
	maxPoints := pointsPrimary*len(prof.primary) +
		pointsSecondary*len(prof.secondary) +
		pointsContextual*len(prof.contextual)
	if maxPoints == 0 {
		return 0
	}

	points := 0
	for _, kw := range prof.primary {
		if matchKeyword(normalized, kw) {
			points += pointsPrimary
		}
	}
	for _, kw := range prof.secondary {
		if matchKeyword(normalized, kw) {
			points += pointsSecondary
		}
	}
	for _, kw := range prof.contextual {
		if matchKeyword(normalized, kw) {
			points += pointsContextual
		}
	}

	return float64(points) / float64(maxPoints)
}

// matchKeyword checks for a whole-word occurrence of kw in the text.
func matchKeyword(normalized, kw string) bool {
	idx := 0
	for {
		i := strings.Index(normalized[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isWordRune(rune(normalized[start-1]))
		afterOK := end == len(normalized) || !isWordRune(rune(normalized[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// contextSignal blends input length, domain specificity, and a small bonus
// for declarative phrasing into a [0, 1] signal.
func contextSignal(normalized string) float64 {
	words := len(strings.Fields(normalized))
	lengthFactor := clamp(float64(words)/30.0, 0, 1)

	domainHits := 0
	wordSet := make(map[string]struct{}, words)
	for _, w := range tokenize(normalized) {
		wordSet[w] = struct{}{}
	}
	for _, term := range domainTerms {
		if _, ok := wordSet[term]; ok {
			domainHits++
		}
	}
	specificity := clamp(float64(domainHits)/4.0, 0, 1)

	declarative := 0.0
	if !strings.Contains(normalized, "?") {
		declarative = 1.0
	}

	return 0.45*lengthFactor + 0.45*specificity + 0.10*declarative
}

// normalize applies the confidence normalization in place: a uniform boost
// when the best raw score is weak, a floor for plausible matches, and the
// overall cap.
//
// The floor is keyed to the pre-boost raw score: a pathway that never
// reached FloorThreshold on its own is not promoted to floor confidence
// just because the boost lifted it past the threshold.
func (r *Router) normalize(scored []scoredPathway) {
	maxRaw := 0.0
	for _, s := range scored {
		if s.raw > maxRaw {
			maxRaw = s.raw
		}
	}

	boost := 1.0
	if maxRaw > 0 && maxRaw < r.tuning.MinTopScore {
		boost = r.tuning.MinTopScore / maxRaw
	}

	for i := range scored {
		final := scored[i].raw * boost
		if scored[i].raw > r.tuning.FloorThreshold && final < r.tuning.ConfidenceFloor {
			final = r.tuning.ConfidenceFloor
		}
		scored[i].final = clamp(final, 0, r.tuning.ScoreCap)
	}
}

// reasoningFor renders the natural-language reasoning string for a pathway
// at the given confidence.
func (r *Router) reasoningFor(p *pathway.Pathway, confidence float64, a Analysis) string {
	band := "a weak match"
	switch {
	case confidence > 0.7:
		band = "a strong match"
	case confidence > 0.4:
		band = "a reasonable match"
	}

	rationale := r.profiles[p.ID].rationale
	if rationale == "" {
		rationale = strings.ToLower(p.Name)
	}

	return fmt.Sprintf("%s is %s (confidence %.2f): your input reads as %s work, and this pathway is about %s.",
		p.Name, band, confidence, a.Category, rationale)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
