package intent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hollandkevint/ideally-sub002/internal/pathway"
)

func newTestRouter() *Router {
	return NewRouter(pathway.DefaultRegistry(), DefaultTuning(), zap.NewNop())
}

func TestAnalyzeIntent_Deterministic(t *testing.T) {
	r := newTestRouter()
	text := "I want to improve the conversion rate of our checkout feature"

	first := r.AnalyzeIntent(text)
	for i := 0; i < 5; i++ {
		again := r.AnalyzeIntent(text)
		assert.Equal(t, first, again, "repeated calls must return identical results")
	}
}

func TestAnalyzeIntent_ConfidenceBounds(t *testing.T) {
	r := newTestRouter()
	inputs := []string{
		"I have a new startup idea for food delivery",
		"improve our existing checkout flow urgently",
		"how should we price the subscription?",
		"x",
		"a roadmap for validating the market segment with customers and revenue in mind",
	}

	for _, text := range inputs {
		rec := r.AnalyzeIntent(text)

		assert.GreaterOrEqual(t, rec.Confidence, 0.0)
		assert.LessOrEqual(t, rec.Confidence, 0.95)
		for _, alt := range rec.Alternatives {
			assert.GreaterOrEqual(t, alt.Confidence, 0.0)
			assert.LessOrEqual(t, alt.Confidence, 0.95)
			assert.LessOrEqual(t, alt.Confidence, rec.Confidence,
				"primary confidence must be the maximum")
		}
	}
}

func TestAnalyzeIntent_IdeationInput(t *testing.T) {
	r := newTestRouter()

	rec := r.AnalyzeIntent("I have a new startup idea for food delivery")

	assert.Equal(t, pathway.NewIdea, rec.Pathway)
	assert.GreaterOrEqual(t, rec.Confidence, 0.5)
	assert.Equal(t, CategoryIdeation, rec.Analysis.Category)
	assert.NotEmpty(t, rec.Reasoning)
	assert.LessOrEqual(t, len(rec.Alternatives), 2)
}

func TestAnalyzeIntent_BusinessModelInput(t *testing.T) {
	r := newTestRouter()

	rec := r.AnalyzeIntent("plan the revenue model and pricing strategy for my business")

	assert.Equal(t, pathway.BusinessModel, rec.Pathway)
	assert.GreaterOrEqual(t, rec.Confidence, 0.5)
}

func TestAnalyzeIntent_OptimizationInput(t *testing.T) {
	r := newTestRouter()

	rec := r.AnalyzeIntent("improve and optimize the existing onboarding feature")

	assert.Equal(t, pathway.Optimize, rec.Pathway)
	assert.Equal(t, CategoryOptimization, rec.Analysis.Category)
}

func TestAnalyzeIntent_EmptyInput(t *testing.T) {
	r := newTestRouter()

	rec := r.AnalyzeIntent("   ")

	assert.Equal(t, pathway.NewIdea, rec.Pathway, "empty input falls back to the default pathway")
	assert.Equal(t, 0.5, rec.Confidence)
	assert.Contains(t, rec.Reasoning, "not enough signal")
	assert.Empty(t, rec.Alternatives)
}

func TestAnalyzeIntent_AlternativesRanked(t *testing.T) {
	r := newTestRouter()

	rec := r.AnalyzeIntent("a new idea to monetize an existing platform")

	require.Len(t, rec.Alternatives, 2)
	assert.GreaterOrEqual(t, rec.Confidence, rec.Alternatives[0].Confidence)
	assert.GreaterOrEqual(t, rec.Alternatives[0].Confidence, rec.Alternatives[1].Confidence)
	for _, alt := range rec.Alternatives {
		assert.NotEmpty(t, alt.Reasoning)
	}
}

func TestNormalize_BoostBringsMaxToTarget(t *testing.T) {
	r := newTestRouter()
	p := pathway.DefaultRegistry().All()

	scored := []scoredPathway{
		{pathway: p[0], raw: 0.3},
		{pathway: p[1], raw: 0.2},
		{pathway: p[2], raw: 0.1},
	}

	r.normalize(scored)

	// Boost ratio 0.5/0.3 applied uniformly.
	assert.InDelta(t, 0.5, scored[0].final, 1e-9)
	assert.InDelta(t, 0.2*(0.5/0.3), scored[1].final, 1e-9)
	assert.InDelta(t, 0.1*(0.5/0.3), scored[2].final, 1e-9)

	// Relative ordering preserved.
	assert.Greater(t, scored[0].final, scored[1].final)
	assert.Greater(t, scored[1].final, scored[2].final)
}

func TestNormalize_SubThresholdScoresNotFloored(t *testing.T) {
	r := newTestRouter()
	p := pathway.DefaultRegistry().All()

	scored := []scoredPathway{
		{pathway: p[0], raw: 0.3},
		{pathway: p[1], raw: 0.25},
	}

	r.normalize(scored)

	// 0.25 boosts to ~0.417, above the 0.3 threshold, but its pre-boost
	// score never cleared the threshold so it is not floored to 0.5.
	assert.Less(t, scored[1].final, 0.5)
	assert.InDelta(t, 0.25*(0.5/0.3), scored[1].final, 1e-9)
}

func TestNormalize_PlausibleMatchFloored(t *testing.T) {
	r := newTestRouter()
	p := pathway.DefaultRegistry().All()

	// Max is already at target, no boost; 0.35 cleared the threshold on its
	// own, so it floors to 0.5.
	scored := []scoredPathway{
		{pathway: p[0], raw: 0.8},
		{pathway: p[1], raw: 0.35},
	}

	r.normalize(scored)

	assert.InDelta(t, 0.8, scored[0].final, 1e-9)
	assert.InDelta(t, 0.5, scored[1].final, 1e-9)
}

func TestNormalize_CapApplied(t *testing.T) {
	r := newTestRouter()
	p := pathway.DefaultRegistry().All()

	scored := []scoredPathway{{pathway: p[0], raw: 1.0}}

	r.normalize(scored)

	assert.Equal(t, 0.95, scored[0].final)
}

func TestScorePathway_ClampedToOne(t *testing.T) {
	r := newTestRouter()
	a := Classify("new idea startup concept brainstorm create invent launch imagine explore early beginning scratch greenfield")

	score := r.scorePathway(pathway.NewIdea,
		"new idea startup concept brainstorm create invent launch imagine explore early beginning scratch greenfield", a)

	assert.LessOrEqual(t, score, 1.0)
	assert.False(t, math.IsNaN(score))
}

func TestKeywordSignal_TierPoints(t *testing.T) {
	prof := profile{
		primary:    []string{"alpha"},
		secondary:  []string{"bravo"},
		contextual: []string{"charlie"},
	}

	// Only the primary keyword matches: 10 of 22 possible points.
	sig := keywordSignal(prof, "alpha and unrelated words")

	assert.InDelta(t, 10.0/22.0, sig, 1e-9)
}

func TestMatchKeyword_WholeWordsOnly(t *testing.T) {
	assert.True(t, matchKeyword("a new idea", "new"))
	assert.False(t, matchKeyword("renewal paperwork", "new"), "substring inside a word must not match")
	assert.True(t, matchKeyword("new", "new"))
}

func TestContextSignal_DeclarativeBonus(t *testing.T) {
	declarative := contextSignal("we should build a startup platform")
	interrogative := contextSignal("should we build a startup platform?")

	assert.Greater(t, declarative, interrogative)
}
