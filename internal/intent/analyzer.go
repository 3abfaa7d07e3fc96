// Package intent routes free-text input to the strategic pathway that fits
// it best.
//
// Routing runs in two stages. [Classify] reduces the raw text to an
// [Analysis]: extracted keywords, one coarse category, one scope, and an
// urgency level. [Router.AnalyzeIntent] then scores every known pathway with
// a weighted multi-signal algorithm and assembles a ranked
// [Recommendation].
//
// Every step is deterministic: classification resolves ties by enumeration
// order, and scoring iterates pathways in registry order, so identical input
// always yields identical scores.
package intent

import (
	"strings"
	"unicode"
)

// Category is the coarse intent category of the input text.
type Category string

// Categories, in tie-break enumeration order.
const (
	CategoryIdeation     Category = "ideation"
	CategoryValidation   Category = "validation"
	CategoryOptimization Category = "optimization"
	CategoryPlanning     Category = "planning"
)

// Scope is the breadth of the subject the input talks about.
type Scope string

// Scopes, in tie-break enumeration order.
const (
	ScopeFeature  Scope = "feature"
	ScopeProduct  Scope = "product"
	ScopeBusiness Scope = "business"
	ScopeMarket   Scope = "market"
)

// Urgency is how time-pressured the input reads.
type Urgency string

// Urgency levels. High beats medium beats low; low is the default.
const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Analysis is the ephemeral classification of one routing input. It is
// recomputed per call and never persisted.
type Analysis struct {
	// Keywords are the extracted non-stop-word terms, capped at
	// maxKeywords, in order of first appearance.
	Keywords []string

	// Category is the single coarse category the text falls into.
	Category Category

	// Scope is the single scope the text falls into.
	Scope Scope

	// Urgency is the urgency level of the text.
	Urgency Urgency
}

// maxKeywords caps the extracted keyword list.
const maxKeywords = 10

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"but": {}, "by": {}, "can": {}, "do": {}, "for": {}, "from": {},
	"had": {}, "has": {}, "have": {}, "how": {}, "i": {}, "in": {},
	"is": {}, "it": {}, "its": {}, "my": {}, "of": {}, "on": {}, "or": {},
	"our": {}, "so": {}, "that": {}, "the": {}, "this": {}, "to": {},
	"up": {}, "want": {}, "was": {}, "we": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "will": {}, "with": {}, "would": {},
	"you": {}, "your": {},
}

// categoryTerms maps each category to its signal words. Order is the
// documented tie-break: earlier entries win equal hit counts, and a text
// with no hits at all classifies as the first entry.
var categoryTerms = []struct {
	category Category
	terms    []string
}{
	{CategoryIdeation, []string{"idea", "new", "create", "invent", "brainstorm", "concept", "imagine", "startup", "explore"}},
	{CategoryValidation, []string{"validate", "test", "verify", "feedback", "prove", "check", "assumption", "evidence"}},
	{CategoryOptimization, []string{"improve", "optimize", "better", "fix", "refine", "streamline", "faster", "efficiency"}},
	{CategoryPlanning, []string{"plan", "roadmap", "strategy", "schedule", "milestone", "prioritize", "timeline"}},
}

// scopeTerms is the scope analogue of categoryTerms, same tie-break rules.
var scopeTerms = []struct {
	scope Scope
	terms []string
}{
	{ScopeFeature, []string{"feature", "button", "screen", "page", "component", "workflow", "function"}},
	{ScopeProduct, []string{"product", "app", "application", "platform", "service", "tool", "prototype"}},
	{ScopeBusiness, []string{"business", "company", "revenue", "pricing", "monetize", "customers", "model"}},
	{ScopeMarket, []string{"market", "industry", "competitor", "segment", "audience", "demand", "positioning"}},
}

var highUrgencyTerms = []string{"urgent", "asap", "immediately", "deadline", "today", "critical", "right now"}

var mediumUrgencyTerms = []string{"soon", "quickly", "this week", "upcoming", "shortly"}

// domainTerms indicate domain-specific, concrete input. Used by the
// context/specificity scoring signal.
var domainTerms = []string{
	"startup", "saas", "b2b", "b2c", "api", "app", "platform",
	"subscription", "marketplace", "delivery", "mobile", "fintech",
	"ecommerce", "analytics", "automation",
}

// Classify reduces free text to an [Analysis].
//
// Keywords exclude stop-words and are capped at maxKeywords. Category and
// scope are chosen by counting term hits and taking the argmax, with ties
// resolved by enumeration order. Urgency is high if any high-urgency term
// appears, else medium if any medium-urgency term appears, else low.
func Classify(text string) Analysis {
	normalized := strings.ToLower(text)
	words := tokenize(normalized)
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}

	a := Analysis{
		Keywords: extractKeywords(words),
		Category: categoryTerms[0].category,
		Scope:    scopeTerms[0].scope,
		Urgency:  UrgencyLow,
	}

	best := 0
	for _, ct := range categoryTerms {
		if hits := countHits(normalized, wordSet, ct.terms); hits > best {
			best = hits
			a.Category = ct.category
		}
	}

	best = 0
	for _, st := range scopeTerms {
		if hits := countHits(normalized, wordSet, st.terms); hits > best {
			best = hits
			a.Scope = st.scope
		}
	}

	if countHits(normalized, wordSet, highUrgencyTerms) > 0 {
		a.Urgency = UrgencyHigh
	} else if countHits(normalized, wordSet, mediumUrgencyTerms) > 0 {
		a.Urgency = UrgencyMedium
	}

	return a
}

// tokenize splits normalized text into words, keeping hyphenated terms.
func tokenize(normalized string) []string {
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

// extractKeywords filters stop-words and short tokens, dedupes preserving
// first-appearance order, and caps the result.
func extractKeywords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	var keywords []string
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// countHits counts how many terms appear in the text. Single words match on
// the token set; multi-word terms match as substrings of the normalized text.
func countHits(normalized string, wordSet map[string]struct{}, terms []string) int {
	hits := 0
	for _, term := range terms {
		if strings.ContainsRune(term, ' ') {
			if strings.Contains(normalized, term) {
				hits++
			}
			continue
		}
		if _, ok := wordSet[term]; ok {
			hits++
		}
	}
	return hits
}
