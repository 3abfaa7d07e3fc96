package template

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTemplateYAML = `
id: test-template
name: Test Template
version: "1.0"
metadata:
  author: tester
  time_estimate: 30
phases:
  - id: first
    name: First Phase
    order: 1
    time_minutes: 10
    prompts:
      - What is the goal?
  - id: second
    name: Second Phase
    order: 2
    time_minutes: 20
    prompts:
      - What did you learn?
outputs:
  - id: summary
    name: Summary
`

func TestParse_Valid(t *testing.T) {
	tpl, err := Parse([]byte(validTemplateYAML))

	require.NoError(t, err)
	assert.Equal(t, "test-template", tpl.ID)
	assert.Equal(t, "Test Template", tpl.Name)
	assert.Equal(t, 30, tpl.Metadata.TimeEstimate)
	require.Len(t, tpl.Phases, 2)
	assert.Equal(t, "first", tpl.Phases[0].ID)
	assert.Equal(t, 10, tpl.Phases[0].TimeMinutes)
	assert.Equal(t, []string{"What is the goal?"}, tpl.Phases[0].Prompts)
	require.Len(t, tpl.Outputs, 1)
	assert.Equal(t, "summary", tpl.Outputs[0].ID)
}

func TestParse_Malformed(t *testing.T) {
	tpl, err := Parse([]byte("phases: [unclosed"))

	assert.Error(t, err)
	assert.Nil(t, tpl)
}

func TestValidate_Valid(t *testing.T) {
	tpl, err := Parse([]byte(validTemplateYAML))
	require.NoError(t, err)

	violations, warnings := Validate(tpl)

	assert.Empty(t, violations)
	assert.Empty(t, warnings)
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
		want   string
	}{
		{
			name:   "empty name",
			mutate: func(tpl *Template) { tpl.Name = "  " },
			want:   "metadata.name must not be empty",
		},
		{
			name:   "zero time estimate",
			mutate: func(tpl *Template) { tpl.Metadata.TimeEstimate = 0 },
			want:   "metadata.time_estimate must be greater than zero",
		},
		{
			name:   "no phases",
			mutate: func(tpl *Template) { tpl.Phases = nil },
			want:   "at least one phase",
		},
		{
			name:   "phase missing id",
			mutate: func(tpl *Template) { tpl.Phases[0].ID = "" },
			want:   "phase 1: id must not be empty",
		},
		{
			name:   "phase missing name",
			mutate: func(tpl *Template) { tpl.Phases[1].Name = "" },
			want:   "phase 2: name must not be empty",
		},
		{
			name:   "phase without prompts",
			mutate: func(tpl *Template) { tpl.Phases[0].Prompts = nil },
			want:   "at least one prompt",
		},
		{
			name:   "output missing id",
			mutate: func(tpl *Template) { tpl.Outputs[0].ID = "" },
			want:   "output 1: id must not be empty",
		},
		{
			name:   "output missing name",
			mutate: func(tpl *Template) { tpl.Outputs[0].Name = "" },
			want:   "output 1: name must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := Parse([]byte(validTemplateYAML))
			require.NoError(t, err)
			tt.mutate(tpl)

			violations, _ := Validate(tpl)

			require.NotEmpty(t, violations)
			assert.Contains(t, strings.Join(violations, "; "), tt.want)
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	tpl := &Template{ID: "broken"}

	violations, _ := Validate(tpl)

	// Name, time estimate, and phase-count rules all fire at once.
	assert.GreaterOrEqual(t, len(violations), 3)
}

func TestValidate_OrderMismatchIsWarning(t *testing.T) {
	tpl, err := Parse([]byte(validTemplateYAML))
	require.NoError(t, err)
	tpl.Phases[1].Order = 5

	violations, warnings := Validate(tpl)

	assert.Empty(t, violations)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "order 5 does not match list position 2")
}

func TestValidate_ElicitationNumber(t *testing.T) {
	tpl, err := Parse([]byte(validTemplateYAML))
	require.NoError(t, err)
	tpl.Phases[0].Elicitation = []ElicitationChoice{{Number: 0, Label: "bad"}}

	violations, _ := Validate(tpl)

	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "positive number")
}

func TestTemplate_PhaseLookup(t *testing.T) {
	tpl, err := Parse([]byte(validTemplateYAML))
	require.NoError(t, err)

	p := tpl.PhaseByID("second")
	require.NotNil(t, p)
	assert.Equal(t, "Second Phase", p.Name)
	assert.Equal(t, 1, tpl.PhaseIndex("second"))

	assert.Nil(t, tpl.PhaseByID("missing"))
	assert.Equal(t, -1, tpl.PhaseIndex("missing"))
}
